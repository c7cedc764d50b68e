package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("GameMasterService/internal/service")

var (
	usersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gamemaster",
		Name:      "users_created_total",
		Help:      "Number of created users",
	})

	friendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamemaster",
		Name:      "friend_requests_total",
		Help:      "Friend request transitions by action",
	}, []string{"action"})

	eventsResolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gamemaster",
		Name:      "events_resolved_total",
		Help:      "Number of events marked completed",
	})

	// experienceAwardedTotal role: host, participant, admin
	experienceAwardedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamemaster",
		Name:      "experience_awarded_total",
		Help:      "Experience points awarded by role",
	}, []string{"role"})

	levelUpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gamemaster",
		Name:      "level_ups_total",
		Help:      "Character levels gained",
	})

	creaturesGrantedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gamemaster",
		Name:      "creatures_granted_total",
		Help:      "Prize creatures granted to winners",
	})
)

// finishSpan помечает span ошибкой и закрывает его
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
