package query

import (
	"cmp"
	"slices"
	"strings"

	"GameMasterService/internal/models"
	"GameMasterService/pkg/apperrors"
)

// eventSortAliases допустимые пути сортировки событий
var eventSortAliases = map[string]string{
	"dateTime":  "dateTime",
	"date_time": "dateTime",
	"capacity":  "capacity",
	"gameType":  "gameType",
	"game_type": "gameType",
}

var eventComparators = map[string]func(a, b *models.Event) int{
	"dateTime": func(a, b *models.Event) int { return a.DateTime.Compare(b.DateTime) },
	"capacity": func(a, b *models.Event) int { return cmp.Compare(a.Capacity, b.Capacity) },
	"gameType": func(a, b *models.Event) int { return strings.Compare(a.GameType, b.GameType) },
}

// EventQuery разобранные параметры выборки событий
type EventQuery struct {
	gameType   string
	isGameFull *bool
	filter     eventPredicate
	sort       []sortField
}

// ParseEventQuery проверяет параметры запроса и строит EventQuery
func ParseEventQuery(req *models.ListEventsRequest) (*EventQuery, error) {
	q := &EventQuery{gameType: strings.TrimSpace(req.GameType)}

	switch strings.TrimSpace(req.IsGameFull) {
	case "":
	case "true":
		full := true
		q.isGameFull = &full
	case "false":
		full := false
		q.isGameFull = &full
	default:
		return nil, apperrors.NewValidationError("isGameFull", "must be true or false")
	}

	filter, err := parseEventFilter(req.Filter)
	if err != nil {
		return nil, err
	}
	q.filter = filter

	sort, err := resolveSort(req.SortBy, req.Order, req.OrderBy, eventSortAliases, false)
	if err != nil {
		return nil, err
	}
	if len(sort) == 0 {
		sort = []sortField{{key: "dateTime"}}
	}
	q.sort = sort

	return q, nil
}

// Apply возвращает новые отфильтрованные и отсортированные события.
// Завершенные события не попадают в выборку никогда.
func (q *EventQuery) Apply(events []models.Event) []models.Event {
	out := make([]models.Event, 0, len(events))
	for i := range events {
		ev := &events[i]
		if ev.IsCompleted {
			continue
		}
		if q.gameType != "" && ev.GameType != q.gameType {
			continue
		}
		if q.isGameFull != nil && ev.IsGameFull != *q.isGameFull {
			continue
		}
		if q.filter != nil && !q.filter(ev) {
			continue
		}
		out = append(out, *ev)
	}

	slices.SortStableFunc(out, func(a, b models.Event) int {
		for _, f := range q.sort {
			c := eventComparators[f.key](&a, &b)
			if f.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return strings.Compare(a.ID, b.ID)
	})

	return out
}
