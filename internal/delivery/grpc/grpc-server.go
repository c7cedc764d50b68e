package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"

	"GameMasterService/pkg/server"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// Server представляет собой gRPC сервер
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *zap.Logger
	port       int
}

// NewServer создает gRPC сервер с перехватчиками, health и reflection
func NewServer(handler GameMasterServer, logger *zap.Logger, port int) *Server {
	s := &Server{
		health: health.NewServer(),
		logger: logger,
		port:   port,
	}

	opts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			s.recoveryInterceptor(),
			server.TracingUnaryInterceptor(logger),
			server.MetricsUnaryInterceptor(),
			s.loggingInterceptor(),
		),
	}

	s.grpcServer = grpc.NewServer(opts...)
	RegisterGameMasterServer(s.grpcServer, handler)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	// Включаем reflection для удобства отладки через grpcurl
	reflection.Register(s.grpcServer)

	s.SetServing(true)
	return s
}

// SetServing переключает статус grpc.health.v1 для всего сервера и сервиса
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Run слушает порт и обслуживает запросы до остановки
func (s *Server) Run() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		s.logger.Error("Failed to listen", zap.Error(err), zap.Int("port", s.port))
		return err
	}

	s.logger.Info("Starting gRPC server", zap.Int("port", s.port))
	return s.Serve(lis)
}

// Serve обслуживает запросы на готовом listener
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Stop останавливает gRPC сервер, дожидаясь активных запросов
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping gRPC server")
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

// loggingInterceptor создает перехватчик для логирования запросов
func (s *Server) loggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		logger := server.WithRequestID(ctx, s.logger)
		logger.Debug("gRPC request", zap.String("method", info.FullMethod))

		resp, err := handler(ctx, req)

		if err != nil {
			logger.Info("gRPC error",
				zap.String("method", info.FullMethod),
				zap.String("code", status.Code(err).String()),
				zap.Error(err))
		} else {
			logger.Debug("gRPC response", zap.String("method", info.FullMethod))
		}

		return resp, err
	}
}

// recoveryInterceptor превращает панику обработчика в codes.Internal
func (s *Server) recoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Recovered from panic",
					zap.Any("panic", r),
					zap.String("method", info.FullMethod),
					zap.ByteString("stack", debug.Stack()))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()

		return handler(ctx, req)
	}
}
