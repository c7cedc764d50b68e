package main

import (
	"context"
	"os"
	"time"

	"GameMasterService/config"
	"GameMasterService/internal/access"
	"GameMasterService/internal/database/seed"
	"GameMasterService/internal/delivery/grpc"
	"GameMasterService/internal/repository"
	"GameMasterService/internal/repository/memory"
	"GameMasterService/internal/repository/postgres"
	"GameMasterService/internal/repository/redis"
	"GameMasterService/internal/service"
	"GameMasterService/pkg/database"
	"GameMasterService/pkg/logger"
	"GameMasterService/pkg/server"
	"GameMasterService/pkg/telemetry"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Версия сервиса
const (
	ServiceVersion = "1.0.0"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger(false).Fatal("Не удалось загрузить конфигурацию", zap.Error(err))
	}

	// Инициализация логгера
	log := logger.NewLogger(cfg.App.IsDevelopment())
	defer func() { _ = log.Sync() }()
	log.Info("Запуск сервиса GameMaster", zap.String("version", ServiceVersion), zap.String("env", cfg.App.Env))

	rewards, err := config.LoadRewardConfig()
	if err != nil {
		log.Fatal("Не удалось загрузить настройки наград", zap.Error(err))
	}

	// Определение номеров портов
	grpcPort := cfg.GRPC.Port
	healthPort := grpcPort + 100
	metricsPort := grpcPort + 200

	// Создаем механизм graceful shutdown
	gracefulShutdown := server.NewGracefulShutdown(log, 30*time.Second)

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry, ServiceVersion)
	if err != nil {
		log.Fatal("Не удалось настроить трассировку", zap.Error(err))
	}
	gracefulShutdown.AddShutdownFunc("tracing", shutdownTracing)

	// Хранилище: postgres, sqlite или память
	var db *gorm.DB
	var baseStore repository.Store
	if cfg.Storage.Driver == "memory" {
		baseStore = memory.NewStore()
		log.Warn("Используется хранилище в памяти, данные не сохраняются между запусками")
	} else {
		db, err = database.Open(cfg.Storage, cfg.Postgres)
		if err != nil {
			log.Fatal("Не удалось подключиться к базе данных", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
		}
		log.Info("Подключение к базе данных установлено", zap.String("driver", cfg.Storage.Driver))

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("Не удалось получить экземпляр SQL DB", zap.Error(err))
		}
		gracefulShutdown.AddShutdownFunc("database", func(ctx context.Context) error {
			return sqlDB.Close()
		})
		baseStore = postgres.NewStore(db)
	}

	// Подключение к Redis
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		log.Info("Подключение к Redis установлено", zap.String("addr", cfg.Redis.Addr))
		gracefulShutdown.AddShutdownFunc("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	// Создаем проверку здоровья баз данных
	healthChecker := database.NewDatabaseHealthChecker(db, redisClient, cfg.Resilience, log)

	// Инициализация отказоустойчивых репозиториев
	store := postgres.NewResilientStore(baseStore, healthChecker, log)
	var cache service.Cache = redis.NoopCache{}
	if redisClient != nil {
		cache = redis.NewResilientCacheRepository(redisClient, healthChecker, log)
	}

	if err := seed.NewDevEnvironmentSeeder(store, log, cfg.App.IsDevelopment()).SeedAllDevData(context.Background()); err != nil {
		log.Error("Не удалось заполнить тестовые данные", zap.Error(err))
	}

	picker, err := service.NewCreaturePicker(rewards.CreaturePicker)
	if err != nil {
		log.Fatal("Некорректная стратегия выбора приза", zap.Error(err))
	}
	if cfg.Access.AdminToken == "" {
		log.Warn("ADMIN_TOKEN не задан, административный доступ отключен")
	}

	// Инициализация сервисов
	guard := access.NewGuard(cfg.Access.AdminToken)
	resolver := service.NewResolver(store, service.NewRewardPolicy(rewards), picker, log)
	handler := grpc.NewGameMasterHandler(
		service.NewUserService(store, cache, guard, log),
		service.NewFriendService(store, cache, log),
		service.NewEventService(store, cache, resolver, log),
		log,
	)

	// Инициализация gRPC сервера
	grpcSrv := grpc.NewServer(handler, log, grpcPort)

	// Запускаем сервер для метрик Prometheus
	metricsServer := server.MetricsServer(metricsPort, log)
	gracefulShutdown.AddShutdownFunc("metrics", metricsServer.Shutdown)

	// Создаем и запускаем HTTP сервер для проверки здоровья
	healthCheck := server.NewHealthCheck(healthChecker, log, ServiceVersion, redisClient != nil)
	healthCheck.OnReadinessChange(grpcSrv.SetServing)
	healthCheck.StartServer(healthPort)
	gracefulShutdown.AddShutdownFunc("health", healthCheck.Stop)

	// gRPC останавливается первым: функции завершения выполняются в обратном порядке
	gracefulShutdown.AddShutdownFunc("grpc", grpcSrv.Stop)

	// Запуск gRPC сервера в отдельной горутине
	go func() {
		if err := grpcSrv.Run(); err != nil {
			log.Error("gRPC сервер остановлен с ошибкой", zap.Error(err))
			gracefulShutdown.Shutdown()
		}
	}()

	// Логируем информацию о версии и PID
	hostname, _ := os.Hostname()
	log.Info("Сервис успешно запущен",
		zap.Int("grpc_port", grpcPort),
		zap.Int("health_port", healthPort),
		zap.Int("metrics_port", metricsPort),
		zap.String("version", ServiceVersion),
		zap.Int("pid", os.Getpid()),
		zap.String("hostname", hostname))

	// Ожидаем сигнала остановки
	gracefulShutdown.Wait()
	log.Info("Завершение работы сервиса выполнено")
}
