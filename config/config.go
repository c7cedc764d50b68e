package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config содержит все настройки приложения
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	GRPC       GRPCConfig       `mapstructure:"grpc"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Access     AccessConfig     `mapstructure:"access"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
}

// AppConfig общие настройки сервиса
type AppConfig struct {
	Env string `mapstructure:"env"`
}

// IsDevelopment сообщает, запущен ли сервис в режиме разработки
func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// PostgresConfig содержит настройки для PostgreSQL
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig содержит настройки для Redis
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GRPCConfig содержит настройки для gRPC сервера
type GRPCConfig struct {
	Port int `mapstructure:"port"`
}

// StorageConfig выбирает драйвер хранилища
type StorageConfig struct {
	// Driver: postgres, sqlite или memory
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// AccessConfig содержит настройки доступа
type AccessConfig struct {
	// AdminToken значение userWhoRequested, открывающее скрытые профили. Пустое значение отключает доступ.
	AdminToken string `mapstructure:"admin_token"`
}

// TelemetryConfig содержит настройки трассировки OpenTelemetry
type TelemetryConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// LoadConfig загружает настройки из файла или переменных окружения
func LoadConfig() (*Config, error) {
	// .env необязателен, переменные окружения процесса имеют приоритет
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Значения по умолчанию
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Если файл конфигурации не найден, используем переменные окружения
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Проверяем наличие переменных окружения и переопределяем значения конфигурации
	loadFromEnv(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")

	// PostgreSQL defaults
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.username", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "game_master")
	v.SetDefault("postgres.sslmode", "disable")

	// Redis defaults
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// gRPC defaults
	v.SetDefault("grpc.port", 50051)

	// Storage defaults
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("storage.sqlite_path", "game_master.db")

	v.SetDefault("access.admin_token", "")

	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "game-master-service")

	setResilienceDefaults(v)
}

func loadFromEnv(v *viper.Viper) {
	if appEnv := os.Getenv("APP_ENV"); appEnv != "" {
		v.Set("app.env", appEnv)
	}

	// PostgreSQL from env
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		v.Set("postgres.host", dbHost)
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			v.Set("postgres.port", port)
		}
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		v.Set("postgres.username", dbUser)
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		v.Set("postgres.password", dbPassword)
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		v.Set("postgres.dbname", dbName)
	}

	// Redis from env
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		redisPort := "6379"
		if port := os.Getenv("REDIS_PORT"); port != "" {
			redisPort = port
		}
		v.Set("redis.addr", redisHost+":"+redisPort)
	}
	if redisEnabled := os.Getenv("REDIS_ENABLED"); redisEnabled != "" {
		if enabled, err := strconv.ParseBool(redisEnabled); err == nil {
			v.Set("redis.enabled", enabled)
		}
	}

	// gRPC from env
	if grpcPort := os.Getenv("GRPC_PORT"); grpcPort != "" {
		if port, err := strconv.Atoi(grpcPort); err == nil {
			v.Set("grpc.port", port)
		}
	}

	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		v.Set("storage.driver", driver)
	}
	if path := os.Getenv("SQLITE_PATH"); path != "" {
		v.Set("storage.sqlite_path", path)
	}

	if token := os.Getenv("ADMIN_TOKEN"); token != "" {
		v.Set("access.admin_token", token)
	}

	if endpoint := os.Getenv("OTEL_ENDPOINT"); endpoint != "" {
		v.Set("telemetry.endpoint", endpoint)
	}
}
