package config

import (
	"time"

	"github.com/spf13/viper"
)

// ResilienceConfig содержит настройки для механизмов отказоустойчивости
type ResilienceConfig struct {
	// CircuitBreaker содержит настройки для circuit breaker
	CircuitBreaker struct {
		// FailureThreshold количество ошибок, после которого circuit breaker откроется
		FailureThreshold int `mapstructure:"failure_threshold"`
		// ResetTimeout время, через которое circuit breaker перейдет в полуоткрытое состояние
		ResetTimeout time.Duration `mapstructure:"reset_timeout"`
	} `mapstructure:"circuit_breaker"`

	// Retry содержит настройки для механизма повторных попыток
	Retry struct {
		MaxRetries     int           `mapstructure:"max_retries"`
		InitialBackoff time.Duration `mapstructure:"initial_backoff"`
		MaxBackoff     time.Duration `mapstructure:"max_backoff"`
		BackoffFactor  float64       `mapstructure:"backoff_factor"`
		// Jitter доля случайного отклонения от задержки
		Jitter float64 `mapstructure:"jitter"`
	} `mapstructure:"retry"`

	// Database содержит настройки механизмов отказоустойчивости для базы данных
	Database struct {
		// CommandTimeout таймаут для выполнения команд
		CommandTimeout time.Duration `mapstructure:"command_timeout"`
	} `mapstructure:"database"`

	// Redis содержит настройки механизмов отказоустойчивости для Redis
	Redis struct {
		// CommandTimeout таймаут для выполнения команд
		CommandTimeout time.Duration `mapstructure:"command_timeout"`
	} `mapstructure:"redis"`
}

// DefaultResilienceConfig возвращает конфигурацию отказоустойчивости по умолчанию
func DefaultResilienceConfig() ResilienceConfig {
	config := ResilienceConfig{}

	config.CircuitBreaker.FailureThreshold = 5
	config.CircuitBreaker.ResetTimeout = 30 * time.Second

	config.Retry.MaxRetries = 2
	config.Retry.InitialBackoff = 100 * time.Millisecond
	config.Retry.MaxBackoff = 2 * time.Second
	config.Retry.BackoffFactor = 2.0
	config.Retry.Jitter = 0.2

	config.Database.CommandTimeout = 3 * time.Second
	config.Redis.CommandTimeout = 1 * time.Second

	return config
}

func setResilienceDefaults(v *viper.Viper) {
	d := DefaultResilienceConfig()
	v.SetDefault("resilience.circuit_breaker.failure_threshold", d.CircuitBreaker.FailureThreshold)
	v.SetDefault("resilience.circuit_breaker.reset_timeout", d.CircuitBreaker.ResetTimeout)
	v.SetDefault("resilience.retry.max_retries", d.Retry.MaxRetries)
	v.SetDefault("resilience.retry.initial_backoff", d.Retry.InitialBackoff)
	v.SetDefault("resilience.retry.max_backoff", d.Retry.MaxBackoff)
	v.SetDefault("resilience.retry.backoff_factor", d.Retry.BackoffFactor)
	v.SetDefault("resilience.retry.jitter", d.Retry.Jitter)
	v.SetDefault("resilience.database.command_timeout", d.Database.CommandTimeout)
	v.SetDefault("resilience.redis.command_timeout", d.Redis.CommandTimeout)
}
