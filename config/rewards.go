package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// RewardConfig параметры начисления наград за завершенные события
type RewardConfig struct {
	ExperiencePerHour float64 `env:"XP_PER_HOUR" envDefault:"25"`
	HostMultiplier    float64 `env:"HOST_MULTIPLIER" envDefault:"1.5"`
	// CreaturePicker стратегия выбора приза: random, first или last
	CreaturePicker string `env:"CREATURE_PICKER" envDefault:"random"`
}

// LoadRewardConfig читает параметры наград из окружения
func LoadRewardConfig() (RewardConfig, error) {
	var cfg RewardConfig
	if err := env.Parse(&cfg); err != nil {
		return RewardConfig{}, fmt.Errorf("parse reward env: %w", err)
	}
	if cfg.ExperiencePerHour < 0 {
		return RewardConfig{}, fmt.Errorf("XP_PER_HOUR must not be negative")
	}
	if cfg.HostMultiplier < 0 {
		return RewardConfig{}, fmt.Errorf("HOST_MULTIPLIER must not be negative")
	}
	switch cfg.CreaturePicker {
	case "random", "first", "last":
	default:
		return RewardConfig{}, fmt.Errorf("unknown CREATURE_PICKER %q", cfg.CreaturePicker)
	}
	return cfg, nil
}
