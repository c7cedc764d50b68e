// Package progression реализует арифметику опыта и уровней персонажа.
package progression

import (
	"math"

	"GameMasterService/internal/models"
)

// ExperiencePerLevel множитель порога уровня: для уровня L нужно 10×L опыта
const ExperiencePerLevel = 10

// MaxGain наибольшее начисление за один вызов Apply; большие значения урезаются
const MaxGain = 1_000_000_000

// Threshold возвращает количество опыта, необходимое для перехода с уровня level
func Threshold(level int) int {
	if level < 1 {
		level = 1
	}
	return ExperiencePerLevel * level
}

// NewStats возвращает статистику нового персонажа
func NewStats(characterName string) models.CharacterStats {
	return models.CharacterStats{
		Name:                characterName,
		Level:               1,
		Experience:          0,
		ExperienceToLevelUp: Threshold(1),
	}
}

// Apply начисляет опыт с переносом остатка на следующие уровни.
// Отрицательное начисление считается нулевым, начисление больше MaxGain урезается.
// Входная статистика не изменяется.
func Apply(stats models.CharacterStats, gained int) models.CharacterStats {
	gained = max(0, min(gained, MaxGain))
	if stats.Level < 1 {
		stats.Level = 1
	}
	if stats.Experience < 0 {
		stats.Experience = 0
	}

	// Опыт, накопленный с начала текущего уровня
	pool := stats.Experience + gained
	levels := levelsFor(stats.Level, pool)

	stats.Level += levels
	stats.Experience = pool - levelCost(stats.Level-levels, levels)
	stats.ExperienceToLevelUp = Threshold(stats.Level)

	return stats
}

// levelCost опыт, нужный для подъема с уровня level на k уровней:
// 10×(level + level+1 + ... + level+k-1)
func levelCost(level, k int) int {
	return ExperiencePerLevel * k * (2*level + k - 1) / 2
}

// levelsFor наибольшее k, при котором levelCost(level, k) <= pool.
// Оценка из квадратного уравнения уточняется целочисленно.
func levelsFor(level, pool int) int {
	b := float64(2*level - 1)
	k := int((math.Sqrt(b*b+8*float64(pool)/ExperiencePerLevel) - b) / 2)
	if k < 0 {
		k = 0
	}
	for k > 0 && levelCost(level, k) > pool {
		k--
	}
	for levelCost(level, k+1) <= pool {
		k++
	}
	return k
}

// LevelsGained возвращает число уровней, полученных между двумя состояниями
func LevelsGained(before, after models.CharacterStats) int {
	if after.Level <= before.Level {
		return 0
	}
	return after.Level - before.Level
}
