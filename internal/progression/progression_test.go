package progression

import (
	"math"
	"math/rand"
	"testing"

	"GameMasterService/internal/models"
)

func stats(level, experience int) models.CharacterStats {
	return models.CharacterStats{
		Name:                "hero",
		Level:               level,
		Experience:          experience,
		ExperienceToLevelUp: Threshold(level),
	}
}

func TestApply(t *testing.T) {
	cases := map[string]struct {
		before models.CharacterStats
		gained int
		want   models.CharacterStats
	}{
		"no level up":         {before: stats(1, 0), gained: 5, want: stats(1, 5)},
		"exact threshold":     {before: stats(1, 0), gained: 10, want: stats(2, 0)},
		"single rollover":     {before: stats(1, 5), gained: 7, want: stats(2, 2)},
		"participant 2h game": {before: stats(1, 0), gained: 50, want: stats(3, 20)},
		"host 2h game":        {before: stats(1, 0), gained: 75, want: stats(4, 15)},
		"high level":          {before: stats(5, 45), gained: 10, want: stats(6, 5)},
		"zero gain":           {before: stats(3, 7), gained: 0, want: stats(3, 7)},
		"negative clamps":     {before: stats(2, 4), gained: -30, want: stats(2, 4)},
		"multi level jump":    {before: stats(6, 19), gained: 50, want: stats(7, 9)},
		"host rollover":       {before: stats(7, 29), gained: 75, want: stats(8, 34)},
		"max gain":            {before: stats(1, 0), gained: MaxGain, want: stats(14142, 89890)},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := Apply(tc.before, tc.gained)
			if got != tc.want {
				t.Errorf("Expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	before := stats(1, 5)
	_ = Apply(before, 100)

	if before.Level != 1 || before.Experience != 5 {
		t.Errorf("Expected input to stay unchanged, got %+v", before)
	}
}

// totalExperience возвращает суммарный опыт, накопленный с уровня 1
func totalExperience(s models.CharacterStats) int {
	total := s.Experience
	for level := 1; level < s.Level; level++ {
		total += Threshold(level)
	}
	return total
}

func TestApplyInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		level := rng.Intn(20) + 1
		before := stats(level, rng.Intn(Threshold(level)))
		gained := rng.Intn(2000)

		after := Apply(before, gained)

		if after.Experience < 0 || after.Experience >= after.ExperienceToLevelUp {
			t.Fatalf("Experience out of range: before %+v gained %d after %+v", before, gained, after)
		}
		if after.ExperienceToLevelUp != Threshold(after.Level) {
			t.Fatalf("Threshold mismatch: %+v", after)
		}
		if after.Level < before.Level {
			t.Fatalf("Level decreased: before %+v after %+v", before, after)
		}
		if totalExperience(after) != totalExperience(before)+gained {
			t.Fatalf("Experience not conserved: before %+v gained %d after %+v", before, gained, after)
		}
	}

	// Тест кейс: огромные начисления урезаются до MaxGain и не переполняют счетчики
	for _, gained := range []int{MaxGain + 1, math.MaxInt - 5, math.MaxInt} {
		before := stats(1, 5)
		after := Apply(before, gained)

		if after.Experience < 0 || after.Experience >= after.ExperienceToLevelUp {
			t.Fatalf("Experience out of range for gain %d: %+v", gained, after)
		}
		if after != Apply(before, MaxGain) {
			t.Errorf("Expected gain %d to be capped at MaxGain, got %+v", gained, after)
		}
	}
}

func TestNewStats(t *testing.T) {
	got := NewStats("Gandalf")
	want := models.CharacterStats{Name: "Gandalf", Level: 1, Experience: 0, ExperienceToLevelUp: 10}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestLevelsGained(t *testing.T) {
	if got := LevelsGained(stats(1, 0), stats(4, 15)); got != 3 {
		t.Errorf("Expected 3 levels, got %d", got)
	}
	if got := LevelsGained(stats(2, 0), stats(2, 5)); got != 0 {
		t.Errorf("Expected 0 levels, got %d", got)
	}
}
