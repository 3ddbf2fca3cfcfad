package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ascent-learning/ascent_api/model"
	"github.com/ascent-learning/ascent_api/shared"
)

func TestAwardXP(t *testing.T) {
	svc := &XPService{}

	tests := []struct {
		name         string
		difficulty   string
		level        int
		scorePercent int
		wantTotal    int
		wantLabel    string
	}{
		{
			name:         "beginner level 1 plain pass",
			difficulty:   model.DifficultyBeginner,
			level:        1,
			scorePercent: 80,
			wantTotal:    100,
		},
		{
			name:         "advanced level 1 perfect",
			difficulty:   model.DifficultyAdvanced,
			level:        1,
			scorePercent: 100,
			wantTotal:    200,
			wantLabel:    shared.PerformancePerfect,
		},
		{
			name:         "intermediate level 5 excellent",
			difficulty:   model.DifficultyIntermediate,
			level:        5,
			scorePercent: 92,
			wantTotal:    175,
			wantLabel:    shared.PerformanceExcellent,
		},
		{
			name:         "unknown difficulty falls back to 1.0",
			difficulty:   "legendary",
			level:        1,
			scorePercent: 75,
			wantTotal:    100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.AwardXP(BaseLessonXP, tt.difficulty, tt.level, tt.scorePercent)
			assert.Equal(t, tt.wantTotal, got.TotalXP)
			assert.Equal(t, tt.wantLabel, got.PerformanceLabel)
			assert.NotEmpty(t, got.Formula)
		})
	}
}

func TestAwardXPDeterministic(t *testing.T) {
	svc := &XPService{}

	a := svc.AwardXP(BaseLessonXP, model.DifficultyAdvanced, 7, 94)
	b := svc.AwardXP(BaseLessonXP, model.DifficultyAdvanced, 7, 94)
	assert.Equal(t, a, b)
}

func TestLevelMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, LevelMultiplier(1))
	assert.Equal(t, 1.2, LevelMultiplier(5))
	assert.Equal(t, 1.5, LevelMultiplier(11))
	// Capped beyond level 11.
	assert.Equal(t, 1.5, LevelMultiplier(40))
	// Degenerate levels clamp to 1.
	assert.Equal(t, 1.0, LevelMultiplier(0))
}

func TestPerformanceBonus(t *testing.T) {
	bonus, label := PerformanceBonus(100)
	assert.Equal(t, 50, bonus)
	assert.Equal(t, shared.PerformancePerfect, label)

	bonus, label = PerformanceBonus(90)
	assert.Equal(t, 25, bonus)
	assert.Equal(t, shared.PerformanceExcellent, label)

	bonus, label = PerformanceBonus(89)
	assert.Equal(t, 0, bonus)
	assert.Equal(t, "", label)
}

func TestCalculateLevel(t *testing.T) {
	svc := &XPService{}

	tests := []struct {
		totalXP   int
		wantLevel int
	}{
		{0, 1},
		{99, 1},
		{100, 2},  // level 2 at 100
		{249, 2},  // level 3 needs 100 + 150
		{250, 3},
		{474, 3},  // level 4 needs 100 + 150 + 225
		{475, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantLevel, svc.CalculateLevel(tt.totalXP), "totalXP=%d", tt.totalXP)
	}
}

func TestCalculateLevelMonotone(t *testing.T) {
	svc := &XPService{}

	prev := svc.CalculateLevel(0)
	for xp := 0; xp <= 10000; xp += 37 {
		level := svc.CalculateLevel(xp)
		assert.GreaterOrEqual(t, level, prev, "level regressed at xp=%d", xp)
		prev = level
	}
}

func TestXPToNextLevel(t *testing.T) {
	svc := &XPService{}

	assert.Equal(t, 100, svc.XPToNextLevel(0))
	assert.Equal(t, 1, svc.XPToNextLevel(99))
	assert.Equal(t, 150, svc.XPToNextLevel(100))
}
