package services

import (
	"fmt"
	"math"

	"github.com/alphabatem/common/context"

	"github.com/ascent-learning/ascent_api/dto"
	"github.com/ascent-learning/ascent_api/model"
	"github.com/ascent-learning/ascent_api/shared"
)

// XPService converts a scored attempt into an XP award and maps
// cumulative XP to a level. Every method is a pure function of its
// arguments; the policy tables below are the only tuning surface.
type XPService struct {
	context.DefaultService
}

const XP_SVC = "xp_svc"

const BaseLessonXP = 100

// difficultyMultipliers keys the reward on the lesson's declared tier.
// Unknown tiers fall back to 1.0 rather than erroring, the submission
// still has to be honored.
var difficultyMultipliers = map[string]float64{
	model.DifficultyBeginner:     1.0,
	model.DifficultyIntermediate: 1.25,
	model.DifficultyAdvanced:     1.5,
}

const (
	perfectBonus   = 50
	excellentBonus = 25

	levelMultiplierStep = 0.05
	levelMultiplierCap  = 1.5

	levelBaseXP     = 100 // XP from level 1 to level 2
	levelGrowthRate = 1.5
)

func (svc XPService) Id() string {
	return XP_SVC
}

func (svc *XPService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *XPService) Start() error {
	return nil
}

func DifficultyMultiplier(difficulty string) float64 {
	if m, ok := difficultyMultipliers[difficulty]; ok {
		return m
	}
	return 1.0
}

// LevelMultiplier scales the reward with the learner's current level so
// the geometric level curve stays reachable at higher levels.
func LevelMultiplier(level int) float64 {
	if level < 1 {
		level = 1
	}
	m := 1.0 + levelMultiplierStep*float64(level-1)
	if m > levelMultiplierCap {
		m = levelMultiplierCap
	}
	return m
}

// PerformanceBonus maps a score percentage onto its discrete bonus tier
// and the label shown to the learner.
func PerformanceBonus(scorePercent int) (int, string) {
	switch {
	case scorePercent >= 100:
		return perfectBonus, shared.PerformancePerfect
	case scorePercent >= 90:
		return excellentBonus, shared.PerformanceExcellent
	default:
		return 0, ""
	}
}

// AwardXP computes the full XP breakdown for one scored attempt.
// Deterministic: identical inputs always produce identical output.
func (svc *XPService) AwardXP(baseXP int, difficulty string, level int, scorePercent int) dto.XPBreakdown {
	diffMult := DifficultyMultiplier(difficulty)
	levelMult := LevelMultiplier(level)
	bonus, label := PerformanceBonus(scorePercent)

	total := int(math.Round(float64(baseXP)*diffMult*levelMult)) + bonus

	return dto.XPBreakdown{
		BaseXP:               baseXP,
		DifficultyMultiplier: diffMult,
		LevelMultiplier:      levelMult,
		PerformanceBonus:     bonus,
		PerformanceLabel:     label,
		TotalXP:              total,
		Formula: fmt.Sprintf("round(%d x %.2f x %.2f) + %d = %d",
			baseXP, diffMult, levelMult, bonus, total),
	}
}

// CalculateLevel maps cumulative XP to a level. Level n+1 costs 1.5x
// the XP of level n, starting at 100. Monotone and idempotent.
func (svc *XPService) CalculateLevel(totalXP int) int {
	level := 1
	requiredXP := levelBaseXP

	for totalXP >= requiredXP {
		totalXP -= requiredXP
		level++
		requiredXP = int(float64(requiredXP) * levelGrowthRate)
	}

	return level
}

// XPToNextLevel reports how much more XP the user needs for the next
// level boundary.
func (svc *XPService) XPToNextLevel(currentXP int) int {
	currentLevel := svc.CalculateLevel(currentXP)
	return svc.totalXPForLevel(currentLevel+1) - currentXP
}

func (svc *XPService) totalXPForLevel(targetLevel int) int {
	if targetLevel <= 1 {
		return 0
	}

	totalXP := 0
	requiredXP := levelBaseXP

	for level := 2; level <= targetLevel; level++ {
		totalXP += requiredXP
		requiredXP = int(float64(requiredXP) * levelGrowthRate)
	}

	return totalXP
}
