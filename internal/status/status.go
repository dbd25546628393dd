package status

import (
	"strings"

	"github.com/julianstephens/weeklit/internal/constants"
)

// Tier buckets a progress ratio for presentation
type Tier int

const (
	None Tier = iota
	Started
	Moderate
	Strong
	Achieved
)

// Ratio thresholds, inclusive lower bounds
const (
	AchievedRatio = 1.0
	StrongRatio   = 0.75
	ModerateRatio = 0.5
)

// Classify maps a non-negative progress ratio to its tier
func Classify(ratio float64) Tier {
	switch {
	case ratio >= AchievedRatio:
		return Achieved
	case ratio >= StrongRatio:
		return Strong
	case ratio >= ModerateRatio:
		return Moderate
	case ratio > 0:
		return Started
	default:
		return None
	}
}

var tierNames = map[Tier]string{
	None:     "none",
	Started:  "started",
	Moderate: "moderate",
	Strong:   "strong",
	Achieved: "achieved",
}

var tierColors = map[Tier]string{
	None:     "gray-400",
	Started:  "yellow-500",
	Moderate: "yellow-600",
	Strong:   "green-500",
	Achieved: "green-600",
}

var tierIcons = map[Tier]string{
	None:     "🌰",
	Started:  "🌱",
	Moderate: "🌿",
	Strong:   "🌳",
	Achieved: "🏆",
}

func (t Tier) String() string { return tierNames[t] }

// ColorKey returns the abstract color key for the tier
func (t Tier) ColorKey() string { return tierColors[t] }

// Icon returns the glyph shown next to the tier
func (t Tier) Icon() string { return tierIcons[t] }

// Tiers lists every tier from lowest to highest
func Tiers() []Tier {
	return []Tier{None, Started, Moderate, Strong, Achieved}
}

// DailyTier grades a single day's minutes against a seventh of the weekly goal
type DailyTier int

const (
	DailyNone DailyTier = iota
	DailyPoor
	DailyMedium
	DailyGood
)

// Daily ratio thresholds
const (
	DailyGoodRatio   = 0.9
	DailyMediumRatio = 0.5
)

// ClassifyDaily grades minutes against goalHours*60/7.
// A non-positive goal grades any logged time as good.
func ClassifyDaily(minutes int, goalHours float64) DailyTier {
	if minutes <= 0 {
		return DailyNone
	}
	dailyGoal := goalHours * 60 / constants.DaysPerWeek
	if dailyGoal <= 0 {
		return DailyGood
	}
	ratio := float64(minutes) / dailyGoal
	switch {
	case ratio >= DailyGoodRatio:
		return DailyGood
	case ratio >= DailyMediumRatio:
		return DailyMedium
	default:
		return DailyPoor
	}
}

var dailyNames = map[DailyTier]string{
	DailyNone:   "",
	DailyPoor:   "poor",
	DailyMedium: "medium",
	DailyGood:   "good",
}

func (d DailyTier) String() string { return dailyNames[d] }

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws one block per value scaled to the maximum. Zero values are
// drawn as a space.
func Sparkline(values []int) string {
	maxV := 0
	for _, v := range values {
		maxV = max(maxV, v)
	}
	var b strings.Builder
	for _, v := range values {
		if v <= 0 || maxV == 0 {
			b.WriteRune(' ')
			continue
		}
		level := (v*len(sparkLevels) - 1) / maxV
		b.WriteRune(sparkLevels[min(level, len(sparkLevels)-1)])
	}
	return b.String()
}
