package scoring

import (
	"fmt"
	"math"

	"intellitest/internal/domain"
)

const (
	MinIQ = 70
	MaxIQ = 145

	// midpointRaw is the raw score that maps to an IQ of exactly 100.
	midpointRaw   = 30
	pointsPerItem = 1.5
)

// Classification tier floors, shared by the narrative tables.
const (
	FloorGenius       = 145
	FloorVerySuperior = 130
	FloorSuperior     = 120
	FloorHighAverage  = 110
	FloorAverage      = 90
	FloorLowAverage   = 80
	FloorBorderline   = 70
)

// RawScore counts positions whose stored answer equals the correct answer.
func RawScore(bank domain.QuestionBank, answers domain.AnswerSet) int {
	score := 0
	for i, q := range bank.Flatten() {
		if answers.Answered(i) && answers[i] == q.CorrectAnswer {
			score++
		}
	}
	return score
}

// ScoreToIQ applies IQ = 100 + 1.5*(raw-30), clamped to [70,145] and rounded.
func ScoreToIQ(raw int) int {
	iq := 100 + pointsPerItem*float64(raw-midpointRaw)
	return int(math.Round(math.Min(MaxIQ, math.Max(MinIQ, iq))))
}

var classifications = brackets[domain.Classification]{
	steps: []bracket[domain.Classification]{
		{FloorGenius, domain.Classification{Tier: "genius", Label: "Genius", Description: "Exceptional cognitive abilities"}},
		{FloorVerySuperior, domain.Classification{Tier: "very-superior", Label: "Very Superior", Description: "Top 2% of the population"}},
		{FloorSuperior, domain.Classification{Tier: "superior", Label: "Superior", Description: "Top 9% of the population"}},
		{FloorHighAverage, domain.Classification{Tier: "high-average", Label: "High Average", Description: "Top 25% of the population"}},
		{FloorAverage, domain.Classification{Tier: "average", Label: "Average", Description: "Middle 50% of the population"}},
		{FloorLowAverage, domain.Classification{Tier: "low-average", Label: "Low Average", Description: "May require additional time for complex tasks"}},
		{FloorBorderline, domain.Classification{Tier: "borderline", Label: "Borderline", Description: "May benefit from additional support"}},
	},
	fallback: domain.Classification{Tier: "below-average", Label: "Below Average", Description: "Significant cognitive challenges"},
}

// Classify maps any integer IQ to exactly one tier. Lower bounds are inclusive.
func Classify(iq int) domain.Classification {
	return classifications.resolve(iq)
}

var percentiles = map[int]float64{
	145: 99.9,
	140: 99.6,
	135: 99,
	130: 98,
	125: 95,
	120: 91,
	115: 84,
	110: 75,
	105: 63,
	100: 50,
	95:  37,
	90:  25,
	85:  16,
	80:  9,
	75:  5,
	70:  2,
}

// Percentile looks up the population percentile for the IQ rounded to the
// nearest multiple of five. Keys outside the table fall back to a linear
// approximation around 50, which is not monotonic at the table edges.
func Percentile(iq int) float64 {
	key := int(math.Round(float64(iq)/5)) * 5
	if p, ok := percentiles[key]; ok {
		return p
	}
	if iq > 100 {
		return float64(50 + (iq - 100))
	}
	return float64(50 - (100 - iq))
}

// FormatClock renders seconds as mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
