package scoring

import (
	"time"

	"intellitest/internal/domain"
)

// BuildResult assembles the full score report. It is the only entry point the
// session layer uses; completedAt is supplied by the caller to keep it pure.
func BuildResult(bank domain.QuestionBank, answers domain.AnswerSet, elapsedSeconds int, profile domain.Profile, completedAt time.Time) domain.ScoreResult {
	raw := RawScore(bank, answers)
	iq := ScoreToIQ(raw)
	return domain.ScoreResult{
		TestVersion:       bank.ID,
		RawScore:          raw,
		TotalQuestions:    bank.Size(),
		IQ:                iq,
		Classification:    Classify(iq),
		Percentile:        Percentile(iq),
		SectionScores:     SectionScores(bank, answers),
		Breakdown:         DomainBreakdown(bank, answers),
		Careers:           CareerRecommendations(iq),
		Comparisons:       ComparisonData(iq),
		FamousComparisons: FamousComparisons(iq),
		RealWorldMeaning:  RealWorldMeaning(iq),
		TimeSpent:         elapsedSeconds,
		CompletedAt:       completedAt.UTC(),
		Profile:           profile,
	}
}
