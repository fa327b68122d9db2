package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intellitest/internal/domain"
)

func uniformBank(perDomain int) domain.QuestionBank {
	bank := domain.QuestionBank{ID: "test-x", Sections: map[domain.Domain][]domain.Question{}}
	for _, d := range domain.Domains {
		for i := 0; i < perDomain; i++ {
			bank.Sections[d] = append(bank.Sections[d], domain.Question{
				Text:          fmt.Sprintf("%s %d", d, i),
				Options:       []string{"A", "B", "C", "D"},
				CorrectAnswer: "A",
				Domain:        d,
			})
		}
	}
	return bank
}

func answerAll(n int, value string) domain.AnswerSet {
	a := domain.NewAnswerSet(n)
	for i := range a {
		a[i] = value
	}
	return a
}

func TestScoreToIQAnchors(t *testing.T) {
	assert.Equal(t, 100, ScoreToIQ(30))
	assert.Equal(t, 70, ScoreToIQ(0))
	assert.Equal(t, 145, ScoreToIQ(60))
	assert.Equal(t, 102, ScoreToIQ(31))
	assert.Equal(t, 99, ScoreToIQ(29))
}

func TestScoreToIQClampsOutOfRangeInput(t *testing.T) {
	assert.Equal(t, 70, ScoreToIQ(-500))
	assert.Equal(t, 145, ScoreToIQ(61))
	assert.Equal(t, 145, ScoreToIQ(1_000_000))
}

func TestScoreToIQMonotonicAndBounded(t *testing.T) {
	prev := ScoreToIQ(0)
	for raw := 0; raw <= 60; raw++ {
		iq := ScoreToIQ(raw)
		require.GreaterOrEqual(t, iq, prev, "raw %d", raw)
		require.GreaterOrEqual(t, iq, MinIQ)
		require.LessOrEqual(t, iq, MaxIQ)
		prev = iq
	}
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		iq    int
		label string
	}{
		{160, "Genius"},
		{145, "Genius"},
		{144, "Very Superior"},
		{130, "Very Superior"},
		{129, "Superior"},
		{120, "Superior"},
		{119, "High Average"},
		{110, "High Average"},
		{109, "Average"},
		{90, "Average"},
		{89, "Low Average"},
		{80, "Low Average"},
		{79, "Borderline"},
		{70, "Borderline"},
		{69, "Below Average"},
		{-10, "Below Average"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.label, Classify(tc.iq).Label, "iq %d", tc.iq)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	for iq := 70; iq <= 160; iq++ {
		c := Classify(iq)
		require.NotEmpty(t, c.Label, "iq %d", iq)
		require.NotEmpty(t, c.Tier, "iq %d", iq)
	}
}

func TestPercentileTable(t *testing.T) {
	assert.Equal(t, 50.0, Percentile(100))
	assert.Equal(t, 99.9, Percentile(145))
	assert.Equal(t, 2.0, Percentile(70))
	assert.Equal(t, 98.0, Percentile(131)) // rounds to 130
	assert.Equal(t, 95.0, Percentile(123)) // rounds to 125
	assert.Equal(t, 2.0, Percentile(68))   // rounds to 70
}

// The fallback outside the tabulated keys is an approximation; these cases pin
// its current behavior, including the discontinuity below 70.
func TestPercentileFallbackApproximation(t *testing.T) {
	assert.Equal(t, 100.0, Percentile(150))
	assert.Equal(t, 10.0, Percentile(60))
	assert.Equal(t, 17.0, Percentile(67))
	assert.Greater(t, Percentile(67), Percentile(68), "fallback is not monotonic at the lower table edge")
}

func TestPercentileMonotonicInsideReportableRange(t *testing.T) {
	prev := Percentile(MinIQ)
	for iq := MinIQ; iq <= MaxIQ; iq++ {
		p := Percentile(iq)
		require.GreaterOrEqual(t, p, prev, "iq %d", iq)
		prev = p
	}
}

func TestRawScoreIgnoresUnanswered(t *testing.T) {
	bank := uniformBank(15)
	answers := domain.NewAnswerSet(bank.Size())
	assert.Equal(t, 0, RawScore(bank, answers))

	answers[0] = "A"
	answers[1] = "B"
	answers[59] = "A"
	assert.Equal(t, 2, RawScore(bank, answers))
}

func TestRawScoreShortAnswerSet(t *testing.T) {
	bank := uniformBank(15)
	assert.Equal(t, 3, RawScore(bank, answerAll(3, "A")))
}

func TestDomainBreakdownAllCorrectKeepsDomainOrder(t *testing.T) {
	bank := uniformBank(15)
	got := DomainBreakdown(bank, answerAll(60, "A"))
	require.Len(t, got, 4)
	for i, d := range domain.Domains {
		assert.Equal(t, d, got[i].Domain)
		assert.Equal(t, 100, got[i].Percentage)
		assert.Equal(t, 15, got[i].Total)
	}
}

func TestDomainBreakdownRanksDescending(t *testing.T) {
	bank := uniformBank(15)
	answers := domain.NewAnswerSet(60)
	// logical: 15, spatial: 5, verbal: 5, numerical: 0
	for i := 45; i < 60; i++ {
		answers[i] = "A"
	}
	for i := 30; i < 35; i++ {
		answers[i] = "A"
	}
	for i := 0; i < 5; i++ {
		answers[i] = "A"
	}
	got := DomainBreakdown(bank, answers)
	order := []domain.Domain{got[0].Domain, got[1].Domain, got[2].Domain, got[3].Domain}
	assert.Equal(t, []domain.Domain{domain.Logical, domain.Verbal, domain.Spatial, domain.Numerical}, order)
	assert.Equal(t, 33, got[1].Percentage)
	assert.Equal(t, "Logical Intelligence", got[0].Name)
}

func TestDomainBreakdownEmptyDomainIsZero(t *testing.T) {
	bank := uniformBank(2)
	delete(bank.Sections, domain.Spatial)
	got := DomainBreakdown(bank, answerAll(6, "A"))
	for _, s := range got {
		if s.Domain == domain.Spatial {
			assert.Equal(t, 0, s.Total)
			assert.Equal(t, 0, s.Percentage)
			return
		}
	}
	t.Fatal("spatial missing from breakdown")
}

func TestNarrativesFollowTierFloors(t *testing.T) {
	assert.Equal(t, "Elite Professional Careers", CareerRecommendations(130).Title)
	assert.Equal(t, "Advanced Professional Careers", CareerRecommendations(129).Title)
	assert.Equal(t, "Professional & Skilled Careers", CareerRecommendations(110).Title)
	assert.Equal(t, "Skilled & Trade Careers", CareerRecommendations(90).Title)
	assert.Equal(t, "Practical & Hands-On Careers", CareerRecommendations(89).Title)
	assert.Len(t, CareerRecommendations(70).Careers, 6)

	assert.Equal(t, RealWorldMeaning(130), RealWorldMeaning(145))
	assert.NotEqual(t, RealWorldMeaning(129), RealWorldMeaning(130))
	assert.Equal(t, "Vocational training may be the best educational path.", RealWorldMeaning(85).Education)

	// every classification tier maps onto exactly one career bracket
	for iq := MinIQ; iq <= MaxIQ; iq++ {
		tier := Classify(iq).Tier
		title := CareerRecommendations(iq).Title
		switch tier {
		case "genius", "very-superior":
			require.Equal(t, "Elite Professional Careers", title, "iq %d", iq)
		case "superior":
			require.Equal(t, "Advanced Professional Careers", title, "iq %d", iq)
		case "high-average":
			require.Equal(t, "Professional & Skilled Careers", title, "iq %d", iq)
		case "average":
			require.Equal(t, "Skilled & Trade Careers", title, "iq %d", iq)
		default:
			require.Equal(t, "Practical & Hands-On Careers", title, "iq %d", iq)
		}
	}
}

func TestFamousComparisons(t *testing.T) {
	assert.Equal(t, "140+", FamousComparisons(140).Range)
	assert.Equal(t, "130-140", FamousComparisons(139).Range)
	assert.Equal(t, "100-110", FamousComparisons(100).Range)
	below := FamousComparisons(99)
	assert.Equal(t, "Below 100", below.Range)
	assert.NotNil(t, below.People)
	assert.Empty(t, below.People)
}

func TestComparisonData(t *testing.T) {
	c := ComparisonData(112)
	assert.Equal(t, domain.At, c.CollegeGraduates.YourPosition)
	assert.Equal(t, domain.Above, c.GeneralPopulation.YourPosition)
	assert.Equal(t, domain.At, c.ProfessionalWorkers.YourPosition)

	c = ComparisonData(94)
	assert.Equal(t, domain.Below, c.CollegeGraduates.YourPosition)
	assert.Equal(t, domain.Below, c.GeneralPopulation.YourPosition)
	assert.Equal(t, domain.Below, c.ProfessionalWorkers.YourPosition)
	assert.Equal(t, 112, c.ProfessionalWorkers.Average)
}

func TestBuildResultAllCorrect(t *testing.T) {
	bank := uniformBank(15)
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	profile := domain.Profile{Email: "ada@example.com"}

	res := BuildResult(bank, answerAll(60, "A"), 1200, profile, at)
	assert.Equal(t, "test-x", res.TestVersion)
	assert.Equal(t, 60, res.RawScore)
	assert.Equal(t, 60, res.TotalQuestions)
	assert.Equal(t, 145, res.IQ)
	assert.Equal(t, "Genius", res.Classification.Label)
	assert.Equal(t, 99.9, res.Percentile)
	assert.Equal(t, 1200, res.TimeSpent)
	assert.Equal(t, at, res.CompletedAt)
	assert.Equal(t, "ada@example.com", res.Profile.Email)
	assert.Equal(t, domain.DomainTally{Correct: 15, Total: 15}, res.SectionScores[domain.Verbal])
	assert.Len(t, res.Breakdown, 4)
}

func TestBuildResultDoesNotMutateAnswers(t *testing.T) {
	bank := uniformBank(15)
	answers := answerAll(60, "B")
	answers[3] = ""
	before := answers.Clone()
	_ = BuildResult(bank, answers, 0, domain.Profile{}, time.Now())
	assert.Equal(t, before, answers)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "60:00", FormatClock(3600))
	assert.Equal(t, "04:05", FormatClock(245))
	assert.Equal(t, "00:00", FormatClock(-3))
}
