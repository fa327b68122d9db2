package scoring

import (
	"math"
	"sort"

	"intellitest/internal/domain"
)

type strength struct {
	name        string
	icon        string
	description string
	abilities   []string
}

var strengths = map[domain.Domain]strength{
	domain.Verbal: {
		name:        "Verbal Intelligence",
		icon:        "📖",
		description: "Excellent vocabulary, reading comprehension, and verbal communication skills.",
		abilities:   []string{"Written Communication", "Reading Comprehension", "Vocabulary", "Language Learning"},
	},
	domain.Numerical: {
		name:        "Mathematical Intelligence",
		icon:        "🔢",
		description: "Strong numerical reasoning, pattern recognition, and mathematical problem-solving.",
		abilities:   []string{"Mental Math", "Data Analysis", "Pattern Recognition", "Logical Sequencing"},
	},
	domain.Spatial: {
		name:        "Spatial Intelligence",
		icon:        "🎨",
		description: "Excellent visualization, mental rotation, and spatial awareness abilities.",
		abilities:   []string{"3D Visualization", "Mental Rotation", "Map Reading", "Design Thinking"},
	},
	domain.Logical: {
		name:        "Logical Intelligence",
		icon:        "🧩",
		description: "Strong deductive reasoning, problem-solving, and analytical thinking.",
		abilities:   []string{"Critical Thinking", "Problem Solving", "Deductive Reasoning", "Strategic Planning"},
	},
}

// SectionScores tallies correct/total per domain using each question's domain tag.
func SectionScores(bank domain.QuestionBank, answers domain.AnswerSet) map[domain.Domain]domain.DomainTally {
	tallies := make(map[domain.Domain]domain.DomainTally, len(domain.Domains))
	for _, d := range domain.Domains {
		tallies[d] = domain.DomainTally{}
	}
	for i, q := range bank.Flatten() {
		t, ok := tallies[q.Domain]
		if !ok {
			continue
		}
		t.Total++
		if answers.Answered(i) && answers[i] == q.CorrectAnswer {
			t.Correct++
		}
		tallies[q.Domain] = t
	}
	return tallies
}

// DomainBreakdown ranks the four domains by percentage correct, descending.
// Ties keep domain order. A domain without questions scores 0%.
func DomainBreakdown(bank domain.QuestionBank, answers domain.AnswerSet) []domain.DomainScore {
	tallies := SectionScores(bank, answers)
	out := make([]domain.DomainScore, 0, len(domain.Domains))
	for _, d := range domain.Domains {
		t := tallies[d]
		s := strengths[d]
		out = append(out, domain.DomainScore{
			Domain:      d,
			Name:        s.name,
			Icon:        s.icon,
			Description: s.description,
			Abilities:   append([]string(nil), s.abilities...),
			Correct:     t.Correct,
			Total:       t.Total,
			Percentage:  percentage(t.Correct, t.Total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percentage > out[j].Percentage
	})
	return out
}

func percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
