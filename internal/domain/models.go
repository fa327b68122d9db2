package domain

import "time"

// Domain is one of the four cognitive categories a bank is partitioned into.
type Domain string

const (
	Verbal    Domain = "verbal"
	Numerical Domain = "numerical"
	Spatial   Domain = "spatial"
	Logical   Domain = "logical"
)

// Domains lists every domain in the fixed flattening order.
var Domains = []Domain{Verbal, Numerical, Spatial, Logical}

// Valid reports whether d is one of the four known domains.
func (d Domain) Valid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// OptionsPerQuestion is the number of choices every question carries.
const OptionsPerQuestion = 4

// Question models a multiple-choice question with exactly one correct option.
type Question struct {
	Text          string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correct_answer" yaml:"correct_answer"`
	Domain        Domain   `json:"type" yaml:"type"`
}

// QuestionBank is an immutable test variant shared read-only across sessions.
type QuestionBank struct {
	ID       string                `json:"test_id"`
	Sections map[Domain][]Question `json:"sections"`
}

// Flatten concatenates the sections in domain order.
func (b QuestionBank) Flatten() []Question {
	total := 0
	for _, d := range Domains {
		total += len(b.Sections[d])
	}
	out := make([]Question, 0, total)
	for _, d := range Domains {
		out = append(out, b.Sections[d]...)
	}
	return out
}

// Size is the number of questions across all domains.
func (b QuestionBank) Size() int {
	n := 0
	for _, d := range Domains {
		n += len(b.Sections[d])
	}
	return n
}

// AnswerSet maps a flattened position to the selected option; "" means unanswered.
type AnswerSet []string

// NewAnswerSet returns n unanswered positions.
func NewAnswerSet(n int) AnswerSet {
	return make(AnswerSet, n)
}

// Answered reports whether position i holds a selection.
func (a AnswerSet) Answered(i int) bool {
	return i >= 0 && i < len(a) && a[i] != ""
}

// Count returns how many positions hold a selection.
func (a AnswerSet) Count() int {
	n := 0
	for _, v := range a {
		if v != "" {
			n++
		}
	}
	return n
}

// Clone returns an independent copy.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	copy(out, a)
	return out
}

// Classification is the named IQ bracket.
type Classification struct {
	Tier        string `json:"tier"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// DomainTally counts correct answers among the questions tagged with one domain.
type DomainTally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// DomainScore is a ranked entry of the per-domain breakdown.
type DomainScore struct {
	Domain      Domain   `json:"key"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Description string   `json:"highDesc"`
	Abilities   []string `json:"abilities"`
	Correct     int      `json:"score"`
	Total       int      `json:"total"`
	Percentage  int      `json:"percentage"`
}

// Career is a suggested occupation with a match rating.
type Career struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Match int    `json:"match"`
}

// CareerRecommendations is the career narrative for an IQ bracket.
type CareerRecommendations struct {
	Title   string   `json:"title"`
	Careers []Career `json:"careers"`
	Insight string   `json:"insight"`
}

// Position describes where an IQ sits relative to a group average.
type Position string

const (
	Above Position = "above"
	At    Position = "at"
	Below Position = "below"
)

// GroupComparison places the IQ against one population group.
type GroupComparison struct {
	Average      int      `json:"average"`
	YourPosition Position `json:"yourPosition"`
}

// Comparisons holds the population group comparisons.
type Comparisons struct {
	CollegeGraduates    GroupComparison `json:"collegeGraduates"`
	GeneralPopulation   GroupComparison `json:"generalPopulation"`
	ProfessionalWorkers GroupComparison `json:"professionalWorkers"`
}

// NotablePerson is an entry of the famous comparisons.
type NotablePerson struct {
	Name        string `json:"name"`
	Field       string `json:"field"`
	EstimatedIQ string `json:"estimatedIQ"`
}

// FamousComparisons lists notable people in the IQ range.
type FamousComparisons struct {
	Range         string          `json:"range"`
	People        []NotablePerson `json:"people"`
	ProfessionAvg string          `json:"professionAvg"`
}

// RealWorldMeaning explains the IQ in everyday terms.
type RealWorldMeaning struct {
	Learning  string `json:"learning"`
	Problems  string `json:"problems"`
	Work      string `json:"work"`
	Education string `json:"education"`
}

// ScoreResult is the immutable outcome of scoring one session.
type ScoreResult struct {
	TestVersion       string                 `json:"testVersion"`
	RawScore          int                    `json:"rawScore"`
	TotalQuestions    int                    `json:"totalQuestions"`
	IQ                int                    `json:"iq"`
	Classification    Classification         `json:"classification"`
	Percentile        float64                `json:"percentile"`
	SectionScores     map[Domain]DomainTally `json:"sectionScores"`
	Breakdown         []DomainScore          `json:"cognitiveStrengths"`
	Careers           CareerRecommendations  `json:"careers"`
	Comparisons       Comparisons            `json:"comparisons"`
	FamousComparisons FamousComparisons      `json:"famousComparisons"`
	RealWorldMeaning  RealWorldMeaning       `json:"realWorldMeaning"`
	TimeSpent         int                    `json:"timeSpent"`
	CompletedAt       time.Time              `json:"completedAt"`
	Profile           Profile                `json:"userData"`
}

// Submission hands a result to the consumer along with how it was triggered.
type Submission struct {
	SessionID string      `json:"sessionId"`
	Result    ScoreResult `json:"result"`
	Auto      bool        `json:"auto"`
}
