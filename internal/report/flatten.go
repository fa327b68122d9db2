// Package report renders finished results for delivery outside the service:
// a flat key-value summary, a multi-sheet workbook and email.
package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"intellitest/internal/domain"
	"intellitest/internal/scoring"
)

// Flatten renders a result as a flat document with dotted keys.
func Flatten(r domain.ScoreResult) map[string]string {
	out := map[string]string{
		"testVersion":           r.TestVersion,
		"rawScore":              strconv.Itoa(r.RawScore),
		"totalQuestions":        strconv.Itoa(r.TotalQuestions),
		"iq":                    strconv.Itoa(r.IQ),
		"classification.tier":   r.Classification.Tier,
		"classification.label":  r.Classification.Label,
		"classification.detail": r.Classification.Description,
		"percentile":            strconv.FormatFloat(r.Percentile, 'f', -1, 64),
		"timeSpent":             scoring.FormatClock(r.TimeSpent),
		"completedAt":           r.CompletedAt.UTC().Format(time.RFC3339),
		"careers.title":         r.Careers.Title,
		"careers.insight":       r.Careers.Insight,
		"famous.range":          r.FamousComparisons.Range,
		"famous.professionAvg":  r.FamousComparisons.ProfessionAvg,
		"meaning.learning":      r.RealWorldMeaning.Learning,
		"meaning.problems":      r.RealWorldMeaning.Problems,
		"meaning.work":          r.RealWorldMeaning.Work,
		"meaning.education":     r.RealWorldMeaning.Education,
		"profile.email":         r.Profile.Email,
	}
	for i, d := range r.Breakdown {
		prefix := "domains." + strconv.Itoa(i+1) + "."
		out[prefix+"key"] = string(d.Domain)
		out[prefix+"name"] = d.Name
		out[prefix+"score"] = strconv.Itoa(d.Correct) + "/" + strconv.Itoa(d.Total)
		out[prefix+"percentage"] = strconv.Itoa(d.Percentage)
	}
	for i, c := range r.Careers.Careers {
		out["careers."+strconv.Itoa(i+1)] = c.Name + " (" + strconv.Itoa(c.Match) + "%)"
	}
	for name, g := range groups(r.Comparisons) {
		out["comparisons."+name+".average"] = strconv.Itoa(g.Average)
		out["comparisons."+name+".position"] = string(g.YourPosition)
	}
	for i, p := range r.FamousComparisons.People {
		out["famous."+strconv.Itoa(i+1)] = p.Name + ", " + p.Field + " (" + p.EstimatedIQ + ")"
	}
	return out
}

// Text renders the flat document one "key: value" line per entry, sorted by key.
func Text(r domain.ScoreResult) string {
	flat := Flatten(r)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(flat[k])
		b.WriteString("\n")
	}
	return b.String()
}

func groups(c domain.Comparisons) map[string]domain.GroupComparison {
	return map[string]domain.GroupComparison{
		"collegeGraduates":    c.CollegeGraduates,
		"generalPopulation":   c.GeneralPopulation,
		"professionalWorkers": c.ProfessionalWorkers,
	}
}
