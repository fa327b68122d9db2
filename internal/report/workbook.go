package report

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"intellitest/internal/domain"
	"intellitest/internal/scoring"
)

// Sheet names of the workbook, in tab order.
const (
	SheetOverview    = "Overview"
	SheetDomains     = "Domains"
	SheetCareers     = "Careers"
	SheetComparisons = "Comparisons"
	SheetMeaning     = "Meaning"
)

// Workbook lays a result out as one sheet per results tab. The caller owns
// the returned file and must Close it.
func Workbook(r domain.ScoreResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetOverview); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "rename sheet")
	}
	for _, name := range []string{SheetDomains, SheetCareers, SheetComparisons, SheetMeaning} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "create sheet %s", name)
		}
	}

	writeRows(f, SheetOverview, [][]any{
		{"Field", "Value"},
		{"Test version", r.TestVersion},
		{"Raw score", r.RawScore},
		{"Questions", r.TotalQuestions},
		{"IQ", r.IQ},
		{"Classification", r.Classification.Label},
		{"Description", r.Classification.Description},
		{"Percentile", r.Percentile},
		{"Time spent", scoring.FormatClock(r.TimeSpent)},
		{"Completed at", r.CompletedAt.UTC().Format("2006-01-02 15:04:05")},
	})

	domains := [][]any{{"Domain", "Correct", "Total", "Percentage", "Description"}}
	for _, d := range r.Breakdown {
		domains = append(domains, []any{d.Name, d.Correct, d.Total, d.Percentage, d.Description})
	}
	writeRows(f, SheetDomains, domains)

	careers := [][]any{{r.Careers.Title, "Match"}}
	for _, c := range r.Careers.Careers {
		careers = append(careers, []any{c.Name, c.Match})
	}
	careers = append(careers, []any{}, []any{"Insight", r.Careers.Insight})
	writeRows(f, SheetCareers, careers)

	comparisons := [][]any{{"Group", "Average", "Your position"}}
	for _, row := range []struct {
		name string
		g    domain.GroupComparison
	}{
		{"College graduates", r.Comparisons.CollegeGraduates},
		{"General population", r.Comparisons.GeneralPopulation},
		{"Professional workers", r.Comparisons.ProfessionalWorkers},
	} {
		comparisons = append(comparisons, []any{row.name, row.g.Average, string(row.g.YourPosition)})
	}
	comparisons = append(comparisons, []any{}, []any{"Range", r.FamousComparisons.Range}, []any{"Name", "Field", "Estimated IQ"})
	for _, p := range r.FamousComparisons.People {
		comparisons = append(comparisons, []any{p.Name, p.Field, p.EstimatedIQ})
	}
	writeRows(f, SheetComparisons, comparisons)

	writeRows(f, SheetMeaning, [][]any{
		{"Area", "Meaning"},
		{"Learning", r.RealWorldMeaning.Learning},
		{"Problem solving", r.RealWorldMeaning.Problems},
		{"Work", r.RealWorldMeaning.Work},
		{"Education", r.RealWorldMeaning.Education},
	})

	for _, name := range f.GetSheetList() {
		_ = f.SetColWidth(name, "A", "E", 24)
	}
	return f, nil
}

// WriteWorkbook streams the workbook of r to w.
func WriteWorkbook(w io.Writer, r domain.ScoreResult) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) {
	for i, values := range rows {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
}
