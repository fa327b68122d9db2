package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"intellitest/internal/bank"
	"intellitest/internal/domain"
	"intellitest/internal/report"
	"intellitest/internal/scoring"
)

// NewScoreCmd scores a recorded answer sheet without running a session.
func NewScoreCmd(configPath *string) *cobra.Command {
	var (
		bankID  string
		elapsed int
		format  string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "score ANSWERS_FILE",
		Short: "Score an answers file (YAML or JSON list, one entry per question) against a bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "read answers")
			}
			var answers []string
			if err := yaml.Unmarshal(raw, &answers); err != nil {
				return errors.Wrap(err, "parse answers")
			}

			var result domain.ScoreResult
			err = withLoader(cmd.Context(), *configPath, func(loader bank.Loader) error {
				b, err := loader.LoadBank(cmd.Context(), bankID)
				if err != nil {
					return err
				}
				set, err := answerSet(answers, b.Size())
				if err != nil {
					return err
				}
				result = scoring.BuildResult(b, set, elapsed, domain.Profile{}, time.Now())
				return nil
			})
			if err != nil {
				return err
			}
			return writeScore(cmd, result, format, out)
		},
	}
	cmd.Flags().StringVar(&bankID, "bank", "", "bank id the answers were given on")
	cmd.Flags().IntVar(&elapsed, "elapsed", 0, "seconds spent on the test")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output file (required for xlsx)")
	_ = cmd.MarkFlagRequired("bank")
	return cmd
}

// answerSet pads a short sheet with unanswered entries.
func answerSet(answers []string, n int) (domain.AnswerSet, error) {
	if len(answers) > n {
		return nil, errors.Errorf("answers file has %d entries, bank has %d questions", len(answers), n)
	}
	set := domain.NewAnswerSet(n)
	copy(set, answers)
	return set, nil
}

func writeScore(cmd *cobra.Command, result domain.ScoreResult, format, out string) error {
	w := cmd.OutOrStdout()
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer f.Close()
		w = f
	}
	switch format {
	case "text":
		_, err := fmt.Fprint(w, report.Text(result))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "xlsx":
		if out == "" {
			return errors.New("--out is required for xlsx")
		}
		return report.WriteWorkbook(w, result)
	default:
		return errors.Errorf("unknown format %q", format)
	}
}
