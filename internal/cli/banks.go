package cli

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"intellitest/internal/bank"
	"intellitest/internal/config"
	"intellitest/internal/domain"
	pgbanks "intellitest/internal/infra/postgres"
)

// NewBanksCmd groups question bank maintenance commands.
func NewBanksCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "Inspect, validate and seed question banks",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the banks of the configured source",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withLoader(cmd.Context(), *configPath, func(loader bank.Loader) error {
					ids, err := loader.ListBanks(cmd.Context())
					if err != nil {
						return err
					}
					for _, id := range ids {
						fmt.Fprintln(cmd.OutOrStdout(), id)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check every bank of the configured source",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withLoader(cmd.Context(), *configPath, func(loader bank.Loader) error {
					return validateBanks(cmd, loader)
				})
			},
		},
		newSeedCmd(configPath),
	)
	return cmd
}

func newSeedCmd(configPath *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy banks into Postgres (embedded banks unless --dir is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}
			var loader bank.Loader = bank.NewEmbeddedLoader()
			if dir != "" {
				loader = bank.NewDirLoader(dir)
			}
			banks, err := loadAll(cmd.Context(), loader)
			if err != nil {
				return err
			}
			db := openBun(cfg.Postgres.URL)
			defer db.Close()
			if err := pgbanks.SeedBanks(cmd.Context(), db, banks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d banks\n", len(banks))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of bank documents to seed")
	return cmd
}

func withLoader(ctx context.Context, configPath string, fn func(bank.Loader) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	deps, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.close()
	return fn(deps.bankLoader(cfg))
}

func validateBanks(cmd *cobra.Command, loader bank.Loader) error {
	ids, err := loader.ListBanks(cmd.Context())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return domain.ErrNoBanks
	}
	failed := 0
	for _, id := range ids {
		b, err := loader.LoadBank(cmd.Context(), id)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", id, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%d questions)\n", id, b.Size())
	}
	if failed > 0 {
		return errors.Errorf("%d of %d banks failed validation", failed, len(ids))
	}
	return nil
}

func loadAll(ctx context.Context, loader bank.Loader) ([]domain.QuestionBank, error) {
	ids, err := loader.ListBanks(ctx)
	if err != nil {
		return nil, err
	}
	banks := make([]domain.QuestionBank, 0, len(ids))
	for _, id := range ids {
		b, err := loader.LoadBank(ctx, id)
		if err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, nil
}
