package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"intellitest/internal/bank"
	"intellitest/internal/domain"
)

// BankRow is the question_banks table row.
type BankRow struct {
	bun.BaseModel `bun:"table:question_banks"`

	ID        string          `bun:"id,pk"`
	Data      json.RawMessage `bun:"data,type:jsonb"`
	UpdatedAt time.Time       `bun:"updated_at"`
}

// SeedBanks upserts banks into question_banks. Each bank is checked before it
// is written.
func SeedBanks(ctx context.Context, db *bun.DB, banks []domain.QuestionBank) error {
	if len(banks) == 0 {
		return nil
	}
	rows := make([]BankRow, 0, len(banks))
	now := time.Now().UTC()
	for _, b := range banks {
		if err := bank.CheckIntegrity(b); err != nil {
			return err
		}
		raw, err := bank.Encode(b)
		if err != nil {
			return err
		}
		rows = append(rows, BankRow{ID: b.ID, Data: raw, UpdatedAt: now})
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "seed banks")
	}
	glog.Infof("seeded %d question banks", len(rows))
	return nil
}
