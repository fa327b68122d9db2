package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"

	"intellitest/internal/bank"
	"intellitest/internal/domain"
)

// BankLoader loads question bank JSONB documents from Postgres. Documents go
// through the same validation as files, so a bad row is never served.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

func (l *BankLoader) LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE id=$1`, bankID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionBank{}, domain.ErrBankNotFound
	}
	if err != nil {
		return domain.QuestionBank{}, errors.Wrapf(err, "load bank %s", bankID)
	}
	b, err := bank.Parse(raw)
	if err != nil {
		return domain.QuestionBank{}, err
	}
	if b.ID != bankID {
		return domain.QuestionBank{}, &domain.DataIntegrityError{BankID: bankID, Reason: "row holds document " + b.ID}
	}
	return b, nil
}

func (l *BankLoader) ListBanks(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT id FROM question_banks ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list banks")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan bank id")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "list banks")
}
