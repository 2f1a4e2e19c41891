package cooling_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"coolstore/internal/domain/cooling"
	"coolstore/internal/infrastructure/storage/postgres"
)

// Seeder loads reference data. Rows that already exist are left untouched.
type Seeder struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchExecutor
}

// NewSeeder creates a seeder on top of txManager.
func NewSeeder(txManager *postgres.TxManager) *Seeder {
	return &Seeder{
		txManager: txManager,
		batch:     postgres.NewBatchExecutor(txManager),
	}
}

// Seed inserts sample kinds and trays in one transaction and returns the
// number of rows actually inserted.
func (s *Seeder) Seed(ctx context.Context, kinds []cooling.SampleKind, trays []cooling.Tray) (int64, error) {
	queries, err := seedQueries(kinds, trays)
	if err != nil {
		return 0, err
	}

	var inserted int64
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := s.batch.ExecuteBatch(ctx, queries)
		inserted = n
		return err
	})
	return inserted, err
}

func seedQueries(kinds []cooling.SampleKind, trays []cooling.Tray) ([]postgres.BatchQuery, error) {
	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	queries := make([]postgres.BatchQuery, 0, len(kinds)+len(trays))

	add := func(table string, row any, columns []string) error {
		sql, args, err := builder.
			Insert(table).
			Columns(columns...).
			Values(postgres.ValuesOf(row, columns)...).
			Suffix("ON CONFLICT DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("build %s seed: %w", table, err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
		return nil
	}

	kindColumns := postgres.ExtractDBColumns[cooling.SampleKind]()
	for _, k := range kinds {
		if err := add(sampleKindTable, k, kindColumns); err != nil {
			return nil, err
		}
	}

	trayColumns := postgres.ExtractDBColumns[cooling.Tray]()
	for _, t := range trays {
		if err := add(trayTable, t, trayColumns); err != nil {
			return nil, err
		}
	}
	return queries, nil
}
