package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the schema. Every statement is idempotent, so it is safe
// to run on each start.
func Migrate(ctx context.Context, m *TxManager) error {
	return m.RunInTransaction(ctx, func(ctx context.Context) error {
		// Simple protocol: several statements in one round-trip
		if _, err := m.GetTx(ctx).Conn().PgConn().Exec(ctx, schemaSQL).ReadAll(); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		return nil
	})
}
