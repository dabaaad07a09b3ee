package auditmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating audit log table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS console_audit_log (
					id BIGSERIAL PRIMARY KEY,
					scope TEXT NOT NULL,
					source TEXT NOT NULL,
					action TEXT NOT NULL,
					round_id BIGINT,
					label TEXT NOT NULL DEFAULT '',
					outcome TEXT NOT NULL DEFAULT '',
					error TEXT NOT NULL DEFAULT '',
					undoable BOOLEAN NOT NULL DEFAULT FALSE,
					correlation_id TEXT NOT NULL DEFAULT '',
					occurred_at TIMESTAMPTZ NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
				);

				CREATE INDEX IF NOT EXISTS idx_console_audit_log_scope_time
					ON console_audit_log (scope, occurred_at DESC, id DESC);
			`); err != nil {
				return fmt.Errorf("failed to create console_audit_log: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping audit log table...")

		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS console_audit_log`)
		return err
	})
}
