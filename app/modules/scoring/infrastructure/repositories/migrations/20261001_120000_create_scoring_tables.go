package scoringmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating scoring tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS console_rounds (
					id BIGSERIAL PRIMARY KEY,
					scope TEXT NOT NULL,
					ordinal INTEGER NOT NULL,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					metadata JSONB NOT NULL DEFAULT '{}',
					state TEXT NOT NULL,
					frozen BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT console_rounds_scope_ordinal_key UNIQUE (scope, ordinal) DEFERRABLE INITIALLY DEFERRED
				);
			`); err != nil {
				return fmt.Errorf("failed to create console_rounds: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS console_participants (
					id BIGSERIAL PRIMARY KEY,
					scope TEXT NOT NULL,
					name TEXT NOT NULL,
					status TEXT NOT NULL,
					eliminated_in_round BIGINT REFERENCES console_rounds(id) ON DELETE SET NULL
				);
				CREATE INDEX IF NOT EXISTS idx_console_participants_scope ON console_participants(scope);

				CREATE TABLE IF NOT EXISTS console_attendance (
					round_id BIGINT NOT NULL REFERENCES console_rounds(id) ON DELETE CASCADE,
					participant_id BIGINT NOT NULL REFERENCES console_participants(id) ON DELETE CASCADE,
					present BOOLEAN NOT NULL,
					PRIMARY KEY (round_id, participant_id)
				);

				CREATE TABLE IF NOT EXISTS console_scores (
					round_id BIGINT NOT NULL REFERENCES console_rounds(id) ON DELETE CASCADE,
					participant_id BIGINT NOT NULL REFERENCES console_participants(id) ON DELETE CASCADE,
					criterion TEXT NOT NULL,
					value DOUBLE PRECISION NOT NULL,
					PRIMARY KEY (round_id, participant_id, criterion)
				);

				CREATE TABLE IF NOT EXISTS console_panels (
					round_id BIGINT NOT NULL REFERENCES console_rounds(id) ON DELETE CASCADE,
					panel_id BIGINT NOT NULL,
					name TEXT NOT NULL DEFAULT '',
					judges TEXT[],
					PRIMARY KEY (round_id, panel_id)
				);

				CREATE TABLE IF NOT EXISTS console_panel_assignments (
					round_id BIGINT NOT NULL REFERENCES console_rounds(id) ON DELETE CASCADE,
					participant_id BIGINT NOT NULL REFERENCES console_participants(id) ON DELETE CASCADE,
					panel_id BIGINT NOT NULL,
					PRIMARY KEY (round_id, participant_id)
				);

				CREATE TABLE IF NOT EXISTS console_event_flags (
					scope TEXT PRIMARY KEY,
					flags JSONB NOT NULL DEFAULT '{}',
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create scoring tables: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping scoring tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS console_event_flags;
			DROP TABLE IF EXISTS console_panel_assignments;
			DROP TABLE IF EXISTS console_panels;
			DROP TABLE IF EXISTS console_scores;
			DROP TABLE IF EXISTS console_attendance;
			DROP TABLE IF EXISTS console_participants;
			DROP TABLE IF EXISTS console_rounds;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop scoring tables: %w", err)
		}
		return nil
	})
}
