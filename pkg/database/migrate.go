package database

import (
	"context"
	"fmt"
	"log/slog"
)

// schema declares the phonebook tables. The constraints here are load
// bearing: unique indexes settle races on organization names, private
// numbers and duplicate grants, the CHECK backs the at-least-one-number
// rule, and ON DELETE CASCADE keeps workers and editing rights from
// outliving their organization. Phone columns fit the longest number the
// E.123 check accepts: a plus, 15 digits and 14 separating spaces.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		email VARCHAR(254) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name VARCHAR(150) NOT NULL DEFAULT '',
		last_name VARCHAR(150) NOT NULL DEFAULT '',
		is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(256) NOT NULL UNIQUE,
		address VARCHAR(256) NOT NULL,
		description TEXT,
		creator_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS editing_rights (
		id BIGSERIAL PRIMARY KEY,
		editor_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		organization_id BIGINT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		CONSTRAINT org_editors UNIQUE (editor_id, organization_id)
	)`,
	`CREATE TABLE IF NOT EXISTS workers (
		id BIGSERIAL PRIMARY KEY,
		full_name VARCHAR(60) NOT NULL,
		position VARCHAR(256) NOT NULL,
		work_number VARCHAR(30),
		private_number VARCHAR(30) UNIQUE,
		fax VARCHAR(30),
		organization_id BIGINT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		CONSTRAINT workers_number_check CHECK (
			work_number IS NOT NULL OR private_number IS NOT NULL OR fax IS NOT NULL
		)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_organizations_name ON organizations(name)`,
	`CREATE INDEX IF NOT EXISTS idx_workers_organization ON workers(organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_editing_rights_organization ON editing_rights(organization_id)`,
}

// Migrate creates the schema if it does not exist yet.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	cp.logger.Info("database schema up to date", slog.Int("statements", len(schema)))
	return nil
}
