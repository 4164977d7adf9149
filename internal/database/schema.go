package database

import (
	"context"
	"fmt"
)

// schema is applied in order at startup. Every statement is idempotent.
// One table per entity. References to users are plain uuid columns without
// foreign keys: deleting a user touches only the users table, and readers
// leave references to missing users unpopulated.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                UUID PRIMARY KEY,
		name              TEXT NOT NULL,
		email             TEXT NOT NULL,
		password_hash     TEXT NOT NULL,
		role              TEXT NOT NULL CHECK (role IN ('resident', 'admin', 'guard', 'service_provider')),
		house_number      TEXT NOT NULL DEFAULT '',
		services_offered  TEXT[] NOT NULL DEFAULT '{}',
		availability      BOOLEAN NOT NULL DEFAULT FALSE,
		assigned_house_no TEXT NOT NULL DEFAULT '',
		phone             TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE INDEX IF NOT EXISTS users_role_idx ON users (role)`,

	`CREATE TABLE IF NOT EXISTS complaints (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL,
		issue      TEXT NOT NULL,
		urgency    TEXT NOT NULL CHECK (urgency IN ('low', 'medium', 'high')),
		status     TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'in_progress', 'resolved', 'cancelled')),
		image      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS complaints_user_idx ON complaints (user_id)`,

	`CREATE TABLE IF NOT EXISTS gate_passes (
		id             UUID PRIMARY KEY,
		resident_id    UUID NOT NULL,
		visitor_name   TEXT NOT NULL,
		visit_purpose  TEXT NOT NULL,
		visit_time     TIMESTAMPTZ NOT NULL,
		guard_comments TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS gate_passes_resident_idx ON gate_passes (resident_id)`,
	`CREATE INDEX IF NOT EXISTS gate_passes_visit_time_idx ON gate_passes (visit_time)`,

	`CREATE TABLE IF NOT EXISTS service_bookings (
		id                 UUID PRIMARY KEY,
		resident_id        UUID NOT NULL,
		serviceprovider_id UUID NOT NULL,
		service            TEXT NOT NULL,
		date_time          TIMESTAMPTZ NOT NULL,
		status             TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS service_bookings_resident_idx ON service_bookings (resident_id)`,
	`CREATE INDEX IF NOT EXISTS service_bookings_provider_idx ON service_bookings (serviceprovider_id)`,

	`CREATE TABLE IF NOT EXISTS broadcasts (
		id         UUID PRIMARY KEY,
		admin_id   UUID,
		title      TEXT NOT NULL,
		message    TEXT NOT NULL,
		type       TEXT NOT NULL DEFAULT 'info' CHECK (type IN ('info', 'warning', 'error')),
		category   TEXT NOT NULL CHECK (category IN ('post', 'event')),
		image      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS polls (
		id         UUID PRIMARY KEY,
		question   TEXT NOT NULL,
		options    JSONB NOT NULL,
		votes      JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_by UUID,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS polls_expires_idx ON polls (expires_at)`,

	`CREATE TABLE IF NOT EXISTS guard_tasks (
		id          UUID PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		assigned_to UUID NOT NULL,
		created_by  UUID,
		status      TEXT NOT NULL DEFAULT 'assigned' CHECK (status IN ('assigned', 'in_progress', 'completed', 'achieved')),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS guard_tasks_assignee_idx ON guard_tasks (assigned_to)`,

	`CREATE TABLE IF NOT EXISTS sos_alerts (
		id           UUID PRIMARY KEY,
		user_id      UUID NOT NULL,
		type         TEXT NOT NULL CHECK (type IN ('medical', 'fire', 'security')),
		is_resolved  BOOLEAN NOT NULL DEFAULT FALSE,
		responded_by UUID,
		resolved_at  TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Databases created before references became weak
	`ALTER TABLE complaints DROP CONSTRAINT IF EXISTS complaints_user_id_fkey`,
	`ALTER TABLE gate_passes DROP CONSTRAINT IF EXISTS gate_passes_resident_id_fkey`,
	`ALTER TABLE service_bookings DROP CONSTRAINT IF EXISTS service_bookings_resident_id_fkey`,
	`ALTER TABLE service_bookings DROP CONSTRAINT IF EXISTS service_bookings_serviceprovider_id_fkey`,
	`ALTER TABLE broadcasts DROP CONSTRAINT IF EXISTS broadcasts_admin_id_fkey`,
	`ALTER TABLE polls DROP CONSTRAINT IF EXISTS polls_created_by_fkey`,
	`ALTER TABLE guard_tasks DROP CONSTRAINT IF EXISTS guard_tasks_assigned_to_fkey`,
	`ALTER TABLE guard_tasks DROP CONSTRAINT IF EXISTS guard_tasks_created_by_fkey`,
	`ALTER TABLE sos_alerts DROP CONSTRAINT IF EXISTS sos_alerts_user_id_fkey`,
	`ALTER TABLE sos_alerts DROP CONSTRAINT IF EXISTS sos_alerts_responded_by_fkey`,
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db DB) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
