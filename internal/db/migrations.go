package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS settings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		group_name VARCHAR(64) NOT NULL,
		key VARCHAR(128) NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		type VARCHAR(16) NOT NULL DEFAULT 'string',
		is_public BOOLEAN NOT NULL DEFAULT FALSE,
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_settings_group_key ON settings (group_name, key);`,
	`CREATE TABLE IF NOT EXISTS services (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		key VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		base_price NUMERIC(10,2) NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		configuration JSONB,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_services_key ON services (key);`,
	`CREATE TABLE IF NOT EXISTS pricing_rules (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		service_key VARCHAR(64) NOT NULL DEFAULT '',
		rule_type VARCHAR(16) NOT NULL,
		rule_key VARCHAR(128) NOT NULL,
		operator VARCHAR(16) NOT NULL,
		condition_values JSONB,
		price_value NUMERIC(10,2) NOT NULL,
		price_type VARCHAR(16) NOT NULL,
		priority INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_pricing_rules_active_priority ON pricing_rules (active, priority);`,
	`CREATE TABLE IF NOT EXISTS sequence_counters (
		name VARCHAR(64) PRIMARY KEY,
		last_value BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS quote_requests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		quote_number VARCHAR(32) NOT NULL,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(64) NOT NULL,
		preferred_contact VARCHAR(32),
		message TEXT,
		from_postal_code VARCHAR(16),
		to_postal_code VARCHAR(16),
		moving_date TIMESTAMPTZ,
		selected_services JSONB NOT NULL,
		service_details JSONB,
		pricing_data JSONB,
		estimated_total NUMERIC(10,2) NOT NULL DEFAULT 0,
		final_amount NUMERIC(10,2),
		distance_km NUMERIC(10,2),
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		admin_notes TEXT,
		quoted_at TIMESTAMPTZ,
		email_sent_at TIMESTAMPTZ,
		whatsapp_sent_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_quote_requests_quote_number ON quote_requests (quote_number);`,
	`CREATE INDEX IF NOT EXISTS idx_quote_requests_status ON quote_requests (status);`,
	`CREATE INDEX IF NOT EXISTS idx_quote_requests_email ON quote_requests (email);`,
	`CREATE INDEX IF NOT EXISTS idx_quote_requests_created_at ON quote_requests (created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		quote_id UUID NOT NULL REFERENCES quote_requests(id) ON DELETE CASCADE,
		channel VARCHAR(16) NOT NULL,
		kind VARCHAR(32) NOT NULL,
		recipient VARCHAR(255) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		sent_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications (status);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_quote_id ON notifications (quote_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
