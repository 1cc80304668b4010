// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect Dialect) error {
	var schema string
	switch dialect {
	case Postgres:
		schema = postgresSchema
	case SQLite:
		schema = sqliteSchema
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const postgresSchema = `
-- Groups
CREATE TABLE IF NOT EXISTS santa_group (
    group_id BIGINT PRIMARY KEY,
    admin_id BIGINT NOT NULL,
    event_date TEXT,
    max_price REAL,
    language TEXT NOT NULL DEFAULT 'ru',
    is_assigned BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Participants
CREATE TABLE IF NOT EXISTS participant (
    id BIGSERIAL PRIMARY KEY,
    group_id BIGINT NOT NULL REFERENCES santa_group(group_id) ON DELETE CASCADE,
    user_id BIGINT NOT NULL,
    username TEXT,
    first_name TEXT,
    assigned_to BIGINT,
    wish TEXT,
    UNIQUE (group_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_participant_assigned_to ON participant(group_id, assigned_to);
CREATE INDEX IF NOT EXISTS idx_participant_user_id ON participant(user_id);

-- Messages
CREATE TABLE IF NOT EXISTS message (
    id BIGSERIAL PRIMARY KEY,
    group_id BIGINT NOT NULL REFERENCES santa_group(group_id) ON DELETE CASCADE,
    sender_id BIGINT NOT NULL,
    recipient_id BIGINT NOT NULL,
    sender_role TEXT NOT NULL CHECK (sender_role IN ('santa', 'recipient')),
    body TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_message_recipient ON message(group_id, recipient_id);
`

const sqliteSchema = `
-- Groups
CREATE TABLE IF NOT EXISTS santa_group (
    group_id INTEGER PRIMARY KEY,
    admin_id INTEGER NOT NULL,
    event_date TEXT,
    max_price REAL,
    language TEXT NOT NULL DEFAULT 'ru',
    is_assigned BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Participants
CREATE TABLE IF NOT EXISTS participant (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id INTEGER NOT NULL REFERENCES santa_group(group_id) ON DELETE CASCADE,
    user_id INTEGER NOT NULL,
    username TEXT,
    first_name TEXT,
    assigned_to INTEGER,
    wish TEXT,
    UNIQUE (group_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_participant_assigned_to ON participant(group_id, assigned_to);
CREATE INDEX IF NOT EXISTS idx_participant_user_id ON participant(user_id);

-- Messages
CREATE TABLE IF NOT EXISTS message (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id INTEGER NOT NULL REFERENCES santa_group(group_id) ON DELETE CASCADE,
    sender_id INTEGER NOT NULL,
    recipient_id INTEGER NOT NULL,
    sender_role TEXT NOT NULL CHECK (sender_role IN ('santa', 'recipient')),
    body TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_message_recipient ON message(group_id, recipient_id);
`
