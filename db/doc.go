// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens SQL connections and creates the schema.

# Connecting

Open picks the driver from the dialect and pings the server:

	conn, err := db.Open(db.Postgres, "postgres://...")
	conn, err := db.Open(db.SQLite, "file:santa.db")

PostgreSQL uses github.com/lib/pq, SQLite uses the pure Go modernc.org/sqlite.
SQLite is capped at a single connection and opened with foreign keys on.

# Schema Creation

CreateSchema initializes all required tables for the dialect:

	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - santa_group: owner, settings, language, assigned flag
  - participant: one row per (group, user), nullable assigned_to and wish
  - message: anonymous notes between a Santa and their recipient

# Relationships

	santa_group 1──* participant
	santa_group 1──* message
	participant ──> participant (assigned_to, same group)

All foreign keys use ON DELETE CASCADE.

# Indexes

  - participant.(group_id, user_id) (unique)
  - participant.(group_id, assigned_to), the reverse lookup "who is my Santa"
  - participant.user_id
  - message.(group_id, recipient_id)

# Placeholders

Queries are written with '?' and passed through Rebind, which produces
$1, $2, ... for PostgreSQL.
*/
package db
