// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store selects and opens the persistence backend named in the
// configuration.
package store

import (
	"fmt"

	"github.com/lexa2hk/secret-santa-telegram-bot/cliparse"
	"github.com/lexa2hk/secret-santa-telegram-bot/db"
	"github.com/lexa2hk/secret-santa-telegram-bot/santa"
	"github.com/lexa2hk/secret-santa-telegram-bot/store/boltstore"
	"github.com/lexa2hk/secret-santa-telegram-bot/store/sqlstore"
)

// Open returns a ready store for cfg.DatabaseType. SQL backends get their
// schema created on open.
func Open(cfg cliparse.Config) (santa.Store, error) {
	switch cfg.DatabaseType {
	case "bolt":
		return boltstore.Open(cfg.DatabaseURL)
	case "sqlite", "postgres":
		dialect := db.Dialect(cfg.DatabaseType)
		conn, err := db.Open(dialect, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.CreateSchema(conn, dialect); err != nil {
			conn.Close()
			return nil, err
		}
		return sqlstore.New(conn, dialect), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
}
