// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Secret Santa API server.

Groups collect participants, then an admin runs a one-shot draw that gives
every participant exactly one other participant to buy a gift for. Nobody
draws themselves and nobody is drawn twice. After the draw, participants can
read their assignment, leave a wish list for their Santa, and exchange
anonymous messages with their recipient or their Santa.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:santa.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded first.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQL connection string or bolt file path
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - USER_KEY_SALT (--user-salt): Secret for participant key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or bolt (default: sqlite)
  - DEFAULT_LANGUAGE (--lang): en or ru (default: ru)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - santa: Assignment engine, group state machine, messaging service
  - store: Backend selection; sqlstore (PostgreSQL, SQLite) and boltstore (bbolt)
  - handlers: HTTP request handlers (groups, participants, messages, users)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, request IDs, JSON helpers
  - models: Request/response and domain types
  - auth: Admin and user key generation and validation
  - db: Connections, schema creation, placeholder rebinding
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
