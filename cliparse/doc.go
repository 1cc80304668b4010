// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQL connection string or bolt file path (required)
  - DatabaseType: sqlite, postgres or bolt (default: sqlite)
  - AdminKeySalt: Secret for group admin key HMAC (required)
  - UserKeySalt: Secret for participant key HMAC (required)
  - DefaultLanguage: Language of new groups, en or ru (default: ru)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	--lang        Default group language
	--admin-salt  Admin key salt
	--user-salt   User key salt

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	DEFAULT_LANGUAGE → --lang
	ADMIN_KEY_SALT   → --admin-salt
	USER_KEY_SALT    → --user-salt

CLI flags take precedence over environment variables. LoadDotEnv reads a
.env file into the environment first; variables already set are not
overwritten.

# Validation

ParseFlags returns an error if required values are missing or invalid:

  - DATABASE_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - USER_KEY_SALT must be provided
  - DATABASE_TYPE and DEFAULT_LANGUAGE must be known values

# Example

	// In main.go
	if err := cliparse.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	st, err := store.Open(cfg)
	// ...
*/
package cliparse
