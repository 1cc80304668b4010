package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	AdminKeySalt    string
	UserKeySalt     string
	DefaultLanguage string
}

// LoadDotEnv loads variables from the given files (".env" if none) into the
// process environment. Variables already set are kept. Missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("secret-santa", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or bolt file path")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or bolt)")
	fs.StringVar(&cfg.DefaultLanguage, "lang", "", "Language for new groups (en or ru)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.UserKeySalt, "user-salt", "", "User key salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	switch cfg.DatabaseType {
	case "sqlite", "postgres", "bolt":
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = os.Getenv("DEFAULT_LANGUAGE")
		if cfg.DefaultLanguage == "" {
			cfg.DefaultLanguage = "ru"
		}
	}
	cfg.DefaultLanguage = strings.ToLower(cfg.DefaultLanguage)
	if cfg.DefaultLanguage != "en" && cfg.DefaultLanguage != "ru" {
		return Config{}, fmt.Errorf("unsupported language %q", cfg.DefaultLanguage)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.UserKeySalt == "" {
		cfg.UserKeySalt = os.Getenv("USER_KEY_SALT")
	}
	if cfg.UserKeySalt == "" {
		return Config{}, errors.New("USER_KEY_SALT required")
	}

	return cfg, nil
}
