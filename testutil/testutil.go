// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/lexa2hk/secret-santa-telegram-bot/auth"
	"github.com/lexa2hk/secret-santa-telegram-bot/cliparse"
	"github.com/lexa2hk/secret-santa-telegram-bot/db"
	"github.com/lexa2hk/secret-santa-telegram-bot/models"
	"github.com/lexa2hk/secret-santa-telegram-bot/santa"
	"github.com/lexa2hk/secret-santa-telegram-bot/store/boltstore"
	"github.com/lexa2hk/secret-santa-telegram-bot/store/sqlstore"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The file lives in t.TempDir and is removed with it.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "santa.db")
	conn, err := db.Open(db.SQLite, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore returns a SQLite-backed store closed at test cleanup.
func SetupTestStore(t *testing.T) santa.Store {
	t.Helper()
	st := sqlstore.New(SetupTestDB(t), db.SQLite)
	t.Cleanup(func() { st.Close() })
	return st
}

// SetupBoltStore returns a bbolt-backed store closed at test cleanup.
func SetupBoltStore(t *testing.T) santa.Store {
	t.Helper()
	st, err := boltstore.Open(filepath.Join(t.TempDir(), "santa.bolt"))
	if err != nil {
		t.Fatalf("Failed to open bolt store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// PostgresURLEnv names the variable holding a PostgreSQL DSN for live tests.
const PostgresURLEnv = "TEST_DATABASE_URL"

// SetupPostgresStore returns a PostgreSQL-backed store in a throwaway schema,
// dropped at test cleanup. The test is skipped unless TEST_DATABASE_URL is set.
func SetupPostgresStore(t *testing.T) santa.Store {
	t.Helper()

	dsn := os.Getenv(PostgresURLEnv)
	if dsn == "" {
		t.Skip(PostgresURLEnv + " not set")
	}

	admin, err := db.Open(db.Postgres, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	schema := "santa_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec("CREATE SCHEMA " + schema); err != nil {
		admin.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() {
		admin.Exec("DROP SCHEMA " + schema + " CASCADE")
		admin.Close()
	})

	conn, err := db.Open(db.Postgres, withSearchPath(dsn, schema))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.CreateSchema(conn, db.Postgres); err != nil {
		conn.Close()
		t.Fatalf("Failed to create tables: %v", err)
	}

	st := sqlstore.New(conn, db.Postgres)
	t.Cleanup(func() { st.Close() })
	return st
}

// withSearchPath pins every pooled connection to schema. lib/pq passes
// unknown DSN keys through as run-time parameters.
func withSearchPath(dsn, schema string) string {
	if strings.Contains(dsn, "://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "search_path=" + schema
	}
	return dsn + " search_path=" + schema
}

// Backends lists every store implementation, for tests that run against each.
var Backends = []struct {
	Name  string
	Setup func(t *testing.T) santa.Store
}{
	{"sqlite", SetupTestStore},
	{"bolt", SetupBoltStore},
	{"postgres", SetupPostgresStore},
}

// SetupTestService wires a seeded engine over a fresh SQLite store.
func SetupTestService(t *testing.T) *santa.Service {
	t.Helper()
	return santa.NewService(SetupTestStore(t), santa.NewSeededEngine(1, 2), models.LanguageRU)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     "file::memory:",
		DatabaseType:    "sqlite",
		AdminKeySalt:    "test-admin-salt",
		UserKeySalt:     "test-user-salt",
		DefaultLanguage: models.LanguageRU,
	}
}

// CreateTestGroup registers a group owned by ownerID and returns its admin key.
func CreateTestGroup(t *testing.T, svc *santa.Service, cfg cliparse.Config, groupID, ownerID int64) string {
	t.Helper()

	if err := svc.CreateGroup(context.Background(), groupID, ownerID); err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}
	return auth.GenerateAdminKey(groupID, cfg.AdminKeySalt)
}

// AddTestParticipants joins every user to the group and returns each
// user's key by user ID.
func AddTestParticipants(t *testing.T, svc *santa.Service, cfg cliparse.Config, groupID int64, userIDs ...int64) map[int64]string {
	t.Helper()

	keys := make(map[int64]string, len(userIDs))
	for _, id := range userIDs {
		_, err := svc.AddParticipant(context.Background(), groupID, models.Participant{
			UserID:    id,
			FirstName: "User",
		})
		if err != nil {
			t.Fatalf("Failed to add participant %d: %v", id, err)
		}
		keys[id] = auth.GenerateUserKey(id, cfg.UserKeySalt)
	}
	return keys
}

// AssignTestGroup runs the draw and fails the test if it does not succeed.
func AssignTestGroup(t *testing.T, svc *santa.Service, groupID int64) {
	t.Helper()
	if _, err := svc.TryAssign(context.Background(), groupID); err != nil {
		t.Fatalf("Failed to assign group: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
