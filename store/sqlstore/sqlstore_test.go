// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lexa2hk/secret-santa-telegram-bot/db"
	"github.com/lexa2hk/secret-santa-telegram-bot/models"
	"github.com/lexa2hk/secret-santa-telegram-bot/santa"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Open(db.SQLite, "file:"+filepath.Join(t.TempDir(), "santa.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}
	s := New(conn, db.SQLite)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDialectHelpers(t *testing.T) {
	pg := &Store{dialect: db.Postgres}
	if got := pg.q(`SELECT is_assigned FROM santa_group WHERE group_id = ?` + pg.forUpdate()); got != `SELECT is_assigned FROM santa_group WHERE group_id = $1 FOR UPDATE` {
		t.Errorf("Unexpected postgres query: %q", got)
	}

	lite := &Store{dialect: db.SQLite}
	if got := lite.q(`SELECT is_assigned FROM santa_group WHERE group_id = ?` + lite.forUpdate()); got != `SELECT is_assigned FROM santa_group WHERE group_id = ?` {
		t.Errorf("Unexpected sqlite query: %q", got)
	}
}

func TestUpsertGroup_KeepsAssignedFlag(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if err := s.UpsertGroup(ctx, models.Group{ID: 1, OwnerID: 10, Language: models.LanguageRU}); err != nil {
		t.Fatalf("UpsertGroup failed: %v", err)
	}
	for _, uid := range []int64{1, 2} {
		if _, err := s.AddParticipant(ctx, 1, models.Participant{UserID: uid}); err != nil {
			t.Fatalf("AddParticipant failed: %v", err)
		}
	}
	err := s.Assign(ctx, 1, func(tx santa.AssignTx) error {
		return tx.SaveAssignment(map[int64]int64{1: 2, 2: 1})
	})
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	if err := s.UpsertGroup(ctx, models.Group{ID: 1, OwnerID: 20, Language: models.LanguageEN}); err != nil {
		t.Fatalf("Second UpsertGroup failed: %v", err)
	}

	g, err := s.Group(ctx, 1)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if !g.Assigned {
		t.Error("Upsert must not reset the assigned flag")
	}
	if g.OwnerID != 20 {
		t.Errorf("Expected owner 20, got %d", g.OwnerID)
	}
	if g.Language != models.LanguageRU {
		t.Errorf("Upsert must not change language, got %q", g.Language)
	}
}

func TestSaveAssignment_SecondFlipFails(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if err := s.UpsertGroup(ctx, models.Group{ID: 3, OwnerID: 1, Language: models.LanguageEN}); err != nil {
		t.Fatalf("UpsertGroup failed: %v", err)
	}
	for _, uid := range []int64{7, 8} {
		if _, err := s.AddParticipant(ctx, 3, models.Participant{UserID: uid}); err != nil {
			t.Fatalf("AddParticipant failed: %v", err)
		}
	}

	save := func(tx santa.AssignTx) error {
		return tx.SaveAssignment(map[int64]int64{7: 8, 8: 7})
	}
	if err := s.Assign(ctx, 3, save); err != nil {
		t.Fatalf("First Assign failed: %v", err)
	}
	if err := s.Assign(ctx, 3, save); err != santa.ErrAlreadyAssigned {
		t.Errorf("Expected ErrAlreadyAssigned, got %v", err)
	}
}

func TestAssign_RollbackOnError(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if err := s.UpsertGroup(ctx, models.Group{ID: 4, OwnerID: 1, Language: models.LanguageEN}); err != nil {
		t.Fatalf("UpsertGroup failed: %v", err)
	}
	for _, uid := range []int64{1, 2} {
		if _, err := s.AddParticipant(ctx, 4, models.Participant{UserID: uid}); err != nil {
			t.Fatalf("AddParticipant failed: %v", err)
		}
	}

	err := s.Assign(ctx, 4, func(tx santa.AssignTx) error {
		if err := tx.SaveAssignment(map[int64]int64{1: 2, 2: 1}); err != nil {
			return err
		}
		return santa.ErrInsufficientParticipants
	})
	if err != santa.ErrInsufficientParticipants {
		t.Fatalf("Expected fn error to be returned as is, got %v", err)
	}

	g, err := s.Group(ctx, 4)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if g.Assigned {
		t.Error("Group must stay unassigned after rollback")
	}
	if _, err := s.Receiver(ctx, 4, 1); err != santa.ErrNoAssignment {
		t.Errorf("Expected ErrNoAssignment after rollback, got %v", err)
	}
}
