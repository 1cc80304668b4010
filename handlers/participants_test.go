// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lexa2hk/secret-santa-telegram-bot/auth"
	"github.com/lexa2hk/secret-santa-telegram-bot/models"
	"github.com/lexa2hk/secret-santa-telegram-bot/testutil"
)

func TestJoin(t *testing.T) {
	svc := testutil.SetupTestService(t)
	cfg := testutil.GetTestConfig()
	handler := NewParticipantHandler(svc, cfg)

	groupID := int64(-6006)
	testutil.CreateTestGroup(t, svc, cfg, groupID, 1)

	join := func(groupID int64, body interface{}) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/groups/"+id(groupID)+"/participants", body, nil)
		w := httptest.NewRecorder()
		handler.Join(w, withPath(req, "id", id(groupID)))
		return w
	}

	t.Run("first join", func(t *testing.T) {
		w := join(groupID, models.JoinGroupRequest{UserID: 10, Username: "@alice", FirstName: "Alice"})
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.JoinGroupResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.Added {
			t.Error("Expected added=true")
		}
		if err := auth.ValidateUserKey(10, resp.UserKey, cfg.UserKeySalt); err != nil {
			t.Error("User key does not match expected value")
		}
	})

	t.Run("duplicate join", func(t *testing.T) {
		w := join(groupID, models.JoinGroupRequest{UserID: 10, FirstName: "Alice"})
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.JoinGroupResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Added {
			t.Error("Expected added=false for a repeat join")
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		w := join(groupID, models.JoinGroupRequest{FirstName: "Nobody"})
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("unknown group", func(t *testing.T) {
		w := join(999, models.JoinGroupRequest{UserID: 10})
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("assigned group is closed", func(t *testing.T) {
		testutil.AddTestParticipants(t, svc, cfg, groupID, 11)
		testutil.AssignTestGroup(t, svc, groupID)

		w := join(groupID, models.JoinGroupRequest{UserID: 12})
		testutil.AssertStatus(t, w, http.StatusConflict)
	})
}

func TestListParticipants(t *testing.T) {
	svc := testutil.SetupTestService(t)
	cfg := testutil.GetTestConfig()
	handler := NewParticipantHandler(svc, cfg)

	groupID := int64(-7007)
	testutil.CreateTestGroup(t, svc, cfg, groupID, 1)
	testutil.AddTestParticipants(t, svc, cfg, groupID, 30, 10, 20)
	if err := svc.SetWish(t.Context(), groupID, 10, "socks"); err != nil {
		t.Fatal(err)
	}
	testutil.AssignTestGroup(t, svc, groupID)

	req := withPath(httptest.NewRequest("GET", "/groups/"+id(groupID)+"/participants", nil), "id", id(groupID))
	w := httptest.NewRecorder()
	handler.List(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	body := w.Body.String()
	if strings.Contains(body, "assigned_to") {
		t.Error("Assignments must never be exposed in the participant list")
	}
	if strings.Contains(body, "socks") {
		t.Error("Wishes must not be exposed in the participant list")
	}

	var resp models.ParticipantListResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Count != 3 {
		t.Fatalf("Expected 3 participants, got %d", resp.Count)
	}

	// Join order is preserved
	want := []int64{30, 10, 20}
	for i, p := range resp.Participants {
		if p.UserID != want[i] {
			t.Errorf("Participant %d: expected %d, got %d", i, want[i], p.UserID)
		}
	}
}

func TestGetAssignment(t *testing.T) {
	svc := testutil.SetupTestService(t)
	cfg := testutil.GetTestConfig()
	handler := NewParticipantHandler(svc, cfg)

	groupID := int64(-8008)
	testutil.CreateTestGroup(t, svc, cfg, groupID, 1)
	keys := testutil.AddTestParticipants(t, svc, cfg, groupID, 1, 2)

	get := func(userID int64, key string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("GET", "/groups/"+id(groupID)+"/participants/"+id(userID)+"/assignment", nil, map[string]string{"X-User-Key": key})
		w := httptest.NewRecorder()
		handler.GetAssignment(w, withPath(req, "id", id(groupID), "uid", id(userID)))
		return w
	}

	t.Run("before assignment", func(t *testing.T) {
		w := get(1, keys[1])
		testutil.AssertStatus(t, w, http.StatusConflict)
	})

	if err := svc.SetWish(t.Context(), groupID, 2, "a book"); err != nil {
		t.Fatal(err)
	}
	testutil.AssignTestGroup(t, svc, groupID)

	t.Run("wrong user key", func(t *testing.T) {
		w := get(1, keys[2])
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("receiver with wish", func(t *testing.T) {
		w := get(1, keys[1])
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.AssignmentResponse
		testutil.AssertJSON(t, w, &resp)

		// With two participants the pairing is forced
		if resp.Recipient.UserID != 2 {
			t.Errorf("Expected recipient 2, got %d", resp.Recipient.UserID)
		}
		if resp.Recipient.Wish != "a book" {
			t.Errorf("Expected recipient wish 'a book', got %q", resp.Recipient.Wish)
		}
	})

	t.Run("non participant", func(t *testing.T) {
		w := get(3, auth.GenerateUserKey(3, cfg.UserKeySalt))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestSetWish(t *testing.T) {
	svc := testutil.SetupTestService(t)
	cfg := testutil.GetTestConfig()
	handler := NewParticipantHandler(svc, cfg)

	groupID := int64(-9009)
	testutil.CreateTestGroup(t, svc, cfg, groupID, 1)
	keys := testutil.AddTestParticipants(t, svc, cfg, groupID, 1)

	tests := []struct {
		name           string
		userID         int64
		key            string
		wish           string
		expectedStatus int
	}{
		{"valid wish", 1, keys[1], "  warm socks  ", http.StatusOK},
		{"too long", 1, keys[1], strings.Repeat("я", 1001), http.StatusBadRequest},
		{"wrong key", 1, "nope", "x", http.StatusUnauthorized},
		{"not a participant", 2, auth.GenerateUserKey(2, cfg.UserKeySalt), "x", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("PUT", "/wish", models.SetWishRequest{Wish: tt.wish}, map[string]string{"X-User-Key": tt.key})
			w := httptest.NewRecorder()
			handler.SetWish(w, withPath(req, "id", id(groupID), "uid", id(tt.userID)))

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	wish, err := svc.GetWish(t.Context(), groupID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if wish != "warm socks" {
		t.Errorf("Expected trimmed wish 'warm socks', got %q", wish)
	}
}
