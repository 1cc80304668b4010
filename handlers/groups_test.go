// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/lexa2hk/secret-santa-telegram-bot/auth"
	"github.com/lexa2hk/secret-santa-telegram-bot/models"
	"github.com/lexa2hk/secret-santa-telegram-bot/santa"
	"github.com/lexa2hk/secret-santa-telegram-bot/testutil"
)

// withPath sets path values the router would normally extract.
func withPath(req *http.Request, kv ...string) *http.Request {
	for i := 0; i+1 < len(kv); i += 2 {
		req.SetPathValue(kv[i], kv[i+1])
	}
	return req
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestCreateGroup(t *testing.T) {
	svc := testutil.SetupTestService(t)
	cfg := testutil.GetTestConfig()
	handler := NewGroupHandler(svc, cfg)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.CreateGroupResponse)
	}{
		{
			name:           "valid group creation",
			requestBody:    models.CreateGroupRequest{GroupID: -100500, OwnerID: 7},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreateGroupResponse) {
				if resp.GroupID != -100500 {
					t.Errorf("Expected group_id -100500, got %d", resp.GroupID)
				}

				// Verify admin key is valid
				if err := auth.ValidateAdminKey(resp.GroupID, resp.AdminKey, cfg.AdminKeySalt); err != nil {
					t.Error("Admin key does not match expected value")
				}

				// Verify group was created
				g, err := svc.GetGroup(context.Background(), resp.GroupID)
				if err != nil {
					t.Fatalf("Failed to load group: %v", err)
				}
				if g.Assigned {
					t.Error("New group should be unassigned")
				}
				if g.Language != models.LanguageRU {
					t.Errorf("Expected default language ru, got %s", g.Language)
				}
			},
		},
		{
			name:           "missing group id",
			requestBody:    models.CreateGroupRequest{OwnerID: 7},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing owner id",
			requestBody:    models.CreateGroupRequest{GroupID: 1},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if str, ok := tt.requestBody.(string); ok {
				req = httptest.NewRequest("POST", "/groups", bytes.NewReader([]byte(str)))
			} else {
				req = testutil.MakeRequest("POST", "/groups", tt.requestBody, nil)
			}
			w := httptest.NewRecorder()

			handler.CreateGroup(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.CreateGroupResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestCreateGroup_RecreateKeepsState(t *testing.T) {
	svc := testutil.SetupTestService(t)
	cfg := testutil.GetTestConfig()
	handler := NewGroupHandler(svc, cfg)

	groupID := int64(-42)
	testutil.CreateTestGroup(t, svc, cfg, groupID, 1)
	testutil.AddTestParticipants(t, svc, cfg, groupID, 1, 2)
	testutil.AssignTestGroup(t, svc, groupID)

	req := testutil.MakeRequest("POST", "/groups", models.CreateGroupRequest{GroupID: groupID, OwnerID: 99}, nil)
	w := httptest.NewRecorder()
	handler.CreateGroup(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	g, err := svc.GetGroup(context.Background(), groupID)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Assigned {
		t.Error("Re-creating a group must not reset the assigned state")
	}
	if g.OwnerID != 99 {
		t.Errorf("Expected owner 99, got %d", g.OwnerID)
	}
}

func TestGetGroup(t *testing.T) {
	svc := testutil.SetupTestService(t)
	cfg := testutil.GetTestConfig()
	handler := NewGroupHandler(svc, cfg)

	groupID := int64(-1001)
	testutil.CreateTestGroup(t, svc, cfg, groupID, 5)
	testutil.AddTestParticipants(t, svc, cfg, groupID, 5, 6, 7)
	price := 1500.0
	if err := svc.UpdateSettings(context.Background(), groupID, nil, &price); err != nil {
		t.Fatal(err)
	}

	t.Run("existing group", func(t *testing.T) {
		req := withPath(httptest.NewRequest("GET", "/groups/"+id(groupID), nil), "id", id(groupID))
		w := httptest.NewRecorder()
		handler.GetGroup(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.GroupInfoResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.State != models.StateUnassigned {
			t.Errorf("Expected state unassigned, got %s", resp.State)
		}
		if resp.ParticipantCount != 3 {
			t.Errorf("Expected 3 participants, got %d", resp.ParticipantCount)
		}
		if resp.CreatedAgo == "" {
			t.Error("Expected created_ago to be set")
		}
		if resp.MaxPriceDisplay != "1,500" {
			t.Errorf("Expected max_price_display '1,500', got %q", resp.MaxPriceDisplay)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		req := withPath(httptest.NewRequest("GET", "/groups/12345", nil), "id", "12345")
		w := httptest.NewRecorder()
		handler.GetGroup(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("bad id", func(t *testing.T) {
		req := withPath(httptest.NewRequest("GET", "/groups/abc", nil), "id", "abc")
		w := httptest.NewRecorder()
		handler.GetGroup(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestUpdateSettings(t *testing.T) {
	svc := testutil.SetupTestService(t)
	cfg := testutil.GetTestConfig()
	handler := NewGroupHandler(svc, cfg)

	groupID := int64(-2002)
	adminKey := testutil.CreateTestGroup(t, svc, cfg, groupID, 1)

	date := " 2025-12-25 "
	badDate := "25.12.2025"
	price := 20.5
	negative := -1.0

	tests := []struct {
		name           string
		adminKey       string
		body           models.UpdateSettingsRequest
		expectedStatus int
	}{
		{"valid settings", adminKey, models.UpdateSettingsRequest{EventDate: &date, MaxPrice: &price}, http.StatusOK},
		{"wrong admin key", "wrong", models.UpdateSettingsRequest{MaxPrice: &price}, http.StatusUnauthorized},
		{"negative price", adminKey, models.UpdateSettingsRequest{MaxPrice: &negative}, http.StatusBadRequest},
		{"malformed date", adminKey, models.UpdateSettingsRequest{EventDate: &badDate}, http.StatusBadRequest},
		{"empty body", adminKey, models.UpdateSettingsRequest{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("PUT", "/groups/"+id(groupID)+"/settings", tt.body, map[string]string{"X-Admin-Key": tt.adminKey})
			w := httptest.NewRecorder()
			handler.UpdateSettings(w, withPath(req, "id", id(groupID)))

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	g, err := svc.GetGroup(context.Background(), groupID)
	if err != nil {
		t.Fatal(err)
	}
	if g.EventDate == nil || *g.EventDate != "2025-12-25" {
		t.Errorf("Expected trimmed event date, got %v", g.EventDate)
	}
	if g.MaxPrice == nil || *g.MaxPrice != 20.5 {
		t.Errorf("Expected max price 20.5, got %v", g.MaxPrice)
	}
}

func TestSetLanguage(t *testing.T) {
	svc := testutil.SetupTestService(t)
	cfg := testutil.GetTestConfig()
	handler := NewGroupHandler(svc, cfg)

	groupID := int64(-3003)
	adminKey := testutil.CreateTestGroup(t, svc, cfg, groupID, 1)

	tests := []struct {
		name           string
		language       string
		expectedStatus int
	}{
		{"english", "en", http.StatusOK},
		{"uppercase russian", "RU", http.StatusOK},
		{"unsupported", "de", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("PUT", "/groups/"+id(groupID)+"/language", models.SetLanguageRequest{Language: tt.language}, map[string]string{"X-Admin-Key": adminKey})
			w := httptest.NewRecorder()
			handler.SetLanguage(w, withPath(req, "id", id(groupID)))

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	g, _ := svc.GetGroup(context.Background(), groupID)
	if g.Language != models.LanguageRU {
		t.Errorf("Expected language ru after last valid update, got %s", g.Language)
	}
}

func TestDeleteGroup(t *testing.T) {
	svc := testutil.SetupTestService(t)
	cfg := testutil.GetTestConfig()
	handler := NewGroupHandler(svc, cfg)

	groupID := int64(-4004)
	adminKey := testutil.CreateTestGroup(t, svc, cfg, groupID, 1)
	testutil.AddTestParticipants(t, svc, cfg, groupID, 1, 2)

	// Wrong key first
	req := testutil.MakeRequest("DELETE", "/groups/"+id(groupID), nil, map[string]string{"X-Admin-Key": "nope"})
	w := httptest.NewRecorder()
	handler.DeleteGroup(w, withPath(req, "id", id(groupID)))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	req = testutil.MakeRequest("DELETE", "/groups/"+id(groupID), nil, map[string]string{"X-Admin-Key": adminKey})
	w = httptest.NewRecorder()
	handler.DeleteGroup(w, withPath(req, "id", id(groupID)))
	testutil.AssertStatus(t, w, http.StatusNoContent)

	if _, err := svc.GetGroup(context.Background(), groupID); err != santa.ErrGroupNotFound {
		t.Errorf("Expected group to be gone, got %v", err)
	}

	// Second delete is a 404
	req = testutil.MakeRequest("DELETE", "/groups/"+id(groupID), nil, map[string]string{"X-Admin-Key": adminKey})
	w = httptest.NewRecorder()
	handler.DeleteGroup(w, withPath(req, "id", id(groupID)))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAssign(t *testing.T) {
	svc := testutil.SetupTestService(t)
	cfg := testutil.GetTestConfig()
	handler := NewGroupHandler(svc, cfg)

	groupID := int64(-5005)
	adminKey := testutil.CreateTestGroup(t, svc, cfg, groupID, 1)
	testutil.AddTestParticipants(t, svc, cfg, groupID, 1)

	assign := func(groupID int64, key string) (*httptest.ResponseRecorder, models.AssignResponse) {
		req := testutil.MakeRequest("POST", "/groups/"+id(groupID)+"/assign", nil, map[string]string{"X-Admin-Key": key})
		w := httptest.NewRecorder()
		handler.Assign(w, withPath(req, "id", id(groupID)))
		var resp models.AssignResponse
		if w.Code != http.StatusUnauthorized {
			testutil.AssertJSON(t, w, &resp)
		}
		return w, resp
	}

	t.Run("wrong admin key", func(t *testing.T) {
		w, _ := assign(groupID, "bad")
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("insufficient participants", func(t *testing.T) {
		w, resp := assign(groupID, adminKey)
		testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)
		if resp.Outcome != string(santa.OutcomeInsufficientParticipants) {
			t.Errorf("Expected outcome %q, got %q", santa.OutcomeInsufficientParticipants, resp.Outcome)
		}
	})

	testutil.AddTestParticipants(t, svc, cfg, groupID, 2, 3)

	t.Run("success", func(t *testing.T) {
		w, resp := assign(groupID, adminKey)
		testutil.AssertStatus(t, w, http.StatusOK)
		if resp.Outcome != string(santa.OutcomeSuccess) {
			t.Errorf("Expected outcome success, got %q", resp.Outcome)
		}
		if resp.Participants != 3 {
			t.Errorf("Expected 3 participants, got %d", resp.Participants)
		}
	})

	t.Run("already assigned", func(t *testing.T) {
		w, resp := assign(groupID, adminKey)
		testutil.AssertStatus(t, w, http.StatusConflict)
		if resp.Outcome != string(santa.OutcomeAlreadyAssigned) {
			t.Errorf("Expected outcome %q, got %q", santa.OutcomeAlreadyAssigned, resp.Outcome)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		unknown := int64(777)
		w, resp := assign(unknown, auth.GenerateAdminKey(unknown, cfg.AdminKeySalt))
		testutil.AssertStatus(t, w, http.StatusNotFound)
		if resp.Outcome != string(santa.OutcomeNotFound) {
			t.Errorf("Expected outcome %q, got %q", santa.OutcomeNotFound, resp.Outcome)
		}
	})
}
