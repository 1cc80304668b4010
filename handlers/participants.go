// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/lexa2hk/secret-santa-telegram-bot/auth"
	"github.com/lexa2hk/secret-santa-telegram-bot/cliparse"
	"github.com/lexa2hk/secret-santa-telegram-bot/middleware"
	"github.com/lexa2hk/secret-santa-telegram-bot/models"
	"github.com/lexa2hk/secret-santa-telegram-bot/santa"
)

type ParticipantHandler struct {
	svc *santa.Service
	cfg cliparse.Config
}

func NewParticipantHandler(svc *santa.Service, cfg cliparse.Config) *ParticipantHandler {
	return &ParticipantHandler{svc: svc, cfg: cfg}
}

// Join handles POST /groups/{id}/participants
func (h *ParticipantHandler) Join(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}

	var req models.JoinGroupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	added, err := h.svc.AddParticipant(r.Context(), groupID, models.Participant{
		UserID:    req.UserID,
		Username:  strings.TrimPrefix(strings.TrimSpace(req.Username), "@"),
		FirstName: strings.TrimSpace(req.FirstName),
	})
	if err != nil {
		writeServiceError(w, r, "join group", err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	middleware.JSONResponse(w, status, models.JoinGroupResponse{
		Added:   added,
		UserKey: auth.GenerateUserKey(req.UserID, h.cfg.UserKeySalt),
	})
}

// List handles GET /groups/{id}/participants
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}

	participants, err := h.svc.ListParticipants(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, r, "list participants", err)
		return
	}

	// Wishes are for the Santa only
	for i := range participants {
		participants[i].Wish = ""
	}

	middleware.JSONResponse(w, http.StatusOK, models.ParticipantListResponse{
		GroupID:      groupID,
		Count:        len(participants),
		Participants: participants,
	})
}

// GetAssignment handles GET /groups/{id}/participants/{uid}/assignment
func (h *ParticipantHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathInt64(w, r, "uid")
	if !ok || !requireUser(w, r, userID, h.cfg.UserKeySalt) {
		return
	}

	g, err := h.svc.GetGroup(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, r, "get group", err)
		return
	}
	if !g.Assigned {
		writeServiceError(w, r, "get assignment", santa.ErrNotAssigned)
		return
	}

	recipient, err := h.svc.GetAssignmentFor(r.Context(), groupID, userID)
	if err != nil {
		writeServiceError(w, r, "get assignment", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AssignmentResponse{
		GroupID:   groupID,
		Recipient: recipient,
		EventDate: g.EventDate,
		MaxPrice:  g.MaxPrice,
	})
}

// SetWish handles PUT /groups/{id}/participants/{uid}/wish
func (h *ParticipantHandler) SetWish(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathInt64(w, r, "uid")
	if !ok || !requireUser(w, r, userID, h.cfg.UserKeySalt) {
		return
	}

	var req models.SetWishRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.svc.SetWish(r.Context(), groupID, userID, req.Wish); err != nil {
		writeServiceError(w, r, "set wish", err)
		return
	}

	wish, err := h.svc.GetWish(r.Context(), groupID, userID)
	if err != nil {
		writeServiceError(w, r, "get wish", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SetWishRequest{Wish: wish})
}
