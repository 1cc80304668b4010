// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/lexa2hk/secret-santa-telegram-bot/auth"
	"github.com/lexa2hk/secret-santa-telegram-bot/cliparse"
	"github.com/lexa2hk/secret-santa-telegram-bot/middleware"
	"github.com/lexa2hk/secret-santa-telegram-bot/models"
	"github.com/lexa2hk/secret-santa-telegram-bot/santa"
)

type GroupHandler struct {
	svc *santa.Service
	cfg cliparse.Config
}

func NewGroupHandler(svc *santa.Service, cfg cliparse.Config) *GroupHandler {
	return &GroupHandler{svc: svc, cfg: cfg}
}

// CreateGroup handles POST /groups
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGroupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.GroupID == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "group_id is required")
		return
	}
	if req.OwnerID == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	if err := h.svc.CreateGroup(r.Context(), req.GroupID, req.OwnerID); err != nil {
		writeServiceError(w, r, "create group", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateGroupResponse{
		GroupID:  req.GroupID,
		AdminKey: auth.GenerateAdminKey(req.GroupID, h.cfg.AdminKeySalt),
	})
}

// GetGroup handles GET /groups/{id}
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}

	g, err := h.svc.GetGroup(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, r, "get group", err)
		return
	}
	participants, err := h.svc.ListParticipants(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, r, "list participants", err)
		return
	}

	resp := models.GroupInfoResponse{
		Group:            g,
		State:            g.State(),
		ParticipantCount: len(participants),
		CreatedAgo:       humanize.Time(g.CreatedAt),
	}
	if g.MaxPrice != nil {
		resp.MaxPriceDisplay = humanize.CommafWithDigits(*g.MaxPrice, 2)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// DeleteGroup handles DELETE /groups/{id}
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathInt64(w, r, "id")
	if !ok || !requireAdmin(w, r, groupID, h.cfg.AdminKeySalt) {
		return
	}

	if err := h.svc.DeleteGroup(r.Context(), groupID); err != nil {
		writeServiceError(w, r, "delete group", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateSettings handles PUT /groups/{id}/settings
func (h *GroupHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathInt64(w, r, "id")
	if !ok || !requireAdmin(w, r, groupID, h.cfg.AdminKeySalt) {
		return
	}

	var req models.UpdateSettingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.EventDate == nil && req.MaxPrice == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event_date or max_price is required")
		return
	}

	if err := h.svc.UpdateSettings(r.Context(), groupID, req.EventDate, req.MaxPrice); err != nil {
		writeServiceError(w, r, "update settings", err)
		return
	}

	g, err := h.svc.GetGroup(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, r, "get group", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, g)
}

// SetLanguage handles PUT /groups/{id}/language
func (h *GroupHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathInt64(w, r, "id")
	if !ok || !requireAdmin(w, r, groupID, h.cfg.AdminKeySalt) {
		return
	}

	var req models.SetLanguageRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.svc.SetLanguage(r.Context(), groupID, req.Language); err != nil {
		writeServiceError(w, r, "set language", err)
		return
	}

	g, err := h.svc.GetGroup(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, r, "get group", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, g)
}

// Assign handles POST /groups/{id}/assign
//
// Precondition failures still carry the outcome in the body so callers can
// tell them apart without parsing messages.
func (h *GroupHandler) Assign(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathInt64(w, r, "id")
	if !ok || !requireAdmin(w, r, groupID, h.cfg.AdminKeySalt) {
		return
	}

	n, err := h.svc.TryAssign(r.Context(), groupID)
	outcome := santa.OutcomeOf(err)
	if outcome == santa.OutcomeInternalError {
		writeServiceError(w, r, "assign group", err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	middleware.JSONResponse(w, status, models.AssignResponse{
		Outcome:      string(outcome),
		Participants: n,
	})
}
