// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/lexa2hk/secret-santa-telegram-bot/cliparse"
	"github.com/lexa2hk/secret-santa-telegram-bot/middleware"
	"github.com/lexa2hk/secret-santa-telegram-bot/models"
	"github.com/lexa2hk/secret-santa-telegram-bot/santa"
)

type UserHandler struct {
	svc *santa.Service
	cfg cliparse.Config
}

func NewUserHandler(svc *santa.Service, cfg cliparse.Config) *UserHandler {
	return &UserHandler{svc: svc, cfg: cfg}
}

// MyAssignments handles GET /users/{uid}/assignments
func (h *UserHandler) MyAssignments(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "uid")
	if !ok || !requireUser(w, r, userID, h.cfg.UserKeySalt) {
		return
	}

	assignments, err := h.svc.UserAssignments(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "list assignments", err)
		return
	}

	resp := models.MyAssignmentsResponse{Assignments: make([]models.AssignmentResponse, 0, len(assignments))}
	for _, a := range assignments {
		resp.Assignments = append(resp.Assignments, models.AssignmentResponse{
			GroupID:   a.Group.ID,
			Recipient: a.Recipient,
			EventDate: a.Group.EventDate,
			MaxPrice:  a.Group.MaxPrice,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
