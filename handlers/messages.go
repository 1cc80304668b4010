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

type MessageHandler struct {
	svc *santa.Service
	cfg cliparse.Config
}

func NewMessageHandler(svc *santa.Service, cfg cliparse.Config) *MessageHandler {
	return &MessageHandler{svc: svc, cfg: cfg}
}

// Send handles POST /groups/{id}/participants/{uid}/messages
//
// "to": "recipient" writes to the person the sender gives to; "to": "santa"
// writes back to the sender's anonymous Santa.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathInt64(w, r, "uid")
	if !ok || !requireUser(w, r, userID, h.cfg.UserKeySalt) {
		return
	}

	var req models.SendMessageRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var (
		msg models.Message
		err error
	)
	switch req.To {
	case models.ToRecipient:
		msg, err = h.svc.SendToRecipient(r.Context(), groupID, userID, req.Text)
	case models.ToSanta:
		msg, err = h.svc.SendToSanta(r.Context(), groupID, userID, req.Text)
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, `to must be "recipient" or "santa"`)
		return
	}
	if err != nil {
		writeServiceError(w, r, "send message", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SendMessageResponse{MessageID: msg.ID})
}

// Inbox handles GET /groups/{id}/participants/{uid}/messages
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathInt64(w, r, "uid")
	if !ok || !requireUser(w, r, userID, h.cfg.UserKeySalt) {
		return
	}

	messages, err := h.svc.Inbox(r.Context(), groupID, userID)
	if err != nil {
		writeServiceError(w, r, "read inbox", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.InboxResponse{Messages: messages})
}
