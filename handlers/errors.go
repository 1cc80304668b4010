// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lexa2hk/secret-santa-telegram-bot/auth"
	"github.com/lexa2hk/secret-santa-telegram-bot/middleware"
	"github.com/lexa2hk/secret-santa-telegram-bot/santa"
)

// statusFor maps a service error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, santa.ErrGroupNotFound),
		errors.Is(err, santa.ErrNotParticipant),
		errors.Is(err, santa.ErrNoAssignment):
		return http.StatusNotFound
	case errors.Is(err, santa.ErrAlreadyAssigned),
		errors.Is(err, santa.ErrNotAssigned):
		return http.StatusConflict
	case errors.Is(err, santa.ErrInsufficientParticipants):
		return http.StatusUnprocessableEntity
	case errors.Is(err, santa.ErrInvalidPrice),
		errors.Is(err, santa.ErrInvalidDate),
		errors.Is(err, santa.ErrUnsupportedLanguage),
		errors.Is(err, santa.ErrWishTooLong),
		errors.Is(err, santa.ErrEmptyMessage),
		errors.Is(err, santa.ErrMessageTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError responds with the mapped status. Internal errors are
// logged and replaced by a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "request_id", middleware.RequestID(r.Context()))
		middleware.ErrorResponse(w, status, "Internal error")
		return
	}
	middleware.ErrorResponse(w, status, err.Error())
}

// pathInt64 parses a numeric path value. On failure it writes a 400 and
// reports false.
func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request, groupID int64, salt string) bool {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(groupID, adminKey, salt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

func requireUser(w http.ResponseWriter, r *http.Request, userID int64, salt string) bool {
	userKey := r.Header.Get("X-User-Key")
	if err := auth.ValidateUserKey(userID, userKey, salt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid user key")
		return false
	}
	return true
}
