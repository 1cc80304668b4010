// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/lexa2hk/secret-santa-telegram-bot/cliparse"
	"github.com/lexa2hk/secret-santa-telegram-bot/handlers"
	"github.com/lexa2hk/secret-santa-telegram-bot/middleware"
	"github.com/lexa2hk/secret-santa-telegram-bot/santa"
)

func NewRouter(svc *santa.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	groupHandler := handlers.NewGroupHandler(svc, cfg)
	participantHandler := handlers.NewParticipantHandler(svc, cfg)
	messageHandler := handlers.NewMessageHandler(svc, cfg)
	userHandler := handlers.NewUserHandler(svc, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Group management (admin operations except create and read)
	mux.HandleFunc("POST /groups", middleware.WithLogging(groupHandler.CreateGroup))
	mux.HandleFunc("GET /groups/{id}", middleware.WithLogging(groupHandler.GetGroup))
	mux.HandleFunc("DELETE /groups/{id}", middleware.WithLogging(groupHandler.DeleteGroup))
	mux.HandleFunc("PUT /groups/{id}/settings", middleware.WithLogging(groupHandler.UpdateSettings))
	mux.HandleFunc("PUT /groups/{id}/language", middleware.WithLogging(groupHandler.SetLanguage))
	mux.HandleFunc("POST /groups/{id}/assign", middleware.WithLogging(groupHandler.Assign))

	// Participants
	mux.HandleFunc("POST /groups/{id}/participants", middleware.WithLogging(participantHandler.Join))
	mux.HandleFunc("GET /groups/{id}/participants", middleware.WithLogging(participantHandler.List))
	mux.HandleFunc("GET /groups/{id}/participants/{uid}/assignment", middleware.WithLogging(participantHandler.GetAssignment))
	mux.HandleFunc("PUT /groups/{id}/participants/{uid}/wish", middleware.WithLogging(participantHandler.SetWish))

	// Anonymous messaging
	mux.HandleFunc("POST /groups/{id}/participants/{uid}/messages", middleware.WithLogging(messageHandler.Send))
	mux.HandleFunc("GET /groups/{id}/participants/{uid}/messages", middleware.WithLogging(messageHandler.Inbox))

	// Per-user views
	mux.HandleFunc("GET /users/{uid}/assignments", middleware.WithLogging(userHandler.MyAssignments))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secret-santa API v1"))
	})

	return mux
}
