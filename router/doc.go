// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Secret Santa API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, cfg)

# Endpoints

Health:

	GET /health

Group management (admin routes require X-Admin-Key):

	POST   /groups                - Register group, returns admin key
	GET    /groups/{id}           - Group info and state
	DELETE /groups/{id}           - Delete group (admin)
	PUT    /groups/{id}/settings  - Event date and budget (admin)
	PUT    /groups/{id}/language  - en or ru (admin)
	POST   /groups/{id}/assign    - Run the one-shot draw (admin)

Participants (per-user routes require X-User-Key):

	POST /groups/{id}/participants                  - Join, returns user key
	GET  /groups/{id}/participants                  - List in join order
	GET  /groups/{id}/participants/{uid}/assignment - Who uid gives to
	PUT  /groups/{id}/participants/{uid}/wish       - Set wish list

Anonymous messaging (requires X-User-Key):

	POST /groups/{id}/participants/{uid}/messages - Write to recipient or santa
	GET  /groups/{id}/participants/{uid}/messages - Inbox

Users (requires X-User-Key):

	GET /users/{uid}/assignments - Recipients across all assigned groups

Group and user IDs are the chat platform's numeric IDs; group chats are
negative.

# Handler Initialization

The router creates handler instances with dependency injection:

	groupHandler := handlers.NewGroupHandler(svc, cfg)
	participantHandler := handlers.NewParticipantHandler(svc, cfg)
	messageHandler := handlers.NewMessageHandler(svc, cfg)
	userHandler := handlers.NewUserHandler(svc, cfg)

All handlers share one santa.Service and the configuration.
*/
package router
