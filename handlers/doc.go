// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Secret Santa API.

# Handler Types

Each handler is a struct with service and config dependencies:

  - GroupHandler: Group lifecycle (create, settings, language, assign, delete)
  - ParticipantHandler: Joining, listing, assignment lookup, wishes
  - MessageHandler: Anonymous Santa/recipient messages
  - UserHandler: A user's recipients across groups

Handlers are created via constructor functions that accept *santa.Service
and Config:

	groupHandler := handlers.NewGroupHandler(svc, cfg)

# Group Lifecycle

Groups move once from unassigned to assigned:

	POST /groups             → CreateGroup (returns admin_key)
	POST /groups/{id}/participants → Join (unassigned only, returns user_key)
	POST /groups/{id}/assign → Assign (one-shot draw)

Admin operations require the X-Admin-Key header. The assign response always
carries an outcome: success, not found, already assigned, or insufficient
participants.

# Participant Operations

Participant operations require the X-User-Key header matching {uid}:

	GET /groups/{id}/participants/{uid}/assignment → GetAssignment
	PUT /groups/{id}/participants/{uid}/wish       → SetWish
	POST /groups/{id}/participants/{uid}/messages  → Send
	GET  /groups/{id}/participants/{uid}/messages  → Inbox

Assignments are never part of the participant list, and message senders are
never exposed; a recipient only sees "santa" or "recipient".

# Errors

Service errors map to statuses in one place (errors.go): not found → 404,
already assigned or not yet assigned → 409, too few participants → 422,
validation → 400, anything else → 500 with a generic message.
*/
package handlers
