// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateGroupRequest: group_id, owner_id
  - UpdateSettingsRequest: event_date, max_price (both optional)
  - SetLanguageRequest: language
  - JoinGroupRequest: user_id, username, first_name
  - SetWishRequest: wish
  - SendMessageRequest: to ("recipient" or "santa"), text

# Response Types

Types for JSON responses:

  - CreateGroupResponse: group_id, admin_key
  - GroupInfoResponse: group, state, participant_count, created_ago
  - JoinGroupResponse: added, user_key
  - ParticipantListResponse: ordered participants
  - AssignResponse: outcome, participants
  - AssignmentResponse: recipient (with wish), event_date, max_price
  - MyAssignmentsResponse: one AssignmentResponse per assigned group
  - SendMessageResponse, InboxResponse
  - ErrorResponse: error, message

# Domain Types

  - Group: owner, settings, language, assigned flag
  - Participant: display metadata, wish, and the never-serialized AssignedTo
  - Message: an anonymous note routed through the assignment relation

# Constants

Group states:

	StateUnassigned = "unassigned"
	StateAssigned   = "assigned"

Languages:

	LanguageEN = "en"
	LanguageRU = "ru"

Message sender roles, from the reader's point of view:

	FromSanta     = "santa"
	FromRecipient = "recipient"
*/
package models
