// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package santa

import (
	"context"

	"github.com/lexa2hk/secret-santa-telegram-bot/models"
)

// Store persists groups, participants, and messages.
//
// Lookups of a missing group return ErrGroupNotFound, of a missing
// participant ErrNotParticipant, and of an unset assignment ErrNoAssignment.
type Store interface {
	// UpsertGroup inserts g, or updates only the owner if the group exists.
	UpsertGroup(ctx context.Context, g models.Group) error
	Group(ctx context.Context, groupID int64) (models.Group, error)
	// UpdateSettings leaves nil fields unchanged.
	UpdateSettings(ctx context.Context, groupID int64, eventDate *string, maxPrice *float64) error
	SetLanguage(ctx context.Context, groupID int64, lang string) error
	// DeleteGroup removes the group with its participants and messages.
	DeleteGroup(ctx context.Context, groupID int64) (bool, error)

	// AddParticipant atomically checks that the group exists and is
	// unassigned, then inserts p. It reports false if p was already present.
	AddParticipant(ctx context.Context, groupID int64, p models.Participant) (bool, error)
	// Participants lists a group's participants in insertion order.
	Participants(ctx context.Context, groupID int64) ([]models.Participant, error)
	Participant(ctx context.Context, groupID, userID int64) (models.Participant, error)
	SetWish(ctx context.Context, groupID, userID int64, wish string) error

	// Receiver returns the participant giverID gives to.
	Receiver(ctx context.Context, groupID, giverID int64) (models.Participant, error)
	// Giver returns the participant assigned to receiverID. Backed by an
	// index on the assignment, not a scan.
	Giver(ctx context.Context, groupID, receiverID int64) (models.Participant, error)
	// AssignedGroups lists assigned groups userID participates in.
	AssignedGroups(ctx context.Context, userID int64) ([]models.Group, error)

	AddMessage(ctx context.Context, m models.Message) (models.Message, error)
	// Inbox lists messages addressed to userID, oldest first.
	Inbox(ctx context.Context, groupID, userID int64) ([]models.Message, error)

	// Assign runs fn inside one transaction isolated per group. The
	// transaction commits only if fn returns nil; fn's error is returned as is.
	Assign(ctx context.Context, groupID int64, fn func(tx AssignTx) error) error

	Close() error
}

// AssignTx is the view of one group inside an assignment transaction.
type AssignTx interface {
	// Group returns ErrGroupNotFound if the group does not exist.
	Group() (models.Group, error)
	// ParticipantIDs returns user IDs in insertion order.
	ParticipantIDs() ([]int64, error)
	// SaveAssignment writes every giver's receiver and flips the group to
	// assigned. It returns ErrAlreadyAssigned if the flag was already set.
	SaveAssignment(pairs map[int64]int64) error
}
