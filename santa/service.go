// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package santa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lexa2hk/secret-santa-telegram-bot/models"
)

const (
	maxWishLength    = 1000
	maxMessageLength = 4096
)

// Service is the group state machine. It guards the assignment engine and
// exposes the group, participant, and messaging operations.
type Service struct {
	store           Store
	engine          *Engine
	defaultLanguage string
}

// NewService wires a store and an engine. defaultLanguage is used for new
// groups; an unsupported value falls back to Russian.
func NewService(store Store, engine *Engine, defaultLanguage string) *Service {
	if !IsSupportedLanguage(defaultLanguage) {
		defaultLanguage = models.LanguageRU
	}
	return &Service{store: store, engine: engine, defaultLanguage: defaultLanguage}
}

// IsSupportedLanguage reports whether lang is one of the group languages.
func IsSupportedLanguage(lang string) bool {
	return lang == models.LanguageEN || lang == models.LanguageRU
}

// CreateGroup registers a group. Re-creating an existing group only updates
// its owner; the assigned flag and settings are left untouched.
func (s *Service) CreateGroup(ctx context.Context, groupID, ownerID int64) error {
	g := models.Group{
		ID:        groupID,
		OwnerID:   ownerID,
		Language:  s.defaultLanguage,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.UpsertGroup(ctx, g); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	slog.Info("group created", "group_id", groupID, "owner_id", ownerID)
	return nil
}

// GetGroup returns the group record.
func (s *Service) GetGroup(ctx context.Context, groupID int64) (models.Group, error) {
	return s.store.Group(ctx, groupID)
}

// IsAssigned reports whether the group has reached the assigned state.
// Unknown groups are reported as not assigned.
func (s *Service) IsAssigned(ctx context.Context, groupID int64) (bool, error) {
	g, err := s.store.Group(ctx, groupID)
	if errors.Is(err, ErrGroupNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return g.Assigned, nil
}

// UpdateSettings sets the event date (YYYY-MM-DD) and/or budget. Nil values
// are left as is.
func (s *Service) UpdateSettings(ctx context.Context, groupID int64, eventDate *string, maxPrice *float64) error {
	if maxPrice != nil && (!(*maxPrice > 0) || math.IsInf(*maxPrice, 0)) {
		return ErrInvalidPrice
	}
	if eventDate != nil {
		trimmed := strings.TrimSpace(*eventDate)
		if _, err := time.Parse(time.DateOnly, trimmed); err != nil {
			return ErrInvalidDate
		}
		eventDate = &trimmed
	}
	if err := s.store.UpdateSettings(ctx, groupID, eventDate, maxPrice); err != nil {
		return err
	}
	slog.Info("group settings updated", "group_id", groupID)
	return nil
}

// SetLanguage changes the group's language.
func (s *Service) SetLanguage(ctx context.Context, groupID int64, lang string) error {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !IsSupportedLanguage(lang) {
		return ErrUnsupportedLanguage
	}
	return s.store.SetLanguage(ctx, groupID, lang)
}

// DeleteGroup removes a group together with everything it owns.
func (s *Service) DeleteGroup(ctx context.Context, groupID int64) error {
	deleted, err := s.store.DeleteGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if !deleted {
		return ErrGroupNotFound
	}
	slog.Info("group deleted", "group_id", groupID)
	return nil
}

// AddParticipant registers a user in an unassigned group. It reports false
// if the user had already joined.
func (s *Service) AddParticipant(ctx context.Context, groupID int64, p models.Participant) (bool, error) {
	p.AssignedTo = nil
	p.Wish = ""
	added, err := s.store.AddParticipant(ctx, groupID, p)
	if err != nil {
		return false, err
	}
	if added {
		slog.Info("participant added", "group_id", groupID, "user_id", p.UserID)
	}
	return added, nil
}

// ListParticipants returns the group's participants in the order they joined.
func (s *Service) ListParticipants(ctx context.Context, groupID int64) ([]models.Participant, error) {
	if _, err := s.store.Group(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.Participants(ctx, groupID)
}

// TryAssign is the one-shot unassigned -> assigned transition.
//
// Preconditions are checked in order (group exists, group unassigned, at
// least two participants), then the engine draws the pairing and every
// assignment is committed together with the state flip. Nothing is written
// unless all of it is.
func (s *Service) TryAssign(ctx context.Context, groupID int64) (int, error) {
	var n int
	err := s.store.Assign(ctx, groupID, func(tx AssignTx) error {
		g, err := tx.Group()
		if err != nil {
			return err
		}
		if g.Assigned {
			return ErrAlreadyAssigned
		}

		ids, err := tx.ParticipantIDs()
		if err != nil {
			return err
		}
		if len(ids) < 2 {
			return ErrInsufficientParticipants
		}

		pairs, err := s.engine.Assign(ids)
		if err != nil {
			return fmt.Errorf("generate assignment: %w", err)
		}

		n = len(ids)
		return tx.SaveAssignment(pairs)
	})
	if err != nil {
		slog.Warn("assignment rejected", "group_id", groupID, "outcome", string(OutcomeOf(err)), "error", err)
		return 0, err
	}

	slog.Info("group assigned", "group_id", groupID, "participants", n)
	return n, nil
}

// GetAssignmentFor returns the participant that participantID gives to.
func (s *Service) GetAssignmentFor(ctx context.Context, groupID, participantID int64) (models.Participant, error) {
	return s.store.Receiver(ctx, groupID, participantID)
}

// GetGiverFor returns the participant giving to participantID (their Secret
// Santa). Used to route messages; never shown to the receiver.
func (s *Service) GetGiverFor(ctx context.Context, groupID, participantID int64) (models.Participant, error) {
	return s.store.Giver(ctx, groupID, participantID)
}

// UserAssignment pairs an assigned group with the user's recipient in it.
type UserAssignment struct {
	Group     models.Group
	Recipient models.Participant
}

// UserAssignments lists the user's recipients across all assigned groups.
func (s *Service) UserAssignments(ctx context.Context, userID int64) ([]UserAssignment, error) {
	groups, err := s.store.AssignedGroups(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]UserAssignment, 0, len(groups))
	for _, g := range groups {
		r, err := s.store.Receiver(ctx, g.ID, userID)
		if errors.Is(err, ErrNoAssignment) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, UserAssignment{Group: g, Recipient: r})
	}
	return out, nil
}

// SetWish stores the participant's wish list, shown to their Santa.
func (s *Service) SetWish(ctx context.Context, groupID, userID int64, wish string) error {
	wish = strings.TrimSpace(wish)
	if utf8.RuneCountInString(wish) > maxWishLength {
		return ErrWishTooLong
	}
	return s.store.SetWish(ctx, groupID, userID, wish)
}

// GetWish returns the participant's wish list, empty if none was set.
func (s *Service) GetWish(ctx context.Context, groupID, userID int64) (string, error) {
	p, err := s.store.Participant(ctx, groupID, userID)
	if err != nil {
		return "", err
	}
	return p.Wish, nil
}

// SendToRecipient delivers text from a Santa to the person they give to.
// The recipient sees it as coming from "santa".
func (s *Service) SendToRecipient(ctx context.Context, groupID, senderID int64, text string) (models.Message, error) {
	return s.send(ctx, groupID, senderID, text, s.store.Receiver, models.FromSanta)
}

// SendToSanta delivers text from a recipient to their Santa, resolved
// through the reverse lookup.
func (s *Service) SendToSanta(ctx context.Context, groupID, senderID int64, text string) (models.Message, error) {
	return s.send(ctx, groupID, senderID, text, s.store.Giver, models.FromRecipient)
}

func (s *Service) send(
	ctx context.Context,
	groupID, senderID int64,
	text string,
	resolve func(ctx context.Context, groupID, userID int64) (models.Participant, error),
	from string,
) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return models.Message{}, ErrMessageTooLong
	}

	g, err := s.store.Group(ctx, groupID)
	if err != nil {
		return models.Message{}, err
	}
	if !g.Assigned {
		return models.Message{}, ErrNotAssigned
	}
	if _, err := s.store.Participant(ctx, groupID, senderID); err != nil {
		return models.Message{}, err
	}

	peer, err := resolve(ctx, groupID, senderID)
	if err != nil {
		return models.Message{}, err
	}

	msg, err := s.store.AddMessage(ctx, models.Message{
		GroupID:     groupID,
		SenderID:    senderID,
		RecipientID: peer.UserID,
		From:        from,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("save message: %w", err)
	}

	slog.Info("message routed", "group_id", groupID, "message_id", msg.ID, "from", from)
	return msg, nil
}

// Inbox lists messages addressed to the user in the group, oldest first.
func (s *Service) Inbox(ctx context.Context, groupID, userID int64) ([]models.Message, error) {
	if _, err := s.store.Participant(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.store.Inbox(ctx, groupID, userID)
}
