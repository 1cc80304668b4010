// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sqlstore implements santa.Store on database/sql for PostgreSQL
// and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lexa2hk/secret-santa-telegram-bot/db"
	"github.com/lexa2hk/secret-santa-telegram-bot/models"
	"github.com/lexa2hk/secret-santa-telegram-bot/santa"
)

const groupColumns = `group_id, admin_id, event_date, max_price, language, is_assigned, created_at`

const participantColumns = `user_id, username, first_name, assigned_to, wish`

type Store struct {
	conn    *sql.DB
	dialect db.Dialect
}

var _ santa.Store = (*Store)(nil)

// New wraps an open connection. The store owns conn and closes it on Close.
func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{conn: conn, dialect: dialect}
}

func (s *Store) q(query string) string {
	return db.Rebind(s.dialect, query)
}

// forUpdate locks the selected group row for the rest of the transaction.
// SQLite has no row locks; its single connection serializes writers.
func (s *Store) forUpdate() string {
	if s.dialect == db.Postgres {
		return " FOR UPDATE"
	}
	return ""
}

func (s *Store) Close() error {
	return s.conn.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (models.Group, error) {
	var g models.Group
	err := row.Scan(&g.ID, &g.OwnerID, &g.EventDate, &g.MaxPrice, &g.Language, &g.Assigned, &g.CreatedAt)
	return g, err
}

func scanParticipant(row rowScanner) (models.Participant, error) {
	var p models.Participant
	var username, firstName, wish sql.NullString
	if err := row.Scan(&p.UserID, &username, &firstName, &p.AssignedTo, &wish); err != nil {
		return models.Participant{}, err
	}
	p.Username = username.String
	p.FirstName = firstName.String
	p.Wish = wish.String
	return p, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func (s *Store) UpsertGroup(ctx context.Context, g models.Group) error {
	_, err := s.conn.ExecContext(ctx, s.q(`
		INSERT INTO santa_group (group_id, admin_id, language, is_assigned, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (group_id) DO UPDATE SET admin_id = excluded.admin_id
	`), g.ID, g.OwnerID, g.Language, false, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert group: %w", err)
	}
	return nil
}

func (s *Store) Group(ctx context.Context, groupID int64) (models.Group, error) {
	row := s.conn.QueryRowContext(ctx, s.q(`SELECT `+groupColumns+` FROM santa_group WHERE group_id = ?`), groupID)
	g, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, santa.ErrGroupNotFound
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("query group: %w", err)
	}
	return g, nil
}

func (s *Store) UpdateSettings(ctx context.Context, groupID int64, eventDate *string, maxPrice *float64) error {
	res, err := s.conn.ExecContext(ctx, s.q(`
		UPDATE santa_group
		SET event_date = COALESCE(?, event_date), max_price = COALESCE(?, max_price)
		WHERE group_id = ?
	`), eventDate, maxPrice, groupID)
	if err != nil {
		return fmt.Errorf("update group settings: %w", err)
	}
	return requireRow(res, santa.ErrGroupNotFound)
}

func (s *Store) SetLanguage(ctx context.Context, groupID int64, lang string) error {
	res, err := s.conn.ExecContext(ctx, s.q(`UPDATE santa_group SET language = ? WHERE group_id = ?`), lang, groupID)
	if err != nil {
		return fmt.Errorf("update group language: %w", err)
	}
	return requireRow(res, santa.ErrGroupNotFound)
}

func (s *Store) DeleteGroup(ctx context.Context, groupID int64) (bool, error) {
	res, err := s.conn.ExecContext(ctx, s.q(`DELETE FROM santa_group WHERE group_id = ?`), groupID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) AddParticipant(ctx context.Context, groupID int64, p models.Participant) (bool, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var assigned bool
	err = tx.QueryRowContext(ctx, s.q(`SELECT is_assigned FROM santa_group WHERE group_id = ?`+s.forUpdate()), groupID).Scan(&assigned)
	if errors.Is(err, sql.ErrNoRows) {
		return false, santa.ErrGroupNotFound
	}
	if err != nil {
		return false, fmt.Errorf("query group: %w", err)
	}
	if assigned {
		return false, santa.ErrAlreadyAssigned
	}

	res, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO participant (group_id, user_id, username, first_name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`), groupID, p.UserID, nullString(p.Username), nullString(p.FirstName))
	if err != nil {
		return false, fmt.Errorf("insert participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Participants(ctx context.Context, groupID int64) ([]models.Participant, error) {
	rows, err := s.conn.QueryContext(ctx, s.q(`
		SELECT `+participantColumns+`
		FROM participant
		WHERE group_id = ?
		ORDER BY id
	`), groupID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (s *Store) Participant(ctx context.Context, groupID, userID int64) (models.Participant, error) {
	row := s.conn.QueryRowContext(ctx, s.q(`
		SELECT `+participantColumns+`
		FROM participant
		WHERE group_id = ? AND user_id = ?
	`), groupID, userID)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, santa.ErrNotParticipant
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("query participant: %w", err)
	}
	return p, nil
}

func (s *Store) SetWish(ctx context.Context, groupID, userID int64, wish string) error {
	res, err := s.conn.ExecContext(ctx, s.q(`
		UPDATE participant SET wish = ? WHERE group_id = ? AND user_id = ?
	`), nullString(wish), groupID, userID)
	if err != nil {
		return fmt.Errorf("update wish: %w", err)
	}
	return requireRow(res, santa.ErrNotParticipant)
}

func (s *Store) Receiver(ctx context.Context, groupID, giverID int64) (models.Participant, error) {
	row := s.conn.QueryRowContext(ctx, s.q(`
		SELECT r.user_id, r.username, r.first_name, r.assigned_to, r.wish
		FROM participant g
		JOIN participant r ON r.group_id = g.group_id AND r.user_id = g.assigned_to
		WHERE g.group_id = ? AND g.user_id = ?
	`), groupID, giverID)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, santa.ErrNoAssignment
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("query receiver: %w", err)
	}
	return p, nil
}

func (s *Store) Giver(ctx context.Context, groupID, receiverID int64) (models.Participant, error) {
	row := s.conn.QueryRowContext(ctx, s.q(`
		SELECT `+participantColumns+`
		FROM participant
		WHERE group_id = ? AND assigned_to = ?
	`), groupID, receiverID)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, santa.ErrNoAssignment
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("query giver: %w", err)
	}
	return p, nil
}

func (s *Store) AssignedGroups(ctx context.Context, userID int64) ([]models.Group, error) {
	rows, err := s.conn.QueryContext(ctx, s.q(`
		SELECT g.group_id, g.admin_id, g.event_date, g.max_price, g.language, g.is_assigned, g.created_at
		FROM participant p
		JOIN santa_group g ON g.group_id = p.group_id
		WHERE p.user_id = ? AND g.is_assigned
		ORDER BY g.group_id
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("query user groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Store) AddMessage(ctx context.Context, m models.Message) (models.Message, error) {
	err := s.conn.QueryRowContext(ctx, s.q(`
		INSERT INTO message (group_id, sender_id, recipient_id, sender_role, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`), m.GroupID, m.SenderID, m.RecipientID, m.From, m.Text, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

func (s *Store) Inbox(ctx context.Context, groupID, userID int64) ([]models.Message, error) {
	rows, err := s.conn.QueryContext(ctx, s.q(`
		SELECT id, group_id, sender_id, recipient_id, sender_role, body, created_at
		FROM message
		WHERE group_id = ? AND recipient_id = ?
		ORDER BY id
	`), groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("query inbox: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.GroupID, &m.SenderID, &m.RecipientID, &m.From, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

func (s *Store) Assign(ctx context.Context, groupID int64, fn func(tx santa.AssignTx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&assignTx{ctx: ctx, tx: tx, store: s, groupID: groupID}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type assignTx struct {
	ctx     context.Context
	tx      *sql.Tx
	store   *Store
	groupID int64
}

func (a *assignTx) Group() (models.Group, error) {
	row := a.tx.QueryRowContext(a.ctx, a.store.q(`SELECT `+groupColumns+` FROM santa_group WHERE group_id = ?`+a.store.forUpdate()), a.groupID)
	g, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, santa.ErrGroupNotFound
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("query group: %w", err)
	}
	return g, nil
}

func (a *assignTx) ParticipantIDs() ([]int64, error) {
	rows, err := a.tx.QueryContext(a.ctx, a.store.q(`SELECT user_id FROM participant WHERE group_id = ? ORDER BY id`), a.groupID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (a *assignTx) SaveAssignment(pairs map[int64]int64) error {
	stmt, err := a.tx.PrepareContext(a.ctx, a.store.q(`UPDATE participant SET assigned_to = ? WHERE group_id = ? AND user_id = ?`))
	if err != nil {
		return fmt.Errorf("prepare assignment: %w", err)
	}
	defer stmt.Close()

	for giver, receiver := range pairs {
		res, err := stmt.ExecContext(a.ctx, receiver, a.groupID, giver)
		if err != nil {
			return fmt.Errorf("save assignment for %d: %w", giver, err)
		}
		if err := requireRow(res, fmt.Errorf("participant %d not in group %d", giver, a.groupID)); err != nil {
			return err
		}
	}

	// Conditional flip: a concurrent writer that got here first leaves zero rows.
	res, err := a.tx.ExecContext(a.ctx, a.store.q(`UPDATE santa_group SET is_assigned = TRUE WHERE group_id = ? AND NOT is_assigned`), a.groupID)
	if err != nil {
		return fmt.Errorf("mark group assigned: %w", err)
	}
	return requireRow(res, santa.ErrAlreadyAssigned)
}
