// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package boltstore implements santa.Store on an embedded bbolt file.
//
// Layout:
//
//	groups/<gid>                 groupRecord
//	members/<gid>/<uid>          participantRecord
//	givers/<gid>/<receiver uid>  giver uid
//	messages/<gid>/<seq>         messageRecord
//	memberships/<uid><gid>       empty
//
// All integer keys are 8-byte big-endian. bbolt allows a single writer, so
// every Update is serialized and the assignment transaction needs no lock.
package boltstore

import (
	"bytes"
	"cmp"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"

	"github.com/lexa2hk/secret-santa-telegram-bot/models"
	"github.com/lexa2hk/secret-santa-telegram-bot/santa"
)

var (
	bucketGroups      = []byte("groups")
	bucketMembers     = []byte("members")
	bucketGivers      = []byte("givers")
	bucketMessages    = []byte("messages")
	bucketMemberships = []byte("memberships")
)

var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

type groupRecord struct {
	OwnerID   int64     `cbor:"1,keyasint"`
	EventDate *string   `cbor:"2,keyasint,omitempty"`
	MaxPrice  *float64  `cbor:"3,keyasint,omitempty"`
	Language  string    `cbor:"4,keyasint"`
	Assigned  bool      `cbor:"5,keyasint"`
	CreatedAt time.Time `cbor:"6,keyasint"`
}

type participantRecord struct {
	Seq        uint64 `cbor:"1,keyasint"` // Join order within the group.
	Username   string `cbor:"2,keyasint,omitempty"`
	FirstName  string `cbor:"3,keyasint,omitempty"`
	AssignedTo *int64 `cbor:"4,keyasint,omitempty"`
	Wish       string `cbor:"5,keyasint,omitempty"`
}

type messageRecord struct {
	SenderID    int64     `cbor:"1,keyasint"`
	RecipientID int64     `cbor:"2,keyasint"`
	From        string    `cbor:"3,keyasint"`
	Text        string    `cbor:"4,keyasint"`
	CreatedAt   time.Time `cbor:"5,keyasint"`
}

type Store struct {
	db *bbolt.DB
}

var _ santa.Store = (*Store)(nil)

// Open opens or creates the database file at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketGroups, bucketMembers, bucketGivers, bucketMessages, bucketMemberships} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

func membershipKey(userID, groupID int64) []byte {
	return append(itob(userID), itob(groupID)...)
}

func toGroup(id int64, rec groupRecord) models.Group {
	return models.Group{
		ID:        id,
		OwnerID:   rec.OwnerID,
		EventDate: rec.EventDate,
		MaxPrice:  rec.MaxPrice,
		Language:  rec.Language,
		Assigned:  rec.Assigned,
		CreatedAt: rec.CreatedAt,
	}
}

func toParticipant(userID int64, rec participantRecord) models.Participant {
	return models.Participant{
		UserID:     userID,
		Username:   rec.Username,
		FirstName:  rec.FirstName,
		AssignedTo: rec.AssignedTo,
		Wish:       rec.Wish,
	}
}

func loadGroup(tx *bbolt.Tx, groupID int64) (groupRecord, error) {
	var rec groupRecord
	data := tx.Bucket(bucketGroups).Get(itob(groupID))
	if data == nil {
		return rec, santa.ErrGroupNotFound
	}
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode group %d: %w", groupID, err)
	}
	return rec, nil
}

func saveGroup(tx *bbolt.Tx, groupID int64, rec groupRecord) error {
	data, err := encMode.Marshal(rec)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketGroups).Put(itob(groupID), data)
}

// groupBucket returns the group's nested bucket under parent, or nil.
func groupBucket(tx *bbolt.Tx, parent []byte, groupID int64) *bbolt.Bucket {
	return tx.Bucket(parent).Bucket(itob(groupID))
}

func loadParticipant(tx *bbolt.Tx, groupID, userID int64) (participantRecord, error) {
	var rec participantRecord
	members := groupBucket(tx, bucketMembers, groupID)
	if members == nil {
		return rec, santa.ErrNotParticipant
	}
	data := members.Get(itob(userID))
	if data == nil {
		return rec, santa.ErrNotParticipant
	}
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode participant %d: %w", userID, err)
	}
	return rec, nil
}

func (s *Store) UpsertGroup(ctx context.Context, g models.Group) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		rec, err := loadGroup(tx, g.ID)
		switch {
		case err == nil:
			rec.OwnerID = g.OwnerID
		case errors.Is(err, santa.ErrGroupNotFound):
			rec = groupRecord{OwnerID: g.OwnerID, Language: g.Language, CreatedAt: g.CreatedAt}
		default:
			return err
		}
		return saveGroup(tx, g.ID, rec)
	})
}

func (s *Store) Group(ctx context.Context, groupID int64) (models.Group, error) {
	var g models.Group
	err := s.db.View(func(tx *bbolt.Tx) error {
		rec, err := loadGroup(tx, groupID)
		if err != nil {
			return err
		}
		g = toGroup(groupID, rec)
		return nil
	})
	return g, err
}

func (s *Store) UpdateSettings(ctx context.Context, groupID int64, eventDate *string, maxPrice *float64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		rec, err := loadGroup(tx, groupID)
		if err != nil {
			return err
		}
		if eventDate != nil {
			rec.EventDate = eventDate
		}
		if maxPrice != nil {
			rec.MaxPrice = maxPrice
		}
		return saveGroup(tx, groupID, rec)
	})
}

func (s *Store) SetLanguage(ctx context.Context, groupID int64, lang string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		rec, err := loadGroup(tx, groupID)
		if err != nil {
			return err
		}
		rec.Language = lang
		return saveGroup(tx, groupID, rec)
	})
}

func (s *Store) DeleteGroup(ctx context.Context, groupID int64) (bool, error) {
	var deleted bool
	err := s.db.Update(func(tx *bbolt.Tx) error {
		key := itob(groupID)
		groups := tx.Bucket(bucketGroups)
		if groups.Get(key) == nil {
			return nil
		}

		if members := tx.Bucket(bucketMembers).Bucket(key); members != nil {
			memberships := tx.Bucket(bucketMemberships)
			err := members.ForEach(func(k, _ []byte) error {
				return memberships.Delete(membershipKey(btoi(k), groupID))
			})
			if err != nil {
				return err
			}
		}

		for _, parent := range [][]byte{bucketMembers, bucketGivers, bucketMessages} {
			err := tx.Bucket(parent).DeleteBucket(key)
			if err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return err
			}
		}

		deleted = true
		return groups.Delete(key)
	})
	return deleted, err
}

func (s *Store) AddParticipant(ctx context.Context, groupID int64, p models.Participant) (bool, error) {
	var added bool
	err := s.db.Update(func(tx *bbolt.Tx) error {
		g, err := loadGroup(tx, groupID)
		if err != nil {
			return err
		}
		if g.Assigned {
			return santa.ErrAlreadyAssigned
		}

		members, err := tx.Bucket(bucketMembers).CreateBucketIfNotExists(itob(groupID))
		if err != nil {
			return err
		}
		key := itob(p.UserID)
		if members.Get(key) != nil {
			return nil
		}

		seq, err := members.NextSequence()
		if err != nil {
			return err
		}
		data, err := encMode.Marshal(participantRecord{Seq: seq, Username: p.Username, FirstName: p.FirstName})
		if err != nil {
			return err
		}
		if err := members.Put(key, data); err != nil {
			return err
		}
		if err := tx.Bucket(bucketMemberships).Put(membershipKey(p.UserID, groupID), []byte{}); err != nil {
			return err
		}

		added = true
		return nil
	})
	return added, err
}

type seqParticipant struct {
	seq uint64
	p   models.Participant
}

func listParticipants(tx *bbolt.Tx, groupID int64) ([]models.Participant, error) {
	members := groupBucket(tx, bucketMembers, groupID)
	if members == nil {
		return []models.Participant{}, nil
	}

	var list []seqParticipant
	err := members.ForEach(func(k, v []byte) error {
		var rec participantRecord
		if err := cbor.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("decode participant: %w", err)
		}
		list = append(list, seqParticipant{seq: rec.Seq, p: toParticipant(btoi(k), rec)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(list, func(a, b seqParticipant) int { return cmp.Compare(a.seq, b.seq) })
	out := make([]models.Participant, len(list))
	for i, sp := range list {
		out[i] = sp.p
	}
	return out, nil
}

func (s *Store) Participants(ctx context.Context, groupID int64) ([]models.Participant, error) {
	var out []models.Participant
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		out, err = listParticipants(tx, groupID)
		return err
	})
	return out, err
}

func (s *Store) Participant(ctx context.Context, groupID, userID int64) (models.Participant, error) {
	var p models.Participant
	err := s.db.View(func(tx *bbolt.Tx) error {
		rec, err := loadParticipant(tx, groupID, userID)
		if err != nil {
			return err
		}
		p = toParticipant(userID, rec)
		return nil
	})
	return p, err
}

func (s *Store) SetWish(ctx context.Context, groupID, userID int64, wish string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		rec, err := loadParticipant(tx, groupID, userID)
		if err != nil {
			return err
		}
		rec.Wish = wish
		data, err := encMode.Marshal(rec)
		if err != nil {
			return err
		}
		return groupBucket(tx, bucketMembers, groupID).Put(itob(userID), data)
	})
}

func receiver(tx *bbolt.Tx, groupID, giverID int64) (models.Participant, error) {
	giver, err := loadParticipant(tx, groupID, giverID)
	if errors.Is(err, santa.ErrNotParticipant) {
		return models.Participant{}, santa.ErrNoAssignment
	}
	if err != nil {
		return models.Participant{}, err
	}
	if giver.AssignedTo == nil {
		return models.Participant{}, santa.ErrNoAssignment
	}
	rec, err := loadParticipant(tx, groupID, *giver.AssignedTo)
	if errors.Is(err, santa.ErrNotParticipant) {
		return models.Participant{}, santa.ErrNoAssignment
	}
	if err != nil {
		return models.Participant{}, err
	}
	return toParticipant(*giver.AssignedTo, rec), nil
}

func (s *Store) Receiver(ctx context.Context, groupID, giverID int64) (models.Participant, error) {
	var p models.Participant
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		p, err = receiver(tx, groupID, giverID)
		return err
	})
	return p, err
}

func (s *Store) Giver(ctx context.Context, groupID, receiverID int64) (models.Participant, error) {
	var p models.Participant
	err := s.db.View(func(tx *bbolt.Tx) error {
		givers := groupBucket(tx, bucketGivers, groupID)
		if givers == nil {
			return santa.ErrNoAssignment
		}
		v := givers.Get(itob(receiverID))
		if v == nil {
			return santa.ErrNoAssignment
		}
		giverID := btoi(v)
		rec, err := loadParticipant(tx, groupID, giverID)
		if errors.Is(err, santa.ErrNotParticipant) {
			return santa.ErrNoAssignment
		}
		if err != nil {
			return err
		}
		p = toParticipant(giverID, rec)
		return nil
	})
	return p, err
}

func (s *Store) AssignedGroups(ctx context.Context, userID int64) ([]models.Group, error) {
	groups := []models.Group{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		prefix := itob(userID)
		c := tx.Bucket(bucketMemberships).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			groupID := btoi(k[8:])
			rec, err := loadGroup(tx, groupID)
			if errors.Is(err, santa.ErrGroupNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if rec.Assigned {
				groups = append(groups, toGroup(groupID, rec))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(groups, func(a, b models.Group) int { return cmp.Compare(a.ID, b.ID) })
	return groups, nil
}

func (s *Store) AddMessage(ctx context.Context, m models.Message) (models.Message, error) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := loadGroup(tx, m.GroupID); err != nil {
			return err
		}
		messages, err := tx.Bucket(bucketMessages).CreateBucketIfNotExists(itob(m.GroupID))
		if err != nil {
			return err
		}
		seq, err := messages.NextSequence()
		if err != nil {
			return err
		}
		data, err := encMode.Marshal(messageRecord{
			SenderID:    m.SenderID,
			RecipientID: m.RecipientID,
			From:        m.From,
			Text:        m.Text,
			CreatedAt:   m.CreatedAt,
		})
		if err != nil {
			return err
		}
		m.ID = int64(seq)
		return messages.Put(itob(m.ID), data)
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

func (s *Store) Inbox(ctx context.Context, groupID, userID int64) ([]models.Message, error) {
	out := []models.Message{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		messages := groupBucket(tx, bucketMessages, groupID)
		if messages == nil {
			return nil
		}
		return messages.ForEach(func(k, v []byte) error {
			var rec messageRecord
			if err := cbor.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode message: %w", err)
			}
			if rec.RecipientID != userID {
				return nil
			}
			out = append(out, models.Message{
				ID:          btoi(k),
				GroupID:     groupID,
				SenderID:    rec.SenderID,
				RecipientID: rec.RecipientID,
				From:        rec.From,
				Text:        rec.Text,
				CreatedAt:   rec.CreatedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Assign runs fn in a single bbolt write transaction. Returning an error from
// the Update callback rolls everything back.
func (s *Store) Assign(ctx context.Context, groupID int64, fn func(tx santa.AssignTx) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&assignTx{tx: tx, groupID: groupID})
	})
}

type assignTx struct {
	tx      *bbolt.Tx
	groupID int64
}

func (a *assignTx) Group() (models.Group, error) {
	rec, err := loadGroup(a.tx, a.groupID)
	if err != nil {
		return models.Group{}, err
	}
	return toGroup(a.groupID, rec), nil
}

func (a *assignTx) ParticipantIDs() ([]int64, error) {
	participants, err := listParticipants(a.tx, a.groupID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(participants))
	for i, p := range participants {
		ids[i] = p.UserID
	}
	return ids, nil
}

func (a *assignTx) SaveAssignment(pairs map[int64]int64) error {
	g, err := loadGroup(a.tx, a.groupID)
	if err != nil {
		return err
	}
	if g.Assigned {
		return santa.ErrAlreadyAssigned
	}

	members := groupBucket(a.tx, bucketMembers, a.groupID)
	if members == nil {
		return fmt.Errorf("group %d has no participants", a.groupID)
	}
	givers, err := a.tx.Bucket(bucketGivers).CreateBucketIfNotExists(itob(a.groupID))
	if err != nil {
		return err
	}

	for giver, receiver := range pairs {
		rec, err := loadParticipant(a.tx, a.groupID, giver)
		if err != nil {
			return fmt.Errorf("participant %d not in group %d: %w", giver, a.groupID, err)
		}
		rec.AssignedTo = &receiver
		data, err := encMode.Marshal(rec)
		if err != nil {
			return err
		}
		if err := members.Put(itob(giver), data); err != nil {
			return err
		}
		if err := givers.Put(itob(receiver), itob(giver)); err != nil {
			return err
		}
	}

	g.Assigned = true
	return saveGroup(a.tx, a.groupID, g)
}
