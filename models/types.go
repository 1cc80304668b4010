package models

import "time"

// Group state constants
const (
	StateUnassigned = "unassigned"
	StateAssigned   = "assigned"
)

// Supported group languages
const (
	LanguageEN = "en"
	LanguageRU = "ru"
)

// Sender roles as seen by the message recipient
const (
	FromSanta     = "santa"
	FromRecipient = "recipient"
)

// Message targets as chosen by the sender
const (
	ToRecipient = "recipient"
	ToSanta     = "santa"
)

// Request types

type CreateGroupRequest struct {
	GroupID int64 `json:"group_id"`
	OwnerID int64 `json:"owner_id"`
}

type UpdateSettingsRequest struct {
	EventDate *string  `json:"event_date"`
	MaxPrice  *float64 `json:"max_price"`
}

type SetLanguageRequest struct {
	Language string `json:"language"`
}

type JoinGroupRequest struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

type SetWishRequest struct {
	Wish string `json:"wish"`
}

// To is "recipient" (the person you give to) or "santa" (the person giving to you)
type SendMessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// Response types

type CreateGroupResponse struct {
	GroupID  int64  `json:"group_id"`
	AdminKey string `json:"admin_key"`
}

type GroupInfoResponse struct {
	Group            Group  `json:"group"`
	State            string `json:"state"`
	ParticipantCount int    `json:"participant_count"`
	CreatedAgo       string `json:"created_ago"`
	MaxPriceDisplay  string `json:"max_price_display,omitempty"`
}

type JoinGroupResponse struct {
	Added   bool   `json:"added"`
	UserKey string `json:"user_key"`
}

type ParticipantListResponse struct {
	GroupID      int64         `json:"group_id"`
	Count        int           `json:"count"`
	Participants []Participant `json:"participants"`
}

type AssignResponse struct {
	Outcome      string `json:"outcome"`
	Participants int    `json:"participants"`
}

type AssignmentResponse struct {
	GroupID   int64       `json:"group_id"`
	Recipient Participant `json:"recipient"`
	EventDate *string     `json:"event_date,omitempty"`
	MaxPrice  *float64    `json:"max_price,omitempty"`
}

type MyAssignmentsResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
}

type SendMessageResponse struct {
	MessageID int64 `json:"message_id"`
}

type InboxResponse struct {
	Messages []Message `json:"messages"`
}

// Domain types

type Group struct {
	ID        int64     `json:"group_id"`
	OwnerID   int64     `json:"owner_id"`
	EventDate *string   `json:"event_date,omitempty"`
	MaxPrice  *float64  `json:"max_price,omitempty"`
	Language  string    `json:"language"`
	Assigned  bool      `json:"assigned"`
	CreatedAt time.Time `json:"created_at"`
}

// State reports the group's position in the unassigned -> assigned lifecycle.
func (g Group) State() string {
	if g.Assigned {
		return StateAssigned
	}
	return StateUnassigned
}

type Participant struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	AssignedTo *int64 `json:"-"` // Never expose in JSON
	Wish       string `json:"wish,omitempty"`
}

type Message struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	SenderID    int64     `json:"-"` // Never expose in JSON
	RecipientID int64     `json:"-"`
	From        string    `json:"from"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
