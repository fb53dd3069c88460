package chat

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/user"
)

// DeliveryStatus tracks a message from author to server to recipient
type DeliveryStatus string

const (
	StatusSending   DeliveryStatus = "sending"
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
	StatusFailed    DeliveryStatus = "failed"
)

var deliveryRank = map[DeliveryStatus]int{
	StatusSending:   1,
	StatusSent:      2,
	StatusDelivered: 3,
	StatusRead:      4,
}

// Advance returns the status a message holds after observing next.
// Statuses only move forward along sending, sent, delivered, read; failed
// is reachable from sending or sent only, and a failed message only leaves
// failed by being sent again.
func (s DeliveryStatus) Advance(next DeliveryStatus) DeliveryStatus {
	if next == StatusFailed {
		if s == StatusSending || s == StatusSent {
			return StatusFailed
		}
		return s
	}
	if s == StatusFailed {
		if next == StatusSending {
			return s
		}
		return next
	}
	if deliveryRank[next] > deliveryRank[s] {
		return next
	}
	return s
}

// IsValid reports whether s is a known delivery status
func (s DeliveryStatus) IsValid() bool {
	_, ok := deliveryRank[s]
	return ok || s == StatusFailed
}

// Chat is the conversation between a booking's customer and provider
type Chat struct {
	ID           uuid.UUID     `db:"id"`
	BookingID    uuid.NullUUID `db:"booking_id"`
	LastActivity time.Time     `db:"last_activity"`
	CreatedAt    time.Time     `db:"created_at"`
}

// Participant is a user attached to a chat
type Participant struct {
	ChatID      uuid.UUID    `db:"chat_id"`
	UserID      uuid.UUID    `db:"user_id"`
	Role        user.Role    `db:"role"`
	JoinedAt    time.Time    `db:"joined_at"`
	LastReadAt  sql.NullTime `db:"last_read_at"`
	UnreadCount int          `db:"unread_count"`
}

// Summary is a chat as listed for one of its participants
type Summary struct {
	Chat
	UnreadCount int `db:"unread_count"`
}

// ReadReceipt records that a user read a message
type ReadReceipt struct {
	MessageID uuid.UUID `db:"message_id"`
	UserID    uuid.UUID `db:"user_id"`
	ReadAt    time.Time `db:"read_at"`
}

// Message is a server-canonical chat message
type Message struct {
	ID             uuid.UUID       `db:"id"`
	ChatID         uuid.UUID       `db:"chat_id"`
	SenderID       uuid.UUID       `db:"sender_id"`
	ClientTempID   uuid.NullUUID   `db:"client_temp_id"`
	MessageType    MessageType     `db:"message_type"`
	Content        Payload         `db:"content"`
	DeliveryStatus DeliveryStatus  `db:"delivery_status"`
	CreatedAt      time.Time       `db:"created_at"`

	ReadBy []ReadReceipt `db:"-"`
}

// Body decodes the message content into its variant
func (m *Message) Body() (Content, error) {
	return DecodeContent(m.MessageType, m.Content)
}

// View is a chat with its participants and message log
type View struct {
	Chat         *Chat
	Participants []*Participant
	Messages     []*Message
}

// UnreadCounts returns the unread bucket of each participant role
func (v *View) UnreadCounts() map[user.Role]int {
	counts := make(map[user.Role]int, len(v.Participants))
	for _, p := range v.Participants {
		counts[p.Role] += p.UnreadCount
	}
	return counts
}

func findParticipant(participants []*Participant, userID uuid.UUID) *Participant {
	for _, p := range participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}
