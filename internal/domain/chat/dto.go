package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/user"
)

// SendMessageRequest for POST /chats/{id}/messages
type SendMessageRequest struct {
	ClientTempID *uuid.UUID `json:"client_temp_id,omitempty"`
	MessageType  string     `json:"message_type" validate:"required,message_type"`
	Content      Payload    `json:"content" validate:"required"`
}

// ParticipantResponse represents a chat participant in API
type ParticipantResponse struct {
	UserID     uuid.UUID  `json:"user_id"`
	Role       user.Role  `json:"role"`
	JoinedAt   time.Time  `json:"joined_at"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
}

// ReadReceiptResponse is one readBy entry
type ReadReceiptResponse struct {
	UserID uuid.UUID `json:"user_id"`
	ReadAt time.Time `json:"read_at"`
}

// MessageResponse represents message in API
type MessageResponse struct {
	ID             uuid.UUID             `json:"id"`
	ChatID         uuid.UUID             `json:"chat_id"`
	SenderID       uuid.UUID             `json:"sender_id"`
	ClientTempID   *uuid.UUID            `json:"client_temp_id,omitempty"`
	MessageType    MessageType           `json:"message_type"`
	Content        Payload               `json:"content"`
	Timestamp      time.Time             `json:"timestamp"`
	DeliveryStatus DeliveryStatus        `json:"delivery_status"`
	ReadBy         []ReadReceiptResponse `json:"read_by"`
}

// MessageResponseFromEntity converts entity to response
func MessageResponseFromEntity(m *Message) *MessageResponse {
	resp := &MessageResponse{
		ID:             m.ID,
		ChatID:         m.ChatID,
		SenderID:       m.SenderID,
		MessageType:    m.MessageType,
		Content:        m.Content,
		Timestamp:      m.CreatedAt,
		DeliveryStatus: m.DeliveryStatus,
		ReadBy:         make([]ReadReceiptResponse, 0, len(m.ReadBy)),
	}
	if m.ClientTempID.Valid {
		id := m.ClientTempID.UUID
		resp.ClientTempID = &id
	}
	for _, rr := range m.ReadBy {
		resp.ReadBy = append(resp.ReadBy, ReadReceiptResponse{UserID: rr.UserID, ReadAt: rr.ReadAt})
	}
	return resp
}

// ChatResponse represents a chat with its message log in API
type ChatResponse struct {
	ID           uuid.UUID             `json:"id"`
	BookingID    *uuid.UUID            `json:"booking_id,omitempty"`
	Participants []ParticipantResponse `json:"participants"`
	LastActivity time.Time             `json:"last_activity"`
	UnreadCounts map[user.Role]int     `json:"unread_counts"`
	Messages     []*MessageResponse    `json:"messages"`
}

// ChatResponseFromView converts a view to response
func ChatResponseFromView(v *View) *ChatResponse {
	resp := &ChatResponse{
		ID:           v.Chat.ID,
		LastActivity: v.Chat.LastActivity,
		UnreadCounts: v.UnreadCounts(),
		Participants: make([]ParticipantResponse, len(v.Participants)),
		Messages:     make([]*MessageResponse, len(v.Messages)),
	}
	if v.Chat.BookingID.Valid {
		id := v.Chat.BookingID.UUID
		resp.BookingID = &id
	}
	for i, p := range v.Participants {
		pr := ParticipantResponse{UserID: p.UserID, Role: p.Role, JoinedAt: p.JoinedAt}
		if p.LastReadAt.Valid {
			t := p.LastReadAt.Time
			pr.LastReadAt = &t
		}
		resp.Participants[i] = pr
	}
	for i, m := range v.Messages {
		resp.Messages[i] = MessageResponseFromEntity(m)
	}
	return resp
}

// SummaryResponse represents a chat in the caller's chat list
type SummaryResponse struct {
	ID           uuid.UUID  `json:"id"`
	BookingID    *uuid.UUID `json:"booking_id,omitempty"`
	LastActivity time.Time  `json:"last_activity"`
	UnreadCount  int        `json:"unread_count"`
}

// SummaryResponseFromEntity converts entity to response
func SummaryResponseFromEntity(s *Summary) *SummaryResponse {
	resp := &SummaryResponse{
		ID:           s.ID,
		LastActivity: s.LastActivity,
		UnreadCount:  s.UnreadCount,
	}
	if s.BookingID.Valid {
		id := s.BookingID.UUID
		resp.BookingID = &id
	}
	return resp
}

// ReadPayload is the ChatRead event body
type ReadPayload struct {
	ChatID uuid.UUID `json:"chat_id"`
	UserID uuid.UUID `json:"user_id"`
	ReadAt time.Time `json:"read_at"`
	Count  int       `json:"count"`
}
