package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/user"
	"github.com/curlmap/curlmap-api/internal/pkg/events"
	"github.com/curlmap/curlmap-api/internal/pkg/logger"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 500
)

// BookingDirectory resolves the two parties of a booking visible to actor
type BookingDirectory interface {
	Parties(ctx context.Context, actor user.Actor, bookingID uuid.UUID) (customerID, providerID uuid.UUID, err error)
}

// Service handles chat business logic
type Service struct {
	repo      Repository
	limiter   Limiter
	publisher events.Publisher
	bookings  BookingDirectory

	now func() time.Time
}

// NewService creates chat service
func NewService(repo Repository, limiter Limiter, publisher events.Publisher) *Service {
	return &Service{
		repo:      repo,
		limiter:   limiter,
		publisher: publisher,
		now:       time.Now,
	}
}

// SetBookingDirectory sets booking lookups (to avoid circular dependency)
func (s *Service) SetBookingDirectory(d BookingDirectory) {
	s.bookings = d
}

// EnsureBookingChat returns the chat of a booking, creating it on first use
func (s *Service) EnsureBookingChat(ctx context.Context, bookingID, customerID, providerID uuid.UUID) (uuid.UUID, error) {
	if customerID == providerID {
		return uuid.Nil, ErrSelfChat
	}
	now := s.now().UTC()
	chat := &Chat{
		ID:           uuid.New(),
		BookingID:    uuid.NullUUID{UUID: bookingID, Valid: true},
		LastActivity: now,
		CreatedAt:    now,
	}
	participants := []*Participant{
		{ChatID: chat.ID, UserID: customerID, Role: user.RoleCustomer, JoinedAt: now},
		{ChatID: chat.ID, UserID: providerID, Role: user.RoleProvider, JoinedAt: now},
	}

	id, err := s.repo.EnsureBookingChat(ctx, chat, participants)
	if err != nil {
		return uuid.Nil, err
	}
	if id == chat.ID {
		logger.FromContext(ctx).Info().
			Str("chat_id", id.String()).
			Str("booking_id", bookingID.String()).
			Msg("Booking chat created")
	}
	return id, nil
}

// OpenForBooking returns the booking's chat, creating it if the parties
// have not talked yet
func (s *Service) OpenForBooking(ctx context.Context, actor user.Actor, bookingID uuid.UUID, limit int) (*View, error) {
	if s.bookings == nil {
		return nil, ErrChatNotFound
	}
	customerID, providerID, err := s.bookings.Parties(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	chatID, err := s.EnsureBookingChat(ctx, bookingID, customerID, providerID)
	if err != nil {
		return nil, err
	}
	return s.GetChat(ctx, actor, chatID, limit)
}

// GetChat returns the chat with its most recent messages. Fetching marks
// the other participant's sent messages as delivered to the caller.
func (s *Service) GetChat(ctx context.Context, actor user.Actor, chatID uuid.UUID, limit int) (*View, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	chat, participants, me, err := s.load(ctx, actor, chatID)
	if err != nil {
		return nil, err
	}

	if me != nil {
		if _, err := s.repo.MarkDelivered(ctx, chatID, actor.ID); err != nil {
			return nil, err
		}
	}

	messages, err := s.repo.ListMessages(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}

	return &View{Chat: chat, Participants: participants, Messages: messages}, nil
}

// ListMyChats returns the caller's chats with their unread counts
func (s *Service) ListMyChats(ctx context.Context, actor user.Actor) ([]*Summary, error) {
	return s.repo.ListChatsByUser(ctx, actor.ID)
}

// SendInput is one sendMessage call
type SendInput struct {
	ClientTempID *uuid.UUID
	Content      Content
}

// SendMessage stores a message from the caller. Resending with the same
// ClientTempID returns the message stored the first time.
func (s *Service) SendMessage(ctx context.Context, actor user.Actor, chatID uuid.UUID, in SendInput) (*Message, error) {
	if in.Content == nil {
		return nil, ErrUnknownMessageType
	}
	if in.Content.Type() == MessageTypeSystem {
		return nil, ErrSystemReserved
	}
	if err := in.Content.Validate(); err != nil {
		return nil, err
	}

	_, _, me, err := s.load(ctx, actor, chatID)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return nil, ErrNotParticipant
	}
	if s.limiter != nil && !s.limiter.Allow(ctx, actor.ID) {
		return nil, ErrRateLimited
	}

	msgType, payload, err := EncodeContent(in.Content)
	if err != nil {
		return nil, err
	}
	msg := &Message{
		ID:             uuid.New(),
		ChatID:         chatID,
		SenderID:       actor.ID,
		MessageType:    msgType,
		Content:        payload,
		DeliveryStatus: StatusSent,
		CreatedAt:      s.now().UTC(),
	}
	if in.ClientTempID != nil {
		msg.ClientTempID = uuid.NullUUID{UUID: *in.ClientTempID, Valid: true}
	}

	stored, created, err := s.repo.InsertMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	if !created {
		logger.FromContext(ctx).Debug().
			Str("chat_id", chatID.String()).
			Str("message_id", stored.ID.String()).
			Msg("Duplicate send resolved to stored message")
		return stored, nil
	}

	events.Emit(ctx, s.publisher, events.MessageSent, chatID, MessageResponseFromEntity(stored))
	return stored, nil
}

// MarkChatAsRead zeroes the caller's unread count and records read
// receipts. Calling it again without new messages changes nothing.
func (s *Service) MarkChatAsRead(ctx context.Context, actor user.Actor, chatID uuid.UUID) error {
	_, _, me, err := s.load(ctx, actor, chatID)
	if err != nil {
		return err
	}
	if me == nil {
		return ErrNotParticipant
	}

	at := s.now().UTC()
	read, err := s.repo.MarkRead(ctx, chatID, actor.ID, at)
	if err != nil {
		return err
	}
	if read > 0 {
		events.Emit(ctx, s.publisher, events.ChatRead, chatID, ReadPayload{
			ChatID: chatID,
			UserID: actor.ID,
			ReadAt: at,
			Count:  read,
		})
	}
	return nil
}

// load returns the chat, its participants and the caller's participant
// entry. Admins may load chats they are not part of; me is nil then.
func (s *Service) load(ctx context.Context, actor user.Actor, chatID uuid.UUID) (*Chat, []*Participant, *Participant, error) {
	chat, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, nil, nil, err
	}
	if chat == nil {
		return nil, nil, nil, ErrChatNotFound
	}

	participants, err := s.repo.ListParticipants(ctx, chatID)
	if err != nil {
		return nil, nil, nil, err
	}
	me := findParticipant(participants, actor.ID)
	if me == nil && !actor.IsAdmin() {
		return nil, nil, nil, ErrNotParticipant
	}
	return chat, participants, me, nil
}
