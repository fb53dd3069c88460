package chatsync

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/chat"
	"github.com/curlmap/curlmap-api/internal/domain/user"
)

// Message is one entry of the client-side log. ID is uuid.Nil until the
// server has acknowledged the message.
type Message struct {
	ID             uuid.UUID
	ClientTempID   uuid.UUID
	ChatID         uuid.UUID
	SenderID       uuid.UUID
	MessageType    chat.MessageType
	Content        chat.Payload
	Timestamp      time.Time
	DeliveryStatus chat.DeliveryStatus
	ReadBy         []chat.ReadReceiptResponse
}

// Canonical reports whether the server has assigned the message an id
func (m Message) Canonical() bool {
	return m.ID != uuid.Nil
}

func fromResponse(r *chat.MessageResponse) *Message {
	m := &Message{
		ID:             r.ID,
		ChatID:         r.ChatID,
		SenderID:       r.SenderID,
		MessageType:    r.MessageType,
		Content:        r.Content,
		Timestamp:      r.Timestamp,
		DeliveryStatus: r.DeliveryStatus,
		ReadBy:         r.ReadBy,
	}
	if r.ClientTempID != nil {
		m.ClientTempID = *r.ClientTempID
	}
	return m
}

// Store holds the merged log of one chat. Canonical messages live in an
// arena keyed by server id; optimistic messages live in a side index keyed
// by client temp id until a canonical record supersedes them.
type Store struct {
	mu sync.RWMutex

	chatID uuid.UUID
	self   uuid.UUID

	canonical map[uuid.UUID]*Message
	pending   map[uuid.UUID]*Message
	// client temp id -> canonical id, for the caller's own messages
	acked map[uuid.UUID]uuid.UUID

	unread       map[user.Role]int
	lastActivity time.Time
	loaded       bool
}

// NewStore creates an empty log for chatID as seen by self
func NewStore(chatID, self uuid.UUID) *Store {
	return &Store{
		chatID:    chatID,
		self:      self,
		canonical: make(map[uuid.UUID]*Message),
		pending:   make(map[uuid.UUID]*Message),
		acked:     make(map[uuid.UUID]uuid.UUID),
		unread:    make(map[user.Role]int),
	}
}

// AddLocal records an optimistic echo in sending state
func (s *Store) AddLocal(tempID uuid.UUID, msgType chat.MessageType, content chat.Payload, at time.Time) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &Message{
		ClientTempID:   tempID,
		ChatID:         s.chatID,
		SenderID:       s.self,
		MessageType:    msgType,
		Content:        content,
		Timestamp:      at,
		DeliveryStatus: chat.StatusSending,
	}
	s.pending[tempID] = m
	return *m
}

// Ack replaces the optimistic entry for tempID with the server's record
func (s *Store) Ack(tempID uuid.UUID, r *chat.MessageResponse) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.upsertLocked(fromResponse(r))
	if m.ClientTempID == uuid.Nil {
		// server did not echo the key; fall back to the one we sent
		delete(s.pending, tempID)
		s.acked[tempID] = m.ID
	}
	return *m
}

// Fail marks the optimistic entry for tempID as failed. Entries already
// superseded by a canonical record are left alone.
func (s *Store) Fail(tempID uuid.UUID) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.pending[tempID]
	if !ok {
		return Message{}, false
	}
	m.DeliveryStatus = m.DeliveryStatus.Advance(chat.StatusFailed)
	return *m, true
}

// Resolved returns the canonical message that superseded tempID, if any
func (s *Store) Resolved(tempID uuid.UUID) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.acked[tempID]
	if !ok {
		return Message{}, false
	}
	return *s.canonical[id], true
}

// Resend moves a failed entry back to sending for another attempt
func (s *Store) Resend(tempID uuid.UUID) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.acked[tempID]; ok {
		return *s.canonical[id], ErrAlreadyDelivered
	}
	m, ok := s.pending[tempID]
	if !ok {
		return Message{}, ErrUnknownMessage
	}
	if m.DeliveryStatus != chat.StatusFailed {
		return *m, ErrNotFailed
	}
	m.DeliveryStatus = chat.StatusSending
	return *m, nil
}

// Merge folds a freshly fetched canonical log into the store. Canonical
// messages already observed are never removed, so a truncated page only
// adds or advances entries.
func (s *Store) Merge(resp *chat.ChatResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range resp.Messages {
		if r == nil || r.ChatID != s.chatID {
			continue
		}
		s.upsertLocked(fromResponse(r))
	}
	if resp.UnreadCounts != nil {
		s.unread = make(map[user.Role]int, len(resp.UnreadCounts))
		for role, n := range resp.UnreadCounts {
			s.unread[role] = n
		}
	}
	if resp.LastActivity.After(s.lastActivity) {
		s.lastActivity = resp.LastActivity
	}
	s.loaded = true
}

// upsertLocked stores m in the arena, advancing an existing record's
// status instead of regressing it, and retires the optimistic entry it
// supersedes.
func (s *Store) upsertLocked(m *Message) *Message {
	existing, ok := s.canonical[m.ID]
	if ok {
		existing.DeliveryStatus = existing.DeliveryStatus.Advance(m.DeliveryStatus)
		if len(m.ReadBy) > len(existing.ReadBy) {
			existing.ReadBy = m.ReadBy
		}
		m = existing
	} else {
		s.canonical[m.ID] = m
	}

	if m.ClientTempID != uuid.Nil && m.SenderID == s.self {
		delete(s.pending, m.ClientTempID)
		s.acked[m.ClientTempID] = m.ID
	}
	return m
}

// Messages returns the merged log ordered by timestamp
func (s *Store) Messages() []Message {
	s.mu.RLock()
	out := make([]Message, 0, len(s.canonical)+len(s.pending))
	for _, m := range s.canonical {
		out = append(out, *m)
	}
	for _, m := range s.pending {
		out = append(out, *m)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return sortKey(out[i]) < sortKey(out[j])
	})
	return out
}

func sortKey(m Message) string {
	if m.Canonical() {
		return m.ID.String()
	}
	return m.ClientTempID.String()
}

// Pending returns the optimistic entries not yet superseded
func (s *Store) Pending() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, 0, len(s.pending))
	for _, m := range s.pending {
		out = append(out, *m)
	}
	return out
}

// UnreadCounts returns the per-role unread counters from the last fetch
func (s *Store) UnreadCounts() map[user.Role]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[user.Role]int, len(s.unread))
	for role, n := range s.unread {
		out[role] = n
	}
	return out
}

// Loaded reports whether at least one fetch has been merged
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
