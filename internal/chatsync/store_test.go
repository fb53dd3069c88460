package chatsync

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/chat"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func canonicalMsg(chatID, sender uuid.UUID, tempID *uuid.UUID, at time.Time, status chat.DeliveryStatus) *chat.MessageResponse {
	return &chat.MessageResponse{
		ID:             uuid.New(),
		ChatID:         chatID,
		SenderID:       sender,
		ClientTempID:   tempID,
		MessageType:    chat.MessageTypeText,
		Content:        chat.Payload(`{"text":"x"}`),
		Timestamp:      at,
		DeliveryStatus: status,
	}
}

func TestMergeDropsSupersededEcho(t *testing.T) {
	chatID, self := uuid.New(), uuid.New()
	s := NewStore(chatID, self)
	tempID := uuid.New()
	s.AddLocal(tempID, chat.MessageTypeText, chat.Payload(`{"text":"x"}`), base)

	c := canonicalMsg(chatID, self, &tempID, base.Add(time.Second), chat.StatusSent)
	s.Merge(&chat.ChatResponse{ID: chatID, Messages: []*chat.MessageResponse{c}})

	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].ID != c.ID {
		t.Fatalf("expected only canonical entry, got %+v", msgs)
	}
	if len(s.Pending()) != 0 {
		t.Fatal("superseded echo must be retired")
	}
}

func TestMergeKeepsUnsupersededLocalEntries(t *testing.T) {
	chatID, self, peer := uuid.New(), uuid.New(), uuid.New()
	s := NewStore(chatID, self)

	sending := uuid.New()
	failed := uuid.New()
	s.AddLocal(sending, chat.MessageTypeText, nil, base.Add(3*time.Second))
	s.AddLocal(failed, chat.MessageTypeText, nil, base.Add(time.Second))
	s.Fail(failed)

	// same temp id but another sender must not retire our echo
	c1 := canonicalMsg(chatID, peer, &sending, base, chat.StatusSent)
	c2 := canonicalMsg(chatID, peer, nil, base.Add(2*time.Second), chat.StatusSent)
	s.Merge(&chat.ChatResponse{ID: chatID, Messages: []*chat.MessageResponse{c2, c1}})

	msgs := s.Messages()
	if len(msgs) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(msgs))
	}
	want := []uuid.UUID{c1.ID, failed, c2.ID, sending}
	for i, m := range msgs {
		got := m.ID
		if !m.Canonical() {
			got = m.ClientTempID
		}
		if got != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got)
		}
	}
	if msgs[1].DeliveryStatus != chat.StatusFailed || msgs[3].DeliveryStatus != chat.StatusSending {
		t.Fatalf("local statuses changed: %+v", msgs)
	}
}

func TestMergeNeverRemovesCanonical(t *testing.T) {
	chatID, self, peer := uuid.New(), uuid.New(), uuid.New()
	s := NewStore(chatID, self)

	var page []*chat.MessageResponse
	for i := 0; i < 3; i++ {
		page = append(page, canonicalMsg(chatID, peer, nil, base.Add(time.Duration(i)*time.Second), chat.StatusSent))
	}
	s.Merge(&chat.ChatResponse{ID: chatID, Messages: page})
	s.Merge(&chat.ChatResponse{ID: chatID, Messages: page[2:]})
	s.Merge(&chat.ChatResponse{ID: chatID})

	if got := len(s.Messages()); got != 3 {
		t.Fatalf("expected 3 messages after truncated pages, got %d", got)
	}
}

func TestMergeDeduplicatesAndNeverRegresses(t *testing.T) {
	chatID, self := uuid.New(), uuid.New()
	s := NewStore(chatID, self)

	c := canonicalMsg(chatID, self, nil, base, chat.StatusRead)
	c.ReadBy = []chat.ReadReceiptResponse{{UserID: uuid.New(), ReadAt: base}}
	s.Merge(&chat.ChatResponse{ID: chatID, Messages: []*chat.MessageResponse{c}})

	stale := *c
	stale.DeliveryStatus = chat.StatusSent
	stale.ReadBy = nil
	s.Merge(&chat.ChatResponse{ID: chatID, Messages: []*chat.MessageResponse{&stale, &stale}})

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one entry, got %d", len(msgs))
	}
	if msgs[0].DeliveryStatus != chat.StatusRead || len(msgs[0].ReadBy) != 1 {
		t.Fatalf("status regressed: %+v", msgs[0])
	}
}

func TestMergeIgnoresOtherChats(t *testing.T) {
	chatID, self := uuid.New(), uuid.New()
	s := NewStore(chatID, self)
	s.Merge(&chat.ChatResponse{ID: chatID, Messages: []*chat.MessageResponse{
		canonicalMsg(uuid.New(), self, nil, base, chat.StatusSent),
	}})
	if len(s.Messages()) != 0 {
		t.Fatal("messages from another chat must be ignored")
	}
	if !s.Loaded() {
		t.Fatal("expected store to be marked loaded")
	}
}

func TestFailDoesNotTouchAcknowledged(t *testing.T) {
	chatID, self := uuid.New(), uuid.New()
	s := NewStore(chatID, self)
	tempID := uuid.New()
	s.AddLocal(tempID, chat.MessageTypeText, nil, base)
	s.Ack(tempID, canonicalMsg(chatID, self, &tempID, base, chat.StatusSent))

	if _, ok := s.Fail(tempID); ok {
		t.Fatal("acknowledged message must not fail")
	}
	if _, err := s.Resend(tempID); err != ErrAlreadyDelivered {
		t.Fatalf("expected ErrAlreadyDelivered, got %v", err)
	}
}
