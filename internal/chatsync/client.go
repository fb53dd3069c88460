package chatsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/curlmap/curlmap-api/internal/domain/chat"
)

const (
	defaultSendTimeout  = 10 * time.Second
	fetchTimeout        = 30 * time.Second
	defaultHistoryLimit = chat.DefaultHistoryLimit
)

// Transport is the pull-based link to the chat API
type Transport interface {
	FetchChat(ctx context.Context, chatID uuid.UUID, limit int) (*chat.ChatResponse, error)
	SendMessage(ctx context.Context, chatID uuid.UUID, req chat.SendMessageRequest) (*chat.MessageResponse, error)
	MarkRead(ctx context.Context, chatID uuid.UUID) error
}

// Client keeps one merged log per chat for a single signed-in user
type Client struct {
	transport   Transport
	self        uuid.UUID
	sendTimeout time.Duration
	log         zerolog.Logger

	mu     sync.Mutex
	stores map[uuid.UUID]*Store
	polls  singleflight.Group

	now   func() time.Time
	newID func() uuid.UUID
}

// NewClient creates a reconciliation client acting as self
func NewClient(transport Transport, self uuid.UUID, sendTimeout time.Duration, log zerolog.Logger) *Client {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Client{
		transport:   transport,
		self:        self,
		sendTimeout: sendTimeout,
		log:         log,
		stores:      make(map[uuid.UUID]*Store),
		now:         time.Now,
		newID:       uuid.New,
	}
}

// Store returns the log for chatID, creating an empty one on first use
func (c *Client) Store(chatID uuid.UUID) *Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stores[chatID]
	if !ok {
		s = NewStore(chatID, c.self)
		c.stores[chatID] = s
	}
	return s
}

// Load fetches the chat and merges it. Errors are returned to the caller.
func (c *Client) Load(ctx context.Context, chatID uuid.UUID) ([]Message, error) {
	if err := c.refresh(ctx, chatID); err != nil {
		return nil, err
	}
	return c.Store(chatID).Messages(), nil
}

// Poll is the background variant of Load: a failed fetch is logged and the
// previously merged log stays as it was.
func (c *Client) Poll(ctx context.Context, chatID uuid.UUID) {
	if err := c.refresh(ctx, chatID); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.Warn().Err(err).Str("chat_id", chatID.String()).Msg("Background chat poll failed")
	}
}

// refresh runs at most one fetch per chat at a time; concurrent callers
// share its result. The shared fetch is detached from the caller that
// started it, so one caller giving up does not fail the others; each
// caller stops waiting when its own ctx is done.
func (c *Client) refresh(ctx context.Context, chatID uuid.UUID) error {
	ch := c.polls.DoChan(chatID.String(), func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		resp, err := c.transport.FetchChat(fetchCtx, chatID, defaultHistoryLimit)
		if err != nil {
			return nil, err
		}
		c.Store(chatID).Merge(resp)
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send echoes content locally, then writes it. When the server does not
// acknowledge within the send timeout the local entry ends up failed and
// can be retried with Retry.
func (c *Client) Send(ctx context.Context, chatID uuid.UUID, content chat.Content) (Message, error) {
	if content == nil {
		return Message{}, chat.ErrUnknownMessageType
	}
	if err := content.Validate(); err != nil {
		return Message{}, err
	}
	msgType, payload, err := chat.EncodeContent(content)
	if err != nil {
		return Message{}, err
	}

	tempID := c.newID()
	c.Store(chatID).AddLocal(tempID, msgType, payload, c.now().UTC())
	return c.deliver(ctx, chatID, tempID, msgType, payload)
}

// Retry resends a failed message under its original temp id, so the server
// resolves it to the same stored message if an earlier attempt landed.
func (c *Client) Retry(ctx context.Context, chatID, tempID uuid.UUID) (Message, error) {
	m, err := c.Store(chatID).Resend(tempID)
	if errors.Is(err, ErrAlreadyDelivered) {
		return m, nil
	}
	if err != nil {
		return Message{}, err
	}
	return c.deliver(ctx, chatID, tempID, m.MessageType, m.Content)
}

func (c *Client) deliver(ctx context.Context, chatID, tempID uuid.UUID, msgType chat.MessageType, payload chat.Payload) (Message, error) {
	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	resp, err := c.transport.SendMessage(sendCtx, chatID, chat.SendMessageRequest{
		ClientTempID: &tempID,
		MessageType:  string(msgType),
		Content:      payload,
	})
	if err != nil {
		store := c.Store(chatID)
		failed, ok := store.Fail(tempID)
		if !ok {
			// a poll already merged the stored copy while the ack was lost
			if landed, resolved := store.Resolved(tempID); resolved {
				c.log.Debug().Err(err).
					Str("chat_id", chatID.String()).
					Str("message_id", landed.ID.String()).
					Msg("Send unacknowledged but message already in log")
				return landed, nil
			}
		}
		if errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			err = errors.Join(ErrSendTimeout, err)
		}
		c.log.Warn().Err(err).
			Str("chat_id", chatID.String()).
			Str("client_temp_id", tempID.String()).
			Msg("Message send failed")
		return failed, err
	}

	return c.Store(chatID).Ack(tempID, resp), nil
}

// MarkRead records the caller's read receipts, then refreshes the log so
// unread counters reflect it.
func (c *Client) MarkRead(ctx context.Context, chatID uuid.UUID) error {
	if err := c.transport.MarkRead(ctx, chatID); err != nil {
		return err
	}
	c.Poll(ctx, chatID)
	return nil
}

// Messages returns the current merged log without fetching
func (c *Client) Messages(chatID uuid.UUID) []Message {
	return c.Store(chatID).Messages()
}
