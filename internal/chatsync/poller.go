package chatsync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Poller refreshes one chat on a fixed interval
type Poller struct {
	client   *Client
	chatID   uuid.UUID
	interval time.Duration
	onChange func([]Message)
}

// NewPoller creates a poller; onChange, if set, receives the merged log
// after every tick.
func NewPoller(client *Client, chatID uuid.UUID, interval time.Duration, onChange func([]Message)) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Poller{client: client, chatID: chatID, interval: interval, onChange: onChange}
}

// Run performs the initial load and then polls until ctx is done. Only the
// initial load's error is returned.
func (p *Poller) Run(ctx context.Context) error {
	msgs, err := p.client.Load(ctx, p.chatID)
	if err != nil {
		return err
	}
	p.notify(msgs)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.client.Poll(ctx, p.chatID)
			p.notify(p.client.Messages(p.chatID))
		}
	}
}

func (p *Poller) notify(msgs []Message) {
	if p.onChange != nil {
		p.onChange(msgs)
	}
}
