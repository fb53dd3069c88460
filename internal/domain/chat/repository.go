package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/curlmap/curlmap-api/internal/pkg/database"
)

// Repository defines chat data access interface
type Repository interface {
	// EnsureBookingChat creates the chat for bookingID with its participants
	// unless one exists, and returns the chat id either way.
	EnsureBookingChat(ctx context.Context, chat *Chat, participants []*Participant) (uuid.UUID, error)
	GetChat(ctx context.Context, id uuid.UUID) (*Chat, error)
	GetChatByBooking(ctx context.Context, bookingID uuid.UUID) (*Chat, error)
	ListParticipants(ctx context.Context, chatID uuid.UUID) ([]*Participant, error)
	ListChatsByUser(ctx context.Context, userID uuid.UUID) ([]*Summary, error)

	// InsertMessage stores msg and bumps the other participants' unread
	// counts. When a message with the same (chat, sender, client temp id)
	// exists, nothing is written and the stored message is returned with
	// created=false.
	InsertMessage(ctx context.Context, msg *Message) (stored *Message, created bool, err error)
	ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]*Message, error)
	// MarkDelivered moves the other participants' sent messages to delivered
	MarkDelivered(ctx context.Context, chatID, recipientID uuid.UUID) (int64, error)
	// MarkRead records read receipts for every message the user has not
	// read yet and zeroes the user's unread count. It returns how many
	// messages were newly read.
	MarkRead(ctx context.Context, chatID, userID uuid.UUID, at time.Time) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new chat repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) EnsureBookingChat(ctx context.Context, chat *Chat, participants []*Participant) (uuid.UUID, error) {
	chatID := chat.ID
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO chats (id, booking_id, last_activity, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (booking_id) DO NOTHING
		`, chat.ID, chat.BookingID, chat.LastActivity, chat.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert chat: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return tx.GetContext(ctx, &chatID, `SELECT id FROM chats WHERE booking_id = $1`, chat.BookingID)
		}

		for _, p := range participants {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO chat_participants (chat_id, user_id, role, joined_at)
				VALUES ($1, $2, $3, $4)
			`, chat.ID, p.UserID, p.Role, p.JoinedAt)
			if err != nil {
				return fmt.Errorf("insert participant: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return chatID, nil
}

func (r *repository) GetChat(ctx context.Context, id uuid.UUID) (*Chat, error) {
	var c Chat
	err := r.db.GetContext(ctx, &c, `SELECT * FROM chats WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetChatByBooking(ctx context.Context, bookingID uuid.UUID) (*Chat, error) {
	var c Chat
	err := r.db.GetContext(ctx, &c, `SELECT * FROM chats WHERE booking_id = $1`, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListParticipants(ctx context.Context, chatID uuid.UUID) ([]*Participant, error) {
	var participants []*Participant
	err := r.db.SelectContext(ctx, &participants, `
		SELECT * FROM chat_participants WHERE chat_id = $1 ORDER BY joined_at, user_id
	`, chatID)
	return participants, err
}

func (r *repository) ListChatsByUser(ctx context.Context, userID uuid.UUID) ([]*Summary, error) {
	var chats []*Summary
	err := r.db.SelectContext(ctx, &chats, `
		SELECT c.*, p.unread_count
		FROM chats c
		JOIN chat_participants p ON p.chat_id = c.id
		WHERE p.user_id = $1
		ORDER BY c.last_activity DESC
	`, userID)
	return chats, err
}

func (r *repository) InsertMessage(ctx context.Context, msg *Message) (*Message, bool, error) {
	var (
		stored  *Message
		created bool
	)
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.NamedExecContext(ctx, `
			INSERT INTO messages (id, chat_id, sender_id, client_temp_id, message_type, content, delivery_status, created_at)
			VALUES (:id, :chat_id, :sender_id, :client_temp_id, :message_type, :content, :delivery_status, :created_at)
			ON CONFLICT (chat_id, sender_id, client_temp_id) DO NOTHING
		`, msg)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if rows == 0 {
			var existing Message
			err := tx.GetContext(ctx, &existing, `
				SELECT * FROM messages WHERE chat_id = $1 AND sender_id = $2 AND client_temp_id = $3
			`, msg.ChatID, msg.SenderID, msg.ClientTempID)
			if err != nil {
				return fmt.Errorf("load existing message: %w", err)
			}
			stored = &existing
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE chat_participants SET unread_count = unread_count + 1
			WHERE chat_id = $1 AND user_id <> $2
		`, msg.ChatID, msg.SenderID); err != nil {
			return fmt.Errorf("bump unread: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE chats SET last_activity = $2 WHERE id = $1
		`, msg.ChatID, msg.CreatedAt); err != nil {
			return fmt.Errorf("touch chat: %w", err)
		}
		stored, created = msg, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (r *repository) ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]*Message, error) {
	var messages []*Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM (
			SELECT * FROM messages WHERE chat_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`, chatID, limit)
	if err != nil {
		return nil, err
	}
	if err := r.loadReads(ctx, messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repository) loadReads(ctx context.Context, messages []*Message) error {
	if len(messages) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(messages))
	byID := make(map[uuid.UUID]*Message, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
		byID[m.ID] = m
	}

	query, args, err := sqlx.In(`
		SELECT message_id, user_id, read_at FROM message_reads
		WHERE message_id IN (?)
		ORDER BY read_at
	`, ids)
	if err != nil {
		return err
	}
	query = r.db.Rebind(query)

	var reads []ReadReceipt
	if err := r.db.SelectContext(ctx, &reads, query, args...); err != nil {
		return err
	}
	for _, rr := range reads {
		if m, ok := byID[rr.MessageID]; ok {
			m.ReadBy = append(m.ReadBy, rr)
		}
	}
	return nil
}

func (r *repository) MarkDelivered(ctx context.Context, chatID, recipientID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE messages SET delivery_status = 'delivered'
		WHERE chat_id = $1 AND sender_id <> $2 AND delivery_status = 'sent'
	`, chatID, recipientID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) MarkRead(ctx context.Context, chatID, userID uuid.UUID, at time.Time) (int, error) {
	var read int
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var ids []uuid.UUID
		err := tx.SelectContext(ctx, &ids, `
			INSERT INTO message_reads (message_id, user_id, read_at)
			SELECT m.id, $2, $3 FROM messages m
			WHERE m.chat_id = $1 AND m.sender_id <> $2
			ON CONFLICT (message_id, user_id) DO NOTHING
			RETURNING message_id
		`, chatID, userID, at)
		if err != nil {
			return fmt.Errorf("insert read receipts: %w", err)
		}
		read = len(ids)

		if read > 0 {
			query, args, err := sqlx.In(`
				UPDATE messages SET delivery_status = 'read'
				WHERE id IN (?) AND delivery_status IN ('sent', 'delivered')
			`, ids)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
				return fmt.Errorf("mark messages read: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE chat_participants SET last_read_at = $3, unread_count = 0
			WHERE chat_id = $1 AND user_id = $2
			  AND ($4 OR unread_count > 0 OR last_read_at IS NULL)
		`, chatID, userID, at, read > 0)
		if err != nil {
			return fmt.Errorf("reset unread: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return read, nil
}
