package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/curlmap/curlmap-api/internal/domain/pricing"
	"github.com/curlmap/curlmap-api/internal/domain/user"
	"github.com/curlmap/curlmap-api/internal/pkg/database"
)

// ListFilter narrows ListByParticipant
type ListFilter struct {
	Status Status
	Page   int
	Limit  int
}

// Repository defines booking data access interface
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	InsertTx(ctx context.Context, tx *sqlx.Tx, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, role user.Role, filter ListFilter) ([]*Booking, int, error)
	// ApplyTransition applies t only while the stored status still equals
	// t.From, then runs inTx in the same transaction. It returns false,
	// without running inTx, when the guard did not hold.
	ApplyTransition(ctx context.Context, id uuid.UUID, t Transition, inTx TxHook) (bool, error)
	// AppendFee adds fee to the stored fees and total in one statement. It
	// returns nil when the booking is missing or already terminal.
	AppendFee(ctx context.Context, id uuid.UUID, fee pricing.Fee) (*Booking, error)
	SetChatID(ctx context.Context, id, chatID uuid.UUID) error
}

// TxHook runs extra writes inside a booking transaction
type TxHook func(ctx context.Context, tx *sqlx.Tx) error

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new booking repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const insertBooking = `
	INSERT INTO bookings (
		id, customer_id, provider_id, request_id, service_id,
		service_name, service_category, duration_minutes, base_price,
		negotiated_price, deposit_amount, additional_fees, total_amount, currency,
		appointment_at, lat, lng, status, created_at, updated_at
	) VALUES (
		:id, :customer_id, :provider_id, :request_id, :service_id,
		:service_name, :service_category, :duration_minutes, :base_price,
		:negotiated_price, :deposit_amount, :additional_fees, :total_amount, :currency,
		:appointment_at, :lat, :lng, :status, :created_at, :updated_at
	)
	RETURNING invoice_no
`

func (r *repository) Create(ctx context.Context, b *Booking) error {
	return r.insert(ctx, r.db, b)
}

func (r *repository) InsertTx(ctx context.Context, tx *sqlx.Tx, b *Booking) error {
	return r.insert(ctx, tx, b)
}

func (r *repository) insert(ctx context.Context, execer sqlx.ExtContext, b *Booking) error {
	query, args, err := sqlx.Named(insertBooking, b)
	if err != nil {
		return err
	}
	query = execer.Rebind(query)
	if err := execer.QueryRowxContext(ctx, query, args...).Scan(&b.InvoiceNo); err != nil {
		if database.IsUniqueViolation(err, "bookings_request_id_key") {
			return ErrBookingExistsForOffer
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListByParticipant(ctx context.Context, userID uuid.UUID, role user.Role, filter ListFilter) ([]*Booking, int, error) {
	conditions := []string{}
	args := []interface{}{userID}
	switch role {
	case user.RoleProvider:
		conditions = append(conditions, "provider_id = $1")
	case user.RoleCustomer:
		conditions = append(conditions, "customer_id = $1")
	default:
		conditions = append(conditions, "(customer_id = $1 OR provider_id = $1)")
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM bookings "+where, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT * FROM bookings %s ORDER BY appointment_at DESC, id LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	var bookings []*Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *repository) ApplyTransition(ctx context.Context, id uuid.UUID, t Transition, inTx TxHook) (bool, error) {
	applied := false
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		ok, err := r.updateStatus(ctx, tx, id, t)
		if err != nil || !ok {
			return err
		}
		if inTx != nil {
			if err := inTx(ctx, tx); err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *repository) updateStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, t Transition) (bool, error) {
	var (
		result sql.Result
		err    error
	)
	switch {
	case t.To == StatusCompleted && t.Completion != nil:
		result, err = tx.ExecContext(ctx, `
			UPDATE bookings
			SET status = $3, completed_at = $4, actual_duration_minutes = $5, completion_notes = $6, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`, id, t.From, t.To, t.Completion.CompletedAt, t.Completion.ActualDurationMinutes,
			sql.NullString{String: t.Completion.Notes, Valid: t.Completion.Notes != ""})
	case t.To.RequiresReason():
		result, err = tx.ExecContext(ctx, `
			UPDATE bookings SET status = $3, cancellation_reason = $4, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`, id, t.From, t.To, t.Reason)
	default:
		result, err = tx.ExecContext(ctx, `
			UPDATE bookings SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`, id, t.From, t.To)
	}
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *repository) AppendFee(ctx context.Context, id uuid.UUID, fee pricing.Fee) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `
		UPDATE bookings
		SET additional_fees = additional_fees || jsonb_build_array(jsonb_build_object('label', $2::text, 'amount', $3::numeric)),
			total_amount = total_amount + $3::numeric,
			updated_at = NOW()
		WHERE id = $1 AND status <> ALL($4)
		RETURNING *
	`, id, fee.Label, fee.Amount, pq.Array(terminalStatuses()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("append booking fee: %w", err)
	}
	return &b, nil
}

func (r *repository) SetChatID(ctx context.Context, id, chatID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE bookings SET chat_id = $2, updated_at = NOW() WHERE id = $1`, id, chatID)
	return err
}
