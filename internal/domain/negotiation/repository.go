package negotiation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/curlmap/curlmap-api/internal/domain/booking"
	"github.com/curlmap/curlmap-api/internal/pkg/database"
)

// BookingWriter inserts the booking an acceptance produces
type BookingWriter interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, b *booking.Booking) error
}

// BookingBuilder turns a locked request and its winning offer into a booking
type BookingBuilder func(req *Request, offer *Offer) *booking.Booking

// Repository defines negotiation data access interface
type Repository interface {
	CreateRequest(ctx context.Context, req *Request) error
	GetRequest(ctx context.Context, id uuid.UUID) (*Request, error)
	ListRequestsByCustomer(ctx context.Context, customerID uuid.UUID, status RequestStatus, page, limit int) ([]*Request, int, error)
	// CancelRequest cancels the request while it is still open
	CancelRequest(ctx context.Context, id uuid.UUID) (bool, error)
	// CompleteRequestTx moves an accepted request to completed inside tx
	CompleteRequestTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error

	// CreateOffer inserts offer against an open request and moves the
	// request from pending to offered. It returns the request as updated.
	CreateOffer(ctx context.Context, offer *Offer) (*Request, error)
	GetOffer(ctx context.Context, id uuid.UUID) (*Offer, error)
	ListOffers(ctx context.Context, requestID uuid.UUID) ([]*Offer, error)
	// RejectOffer rejects the offer while it is still pending
	RejectOffer(ctx context.Context, id uuid.UUID) (bool, error)

	// AcceptOffer accepts offerID, rejects its pending siblings, marks the
	// request accepted and inserts the booking built by build, all in one
	// transaction. Nothing is written when any step fails.
	AcceptOffer(ctx context.Context, customerID, requestID, offerID uuid.UUID, build BookingBuilder) (*Acceptance, *booking.Booking, error)
}

type repository struct {
	db       *sqlx.DB
	bookings BookingWriter
}

// NewRepository creates new negotiation repository
func NewRepository(db *sqlx.DB, bookings BookingWriter) Repository {
	return &repository{db: db, bookings: bookings}
}

func (r *repository) CreateRequest(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO requests (
			id, customer_id, style_description, offer_price, lat, lng,
			preferred_at, status, created_at, updated_at
		) VALUES (
			:id, :customer_id, :style_description, :offer_price, :lat, :lng,
			:preferred_at, :status, :created_at, :updated_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, req)
	return err
}

func (r *repository) GetRequest(ctx context.Context, id uuid.UUID) (*Request, error) {
	var req Request
	err := r.db.GetContext(ctx, &req, `SELECT * FROM requests WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) ListRequestsByCustomer(ctx context.Context, customerID uuid.UUID, status RequestStatus, page, limit int) ([]*Request, int, error) {
	conditions := []string{"customer_id = $1"}
	args := []interface{}{customerID}
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM requests "+where, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT * FROM requests %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	var requests []*Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *repository) CancelRequest(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE requests SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'offered')
	`, id)
	if err != nil {
		return false, err
	}
	return affectedOne(result)
}

func (r *repository) CompleteRequestTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE requests SET status = 'completed', updated_at = NOW()
		WHERE id = $1 AND status = 'accepted'
	`, id)
	if err != nil {
		return fmt.Errorf("complete request: %w", err)
	}
	ok, err := affectedOne(result)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRequestNotAccepted
	}
	return nil
}

func (r *repository) CreateOffer(ctx context.Context, offer *Offer) (*Request, error) {
	var req *Request
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		locked, err := lockRequest(ctx, tx, offer.RequestID)
		if err != nil {
			return err
		}
		if !locked.Status.IsOpen() {
			return ErrRequestClosed
		}

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO offers (
				id, request_id, provider_id, price, estimated_minutes, message, status, created_at, updated_at
			) VALUES (
				:id, :request_id, :provider_id, :price, :estimated_minutes, :message, :status, :created_at, :updated_at
			)
		`, offer)
		if err != nil {
			if database.IsUniqueViolation(err, "offers_request_provider_key") {
				return ErrDuplicateOffer
			}
			return fmt.Errorf("insert offer: %w", err)
		}

		if locked.Status == RequestPending {
			if _, err := tx.ExecContext(ctx, `
				UPDATE requests SET status = 'offered', updated_at = NOW() WHERE id = $1
			`, locked.ID); err != nil {
				return fmt.Errorf("mark request offered: %w", err)
			}
			locked.Status = RequestOffered
		}
		req = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *repository) GetOffer(ctx context.Context, id uuid.UUID) (*Offer, error) {
	var offer Offer
	err := r.db.GetContext(ctx, &offer, `SELECT * FROM offers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

func (r *repository) ListOffers(ctx context.Context, requestID uuid.UUID) ([]*Offer, error) {
	var offers []*Offer
	err := r.db.SelectContext(ctx, &offers, `
		SELECT * FROM offers WHERE request_id = $1 ORDER BY created_at ASC, id
	`, requestID)
	return offers, err
}

func (r *repository) RejectOffer(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE offers SET status = 'rejected', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return false, err
	}
	return affectedOne(result)
}

func (r *repository) AcceptOffer(ctx context.Context, customerID, requestID, offerID uuid.UUID, build BookingBuilder) (*Acceptance, *booking.Booking, error) {
	var (
		acceptance *Acceptance
		created    *booking.Booking
	)
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		req, err := lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		var offer Offer
		err = tx.GetContext(ctx, &offer, `SELECT * FROM offers WHERE id = $1 FOR UPDATE`, offerID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		var target *Offer
		if err == nil {
			target = &offer
		}
		if err := checkAcceptance(req, target, customerID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE offers SET status = 'accepted', updated_at = NOW()
			WHERE id = $1 AND status = 'pending'
		`, offerID)
		if err != nil {
			return fmt.Errorf("accept offer: %w", err)
		}
		if ok, err := affectedOne(result); err != nil || !ok {
			if err != nil {
				return err
			}
			return ErrOfferNotPending
		}

		var rejected []uuid.UUID
		err = tx.SelectContext(ctx, &rejected, `
			UPDATE offers SET status = 'rejected', updated_at = NOW()
			WHERE request_id = $1 AND id <> $2 AND status = 'pending'
			RETURNING id
		`, requestID, offerID)
		if err != nil {
			return fmt.Errorf("reject sibling offers: %w", err)
		}

		result, err = tx.ExecContext(ctx, `
			UPDATE requests
			SET status = 'accepted', accepted_offer_id = $2, accepted_provider_id = $3, updated_at = NOW()
			WHERE id = $1 AND status IN ('pending', 'offered')
		`, requestID, offerID, offer.ProviderID)
		if err != nil {
			return fmt.Errorf("accept request: %w", err)
		}
		if ok, err := affectedOne(result); err != nil || !ok {
			if err != nil {
				return err
			}
			return ErrAlreadyAccepted
		}

		b := build(req, &offer)
		if err := r.bookings.InsertTx(ctx, tx, b); err != nil {
			if errors.Is(err, booking.ErrBookingExistsForOffer) {
				return ErrAlreadyAccepted
			}
			return err
		}

		req.Status = RequestAccepted
		req.AcceptedOfferID = uuid.NullUUID{UUID: offerID, Valid: true}
		req.AcceptedProviderID = uuid.NullUUID{UUID: offer.ProviderID, Valid: true}
		offer.Status = OfferAccepted
		acceptance = &Acceptance{Request: req, Offer: &offer, Rejected: rejected}
		created = b
		return nil
	})
	if err != nil {
		return nil, nil, mapLockError(err)
	}
	return acceptance, created, nil
}

func lockRequest(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Request, error) {
	var req Request
	err := tx.GetContext(ctx, &req, `SELECT * FROM requests WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// mapLockError turns serialization and deadlock aborts into a retryable conflict
func mapLockError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return ErrAlreadyAccepted
		}
	}
	return err
}

func affectedOne(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
