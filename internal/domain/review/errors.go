package review

import "github.com/curlmap/curlmap-api/internal/pkg/apperr"

var (
	ErrReviewNotFound      = apperr.NotFound("review")
	ErrAlreadyReviewed     = apperr.Conflict("booking has already been reviewed")
	ErrBookingNotCompleted = apperr.Transition("only completed bookings can be reviewed")
	ErrNotBookingCustomer  = apperr.Forbidden("only the booking's customer can review it")
	ErrNotReviewAuthor     = apperr.Forbidden("can only delete your own reviews")
	ErrInvalidRating       = apperr.Validation("rating must be between 1 and 5")
)
