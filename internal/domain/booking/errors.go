package booking

import "github.com/curlmap/curlmap-api/internal/pkg/apperr"

var (
	ErrBookingNotFound       = apperr.NotFound("booking")
	ErrNotParticipant        = apperr.Forbidden("only the booking participants can access this booking")
	ErrRoleCannotDrive       = apperr.Forbidden("your role cannot move the booking into this status")
	ErrOnlyCustomersBook     = apperr.Forbidden("only customers can create bookings")
	ErrOnlyProviderAddsFees  = apperr.Forbidden("only the booking provider can add fees")
	ErrStaleStatus           = apperr.Conflict("booking status has changed, please refresh and retry")
	ErrInvalidTransition     = apperr.Transition("this booking can no longer be modified this way")
	ErrBookingClosed         = apperr.Transition("this booking can no longer be modified")
	ErrReasonRequired        = apperr.Validation("reason is required when rejecting or cancelling")
	ErrInvalidStatus         = apperr.Validation("unknown booking status")
	ErrCompletionRequired    = apperr.Validation("actual_duration_minutes is required when completing")
	ErrNegativeDuration      = apperr.Validation("actual_duration_minutes must not be negative")
	ErrAppointmentInPast     = apperr.Validation("appointment must be in the future")
	ErrSelfBooking           = apperr.Validation("providers cannot book their own services")
	ErrBookingExistsForOffer = apperr.Conflict("a booking already exists for this request")
)
