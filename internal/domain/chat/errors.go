package chat

import "github.com/curlmap/curlmap-api/internal/pkg/apperr"

var (
	ErrChatNotFound          = apperr.NotFound("chat")
	ErrNotParticipant        = apperr.Forbidden("you are not a participant of this chat")
	ErrRateLimited           = apperr.New(apperr.KindRateLimited, "too many messages, slow down")
	ErrUnknownMessageType    = apperr.Validation("unknown message_type")
	ErrMalformedContent      = apperr.Validation("content does not match message_type")
	ErrSystemReserved        = apperr.Forbidden("system messages are written by the server")
	ErrEmptyText             = apperr.Validation("message text is required")
	ErrTextTooLong           = apperr.Validation("message text is too long")
	ErrInvalidImageURL       = apperr.Validation("invalid image URL - must be a valid HTTP(S) URL")
	ErrInvalidPriceOffer     = apperr.Validation("price offer needs a positive amount and a currency")
	ErrInvalidBookingRequest = apperr.Validation("booking request needs a positive price and an appointment time")
	ErrSelfChat              = apperr.Validation("cannot start chat with yourself")
)
