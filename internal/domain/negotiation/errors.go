package negotiation

import "github.com/curlmap/curlmap-api/internal/pkg/apperr"

var (
	ErrRequestNotFound    = apperr.NotFound("request")
	ErrOfferNotFound      = apperr.NotFound("offer")
	ErrDuplicateOffer     = apperr.Conflict("you have already made an offer on this request")
	ErrAlreadyAccepted    = apperr.Conflict("another offer was accepted first, please refresh")
	ErrRequestChanged     = apperr.Conflict("request status has changed, please refresh and retry")
	ErrRequestClosed      = apperr.Transition("this request can no longer be modified")
	ErrOfferNotPending    = apperr.Transition("this offer can no longer be modified")
	ErrRequestNotAccepted = apperr.Transition("request has no accepted offer")
	ErrNotRequestOwner    = apperr.Forbidden("only the request owner can do this")
	ErrNotOfferParty      = apperr.Forbidden("only the offering provider or the request owner can do this")
	ErrOnlyCustomers      = apperr.Forbidden("only customers can create requests")
	ErrOnlyProviders      = apperr.Forbidden("only providers can make offers")
	ErrDescriptionEmpty   = apperr.Validation("style_description is required")
	ErrNegativeOfferPrice = apperr.Validation("offer price must not be negative")
	ErrInvalidEstimate    = apperr.Validation("estimated_time must be greater than 0 minutes")
	ErrPreferredInPast    = apperr.Validation("preferred_at must be in the future")
	ErrInvalidStatus      = apperr.Validation("unknown request status")
)
