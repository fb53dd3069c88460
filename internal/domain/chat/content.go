package chat

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageType keys the content union
type MessageType string

const (
	MessageTypeText           MessageType = "text"
	MessageTypeImage          MessageType = "image"
	MessageTypePriceOffer     MessageType = "price_offer"
	MessageTypeBookingRequest MessageType = "booking_request"
	MessageTypeSystem         MessageType = "system"
)

// Payload is the JSON body of a message as stored in a JSONB column
type Payload json.RawMessage

func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "{}", nil
	}
	return string(p), nil
}

func (p *Payload) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		*p = append((*p)[:0], v...)
	case string:
		*p = Payload(v)
	case nil:
		*p = nil
	default:
		return errors.New("chat: unsupported content column type")
	}
	return nil
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("{}"), nil
	}
	return p, nil
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[:0], data...)
	return nil
}

// Content is one variant of the message payload
type Content interface {
	Type() MessageType
	Validate() error
}

// TextContent is a plain text message
type TextContent struct {
	Text string `json:"text"`
}

func (TextContent) Type() MessageType { return MessageTypeText }

func (c TextContent) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyText
	}
	if len(c.Text) > maxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// ImageContent points at an already uploaded image
type ImageContent struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

func (ImageContent) Type() MessageType { return MessageTypeImage }

func (c ImageContent) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidImageURL
	}
	return nil
}

// PriceOfferContent proposes a price inside the conversation
type PriceOfferContent struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Note     string  `json:"note,omitempty"`
}

func (PriceOfferContent) Type() MessageType { return MessageTypePriceOffer }

func (c PriceOfferContent) Validate() error {
	if !(c.Amount > 0) || len(c.Currency) != 3 {
		return ErrInvalidPriceOffer
	}
	return nil
}

// BookingRequestContent asks for an appointment
type BookingRequestContent struct {
	ServiceID     *uuid.UUID `json:"service_id,omitempty"`
	ProposedPrice float64    `json:"proposed_price"`
	AppointmentAt time.Time  `json:"appointment_at"`
	Note          string     `json:"note,omitempty"`
}

func (BookingRequestContent) Type() MessageType { return MessageTypeBookingRequest }

func (c BookingRequestContent) Validate() error {
	if !(c.ProposedPrice > 0) || c.AppointmentAt.IsZero() {
		return ErrInvalidBookingRequest
	}
	return nil
}

// SystemContent is written by the server, never by participants
type SystemContent struct {
	Event string `json:"event"`
	Text  string `json:"text"`
}

func (SystemContent) Type() MessageType { return MessageTypeSystem }

func (c SystemContent) Validate() error {
	if c.Event == "" {
		return ErrEmptyText
	}
	return nil
}

const maxTextLength = 4000

// DecodeContent decodes raw into the variant named by t
func DecodeContent(t MessageType, raw Payload) (Content, error) {
	switch t {
	case MessageTypeText:
		return decode[TextContent](raw)
	case MessageTypeImage:
		return decode[ImageContent](raw)
	case MessageTypePriceOffer:
		return decode[PriceOfferContent](raw)
	case MessageTypeBookingRequest:
		return decode[BookingRequestContent](raw)
	case MessageTypeSystem:
		return decode[SystemContent](raw)
	default:
		return nil, ErrUnknownMessageType
	}
}

func decode[T Content](raw Payload) (Content, error) {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, ErrMalformedContent
	}
	return v, nil
}

// EncodeContent returns the type tag and JSON body of c
func EncodeContent(c Content) (MessageType, Payload, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", nil, err
	}
	return c.Type(), Payload(raw), nil
}
