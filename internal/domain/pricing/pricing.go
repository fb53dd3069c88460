// Package pricing holds the marketplace price policy: the floor a customer
// may propose against a published base price, the deposit fraction and how
// a booking total is formed.
package pricing

import (
	"math"
	"strconv"

	"github.com/curlmap/curlmap-api/internal/pkg/apperr"
)

var (
	ErrMinimumPrice = apperr.New(apperr.KindMinimumPrice, "proposed price is below the minimum allowed for this service")
	ErrInvalidPrice = apperr.Validation("price must be greater than 0")
	ErrInvalidFee   = apperr.Validation("fee amount must not be negative")
)

// Policy is configured once at startup
type Policy struct {
	MinPriceRatio float64
	DepositRate   float64
	Currency      string
}

// DefaultPolicy matches the marketplace defaults
var DefaultPolicy = Policy{MinPriceRatio: 0.8, DepositRate: 0.10, Currency: "KZT"}

// Fee is an additional line item on a booking
type Fee struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Minimum returns the lowest acceptable price for basePrice, rounded up to
// the cent so no accepted price is below the ratio
func (p Policy) Minimum(basePrice float64) float64 {
	return roundUp(basePrice * p.MinPriceRatio)
}

// CheckMinimum rejects proposed prices under the floor. The error carries
// the computed minimum in details["minimum_price"].
func (p Policy) CheckMinimum(proposed, basePrice float64) error {
	if !(proposed > 0) {
		return ErrInvalidPrice
	}
	minimum := p.Minimum(basePrice)
	if proposed < minimum {
		return apperr.WithDetails(ErrMinimumPrice, map[string]string{
			"minimum_price": strconv.FormatFloat(minimum, 'f', 2, 64),
			"base_price":    strconv.FormatFloat(basePrice, 'f', 2, 64),
		})
	}
	return nil
}

// Deposit returns the deposit owed for negotiatedPrice
func (p Policy) Deposit(negotiatedPrice float64) float64 {
	return Round(negotiatedPrice * p.DepositRate)
}

// Total returns negotiatedPrice plus every fee
func Total(negotiatedPrice float64, fees []Fee) float64 {
	total := negotiatedPrice
	for _, f := range fees {
		total += f.Amount
	}
	return Round(total)
}

// Round rounds to two decimal places
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundUp rounds up to two decimal places. Products like 100*0.8 carry
// float noise past the cent and must not round up to 80.01.
func roundUp(v float64) float64 {
	cents := math.Round(v*100*1e6) / 1e6
	return math.Ceil(cents) / 100
}
