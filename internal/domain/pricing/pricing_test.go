package pricing

import (
	"errors"
	"testing"

	"github.com/curlmap/curlmap-api/internal/pkg/apperr"
)

func TestCheckMinimum(t *testing.T) {
	policy := DefaultPolicy

	tests := []struct {
		name     string
		proposed float64
		base     float64
		wantErr  error
	}{
		{"below floor", 75, 100, ErrMinimumPrice},
		{"above floor", 82, 100, nil},
		{"exactly at floor", 80, 100, nil},
		{"above base", 120, 100, nil},
		{"zero", 0, 100, ErrInvalidPrice},
		{"negative", -5, 100, ErrInvalidPrice},
		{"floor rounds up to the cent", 0.79, 0.99, ErrMinimumPrice},
		{"first cent above fractional floor", 0.80, 0.99, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CheckMinimum(tt.proposed, tt.base)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckMinimumCarriesMinimum(t *testing.T) {
	err := DefaultPolicy.CheckMinimum(75, 100)

	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindMinimumPrice {
		t.Fatalf("expected minimum price error, got %v", err)
	}
	if appErr.Details["minimum_price"] != "80.00" {
		t.Fatalf("expected minimum_price 80.00, got %q", appErr.Details["minimum_price"])
	}
}

func TestMinimumRoundsUp(t *testing.T) {
	tests := []struct {
		base float64
		want float64
	}{
		{100, 80},
		{0.99, 0.80},
		{12.34, 9.88},
		{33.33, 26.67},
		{45, 36},
	}
	for _, tt := range tests {
		if got := DefaultPolicy.Minimum(tt.base); got != tt.want {
			t.Errorf("Minimum(%v) = %v, want %v", tt.base, got, tt.want)
		}
	}
}

func TestConfigurableRatio(t *testing.T) {
	strict := Policy{MinPriceRatio: 0.9, DepositRate: 0.2}
	if err := strict.CheckMinimum(85, 100); !errors.Is(err, ErrMinimumPrice) {
		t.Fatalf("expected floor at 90, got %v", err)
	}
	if strict.Deposit(55) != 11 {
		t.Fatalf("unexpected deposit %v", strict.Deposit(55))
	}
}

func TestDepositAndTotal(t *testing.T) {
	if got := DefaultPolicy.Deposit(55); got != 5.5 {
		t.Fatalf("expected deposit 5.5, got %v", got)
	}
	fees := []Fee{{Label: "travel", Amount: 10}, {Label: "products", Amount: 4.25}}
	if got := Total(55, fees); got != 69.25 {
		t.Fatalf("expected total 69.25, got %v", got)
	}
	if got := Total(55, nil); got != 55 {
		t.Fatalf("expected total 55, got %v", got)
	}
}
