package user

import "testing"

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"customer", "provider", "admin"} {
		if !IsValidRole(role) {
			t.Fatalf("expected %q to be valid", role)
		}
	}
	for _, role := range []string{"", "model", "Provider"} {
		if IsValidRole(role) {
			t.Fatalf("expected %q to be invalid", role)
		}
	}
}
