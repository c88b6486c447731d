package stock

import "testing"

func TestValidEmail(t *testing.T) {
	valid := []string{"a@example.com", "fan+tag@mail.co", "x@y"}
	for _, email := range valid {
		if !ValidEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}

	invalid := []string{"", "@example.com", "fan@", "no-at-sign", "a b@example.com"}
	for _, email := range invalid {
		if ValidEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Fan@Example.COM "); got != "fan@example.com" {
		t.Errorf("unexpected normalization: %q", got)
	}
}
