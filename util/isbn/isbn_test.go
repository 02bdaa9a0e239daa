package isbn

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"001", "1"},
		{"01", "1"},
		{"1", "1"},
		{"0", "0"},
		{"000", "0"},
		{"0X-123", "x-123"},
		{"978-0132350884", "978-0132350884"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"001", "0", "00ABC", "978-0132350884", ""} {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("1", "001") {
		t.Error("expected 1 and 001 to match")
	}
	if !Equal("0ABC", "abc") {
		t.Error("expected 0ABC and abc to match")
	}
	if !Equal("0", "00") {
		// both normalize to a lone "0"
		t.Error("expected 0 and 00 to match")
	}
	if Equal("1", "2") {
		t.Error("expected 1 and 2 not to match")
	}
}
