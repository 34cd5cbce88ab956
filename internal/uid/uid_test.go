package uid

import "testing"

func TestValid(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"12345678", true},
		{"123456789012", true},
		{"1234567", false},
		{"1234567890123", false},
		{"1234567890ab", false},
		{"", false},
		{" 12345678", false},
		{"12345678 ", false},
		{"0000000042", true},
	}
	for _, c := range cases {
		if got := Valid(c.in); got != c.ok {
			t.Fatalf("Valid(%q) = %v, want %v", c.in, got, c.ok)
		}
	}
}
