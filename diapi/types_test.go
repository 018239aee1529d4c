package diapi

import (
	"strings"
	"testing"
)

func TestTrim(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"under cap", "555-0100", MaxPhoneLen, "555-0100"},
		{"at cap", strings.Repeat("x", 20), MaxPhoneLen, strings.Repeat("x", 20)},
		{"over cap keeps max-1", strings.Repeat("x", 21), MaxPhoneLen, strings.Repeat("x", 19)},
		{"address over cap", strings.Repeat("a", 150), MaxAddressLen, strings.Repeat("a", 99)},
		{"empty", "", MaxPhoneLen, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Trim(tc.in, tc.max); got != tc.want {
				t.Errorf("Trim(%d chars, %d) = %d chars, want %d",
					len(tc.in), tc.max, len(got), len(tc.want))
			}
		})
	}
}
