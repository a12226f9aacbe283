package logging

import "testing"

func TestRedactEmail(t *testing.T) {
	cases := map[string]string{
		"student@example.com": "s***@example.com",
		"@example.com":        "@example.com",
		"not-an-email":        "***",
	}
	for in, want := range cases {
		if got := RedactEmail(in); got != want {
			t.Fatalf("RedactEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
