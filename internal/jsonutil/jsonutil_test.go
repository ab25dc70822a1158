package jsonutil

import "testing"

func TestDecodeWithFallback(t *testing.T) {
	type payload struct {
		Intent string `json:"intent"`
	}

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain json", raw: `{"intent":"GREETING"}`, want: "GREETING"},
		{name: "fenced json", raw: "```json\n{\"intent\":\"GREETING\"}\n```", want: "GREETING"},
		{name: "fence without language", raw: "```\n{\"intent\":\"GREETING\"}\n```", want: "GREETING"},
		{name: "prose around object", raw: `Aquí está el resultado: {"intent":"GREETING"} espero sirva`, want: "GREETING"},
		{name: "nested braces", raw: `x {"intent":"GREETING","extra":{"a":1}} y`, want: "GREETING"},
		{name: "brace inside string", raw: `{"intent":"GREETING","note":"uses { here"}`, want: "GREETING"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out payload
			if err := DecodeWithFallback(tc.raw, &out); err != nil {
				t.Fatalf("DecodeWithFallback() error = %v", err)
			}
			if out.Intent != tc.want {
				t.Fatalf("intent = %q, want %q", out.Intent, tc.want)
			}
		})
	}
}

func TestDecodeWithFallbackErrors(t *testing.T) {
	var out map[string]any
	for _, raw := range []string{"", "   ", "no json here", "{broken"} {
		if err := DecodeWithFallback(raw, &out); err == nil {
			t.Fatalf("DecodeWithFallback(%q) expected error", raw)
		}
	}
}
