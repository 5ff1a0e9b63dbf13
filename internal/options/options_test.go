package options

import (
	"context"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":         ModeDecimal,
		"decimal":  ModeDecimal,
		" RAW ":    ModeRaw,
		"Decimal":  ModeDecimal,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseMode(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseMode("hex"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestModeContext(t *testing.T) {
	ctx := context.Background()
	if ModeFrom(ctx) != ModeDecimal {
		t.Fatalf("default mode should be decimal")
	}
	if ModeFrom(WithMode(ctx, ModeRaw)) != ModeRaw {
		t.Fatalf("mode not carried by context")
	}
}
