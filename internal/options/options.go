package options

import (
	"context"
	"fmt"
	"strings"
)

// Mode selects how multi-sensor packets are rendered.
type Mode int

const (
	// ModeDecimal renders scaled readings under the decimal keys.
	ModeDecimal Mode = iota
	// ModeRaw renders unscaled words under the raw keys.
	ModeRaw
)

func (m Mode) String() string {
	if m == ModeRaw {
		return "raw"
	}
	return "decimal"
}

type contextKey struct{}

// WithMode stores the render mode inside the context.
func WithMode(ctx context.Context, mode Mode) context.Context {
	return context.WithValue(ctx, contextKey{}, mode)
}

// ModeFrom retrieves the render mode from context, defaulting to ModeDecimal.
func ModeFrom(ctx context.Context) Mode {
	if v := ctx.Value(contextKey{}); v != nil {
		if mode, ok := v.(Mode); ok {
			return mode
		}
	}
	return ModeDecimal
}

// ParseMode validates a mode name. The empty string selects ModeDecimal.
func ParseMode(input string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "decimal":
		return ModeDecimal, nil
	case "raw":
		return ModeRaw, nil
	default:
		return ModeDecimal, fmt.Errorf("unknown render mode %q (want decimal or raw)", input)
	}
}
