package gober

import (
	"context"

	internalopts "github.com/field4d/gober/internal/options"
)

// AnalyzeOptions configures decoding.
type AnalyzeOptions struct {
	// Mode is "decimal" (default) or "raw".
	Mode string
}

func (opts AnalyzeOptions) toInternal(ctx context.Context) (context.Context, error) {
	mode, err := internalopts.ParseMode(opts.Mode)
	if err != nil {
		return ctx, err
	}
	return internalopts.WithMode(ctx, mode), nil
}
