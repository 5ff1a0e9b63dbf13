// Package sink delivers rendered records to their consumers: the log scraper
// reading the console, a serial line, an MQTT broker or a local archive.
package sink

import (
	"context"
	"errors"
	"time"

	"github.com/field4d/gober/internal/record"
)

// Output is one rendered unit handed to every sink. Text is the
// marker-framed rendering and is written out unchanged.
type Output struct {
	Time   time.Time
	Sender string
	Kind   string
	Text   string
	Fields []record.Field
}

// FromRecord renders rec into an Output stamped with now.
func FromRecord(rec record.Record, now time.Time) Output {
	return Output{
		Time:   now,
		Sender: rec.Address.String(),
		Kind:   rec.Kind,
		Text:   record.Render(rec),
		Fields: rec.Fields,
	}
}

// Sink consumes outputs. Emit must not retain out after it returns.
type Sink interface {
	Emit(ctx context.Context, out Output) error
	Close() error
}

// Multi fans out to every sink in order. A failing sink does not stop the
// others; their errors are joined.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, out Output) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, out); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
