// Package gober decodes the datagrams Field4D sensor nodes send to the border
// router and renders them as marker-framed records for the log scraper.
package gober

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/field4d/gober/internal/abbrev"
	"github.com/field4d/gober/internal/addr"
	"github.com/field4d/gober/internal/driver"
	_ "github.com/field4d/gober/internal/driver/airflow"     // register driver
	_ "github.com/field4d/gober/internal/driver/legacy"      // register driver
	_ "github.com/field4d/gober/internal/driver/liveness"    // register driver
	_ "github.com/field4d/gober/internal/driver/multisensor" // register driver
	"github.com/field4d/gober/internal/energest"
	"github.com/field4d/gober/internal/frame"
	"github.com/field4d/gober/internal/record"
)

// Result captures the outcome of Decode.
type Result struct {
	Driver    string
	RawHex    string
	ByteCount int
	Family    frame.Family
	Record    record.Record

	// Skipped lists abbreviations TranslateLegacy dropped.
	Skipped []string
}

// String renders the record exactly as it is handed to sinks.
func (r Result) String() string {
	return record.Render(r.Record)
}

// Decode classifies data by length, selects a driver and returns the decoded
// record.
func Decode(ctx context.Context, data []byte, sender addr.Address) (Result, error) {
	return DecodeWithOptions(ctx, data, sender, AnalyzeOptions{})
}

// DecodeWithOptions decodes data with custom options.
func DecodeWithOptions(ctx context.Context, data []byte, sender addr.Address, opts AnalyzeOptions) (Result, error) {
	ctx, err := opts.toInternal(ctx)
	if err != nil {
		return Result{}, err
	}
	packet, err := frame.Parse(data, sender)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Driver:    "unknown",
		RawHex:    strings.ToUpper(hex.EncodeToString(data)),
		ByteCount: len(data),
		Family:    packet.Family,
	}

	drv, err := driver.Lookup(packet.Family)
	if err != nil {
		return result, err
	}
	rec, err := drv.Process(ctx, &packet)
	if err != nil {
		return result, fmt.Errorf("%s: %w", drv.Name(), err)
	}
	result.Driver = drv.Name()
	result.Record = rec
	return result, nil
}

// DecodeHex decodes a packet written as hex. Whitespace, '|' and '_' are
// ignored, so dumps can be pasted as they are.
func DecodeHex(ctx context.Context, raw string, sender addr.Address) (Result, error) {
	return DecodeHexWithOptions(ctx, raw, sender, AnalyzeOptions{})
}

// DecodeHexWithOptions decodes a hex packet with custom options.
func DecodeHexWithOptions(ctx context.Context, raw string, sender addr.Address, opts AnalyzeOptions) (Result, error) {
	data, err := decodeHex(raw)
	if err != nil {
		return Result{}, err
	}
	return DecodeWithOptions(ctx, data, sender, opts)
}

// TranslateLegacy expands an abbreviated record into the long key set.
func TranslateLegacy(input string, sender addr.Address) (Result, error) {
	tr, err := abbrev.Translate(input, sender)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Driver:    abbrev.Kind,
		ByteCount: len(input),
		Record:    tr.Record,
		Skipped:   tr.Skipped,
	}, nil
}

// Summary is an unpacked energy accounting block with both of its renderings.
type Summary struct {
	energest.Summary
	Text   string
	Record record.Record
}

// String returns the text report followed by the JSON form.
func (s Summary) String() string {
	return s.Text + record.Render(s.Record)
}

// UnpackSummary decodes a 32-byte energest block.
func UnpackSummary(data []byte, sender addr.Address) (Summary, error) {
	s, err := energest.Unpack(data)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Summary: s,
		Text:    energest.RenderText(s, sender),
		Record:  energest.Record(s, sender),
	}, nil
}

// UnpackSummaryHex is UnpackSummary for hex input.
func UnpackSummaryHex(raw string, sender addr.Address) (Summary, error) {
	data, err := decodeHex(raw)
	if err != nil {
		return Summary{}, err
	}
	return UnpackSummary(data, sender)
}

func decodeHex(input string) ([]byte, error) {
	clean := strings.ToUpper(stripWhitespace(input))
	if strings.HasPrefix(clean, "0X") {
		clean = clean[2:]
	}
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex packet must contain an even number of digits, got %d", len(clean))
	}
	decoded := make([]byte, len(clean)/2)
	if _, err := hex.Decode(decoded, []byte(clean)); err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded, nil
}

func stripWhitespace(s string) string {
	builder := strings.Builder{}
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '|' || r == '_' {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
