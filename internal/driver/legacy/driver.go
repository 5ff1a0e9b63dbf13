package legacy

import (
	"context"
	"fmt"
	"strconv"

	"github.com/field4d/gober/internal/driver"
	"github.com/field4d/gober/internal/driver/payload"
	"github.com/field4d/gober/internal/frame"
	"github.com/field4d/gober/internal/record"
	"github.com/field4d/gober/internal/sensors"
)

const driverName = "legacy"

func init() {
	driver.Register(driver.Detection{Family: frame.FamilyLegacy}, Driver{})
}

// Driver decodes the 68-byte packet sent by first-generation sensor boards.
// Float readings arrive as an integer word followed by a fraction word.
type Driver struct{}

// Name returns the canonical driver name.
func (Driver) Name() string { return driverName }

// Process walks sensors.LegacyLayout over the payload words.
func (Driver) Process(_ context.Context, p *frame.Packet) (record.Record, error) {
	words, err := payload.Words(p.Raw)
	if err != nil {
		return record.Record{}, err
	}
	if len(words) != sensors.LegacyWords() {
		return record.Record{}, fmt.Errorf("legacy layout needs %d words, payload has %d", sensors.LegacyWords(), len(words))
	}
	rec := record.New(driverName, p.Sender)
	rec.AddAddress()
	i := 0
	for _, slot := range sensors.LegacyLayout {
		switch {
		case slot.Reserved:
		case slot.Key.IsFloat:
			rec.Add(slot.Key.Name, payload.FormatSplit(words[i], words[i+1], sensors.LegacySplitWidth))
		default:
			rec.Add(slot.Key.Name, strconv.FormatInt(int64(words[i]), 10))
		}
		i += slot.Words()
	}
	return rec, nil
}
