package multisensor

import (
	"context"

	"github.com/field4d/gober/internal/driver"
	"github.com/field4d/gober/internal/driver/payload"
	"github.com/field4d/gober/internal/frame"
	"github.com/field4d/gober/internal/options"
	"github.com/field4d/gober/internal/record"
	"github.com/field4d/gober/internal/sensors"
)

const driverName = "multisensor"

func init() {
	driver.Register(driver.Detection{Family: frame.FamilyMultiSensor}, Driver{})
}

// Driver decodes the 76-byte base sensor packet: two BMP390 pressure sensors,
// three HDC2010 humidity sensors, five OPT3001 light sensors, the battery
// monitor, the package counter and the link RSSI.
type Driver struct{}

// Name returns the canonical driver name.
func (Driver) Name() string { return driverName }

// Process renders the packet with the decimal table, or with the raw table
// when the context selects options.ModeRaw.
func (Driver) Process(ctx context.Context, p *frame.Packet) (record.Record, error) {
	words, err := payload.Words(p.Raw)
	if err != nil {
		return record.Record{}, err
	}
	layout := sensors.DecimalLayout
	if options.ModeFrom(ctx) == options.ModeRaw {
		layout = sensors.RawLayout
	}
	values, err := sensors.Decode(layout[:], words)
	if err != nil {
		return record.Record{}, err
	}
	rec := record.New(driverName, p.Sender)
	rec.AddAddress()
	for _, v := range values {
		rec.Add(v.Spec.Name, v.String())
	}
	return rec, nil
}
