package airflow

import (
	"context"

	"github.com/field4d/gober/internal/driver"
	"github.com/field4d/gober/internal/driver/payload"
	"github.com/field4d/gober/internal/frame"
	"github.com/field4d/gober/internal/record"
	"github.com/field4d/gober/internal/sensors"
)

const driverName = "airflow"

func init() {
	driver.Register(driver.Detection{Family: frame.FamilyAirflow}, Driver{})
}

// Driver decodes the 12-byte CO2 and air velocity packet.
type Driver struct{}

// Name returns the canonical driver name.
func (Driver) Name() string { return driverName }

// Process renders co2_ppm, air_velocity and package_number.
func (Driver) Process(_ context.Context, p *frame.Packet) (record.Record, error) {
	words, err := payload.Words(p.Raw)
	if err != nil {
		return record.Record{}, err
	}
	values, err := sensors.Decode(sensors.AirflowLayout[:], words)
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
