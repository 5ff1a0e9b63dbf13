package liveness

import (
	"context"

	"github.com/field4d/gober/internal/driver"
	"github.com/field4d/gober/internal/frame"
	"github.com/field4d/gober/internal/record"
)

const driverName = "liveness"

func init() {
	driver.Register(driver.Detection{Family: frame.FamilyLiveness}, Driver{})
}

// Driver handles the 2-byte probe nodes send to check the route to the root.
// The probe bytes carry no data.
type Driver struct{}

// Name returns the canonical driver name.
func (Driver) Name() string { return driverName }

// Process reports which node pinged.
func (Driver) Process(_ context.Context, p *frame.Packet) (record.Record, error) {
	rec := record.New(driverName, p.Sender)
	rec.Message = "PING received from: " + p.Sender.String()
	return rec, nil
}
