package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/field4d/gober/internal/frame"
	"github.com/field4d/gober/internal/record"
)

// ErrNoDriver reports a family without a registered driver.
var ErrNoDriver = errors.New("driver not found")

// Detection contains the information required to select a driver.
type Detection struct {
	Family frame.Family
}

// Driver turns a classified packet into a record. A driver either returns a
// complete record or an error, never a partially filled record.
type Driver interface {
	Name() string
	Process(context.Context, *frame.Packet) (record.Record, error)
}

var (
	regMu    sync.RWMutex
	registry []registeredDriver
)

type registeredDriver struct {
	detect Detection
	driver Driver
}

// Register stores a driver/detection pair in memory.
func Register(det Detection, drv Driver) {
	regMu.Lock()
	defer regMu.Unlock()
	registry = append(registry, registeredDriver{detect: det, driver: drv})
}

// Lookup returns the first driver registered for the family.
func Lookup(family frame.Family) (Driver, error) {
	regMu.RLock()
	defer regMu.RUnlock()
	for _, rd := range registry {
		if rd.detect.Family == family {
			return rd.driver, nil
		}
	}
	return nil, fmt.Errorf("%w for family %s", ErrNoDriver, family)
}

// Names lists the registered drivers in registration order.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(registry))
	for _, rd := range registry {
		names = append(names, rd.driver.Name())
	}
	return names
}
