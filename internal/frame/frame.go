package frame

import (
	"errors"
	"fmt"

	"github.com/field4d/gober/internal/addr"
)

// ErrUnrecognizedFraming reports a packet whose length selects no family.
var ErrUnrecognizedFraming = errors.New("unrecognized framing")

// Family identifies a packet layout. Packets carry no type tag; the family is
// implied by the payload length alone.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyLiveness
	FamilyAirflow
	FamilyLegacy
	FamilyMultiSensor
)

// Payload lengths agreed with the sensing firmware.
const (
	LivenessLen    = 2
	AirflowLen     = 12
	LegacyLen      = 68
	MultiSensorLen = 76
)

func (f Family) String() string {
	switch f {
	case FamilyLiveness:
		return "liveness"
	case FamilyAirflow:
		return "airflow"
	case FamilyLegacy:
		return "legacy"
	case FamilyMultiSensor:
		return "multisensor"
	default:
		return "unknown"
	}
}

// Classify maps a payload length to its family.
func Classify(n int) (Family, error) {
	switch n {
	case LivenessLen:
		return FamilyLiveness, nil
	case AirflowLen:
		return FamilyAirflow, nil
	case LegacyLen:
		return FamilyLegacy, nil
	case MultiSensorLen:
		return FamilyMultiSensor, nil
	default:
		return FamilyUnknown, fmt.Errorf("%w: %d bytes", ErrUnrecognizedFraming, n)
	}
}

// Packet is one inbound datagram. It is only valid for the duration of the
// decode call that received it.
type Packet struct {
	Raw    []byte
	Sender addr.Address
	Family Family
}

// Parse classifies raw and wraps it together with its sender.
func Parse(raw []byte, sender addr.Address) (Packet, error) {
	family, err := Classify(len(raw))
	if err != nil {
		return Packet{}, err
	}
	return Packet{Raw: raw, Sender: sender, Family: family}, nil
}

// Len returns the payload length in bytes.
func (p Packet) Len() int {
	return len(p.Raw)
}
