// Package energest unpacks the periodic energy accounting block that nodes
// send alongside their sensor records. The block is eight big-endian uint32
// counters; unlike sensor packets it is never length-dispatched.
package energest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/field4d/gober/internal/addr"
	"github.com/field4d/gober/internal/driver/payload"
	"github.com/field4d/gober/internal/record"
)

// Kind is the record kind of a summary.
const Kind = "energest"

const (
	words = 8
	// Size is the exact byte length of a summary block.
	Size = words * payload.WordSize
)

// Text block markers.
const (
	TextStart = "ENERGEST_START"
	TextEnd   = "ENERGEST_END"
)

const logPrefix = "[INFO: Energest]"

// ErrLengthMismatch reports a summary block that is not exactly Size bytes.
var ErrLengthMismatch = errors.New("energest block length mismatch")

// Summary holds one accounting period. Tick counters share the unit of
// TotalTime.
type Summary struct {
	CPU         uint32
	LPM         uint32
	DeepLPM     uint32
	RadioTx     uint32
	RadioRx     uint32
	TotalTime   uint32
	PeriodTime  uint32 // seconds
	PeriodCount uint32
}

// Unpack decodes a summary block. b must be exactly Size bytes.
func Unpack(b []byte) (Summary, error) {
	if len(b) != Size {
		return Summary{}, fmt.Errorf("%w: got %d bytes, want %d", ErrLengthMismatch, len(b), Size)
	}
	var v [words]uint32
	for i := range v {
		w, err := payload.Uint32BE(b, i*payload.WordSize)
		if err != nil {
			return Summary{}, err
		}
		v[i] = w
	}
	return Summary{
		CPU:         v[0],
		LPM:         v[1],
		DeepLPM:     v[2],
		RadioTx:     v[3],
		RadioRx:     v[4],
		TotalTime:   v[5],
		PeriodTime:  v[6],
		PeriodCount: v[7],
	}, nil
}

// Permil renders ticks as a share of TotalTime in per-mille with two
// truncated decimals. A zero total renders as "0.00".
func (s Summary) Permil(ticks uint32) string {
	if s.TotalTime == 0 {
		return "0.00"
	}
	hundredths := uint64(ticks) * 100000 / uint64(s.TotalTime)
	return fmt.Sprintf("%d.%02d", hundredths/100, hundredths%100)
}

type counter struct {
	label string
	key   string
	ticks func(Summary) uint32
}

var counters = []counter{
	{"CPU", "cpu", func(s Summary) uint32 { return s.CPU }},
	{"LPM", "lpm", func(s Summary) uint32 { return s.LPM }},
	{"Deep LPM", "deep_lpm", func(s Summary) uint32 { return s.DeepLPM }},
	{"Radio Tx", "radio_tx", func(s Summary) uint32 { return s.RadioTx }},
	{"Radio Rx", "radio_rx", func(s Summary) uint32 { return s.RadioRx }},
}

// RenderText renders the human-readable period report framed by TextStart
// and TextEnd.
func RenderText(s Summary, a addr.Address) string {
	var b strings.Builder
	b.WriteString("\n" + TextStart + "\n\n")
	fmt.Fprintf(&b, "%s --- Period summary #%d (%d seconds) [%q]\n", logPrefix, s.PeriodCount, s.PeriodTime, a.String())
	fmt.Fprintf(&b, "%s Total time  :    %d\n", logPrefix, s.TotalTime)
	for _, c := range counters {
		fmt.Fprintf(&b, "%s %s : %10d/%10d (%s permil)\n", logPrefix, c.label, c.ticks(s), s.TotalTime, s.Permil(c.ticks(s)))
	}
	b.WriteString("\n" + TextEnd + "\n")
	return b.String()
}

// Record returns the summary as a record framed with the summary markers.
// The address leads, followed by the raw counters.
func Record(s Summary, a addr.Address) record.Record {
	rec := record.Record{Kind: Kind, Address: a, Markers: record.SummaryMarkers}
	rec.AddAddress()
	for _, c := range counters {
		rec.Add(c.key, strconv.FormatUint(uint64(c.ticks(s)), 10))
	}
	rec.Add("total_time", strconv.FormatUint(uint64(s.TotalTime), 10))
	rec.Add("period_count", strconv.FormatUint(uint64(s.PeriodCount), 10))
	rec.Add("period_time", strconv.FormatUint(uint64(s.PeriodTime), 10))
	return rec
}
