package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
)

// WordSize is the width of every integer field carried by sensor packets.
const WordSize = 4

// ErrOutOfBounds reports a word read past the end of the buffer.
var ErrOutOfBounds = errors.New("word out of bounds")

// Int32LE decodes the little-endian signed word at off. Sensor packets carry
// all of their fields in this byte order.
func Int32LE(b []byte, off int) (int32, error) {
	if err := checkWord(b, off); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b[off : off+WordSize])), nil
}

// Uint32BE decodes the big-endian unsigned word at off. Only the energest
// summary block uses this order; it must not be swapped for Int32LE.
func Uint32BE(b []byte, off int) (uint32, error) {
	if err := checkWord(b, off); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[off : off+WordSize]), nil
}

func checkWord(b []byte, off int) error {
	if off < 0 || off+WordSize > len(b) {
		return fmt.Errorf("%w: offset %d needs %d bytes, buffer has %d", ErrOutOfBounds, off, WordSize, len(b))
	}
	return nil
}

// Scale is the divisor between the integer and fractional part of a
// fixed-point reading.
type Scale int32

const (
	ScaleInteger Scale = 1
	ScaleCenti   Scale = 100
	Scale10K     Scale = 10000
	Scale100K    Scale = 100000
)

// Width returns the number of fraction digits rendered for the scale.
func (s Scale) Width() int {
	if s <= 1 {
		return 0
	}
	return len(strconv.FormatInt(int64(s-1), 10))
}

// FormatFixed renders raw as "integer.fraction". The sign lives only in the
// integer part, so values in (-1, 0) lose their minus: -5 at scale 100 is
// "0.05". Downstream parsers were built against that output.
func FormatFixed(raw int32, scale Scale) string {
	if scale <= ScaleInteger {
		return strconv.FormatInt(int64(raw), 10)
	}
	v, s := int64(raw), int64(scale)
	return fmt.Sprintf("%d.%0*d", v/s, scale.Width(), abs64(v%s))
}

// FormatSplit renders a reading whose integer and fraction were sent as two
// separate words, as the 68-byte legacy packet does.
func FormatSplit(integer, fraction int32, width int) string {
	return fmt.Sprintf("%d.%0*d", integer, width, abs64(int64(fraction)))
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
