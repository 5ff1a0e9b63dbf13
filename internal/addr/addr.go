package addr

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Size is the byte length of a node address.
const Size = 16

const groups = Size / 2

// Address is a sender address as delivered by the radio network: 16 bytes,
// read as eight big-endian 16-bit groups.
type Address [Size]byte

// FromSlice copies a 16-byte slice into an Address.
func FromSlice(b []byte) (Address, error) {
	var a Address
	if len(b) != Size {
		return a, fmt.Errorf("address must be %d bytes, got %d", Size, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// FromIP converts a net.IP. IPv4 senders become IPv4-mapped addresses.
func FromIP(ip net.IP) (Address, error) {
	v6 := ip.To16()
	if v6 == nil {
		return Address{}, fmt.Errorf("invalid IP address %q", ip.String())
	}
	return FromSlice(v6)
}

// Parse reads the textual form of an IPv4 or IPv6 address.
func Parse(s string) (Address, error) {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return Address{}, fmt.Errorf("cannot parse address %q", s)
	}
	return FromIP(ip)
}

// String returns the compressed form, see Compress.
func (a Address) String() string {
	return Compress(a)
}

// Compress renders the address as lowercase hex groups joined by ':'. The
// longest run of zero groups, even a single one, collapses into "::"; the
// first run wins a tie. The result is a new string on every call.
func Compress(a Address) string {
	var g [groups]uint16
	for i := range g {
		g[i] = binary.BigEndian.Uint16(a[i*2:])
	}

	bestStart, bestLen := -1, 0
	runStart, runLen := -1, 0
	for i, v := range g {
		if v != 0 {
			runLen = 0
			continue
		}
		if runLen == 0 {
			runStart = i
		}
		runLen++
		if runLen > bestLen {
			bestStart, bestLen = runStart, runLen
		}
	}

	if bestLen == 0 {
		return join(g[:])
	}
	return join(g[:bestStart]) + "::" + join(g[bestStart+bestLen:])
}

func join(gs []uint16) string {
	parts := make([]string, len(gs))
	for i, v := range gs {
		parts[i] = strconv.FormatUint(uint64(v), 16)
	}
	return strings.Join(parts, ":")
}
