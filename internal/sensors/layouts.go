package sensors

import "fmt"

// Expected payload sizes of the sensor packet families.
const (
	AirflowBytes     = 12
	LegacyBytes      = 68
	MultiSensorBytes = 76
)

// LegacySplitWidth is the fraction width of split legacy readings.
const LegacySplitWidth = 2

// AirflowLayout describes the 12-byte CO2/air velocity packet.
var AirflowLayout = [3]FieldSpec{
	Advanced[0],
	Advanced[1],
	PackageNumber,
}

// DecimalLayout describes the 76-byte multi-sensor packet.
var DecimalLayout = Decimal

// RawLayout renders the 76-byte packet under the raw keys, unscaled.
var RawLayout = rawLayout()

func rawLayout() [BaseCount]FieldSpec {
	var out [BaseCount]FieldSpec
	for i, name := range RawKeys {
		out[i] = intField(name)
	}
	return out
}

// LegacySlot is one entry of the 68-byte legacy packet. Float keys occupy two
// words, the integer part followed by the fraction.
type LegacySlot struct {
	Key      LegacyKey
	Reserved bool
}

// Words returns how many payload words the slot consumes.
func (s LegacySlot) Words() int {
	if !s.Reserved && s.Key.IsFloat {
		return 2
	}
	return 1
}

// LegacyLayout describes the 68-byte legacy packet. The four trailing words
// are sent by the firmware but have never been rendered.
var LegacyLayout = []LegacySlot{
	{Key: Legacy[0]},
	{Key: Legacy[1]},
	{Key: Legacy[2]},
	{Key: Legacy[3]},
	{Key: Legacy[4]},
	{Key: Legacy[5]},
	{Key: Legacy[6]},
	{Key: LegacyKey{Name: PackageNumber.Name}},
	{Reserved: true},
	{Reserved: true},
	{Reserved: true},
	{Reserved: true},
}

// LegacyWords returns the number of words consumed by LegacyLayout.
func LegacyWords() int {
	n := 0
	for _, s := range LegacyLayout {
		n += s.Words()
	}
	return n
}

// Decode pairs each word with its spec. The word count must match the layout
// exactly; a mismatch means the packet was dispatched to the wrong family.
func Decode(layout []FieldSpec, words []int32) ([]Value, error) {
	if len(words) != len(layout) {
		return nil, fmt.Errorf("layout has %d fields, payload has %d words", len(layout), len(words))
	}
	values := make([]Value, len(layout))
	for i, spec := range layout {
		values[i] = Value{Spec: spec, Raw: words[i]}
	}
	return values, nil
}
