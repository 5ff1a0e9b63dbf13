package record

import (
	"encoding/json"
	"strings"

	"github.com/field4d/gober/internal/addr"
)

// AddressKey is the key under which the sender address is rendered.
const AddressKey = "ipv6"

// Markers frame a rendered record for the log scraper.
type Markers struct {
	Start string
	End   string
}

var (
	PacketMarkers  = Markers{Start: "JSON_START", End: "JSON_END"}
	SummaryMarkers = Markers{Start: "ENERGEST_JSON_START", End: "ENERGEST_JSON_END"}
)

// Field is one rendered name/value pair. Value is a ready JSON token: numbers
// are kept as rendered text so fixed-point widths survive.
type Field struct {
	Name  string
	Value string
}

// Record is the decoded, named form of one inbound unit. Field order is the
// layout order of the packet family and is never changed after decode.
type Record struct {
	Kind    string
	Address addr.Address
	Markers Markers
	Fields  []Field

	// Message replaces the object body for records without fields.
	Message string
}

// New returns an empty record framed with the packet markers.
func New(kind string, a addr.Address) Record {
	return Record{Kind: kind, Address: a, Markers: PacketMarkers}
}

// Add appends a field whose value is already a JSON token.
func (r *Record) Add(name, value string) {
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// AddString appends a field rendered as a JSON string.
func (r *Record) AddString(name, value string) {
	r.Add(name, quote(value))
}

// AddAddress appends the compressed sender address.
func (r *Record) AddAddress() {
	r.AddString(AddressKey, r.Address.String())
}

// Get returns the rendered value of the first field with the given name.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// String renders the record, see Render.
func (r Record) String() string {
	return Render(r)
}

// Render produces the marker-framed text consumed by the log scraper:
//
//	JSON_START
//	{
//	  "name": value,
//	  "last": value
//	}
//	JSON_END
//
// The output starts and ends with a newline.
func Render(r Record) string {
	var b strings.Builder
	b.WriteByte('\n')
	if len(r.Fields) == 0 && r.Message != "" {
		b.WriteString(r.Message)
		b.WriteByte('\n')
		return b.String()
	}
	markers := r.Markers
	if markers == (Markers{}) {
		markers = PacketMarkers
	}
	b.WriteString(markers.Start)
	b.WriteString("\n{\n")
	for i, f := range r.Fields {
		b.WriteString("  ")
		b.WriteString(quote(f.Name))
		b.WriteString(": ")
		b.WriteString(f.Value)
		if i < len(r.Fields)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	b.WriteString(markers.End)
	b.WriteByte('\n')
	return b.String()
}

func quote(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}
