// Package sensors holds the positional key tables shared with the Field4D
// sensing firmware. Packets are not self-describing: word i of a packet is
// named by entry i of its family's table, so entries must never be reordered.
package sensors

import "github.com/field4d/gober/internal/driver/payload"

// Representation selects how a raw word is rendered.
type Representation int

const (
	Integer Representation = iota
	FixedPoint
)

// FieldSpec names one word of a packet family and says how to render it.
type FieldSpec struct {
	Name  string
	Scale payload.Scale
	Repr  Representation
}

// Format renders raw according to the spec.
func (f FieldSpec) Format(raw int32) string {
	if f.Repr == Integer {
		return payload.FormatFixed(raw, payload.ScaleInteger)
	}
	return payload.FormatFixed(raw, f.Scale)
}

// Value is one decoded word together with its spec.
type Value struct {
	Spec FieldSpec
	Raw  int32
}

// String renders the value.
func (v Value) String() string {
	return v.Spec.Format(v.Raw)
}

const (
	BaseCount     = 19
	AdvancedCount = 2
	LegacyCount   = 11
)

func intField(name string) FieldSpec {
	return FieldSpec{Name: name, Scale: payload.ScaleInteger, Repr: Integer}
}

func fixedField(name string, scale payload.Scale) FieldSpec {
	return FieldSpec{Name: name, Scale: scale, Repr: FixedPoint}
}

// RawKeys names the base sensor words when they are rendered unscaled.
var RawKeys = [BaseCount]string{
	"bmp_390_u18_pressure_raw",
	"bmp_390_u18_temperature_raw",
	"bmp_390_u19_pressure_raw",
	"bmp_390_u19_temperature_raw",
	"hdc_2010_u13_temperature_raw",
	"hdc_2010_u13_humidity_raw",
	"hdc_2010_u16_temperature_raw",
	"hdc_2010_u16_humidity_raw",
	"hdc_2010_u17_temperature_raw",
	"hdc_2010_u17_humidity_raw",
	"opt_3001_u1_light_intensity_raw",
	"opt_3001_u2_light_intensity_raw",
	"opt_3001_u3_light_intensity_raw",
	"opt_3001_u4_light_intensity_raw",
	"opt_3001_u5_light_intensity_raw",
	"batmon_temperature_raw",
	"batmon_battery_voltage_raw",
	"package_number",
	"rssi",
}

// Decimal is positionally aligned with RawKeys.
var Decimal = [BaseCount]FieldSpec{
	fixedField("bmp_390_u18_pressure", payload.Scale10K),
	fixedField("bmp_390_u18_temperature", payload.ScaleCenti),
	fixedField("bmp_390_u19_pressure", payload.Scale10K),
	fixedField("bmp_390_u19_temperature", payload.ScaleCenti),
	fixedField("hdc_2010_u13_temperature", payload.ScaleCenti),
	fixedField("hdc_2010_u13_humidity", payload.ScaleCenti),
	fixedField("hdc_2010_u16_temperature", payload.ScaleCenti),
	fixedField("hdc_2010_u16_humidity", payload.ScaleCenti),
	fixedField("hdc_2010_u17_temperature", payload.ScaleCenti),
	fixedField("hdc_2010_u17_humidity", payload.ScaleCenti),
	fixedField("opt_3001_u1_light_intensity", payload.ScaleCenti),
	fixedField("opt_3001_u2_light_intensity", payload.ScaleCenti),
	fixedField("opt_3001_u3_light_intensity", payload.ScaleCenti),
	fixedField("opt_3001_u4_light_intensity", payload.ScaleCenti),
	fixedField("opt_3001_u5_light_intensity", payload.ScaleCenti),
	intField("batmon_temperature"),
	intField("batmon_battery_voltage"),
	intField("package_number"),
	intField("rssi"),
}

// PackageNumber is the sequence counter shared by every packet family.
var PackageNumber = Decimal[17]

// AdvancedRaw names the auxiliary sensor words when rendered unscaled.
var AdvancedRaw = [AdvancedCount]string{
	"co2_ppm_raw",
	"air_velocity_raw",
}

// Advanced describes the auxiliary CO2 and air velocity sensors.
var Advanced = [AdvancedCount]FieldSpec{
	intField("co2_ppm"),
	fixedField("air_velocity", payload.ScaleCenti),
}

// LegacyKey is an entry of the first-generation sensor table.
type LegacyKey struct {
	Name    string
	IsFloat bool
}

// Legacy lists the first-generation keys in firmware order.
var Legacy = [LegacyCount]LegacyKey{
	{"light", true},
	{"battery_t", false},
	{"battery", false},
	{"bmp_press", true},
	{"bmp_temp", true},
	{"hdc_temp", true},
	{"hdc_humidity", true},
	{"tmp107_amb", true},
	{"tmp107_obj", true},
	{"packet_number", false},
	{"rssi", false},
}
