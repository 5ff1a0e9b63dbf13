package gober

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/field4d/gober/internal/driver"
	"github.com/field4d/gober/internal/energest"
	"github.com/field4d/gober/internal/frame"
	"github.com/field4d/gober/internal/testutil"
)

func TestDecodeHex(t *testing.T) {
	raw := " |9001_0000 96000000| 0x"
	_, err := decodeHex(raw)
	require.Error(t, err)

	data, err := decodeHex(" |9001_0000 96000000| ")
	require.NoError(t, err)
	require.Len(t, data, 8)

	data, err = decodeHex("0x0100")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x00}, data)
}

func TestDecodeHexOddLength(t *testing.T) {
	_, err := decodeHex("ABC")
	require.Error(t, err)
}

func TestDriversRegistered(t *testing.T) {
	require.ElementsMatch(t, []string{"airflow", "legacy", "liveness", "multisensor"}, driver.Names())
}

func TestDecodeAirflow(t *testing.T) {
	sender := testutil.Address(t, "fd00::212:4b00:3")
	result, err := Decode(context.Background(), testutil.Words(400, 150, 7), sender)
	require.NoError(t, err)
	require.Equal(t, "airflow", result.Driver)
	require.Equal(t, frame.FamilyAirflow, result.Family)
	require.Equal(t, 12, result.ByteCount)
	require.Len(t, result.Record.Fields, 4)
	require.Contains(t, result.String(), "  \"air_velocity\": 1.50,\n")

	fs := result.FieldSet()
	require.Equal(t, []string{"ipv6", "co2_ppm", "air_velocity", "package_number"}, fs.Names())
	co2, err := fs.Int("co2_ppm")
	require.NoError(t, err)
	require.Equal(t, int64(400), co2)
	v, err := fs.Float("air_velocity")
	require.NoError(t, err)
	require.InDelta(t, 1.5, v, 1e-9)
	ip, err := fs.String("ipv6")
	require.NoError(t, err)
	require.Equal(t, "fd00::212:4b00:3", ip)
}

func TestDecodeUnrecognizedLength(t *testing.T) {
	result, err := Decode(context.Background(), []byte{1, 2, 3, 4, 5}, testutil.Address(t, "fd00::1"))
	require.ErrorIs(t, err, frame.ErrUnrecognizedFraming)
	require.Empty(t, result.Record.Fields)
}

func TestDecodeLiveness(t *testing.T) {
	result, err := DecodeHex(context.Background(), "0100", testutil.Address(t, "fd00::9"))
	require.NoError(t, err)
	require.Equal(t, "liveness", result.Driver)
	require.Equal(t, "\nPING received from: fd00::9\n", result.String())
}

func TestDecodeRawMode(t *testing.T) {
	raw := make([]int32, 19)
	raw[0] = 10132512
	raw[18] = -71
	result, err := DecodeWithOptions(context.Background(), testutil.Words(raw...), testutil.Address(t, "fd00::1"), AnalyzeOptions{Mode: "raw"})
	require.NoError(t, err)
	fs := result.FieldSet()
	v, ok := fs.Raw("bmp_390_u18_pressure_raw")
	require.True(t, ok)
	require.Equal(t, "10132512", v)
	_, ok = fs.Raw("bmp_390_u18_pressure")
	require.False(t, ok)
}

func TestDecodeBadMode(t *testing.T) {
	_, err := DecodeWithOptions(context.Background(), []byte{1, 0}, testutil.Address(t, "fd00::1"), AnalyzeOptions{Mode: "hex"})
	require.Error(t, err)
}

func TestTranslateLegacy(t *testing.T) {
	result, err := TranslateLegacy(`{"a":512.07,"z":4}`, testutil.Address(t, "fd00::1"))
	require.NoError(t, err)
	require.Equal(t, []string{"z"}, result.Skipped)
	require.Equal(t, []string{"light", "battery_t", "tmp107_amb", "tmp107_obj", "rssi", "ipv6"}, result.FieldSet().Names())
}

func TestUnpackSummaryLengthMismatch(t *testing.T) {
	_, err := UnpackSummaryHex(strings.Repeat("00", 31), testutil.Address(t, "fd00::1"))
	require.ErrorIs(t, err, energest.ErrLengthMismatch)
}
