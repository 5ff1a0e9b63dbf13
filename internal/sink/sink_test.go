package sink

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/field4d/gober/internal/record"
	"github.com/field4d/gober/internal/testutil"
)

func sampleOutput(t *testing.T) Output {
	t.Helper()
	rec := record.New("airflow", testutil.Address(t, "fd00::3"))
	rec.AddAddress()
	rec.Add("co2_ppm", "400")
	rec.Add("air_velocity", "1.50")
	return FromRecord(rec, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}

func TestFromRecord(t *testing.T) {
	out := sampleOutput(t)
	require.Equal(t, "fd00::3", out.Sender)
	require.Equal(t, "airflow", out.Kind)
	require.Len(t, out.Fields, 3)
	require.Contains(t, out.Text, "JSON_START\n{\n")
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	out := sampleOutput(t)
	require.NoError(t, c.Emit(context.Background(), out))
	require.NoError(t, c.Emit(context.Background(), out))
	require.Equal(t, out.Text+out.Text, buf.String())
	require.NoError(t, c.Close())
}

type fakePort struct {
	bytes.Buffer
	closed int
}

func (p *fakePort) Close() error {
	p.closed++
	return nil
}

func TestSerial(t *testing.T) {
	port := &fakePort{}
	s := NewSerial("/dev/ttyFAKE", port)
	out := sampleOutput(t)
	require.NoError(t, s.Emit(context.Background(), out))
	require.Equal(t, out.Text, port.String())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.Equal(t, 1, port.closed)
	require.Error(t, s.Emit(context.Background(), out))
}

type mockToken struct {
	err     error
	timeout bool
}

func (tok mockToken) Error() error                   { return tok.err }
func (tok mockToken) Wait() bool                     { return !tok.timeout }
func (tok mockToken) WaitTimeout(time.Duration) bool { return !tok.timeout }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type mqttMock struct {
	pub          []published
	err          error
	disconnected bool
}

func (m *mqttMock) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	m.pub = append(m.pub, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return mockToken{err: m.err}
}

func (m *mqttMock) Disconnect(uint) { m.disconnected = true }

func TestMQTT(t *testing.T) {
	mock := &mqttMock{}
	s := NewMQTT(mock, "field4d/records", 1)
	out := sampleOutput(t)
	require.NoError(t, s.Emit(context.Background(), out))
	require.Len(t, mock.pub, 1)
	require.Equal(t, "field4d/records/airflow", mock.pub[0].topic)
	require.Equal(t, byte(1), mock.pub[0].qos)
	require.Equal(t, out.Text, string(mock.pub[0].payload))

	mock.err = errors.New("broker gone")
	require.EqualError(t, s.Emit(context.Background(), out), "broker gone")

	require.NoError(t, s.Close())
	require.True(t, mock.disconnected)
}

func TestArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.cbor")
	a, err := OpenArchive(path)
	require.NoError(t, err)
	out := sampleOutput(t)
	require.NoError(t, a.Emit(context.Background(), out))
	require.NoError(t, a.Emit(context.Background(), out))
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	require.Error(t, a.Emit(context.Background(), out))

	entries, err := ReadArchive(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	e := entries[0]
	require.Equal(t, a.Session(), e.Session)
	require.True(t, out.Time.Equal(e.Time))
	require.Equal(t, "fd00::3", e.Sender)
	require.Equal(t, "1.50", e.Fields["air_velocity"])
	require.Equal(t, out.Text, e.Text)
}

func TestArchiveAppendsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.cbor")
	out := sampleOutput(t)
	var sessions []string
	for i := 0; i < 2; i++ {
		a, err := OpenArchive(path)
		require.NoError(t, err)
		sessions = append(sessions, a.Session())
		require.NoError(t, a.Emit(context.Background(), out))
		require.NoError(t, a.Close())
	}
	require.NotEqual(t, sessions[0], sessions[1])

	entries, err := ReadArchive(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, sessions[1], entries[1].Session)
}

type failingSink struct{ closed bool }

func (f *failingSink) Emit(context.Context, Output) error { return errors.New("boom") }
func (f *failingSink) Close() error                       { f.closed = true; return nil }

func TestMultiContinuesPastFailure(t *testing.T) {
	var buf bytes.Buffer
	bad := &failingSink{}
	m := Multi{bad, NewConsole(&buf)}
	out := sampleOutput(t)
	err := m.Emit(context.Background(), out)
	require.EqualError(t, err, "boom")
	require.Equal(t, out.Text, buf.String())
	require.NoError(t, m.Close())
	require.True(t, bad.closed)
}

func TestWaitConnectDisconnectsOnFailure(t *testing.T) {
	for name, tok := range map[string]mockToken{
		"timeout": {timeout: true},
		"refused": {err: errors.New("connection refused")},
	} {
		t.Run(name, func(t *testing.T) {
			mock := &mqttMock{}
			require.Error(t, waitConnect(mock, tok, "tcp://localhost:1883"))
			require.True(t, mock.disconnected)
		})
	}

	mock := &mqttMock{}
	require.NoError(t, waitConnect(mock, mockToken{}, "tcp://localhost:1883"))
	require.False(t, mock.disconnected)
}
