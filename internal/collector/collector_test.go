package collector

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/field4d/gober/internal/addr"
	"github.com/field4d/gober/internal/sink"
	"github.com/field4d/gober/internal/testutil"
)

type recorder struct {
	mu   sync.Mutex
	outs []sink.Output
	got  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{got: make(chan struct{}, 16)}
}

func (r *recorder) Emit(_ context.Context, out sink.Output) error {
	r.mu.Lock()
	r.outs = append(r.outs, out)
	r.mu.Unlock()
	r.got <- struct{}{}
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) last() sink.Output {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outs[len(r.outs)-1]
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newCollector(t *testing.T, s sink.Sink, opts Options) (*Collector, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts.Now = func() time.Time { return fixedNow }
	return New(s, logrus.NewEntry(logger), opts), hook
}

func TestHandleRecord(t *testing.T) {
	rec := newRecorder()
	c, _ := newCollector(t, rec, Options{})
	sender := testutil.Address(t, "fd00::212:4b00:3")
	require.NoError(t, c.HandleRecord(context.Background(), testutil.Words(400, 150, 7), sender))

	out := rec.last()
	require.Equal(t, fixedNow, out.Time)
	require.Equal(t, "airflow", out.Kind)
	require.Equal(t, "fd00::212:4b00:3", out.Sender)
	require.Contains(t, out.Text, "\"air_velocity\": 1.50")
}

func TestHandleRecordUnknownLength(t *testing.T) {
	rec := newRecorder()
	c, _ := newCollector(t, rec, Options{})
	err := c.HandleRecord(context.Background(), make([]byte, 5), testutil.Address(t, "fd00::1"))
	require.Error(t, err)
	require.Empty(t, rec.outs)
}

func TestHandleSummary(t *testing.T) {
	rec := newRecorder()
	c, _ := newCollector(t, rec, Options{})
	data := testutil.LoadBytes(t, "energest/node7.hex")
	require.NoError(t, c.HandleSummary(context.Background(), data, testutil.Address(t, "fd00::212:4b00:1a2b:7")))
	out := rec.last()
	require.Equal(t, "energest", out.Kind)
	require.Equal(t, testutil.LoadText(t, "energest/node7.txt"), out.Text)
}

func TestServeAcksAndLogs(t *testing.T) {
	rec := newRecorder()
	c, hook := newCollector(t, rec, Options{ReplyAck: true})

	server, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx, server, c.HandleRecord) }()

	client, err := net.Dial("udp", server.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write([]byte{0x01, 0x00})
	require.NoError(t, err)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	ack := make([]byte, 8)
	n, err := client.Read(ack)
	require.NoError(t, err)
	require.Equal(t, Ack, ack[:n])

	select {
	case <-rec.got:
	case <-time.After(2 * time.Second):
		t.Fatal("no output emitted")
	}
	require.Contains(t, rec.last().Text, "PING received from: ")

	// An unrecognized datagram is logged and dropped, the loop keeps going.
	_, err = client.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	_, err = client.Write(testutil.Words(400, 150, 7))
	require.NoError(t, err)
	select {
	case <-rec.got:
	case <-time.After(2 * time.Second):
		t.Fatal("no output after dropped datagram")
	}
	require.Equal(t, "airflow", rec.last().Kind)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop")
	}

	var dropped bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Data["bytes"] == 3 {
			dropped = true
		}
	}
	require.True(t, dropped, "unrecognized datagram should be logged")
}

func TestSenderAddress(t *testing.T) {
	a, err := senderAddress(&net.UDPAddr{IP: net.ParseIP("fd00::7"), Port: 1234})
	require.NoError(t, err)
	require.Equal(t, "fd00::7", a.String())

	a, err = senderAddress(fakeAddr("[fd00::8]:1234"))
	require.NoError(t, err)
	require.Equal(t, "fd00::8", a.String())

	_, err = senderAddress(fakeAddr("nonsense"))
	require.Error(t, err)
}

type fakeAddr string

func (a fakeAddr) Network() string { return "udp" }
func (a fakeAddr) String() string  { return string(a) }

func TestHandlerErrorIsNotAcked(t *testing.T) {
	c, _ := newCollector(t, newRecorder(), Options{ReplyAck: true})
	conn := &countingConn{}
	failing := func(context.Context, []byte, addr.Address) error { return errors.New("nope") }
	c.serveOne(context.Background(), conn, []byte{1}, &net.UDPAddr{IP: net.ParseIP("fd00::1")}, failing)
	require.Zero(t, conn.writes)
}

type countingConn struct {
	net.PacketConn
	writes int
}

func (c *countingConn) WriteTo([]byte, net.Addr) (int, error) {
	c.writes++
	return 4, nil
}
