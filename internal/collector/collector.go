// Package collector receives sensor datagrams over UDP and hands the decoded
// records to the configured sinks.
package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/field4d/gober/internal/addr"
	"github.com/field4d/gober/internal/options"
	"github.com/field4d/gober/internal/sink"
	"github.com/field4d/gober/pkg/gober"
)

// DefaultPort is the UDP port sensor nodes send records to.
const DefaultPort = 1234

// Ack is returned to the sender when acknowledgements are enabled.
var Ack = []byte{1, 0, 0, 1}

const readBufferSize = 1500

// Handler processes one datagram.
type Handler func(ctx context.Context, data []byte, sender addr.Address) error

// Options tunes how a Collector decodes and answers datagrams.
type Options struct {
	Mode     options.Mode
	ReplyAck bool
	Now      func() time.Time
}

// Collector decodes inbound datagrams and emits them to a sink.
type Collector struct {
	log  *logrus.Entry
	sink sink.Sink
	opts Options
}

// New returns a Collector writing to s. A nil Now defaults to time.Now.
func New(s sink.Sink, log *logrus.Entry, opts Options) *Collector {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Collector{log: log, sink: s, opts: opts}
}

// HandleRecord decodes a sensor packet and emits its rendering.
func (c *Collector) HandleRecord(ctx context.Context, data []byte, sender addr.Address) error {
	result, err := gober.DecodeWithOptions(ctx, data, sender, gober.AnalyzeOptions{Mode: c.opts.Mode.String()})
	if err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{
		"from":   sender.String(),
		"driver": result.Driver,
	}).Debug("decoded record")
	return c.sink.Emit(ctx, sink.FromRecord(result.Record, c.opts.Now()))
}

// HandleSummary unpacks an energest block and emits its text report and JSON
// form as one output.
func (c *Collector) HandleSummary(ctx context.Context, data []byte, sender addr.Address) error {
	summary, err := gober.UnpackSummary(data, sender)
	if err != nil {
		return err
	}
	out := sink.FromRecord(summary.Record, c.opts.Now())
	out.Text = summary.String()
	return c.sink.Emit(ctx, out)
}

// ListenAndServe opens a UDP socket on address and serves it with h until
// ctx is cancelled.
func (c *Collector) ListenAndServe(ctx context.Context, address string, h Handler) error {
	conn, err := net.ListenPacket("udp", address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", address, err)
	}
	c.log.Infof("listening on %v", conn.LocalAddr())
	return c.Serve(ctx, conn, h)
}

// Serve reads datagrams from conn one at a time. Decode and sink errors are
// logged and the datagram dropped; only socket errors end the loop. conn is
// closed when ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, conn net.PacketConn, h Handler) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		conn.Close()
	}()

	buf := make([]byte, readBufferSize)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read udp: %w", err)
		}
		c.serveOne(ctx, conn, buf[:n], from, h)
	}
}

func (c *Collector) serveOne(ctx context.Context, conn net.PacketConn, data []byte, from net.Addr, h Handler) {
	entry := c.log.WithFields(logrus.Fields{"from": from.String(), "bytes": len(data)})
	sender, err := senderAddress(from)
	if err != nil {
		entry.WithError(err).Warn("dropping datagram")
		return
	}
	entry.Infof("received %d bytes from %s", len(data), sender)
	if err := h(ctx, data, sender); err != nil {
		entry.WithError(err).Error("dropping datagram")
		return
	}
	if c.opts.ReplyAck {
		if _, err := conn.WriteTo(Ack, from); err != nil {
			entry.WithError(err).Warn("failed to send ack")
		}
	}
}

func senderAddress(from net.Addr) (addr.Address, error) {
	switch a := from.(type) {
	case *net.UDPAddr:
		return addr.FromIP(a.IP)
	default:
		host, _, err := net.SplitHostPort(from.String())
		if err != nil {
			return addr.Address{}, err
		}
		return addr.Parse(host)
	}
}
