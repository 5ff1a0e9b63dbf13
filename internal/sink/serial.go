package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	serial "go.bug.st/serial"
)

// Serial forwards rendered text over a serial line, the way the border
// router firmware printed records on its UART.
type Serial struct {
	mu   sync.Mutex
	port io.WriteCloser
	dev  string
}

// OpenSerial opens dev at the given baud rate.
func OpenSerial(dev string, baud int) (*Serial, error) {
	p, err := serial.Open(dev, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial %s: %w", dev, err)
	}
	return NewSerial(dev, p), nil
}

// NewSerial wraps an already open port.
func NewSerial(dev string, port io.WriteCloser) *Serial {
	return &Serial{port: port, dev: dev}
}

func (s *Serial) Emit(_ context.Context, out Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return errors.New("serial port not open")
	}
	if _, err := io.WriteString(s.port, out.Text); err != nil {
		return fmt.Errorf("write serial %s: %w", s.dev, err)
	}
	return nil
}

// Close closes the underlying port. It is safe to call Close twice.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
