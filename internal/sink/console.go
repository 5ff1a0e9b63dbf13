package sink

import (
	"context"
	"io"
	"sync"
)

// Console writes the rendered text to w, typically stdout.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Emit(_ context.Context, out Output) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.w, out.Text)
	return err
}

// Close is a no-op; the writer belongs to the caller.
func (c *Console) Close() error { return nil }
