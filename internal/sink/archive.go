package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

var (
	archiveEncMode cbor.EncMode
	archiveDecMode cbor.DecMode
)

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	archiveEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create archive CBOR encoder mode: %v", err))
	}
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	archiveDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create archive CBOR decoder mode: %v", err))
	}
}

// Entry is one archived output. Session ties together all entries written
// by one process.
type Entry struct {
	Session string            `cbor:"1,keyasint"`
	Time    time.Time         `cbor:"2,keyasint"`
	Sender  string            `cbor:"3,keyasint"`
	Kind    string            `cbor:"4,keyasint"`
	Fields  map[string]string `cbor:"5,keyasint,omitempty"`
	Text    string            `cbor:"6,keyasint"`
}

// Archive appends outputs as a stream of CBOR entries.
type Archive struct {
	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
	session string
	closed  bool
}

// OpenArchive opens path for appending, creating it with 0644 if needed.
func OpenArchive(path string) (*Archive, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Archive{
		file:    f,
		encoder: archiveEncMode.NewEncoder(f),
		session: uuid.NewString(),
	}, nil
}

// Session returns the id stamped on every entry of this archive.
func (a *Archive) Session() string { return a.session }

func (a *Archive) Emit(_ context.Context, out Output) error {
	entry := Entry{
		Session: a.session,
		Time:    out.Time,
		Sender:  out.Sender,
		Kind:    out.Kind,
		Text:    out.Text,
	}
	if len(out.Fields) > 0 {
		entry.Fields = make(map[string]string, len(out.Fields))
		for _, f := range out.Fields {
			entry.Fields[f.Name] = f.Value
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return os.ErrClosed
	}
	return a.encoder.Encode(entry)
}

// Close closes the archive file. It is safe to call Close multiple times.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.file.Close()
}

// ReadArchive decodes every entry stored at path.
func ReadArchive(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := archiveDecMode.NewDecoder(f)
	var entries []Entry
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if err == io.EOF {
				return entries, nil
			}
			return entries, err
		}
		entries = append(entries, e)
	}
}
