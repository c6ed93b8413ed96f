package log

import (
	"errors"
	"io"
	"iter"
	"os"
	"slices"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
)

// Filter selects journal events. Zero-valued fields match everything.
type Filter struct {
	SessionID string
	Name      string

	// Kinds matches any of the listed kinds.
	Kinds []discovery.EventKind

	// Since is inclusive, Until is exclusive.
	Since time.Time
	Until time.Time
}

// Matches reports whether event satisfies every set criterion.
func (f Filter) Matches(event Event) bool {
	switch {
	case f.SessionID != "" && event.SessionID != f.SessionID:
		return false
	case f.Name != "" && event.Name != f.Name:
		return false
	case len(f.Kinds) > 0 && !slices.Contains(f.Kinds, event.Kind):
		return false
	case !f.Since.IsZero() && event.Timestamp.Before(f.Since):
		return false
	case !f.Until.IsZero() && !event.Timestamp.Before(f.Until):
		return false
	}
	return true
}

// Reader streams events from a journal without loading the whole file.
type Reader struct {
	src    io.Reader
	dec    *cbor.Decoder
	filter Filter
}

// NewReader opens the journal at path.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens the journal at path and yields only events that
// match filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return newStreamReader(f, filter), nil
}

func newStreamReader(src io.Reader, filter Filter) *Reader {
	return &Reader{src: src, dec: newDecoder(src), filter: filter}
}

// Next returns the next matching event, or io.EOF at the end of the journal.
func (r *Reader) Next() (Event, error) {
	for {
		event, err := decodeNext(r.dec)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, err
		}
		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// All iterates over the remaining matching events. Iteration ends at the
// end of the journal or after the first error is yielded.
func (r *Reader) All() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			event, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(event, err) || err != nil {
				return
			}
		}
	}
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
