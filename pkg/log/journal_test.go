package log

import (
	"errors"
	"testing"
	"time"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
)

// recordingLogger records events and optionally fails on Close.
type recordingLogger struct {
	events   []Event
	closed   int
	closeErr error
}

func (r *recordingLogger) Log(event Event) { r.events = append(r.events, event) }

func (r *recordingLogger) Close() error {
	r.closed++
	return r.closeErr
}

func TestNoopLoggerAcceptsAnyEvent(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
	logger.Log(Event{Kind: discovery.EventError, Error: &ErrorEventData{Message: "boom"}})
}

func TestLoggerFunc(t *testing.T) {
	var got []string
	logger := LoggerFunc(func(e Event) { got = append(got, e.Name) })

	logger.Log(Event{Kind: discovery.EventFound, Name: "printer"})
	logger.Log(Event{Kind: discovery.EventRemove, Name: "scanner"})

	if len(got) != 2 || got[0] != "printer" || got[1] != "scanner" {
		t.Errorf("got %v, want [printer scanner]", got)
	}
}

func TestMultiLoggerFansOutInOrder(t *testing.T) {
	var order []string
	first := LoggerFunc(func(Event) { order = append(order, "first") })
	second := LoggerFunc(func(Event) { order = append(order, "second") })

	multi := NewMultiLogger(first, nil, second)
	multi.Log(Event{Timestamp: time.Now(), Kind: discovery.EventStart})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("order = %v, want [first second]", order)
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	multi := NewMultiLogger()
	multi.Log(Event{Kind: discovery.EventStop})
	if err := multi.Close(); err != nil {
		t.Errorf("Close on empty MultiLogger: %v", err)
	}
}

func TestMultiLoggerCloseJoinsErrors(t *testing.T) {
	errDisk := errors.New("disk full")
	ok := &recordingLogger{}
	failing := &recordingLogger{closeErr: errDisk}
	plain := LoggerFunc(func(Event) {})

	multi := NewMultiLogger(ok, plain, failing)
	multi.Log(Event{Kind: discovery.EventFound, Name: "nas"})

	err := multi.Close()
	if !errors.Is(err, errDisk) {
		t.Errorf("Close error = %v, want %v", err, errDisk)
	}
	if ok.closed != 1 || failing.closed != 1 {
		t.Errorf("closed counts = %d, %d, want 1, 1", ok.closed, failing.closed)
	}
	if len(ok.events) != 1 || ok.events[0].Name != "nas" {
		t.Errorf("events = %v", ok.events)
	}
}
