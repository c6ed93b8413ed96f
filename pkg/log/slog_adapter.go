package log

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
)

// SlogAdapter writes journal events to an slog.Logger.
// Useful for development when you want to see discovery events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("kind", event.Kind.String()),
	}

	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session", event.SessionID))
	}
	if event.Name != "" {
		attrs = append(attrs, slog.String("name", event.Name))
	}

	if event.Service != nil {
		if event.Service.Host != "" {
			attrs = append(attrs, slog.String("host", event.Service.Host))
		}
		if event.Service.Port != 0 {
			attrs = append(attrs, slog.Int("port", int(event.Service.Port)))
		}
		if len(event.Service.Addresses) > 0 {
			attrs = append(attrs, slog.String("addresses", strings.Join(event.Service.Addresses, ",")))
		}
		if len(event.Service.TXT) > 0 {
			attrs = append(attrs, slog.String("txt", strings.Join(discovery.TXTRecordsToStrings(event.Service.TXT), " ")))
		}
	}
	if event.Error != nil {
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "discovery", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
