package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
	"github.com/mash-protocol/zeroconf-go/pkg/log"
)

// RunView prints every event matching filter in a human-readable form.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer reader.Close()

	for event, err := range reader.All() {
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
	return nil
}

// formatEvent writes one event as a header line plus indented details,
// followed by a blank line.
func formatEvent(w io.Writer, event log.Event) {
	session := shortenSessionID(event.SessionID)
	if session == "" {
		session = "-"
	}
	header := fmt.Sprintf("%s [session:%s] %s",
		event.Timestamp.UTC().Format(timestampFormat), session, strings.ToUpper(event.Kind.String()))
	if event.Name != "" {
		header = fmt.Sprintf("%-52s %q", header, event.Name)
	}
	fmt.Fprintln(w, header)

	if svc := event.Service; svc != nil {
		if svc.FullName != "" {
			fmt.Fprintf(w, "  FullName:  %s\n", svc.FullName)
		}
		if svc.Host != "" || svc.Port != 0 {
			fmt.Fprintf(w, "  Host:      %s:%d\n", svc.Host, svc.Port)
		}
		if len(svc.Addresses) > 0 {
			fmt.Fprintf(w, "  Addresses: %s\n", strings.Join(svc.Addresses, ", "))
		}
		if len(svc.TXT) > 0 {
			fmt.Fprintf(w, "  TXT:       %s\n", strings.Join(discovery.TXTRecordsToStrings(svc.TXT), " "))
		}
	}
	if event.Error != nil {
		fmt.Fprintf(w, "  Error:     %s\n", event.Error.Message)
	}
	fmt.Fprintln(w)
}

// shortenSessionID returns the first 8 characters of a session ID, which is
// the first group of a UUID.
func shortenSessionID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
