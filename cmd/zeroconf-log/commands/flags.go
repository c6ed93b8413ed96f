// Package commands implements the zeroconf-log subcommands.
package commands

import (
	"errors"
	"flag"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
	"github.com/mash-protocol/zeroconf-go/pkg/log"
)

// timestampFormat is used for all human-readable and exported timestamps.
const timestampFormat = "2006-01-02T15:04:05.000000Z"

// FilterFlags holds the event selection flags shared by view, export and
// filter.
type FilterFlags struct {
	SessionID string
	Name      string
	Kinds     string
	Since     string
	Until     string
}

// Register binds the selection flags to fs.
func (f *FilterFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.SessionID, "session", "", "Only events from this scan session ID")
	fs.StringVar(&f.Name, "name", "", "Only events for this service name")
	fs.StringVar(&f.Kinds, "kind", "", "Comma-separated event kinds ("+kindNames()+")")
	fs.StringVar(&f.Since, "since", "", "Only events at or after this time (RFC3339)")
	fs.StringVar(&f.Until, "until", "", "Only events before this time (RFC3339)")
}

// Filter converts the flag values to a journal filter.
func (f FilterFlags) Filter() (log.Filter, error) {
	filter := log.Filter{SessionID: f.SessionID, Name: f.Name}

	kinds, err := ParseKinds(f.Kinds)
	if err != nil {
		return log.Filter{}, err
	}
	filter.Kinds = kinds

	if filter.Since, err = parseTimeFlag("since", f.Since); err != nil {
		return log.Filter{}, err
	}
	if filter.Until, err = parseTimeFlag("until", f.Until); err != nil {
		return log.Filter{}, err
	}
	if !filter.Since.IsZero() && !filter.Until.IsZero() && !filter.Until.After(filter.Since) {
		return log.Filter{}, errors.New("-until must be after -since")
	}
	return filter, nil
}

// ParseKinds parses a comma-separated list of event kinds. Duplicates are
// dropped and an empty list selects every kind.
func ParseKinds(s string) ([]discovery.EventKind, error) {
	var kinds []discovery.EventKind
	for part := range strings.SplitSeq(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		kind, err := discovery.ParseEventKind(part)
		if err != nil {
			return nil, fmt.Errorf("invalid kind %q (must be one of %s)", strings.TrimSpace(part), kindNames())
		}
		if !slices.Contains(kinds, kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

func kindNames() string {
	names := make([]string, len(discovery.AllEventKinds))
	for i, k := range discovery.AllEventKinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

func parseTimeFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -%s: %w", name, err)
	}
	return t, nil
}
