package commands

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
	"github.com/mash-protocol/zeroconf-go/pkg/log"
)

// Stats aggregates a journal.
type Stats struct {
	TotalEvents  int
	EventsByKind map[discovery.EventKind]int
	Sessions     map[string]*SessionStats
	Services     map[string]int
	Errors       int
	First        time.Time
	Last         time.Time
}

// SessionStats aggregates the events journaled under one scan session.
type SessionStats struct {
	ID        string
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Started   bool

	// PreStart counts events applied before the session's start event.
	// These usually belong to the scan the session superseded.
	PreStart int
}

func newStats() *Stats {
	return &Stats{
		EventsByKind: make(map[discovery.EventKind]int),
		Sessions:     make(map[string]*SessionStats),
		Services:     make(map[string]int),
	}
}

// add folds one event into the aggregate.
func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByKind[event.Kind]++
	if event.Name != "" {
		s.Services[event.Name]++
	}
	if event.Error != nil {
		s.Errors++
	}
	if s.First.IsZero() || event.Timestamp.Before(s.First) {
		s.First = event.Timestamp
	}
	if event.Timestamp.After(s.Last) {
		s.Last = event.Timestamp
	}

	session := s.Sessions[event.SessionID]
	if session == nil {
		session = &SessionStats{ID: event.SessionID, FirstSeen: event.Timestamp}
		s.Sessions[event.SessionID] = session
	}
	session.Events++
	if event.Timestamp.After(session.LastSeen) {
		session.LastSeen = event.Timestamp
	}
	if event.Kind == discovery.EventStart {
		session.Started = true
	} else if !session.Started {
		session.PreStart++
	}
}

// orderedSessions returns sessions by first appearance.
func (s *Stats) orderedSessions() []*SessionStats {
	sessions := make([]*SessionStats, 0, len(s.Sessions))
	for _, ss := range s.Sessions {
		sessions = append(sessions, ss)
	}
	slices.SortFunc(sessions, func(a, b *SessionStats) int {
		return cmp.Or(a.FirstSeen.Compare(b.FirstSeen), cmp.Compare(a.ID, b.ID))
	})
	return sessions
}

// collectStats reads every event of the journal at path.
func collectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for event, err := range reader.All() {
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
	return stats, nil
}

// RunStats analyzes the journal and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := collectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Discovery Journal Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s (%s)\n",
			stats.First.Format(time.RFC3339),
			stats.Last.Format(time.RFC3339),
			stats.Last.Sub(stats.First).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	for _, kind := range discovery.AllEventKinds {
		if count := stats.EventsByKind[kind]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", kind.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Services: %d\n", len(stats.Services))
	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	for _, ss := range stats.orderedSessions() {
		id := shortenSessionID(ss.ID)
		if id == "" {
			id = "none"
		}
		fmt.Fprintf(w, "  [%s] %d events, duration %s\n", id, ss.Events, ss.LastSeen.Sub(ss.FirstSeen).Round(time.Millisecond))
		if ss.PreStart > 0 {
			fmt.Fprintf(w, "           Before start: %d (likely from a superseded scan)\n", ss.PreStart)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
