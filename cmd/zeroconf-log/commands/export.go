package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
	"github.com/mash-protocol/zeroconf-go/pkg/log"
)

// Export formats.
const (
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

var csvHeader = []string{"timestamp", "session_id", "kind", "name", "host", "port", "addresses", "txt", "error"}

// exporter writes journal events in one output format.
type exporter interface {
	write(event log.Event) error
	flush() error
}

// RunExport writes the events matching filter to w in the given format.
func RunExport(path string, filter log.Filter, format string, w io.Writer) error {
	exp, err := newExporter(format, w)
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer reader.Close()

	for event, err := range reader.All() {
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := exp.write(event); err != nil {
			return fmt.Errorf("failed to export event: %w", err)
		}
	}
	return exp.flush()
}

func newExporter(format string, w io.Writer) (exporter, error) {
	switch format {
	case FormatJSONL:
		return &jsonlExporter{enc: json.NewEncoder(w)}, nil
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		return &csvExporter{w: cw}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: %s, %s)", format, FormatJSONL, FormatCSV)
	}
}

// jsonEvent is the JSONL shape of a journal event.
type jsonEvent struct {
	Timestamp string            `json:"timestamp"`
	SessionID string            `json:"session_id,omitempty"`
	Kind      string            `json:"kind"`
	Name      string            `json:"name,omitempty"`
	FullName  string            `json:"full_name,omitempty"`
	Host      string            `json:"host,omitempty"`
	Port      uint16            `json:"port,omitempty"`
	Addresses []string          `json:"addresses,omitempty"`
	TXT       map[string]string `json:"txt,omitempty"`
	Error     string            `json:"error,omitempty"`
}

type jsonlExporter struct {
	enc *json.Encoder
}

func (e *jsonlExporter) write(event log.Event) error {
	out := jsonEvent{
		Timestamp: event.Timestamp.UTC().Format(timestampFormat),
		SessionID: event.SessionID,
		Kind:      event.Kind.String(),
		Name:      event.Name,
	}
	if svc := event.Service; svc != nil {
		out.FullName = svc.FullName
		out.Host = svc.Host
		out.Port = svc.Port
		out.Addresses = svc.Addresses
		out.TXT = svc.TXT
	}
	if event.Error != nil {
		out.Error = event.Error.Message
	}
	return e.enc.Encode(out)
}

func (e *jsonlExporter) flush() error { return nil }

// csvExporter flattens addresses and TXT records into ';'-joined columns.
type csvExporter struct {
	w *csv.Writer
}

func (e *csvExporter) write(event log.Event) error {
	row := make([]string, len(csvHeader))
	row[0] = event.Timestamp.UTC().Format(timestampFormat)
	row[1] = event.SessionID
	row[2] = event.Kind.String()
	row[3] = event.Name
	if svc := event.Service; svc != nil {
		row[4] = svc.Host
		if svc.Port != 0 {
			row[5] = strconv.Itoa(int(svc.Port))
		}
		row[6] = strings.Join(svc.Addresses, ";")
		row[7] = strings.Join(discovery.TXTRecordsToStrings(svc.TXT), ";")
	}
	if event.Error != nil {
		row[8] = event.Error.Message
	}
	return e.w.Write(row)
}

func (e *csvExporter) flush() error {
	e.w.Flush()
	return e.w.Error()
}
