package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/mash-protocol/zeroconf-go/pkg/log"
)

// RunFilter copies the events matching filter into a new journal at output
// and writes a summary line to w. Existing output files are appended to.
func RunFilter(path, output string, filter log.Filter, w io.Writer) error {
	if output == "" {
		return errors.New("output journal required")
	}
	if same, err := samePath(path, output); err != nil {
		return err
	} else if same {
		return errors.New("output journal must differ from the input")
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer reader.Close()

	journal, err := log.NewFileLogger(output)
	if err != nil {
		return fmt.Errorf("failed to create output journal: %w", err)
	}
	defer journal.Close()

	for event, err := range reader.All() {
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		journal.Log(event)
	}
	if failed := journal.WriteErrors(); failed > 0 {
		return fmt.Errorf("failed to write %d events to %s", failed, output)
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", journal.Written(), output)
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
