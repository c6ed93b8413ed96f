// Command zeroconf-log views and analyzes discovery journals written by
// zeroconf-browse -journal.
//
// Usage:
//
//	zeroconf-log <command> [flags] <file.zlog>
//
// Examples:
//
//	# Resolutions of one service
//	zeroconf-log view -kind found,resolved -name printer browse.zlog
//
//	# Export one scan session as CSV
//	zeroconf-log export -format csv -session 1f0c... browse.zlog > scan.csv
//
//	# Keep only the last ten minutes of a journal
//	zeroconf-log filter -since 2026-01-28T10:50:00Z -o recent.zlog browse.zlog
//
//	# Per-session summary, including events from superseded scans
//	zeroconf-log stats browse.zlog
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mash-protocol/zeroconf-go/cmd/zeroconf-log/commands"
)

// command is one zeroconf-log subcommand.
type command struct {
	name    string
	summary string
	run     func(fs *flag.FlagSet, args []string, stdout io.Writer) error
}

var commandTable = []command{
	{"view", "View journal in human-readable format", runView},
	{"export", "Export journal to JSONL or CSV", runExport},
	{"filter", "Copy matching events to a new journal", runFilter},
	{"stats", "Show per-kind and per-session statistics", runStats},
}

// errUsage marks errors for which the command's usage is printed.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	name := args[0]
	switch name {
	case "-h", "-help", "--help", "help":
		printUsage(stdout)
		return 0
	}

	for _, cmd := range commandTable {
		if cmd.name != name {
			continue
		}
		fs := flag.NewFlagSet("zeroconf-log "+cmd.name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		fs.Usage = func() {
			fmt.Fprintf(stderr, "zeroconf-log %s - %s\n\nUsage:\n  zeroconf-log %s [flags] <file.zlog>\n\nFlags:\n", cmd.name, cmd.summary, cmd.name)
			fs.PrintDefaults()
		}

		err := cmd.run(fs, args[1:], stdout)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			fmt.Fprintf(stderr, "Error: %v\n", err)
			fs.Usage()
			return 2
		default:
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	fmt.Fprintf(stderr, "Unknown command: %s\n", name)
	printUsage(stderr)
	return 2
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, "zeroconf-log - Discovery Journal Analyzer\n\nUsage:\n  zeroconf-log <command> [flags] <file.zlog>\n\nCommands:\n")
	for _, cmd := range commandTable {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprint(w, "\nUse \"zeroconf-log <command> -help\" for more information about a command.\n")
}

// parseJournalArgs parses fs and returns the single journal path argument.
func parseJournalArgs(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: exactly one journal file required", errUsage)
	}
	return fs.Arg(0), nil
}

func runView(fs *flag.FlagSet, args []string, stdout io.Writer) error {
	var sel commands.FilterFlags
	sel.Register(fs)

	path, err := parseJournalArgs(fs, args)
	if err != nil {
		return err
	}
	filter, err := sel.Filter()
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, stdout)
}

func runExport(fs *flag.FlagSet, args []string, stdout io.Writer) error {
	var sel commands.FilterFlags
	sel.Register(fs)
	format := fs.String("format", commands.FormatJSONL, "Output format ("+commands.FormatJSONL+", "+commands.FormatCSV+")")
	output := fs.String("o", "", "Output file (default: stdout)")

	path, err := parseJournalArgs(fs, args)
	if err != nil {
		return err
	}
	filter, err := sel.Filter()
	if err != nil {
		return err
	}

	if *output == "" {
		return commands.RunExport(path, filter, *format, stdout)
	}
	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := commands.RunExport(path, filter, *format, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runFilter(fs *flag.FlagSet, args []string, stdout io.Writer) error {
	var sel commands.FilterFlags
	sel.Register(fs)
	output := fs.String("o", "", "Output journal (required)")

	path, err := parseJournalArgs(fs, args)
	if err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("%w: output journal (-o) required", errUsage)
	}
	filter, err := sel.Filter()
	if err != nil {
		return err
	}
	return commands.RunFilter(path, *output, filter, stdout)
}

func runStats(fs *flag.FlagSet, args []string, stdout io.Writer) error {
	path, err := parseJournalArgs(fs, args)
	if err != nil {
		return err
	}
	return commands.RunStats(path, stdout)
}
