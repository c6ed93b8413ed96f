// Package interactive provides the interactive command-line interface
// for zeroconf-browse.
package interactive

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/chzyer/readline"

	"github.com/mash-protocol/zeroconf-go/pkg/catalog"
	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
	"github.com/mash-protocol/zeroconf-go/pkg/subscription"
)

// Catalog is the part of a catalog.Session the shell drives.
type Catalog interface {
	Scan(q catalog.Query)
	Stop()
	GetServices() map[string]discovery.ServiceDescriptor
	Subscriptions() []*subscription.Subscription
	SessionID() string
}

// Shell handles interactive mode for zeroconf-browse.
type Shell struct {
	catalog  Catalog
	defaults catalog.Query
	rl       *readline.Instance
	out      io.Writer
}

// New creates a new interactive shell. Scans without arguments use defaults.
func New(c Catalog, defaults catalog.Query) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "zeroconf> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(c, defaults, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(c Catalog, defaults catalog.Query, out io.Writer) *Shell {
	return &Shell{
		catalog:  c,
		defaults: defaults,
		out:      out,
	}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if !s.Execute(line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line and reports whether the shell should
// keep running.
func (s *Shell) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "scan", "browse":
		s.cmdScan(args)

	case "stop":
		s.catalog.Stop()
		fmt.Fprintln(s.out, "Stopping scan")

	case "list", "ls":
		s.cmdList()

	case "show", "s":
		s.cmdShow(args)

	case "subs":
		s.cmdSubs()

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
zeroconf-browse Commands:
  scan [type] [protocol] [domain] - Start a scan (clears the catalog)
  stop                            - Stop the current scan
  list                            - List known services
  show <name>                     - Show one service
  subs                            - List active subscriptions
  help                            - Show this help
  quit                            - Exit`)
}

// cmdScan handles the scan command.
func (s *Shell) cmdScan(args []string) {
	q := s.defaults
	if len(args) > 0 {
		q.ServiceType = args[0]
	}
	if len(args) > 1 {
		q.Protocol = args[1]
	}
	if len(args) > 2 {
		q.Domain = args[2]
	}

	s.catalog.Scan(q)
	fmt.Fprintf(s.out, "Scanning %s (session %s)\n", q, s.catalog.SessionID())
}

// cmdList handles the list command.
func (s *Shell) cmdList() {
	services := s.catalog.GetServices()
	if len(services) == 0 {
		fmt.Fprintln(s.out, "No services found")
		return
	}

	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprintf(s.out, "\nServices (%d):\n", len(services))
	fmt.Fprintln(s.out, "-------------------------------------------")
	for _, name := range names {
		svc := services[name]
		status := "pending"
		if svc.IsResolved() {
			status = strings.Join(svc.Addresses, ", ")
		}
		fmt.Fprintf(s.out, "  %-32s %s\n", name, status)
	}
}

// cmdShow handles the show command.
func (s *Shell) cmdShow(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: show <name>")
		return
	}

	// Service names may contain spaces.
	name := strings.Join(args, " ")
	svc, ok := s.catalog.GetServices()[name]
	if !ok {
		fmt.Fprintf(s.out, "Service not found: %s\n", name)
		return
	}

	fmt.Fprintf(s.out, "\nService: %s\n", svc.Name)
	fmt.Fprintln(s.out, "-------------------------------------------")
	if svc.FullName != "" {
		fmt.Fprintf(s.out, "  Full name: %s\n", svc.FullName)
	}
	if svc.Host != "" {
		fmt.Fprintf(s.out, "  Host:      %s:%d\n", svc.Host, svc.Port)
	}
	if svc.IsResolved() {
		fmt.Fprintf(s.out, "  Addresses: %s\n", strings.Join(svc.Addresses, ", "))
	} else {
		fmt.Fprintln(s.out, "  Addresses: (not resolved)")
	}
	for _, kv := range discovery.TXTRecordsToStrings(svc.TXT) {
		fmt.Fprintf(s.out, "  TXT:       %s\n", kv)
	}
}

// cmdSubs handles the subs command.
func (s *Shell) cmdSubs() {
	subs := s.catalog.Subscriptions()
	if len(subs) == 0 {
		fmt.Fprintln(s.out, "No active subscriptions")
		return
	}

	fmt.Fprintf(s.out, "\nSubscriptions (%d):\n", len(subs))
	for _, sub := range subs {
		fmt.Fprintf(s.out, "  #%d  %s\n", sub.ID, sub.Kind)
	}
}
