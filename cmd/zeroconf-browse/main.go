// Command zeroconf-browse browses for mDNS/DNS-SD services and keeps a live
// catalog of what it finds.
//
// It offers:
//   - Two mDNS backends (zeroconf push-based, hashicorp polling)
//   - A CBOR event journal readable with zeroconf-log
//   - An HTTP JSON API with Prometheus metrics
//   - An interactive command interface
//
// Usage:
//
//	zeroconf-browse [flags]
//
// Flags:
//
//	-config string          Configuration file path (YAML)
//	-type string            Service type to browse (default "http")
//	-protocol string        Service protocol (default "tcp")
//	-domain string          Browse domain (default "local.")
//	-backend string         mDNS backend: zeroconf, hashicorp (default "zeroconf")
//	-interface string       Network interface to browse on
//	-log-level string       Log level: debug, info, warn, error (default "info")
//	-journal string         Write the event journal to this .zlog file
//	-http string            Serve the HTTP API on this address
//	-interactive            Enable interactive command mode
//	-query-interval duration  Query interval for the hashicorp backend (default 5s)
//
// Examples:
//
//	# Browse for printers and journal every event
//	zeroconf-browse -type ipp -journal printers.zlog
//
//	# Serve the catalog over HTTP using the polling backend
//	zeroconf-browse -backend hashicorp -http :8080
//
//	# Interactive mode
//	zeroconf-browse -interactive
//
// Interactive Commands:
//
//	scan [type] [protocol] [domain] - Start a scan
//	stop        - Stop the current scan
//	list        - List known services
//	show <name> - Show one service
//	subs        - List active subscriptions
//	quit        - Exit
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mash-protocol/zeroconf-go/cmd/zeroconf-browse/interactive"
	"github.com/mash-protocol/zeroconf-go/pkg/catalog"
	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
	zlog "github.com/mash-protocol/zeroconf-go/pkg/log"
	"github.com/mash-protocol/zeroconf-go/pkg/subscription"
)

// Version information - set at build time via ldflags
var Version = "0.1.0"

// closableProvider is a provider that owns background resources.
type closableProvider interface {
	discovery.Provider
	io.Closer
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	config, err := parseConfig(args, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	level, _ := parseLogLevel(config.LogLevel) // checked by Validate
	logger := setupLogging(level, os.Stderr)

	log.Println("zeroconf-browse")
	log.Println("===============")
	log.Printf("Backend: %s", config.Backend)

	provider := newProvider(config, logger)
	defer provider.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := catalog.NewMetrics(registry)
	if err != nil {
		log.Printf("Failed to register metrics: %v", err)
		return 1
	}

	sessionConfig := catalog.DefaultSessionConfig()
	sessionConfig.Logger = logger
	sessionConfig.Metrics = metrics

	journals := []zlog.Logger{zlog.NewSlogAdapter(logger)}
	if config.Journal != "" {
		fileLogger, err := zlog.NewFileLogger(config.Journal)
		if err != nil {
			log.Printf("Failed to open journal: %v", err)
			return 1
		}
		journals = append(journals, fileLogger)
		log.Printf("Journal: %s", config.Journal)
	}
	journal := zlog.NewMultiLogger(journals...)
	defer func() {
		if err := journal.Close(); err != nil {
			log.Printf("Failed to close journal: %v", err)
		}
	}()
	sessionConfig.Journal = journal

	session := catalog.NewSession(provider, sessionConfig)
	defer session.Close()

	for _, kind := range discovery.AllEventKinds {
		if _, err := session.Subscribe(kind, printNotification); err != nil {
			log.Printf("Failed to subscribe to %s: %v", kind, err)
			return 1
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var server *Server
	if config.HTTPAddr != "" {
		server = NewServer(session, ServerConfig{
			Addr:     config.HTTPAddr,
			Version:  Version,
			Gatherer: registry,
		})
		go func() {
			log.Printf("HTTP API listening on %s", config.HTTPAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP server error: %v", err)
				cancel()
			}
		}()
	}

	query := catalog.Query{
		ServiceType: config.ServiceType,
		Protocol:    config.Protocol,
		Domain:      config.Domain,
	}
	session.Scan(query)

	if config.Interactive {
		shell, err := interactive.New(session, query)
		if err != nil {
			log.Printf("Failed to create interactive shell: %v", err)
			return 1
		}
		// Redirect log output through readline to avoid interfering with input
		log.SetOutput(shell.Stdout())
		go shell.Run(ctx, cancel)
	}

	// Wait for shutdown signal or context cancellation
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Context was cancelled (e.g., by interactive quit command)
	}

	log.Println("Shutting down...")
	session.Stop()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error stopping HTTP server: %v", err)
		}
	}

	return 0
}

func newProvider(config Config, logger *slog.Logger) closableProvider {
	browserConfig := discovery.DefaultBrowserConfig()
	browserConfig.Interface = config.Interface
	browserConfig.QueryInterval = config.QueryInterval
	browserConfig.Logger = logger

	if config.Backend == BackendHashicorp {
		return discovery.NewHashicorpProvider(browserConfig)
	}
	return discovery.NewMDNSProvider(browserConfig)
}

func setupLogging(level slog.Level, w io.Writer) *slog.Logger {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	if level == slog.LevelDebug {
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printNotification(n subscription.Notification) {
	log.Print(formatNotification(n))
}

func formatNotification(n subscription.Notification) string {
	switch n.Kind {
	case discovery.EventError:
		return fmt.Sprintf("[ERROR] %v", n.Err)
	case discovery.EventResolved, discovery.EventUpdate:
		if n.Service == nil {
			return fmt.Sprintf("[%s] %s", strings.ToUpper(n.Kind.String()), n.Name)
		}
		return fmt.Sprintf("[%s] %s %s:%d [%s] %s",
			strings.ToUpper(n.Kind.String()), n.Name, n.Service.Host, n.Service.Port,
			strings.Join(n.Service.Addresses, ", "),
			strings.Join(discovery.TXTRecordsToStrings(n.Service.TXT), " "))
	case discovery.EventFound, discovery.EventRemove:
		return fmt.Sprintf("[%s] %s", strings.ToUpper(n.Kind.String()), n.Name)
	default:
		return fmt.Sprintf("[%s]", strings.ToUpper(n.Kind.String()))
	}
}
