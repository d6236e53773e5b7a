package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/japaniel/hanreader/internal/config"
	"github.com/japaniel/hanreader/internal/logging"
	"github.com/japaniel/hanreader/pkg/metrics"
)

const usage = `Usage: hanreader [flags] <command> [args]

Commands:
  lookup [-expand] WORD...          Show dictionary entries for words
  save [-entry N] WORD | -key KEY   Save an entry of WORD to the vocabulary list
  unsave [-entry N] WORD | -key KEY Remove an entry of WORD from the vocabulary list
  list [-category NAME] [-keys]     Print the vocabulary flashcards
  words [-lookup|-sentences] FILE   List the Korean words of a chapter (XHTML, "-" for stdin)
  fetch-dict                        Download the offline dictionary if it is missing

Flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	// .env is optional.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	cancel()
	if err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "hanreader: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("hanreader", flag.ContinueOnError)
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	dbPath := fs.String("db", "", "Path to SQLite database (overrides config)")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics.Register()
	if *metricsAddr != "" {
		stop := serveMetrics(*metricsAddr, logger)
		defer stop()
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "fetch-dict" {
		return fetchDict(ctx, cfg, logger, stdout)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	switch cmd {
	case "lookup":
		return a.lookup(ctx, rest, stdout)
	case "save":
		return a.toggle(ctx, "save", rest, stdout)
	case "unsave":
		return a.toggle(ctx, "unsave", rest, stdout)
	case "list":
		return a.list(ctx, rest, stdout)
	case "words":
		return a.words(ctx, rest, stdout)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

// serveMetrics exposes /metrics until the returned func is called.
func serveMetrics(addr string, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
