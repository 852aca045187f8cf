package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floorsense/internal/api"
	"floorsense/internal/editor"
	"floorsense/internal/history"
	"floorsense/internal/notify"
	"floorsense/internal/observe"
	"floorsense/internal/watch"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func runWatch(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	layoutPath := fs.String("layout", "", "Path to the layout YAML file to watch")
	linksPath := fs.String("links", "", "Path to a links YAML file (default: <workspace>/links/<layout>.yml when present)")
	interval := fs.Duration("interval", 0, "Poll interval (default: watch.interval from floorsense.yml)")
	notifications := fs.Bool("notify", false, "Send a desktop notification when the safety level drops")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *layoutPath == "" {
		return fmt.Errorf("--layout is required")
	}

	e, err := loadEnv(g)
	if err != nil {
		return err
	}
	path, err := e.Workspace.ResolvePath(*layoutPath)
	if err != nil {
		return fmt.Errorf("resolve --layout: %w", err)
	}
	links := *linksPath
	if links != "" {
		if links, err = e.Workspace.ResolvePath(links); err != nil {
			return fmt.Errorf("resolve --links: %w", err)
		}
	} else if conv := e.Workspace.LinksFor(path); fileExists(conv) {
		links = conv
	}
	if *interval <= 0 {
		*interval = e.Config.Watch.Interval
	}

	metrics := observe.DefaultMetrics()
	engine, err := newEngine(e, "watch", metrics)
	if err != nil {
		return err
	}
	store, err := history.Open(e.Workspace.HistoryDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	session := editor.NewSession(engine, editor.Hooks{
		OnResult: func(res editor.Result) {
			r := res.Report
			fmt.Fprintf(os.Stdout, "[%s] #%d %s  efficiency=%.0f (%s)  safety=%.0f (%s)\n",
				r.AssessedAt.Format(time.TimeOnly), res.Generation, r.Layout,
				r.Efficiency.OverallScore, r.Efficiency.SafetyLevel,
				r.Safety.OverallScore, r.Safety.SafetyLevel)
		},
	}, metrics)

	w := watch.New(path, session, watch.Options{
		Interval:  *interval,
		LinksPath: links,
		History:   store,
		Audit:     e.Audit,
		Notifier:  &notify.Notifier{Enabled: *notifications || e.Config.Watch.Notifications},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stdout, "Watching %s every %s (Ctrl+C to stop)\n", path, *interval)
	return w.Run(ctx)
}

func runServe(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addr := fs.String("addr", "", "Listen address (default: serve.addr from floorsense.yml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(g)
	if err != nil {
		return err
	}
	if *addr == "" {
		*addr = e.Config.Serve.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    appName,
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()

	metrics := observe.DefaultMetrics()
	engine, err := newEngine(e, "api", metrics)
	if err != nil {
		return err
	}
	store, err := history.Open(e.Workspace.HistoryDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := &http.Server{
		Addr: *addr,
		Handler: api.New(api.Config{
			Engine:  engine,
			History: store,
			Metrics: metrics,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving assessment API", "addr", *addr, "workspace", e.Workspace.Root)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
