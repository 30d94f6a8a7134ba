package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	webview "github.com/wippyai/webview"
	"github.com/wippyai/webview/config"
	"github.com/wippyai/webview/errors"
	"github.com/wippyai/webview/metrics"
	"github.com/wippyai/webview/native"
)

func main() {
	// The engine re-executes this binary for its helper processes.
	if webview.IsSubprocess(os.Args) {
		if err := webview.ExecuteSubprocess(native.Open, os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var (
		configFile  = flag.String("config", "", "Path to YAML config file")
		pageURL     = flag.String("url", "", "URL to open (overrides config)")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitStatus(err))
	}
	if *pageURL != "" {
		cfg.Page.URL = *pageURL
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Usage: webview [-config file.yaml] [-url https://...] [-metrics-addr :9090] [-i]")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitStatus(err))
	}

	if err := run(cfg, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(exitStatus(err))
	}
}

// Exit statuses.
const (
	exitFailure     = 1
	exitUsage       = 2
	exitUnavailable = 3
)

func exitStatus(err error) int {
	kind, ok := errors.KindOf(err)
	if !ok {
		return exitFailure
	}
	switch kind {
	case errors.KindInvalidInput, errors.KindInvalidData, errors.KindNotFound:
		return exitUsage
	case errors.KindUnavailable:
		return exitUnavailable
	default:
		return exitFailure
	}
}

func errorHint(err error) string {
	switch kind, _ := errors.KindOf(err); kind {
	case errors.KindUnavailable:
		return "The engine library is not linked in; rebuild with -tags cef."
	case errors.KindAlreadyRunning:
		return "Only one engine can run per process."
	default:
		return ""
	}
}

func run(cfg *config.Config, interactive bool) error {
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	webview.SetLogger(logger)
	native.SetLogger(logger.Named("native"))

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector = metrics.NewCollector(cfg.Metrics.Namespace, reg, logger)
		if cfg.Metrics.Addr != "" {
			srv := serveMetrics(cfg.Metrics.Addr, reg, logger)
			defer shutdown(srv, logger)
		}
	}

	eng, err := webview.New(cfg.Engine.Options(),
		webview.WithLogger(logger),
		webview.WithMetrics(collector))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close()

	if interactive {
		return runInteractive(eng, cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		_ = eng.Close()
	}()

	obs := &logObserver{logger: logger.Named("page")}
	page, err := eng.CreatePage(cfg.Page.URL, cfg.Page.Options(), obs)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	logger.Info("page loaded", zap.String("id", page.ID()), zap.String("url", page.URL()))

	eng.Wait()
	logger.Info("engine exited", zap.Uint64("frames", obs.frames.Load()))
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

func shutdown(srv *http.Server, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", zap.Error(err))
	}
}

// logObserver logs page events. Frames are only counted.
type logObserver struct {
	webview.NopObserver
	logger *zap.Logger
	frames atomic.Uint64
}

func (o *logObserver) OnStateChange(state webview.PageState) {
	o.logger.Info("state changed", zap.Stringer("state", state))
}

func (o *logObserver) OnFrame(_ []byte, _, _ uint32) {
	o.frames.Add(1)
}

func (o *logObserver) OnTitleChange(title string) {
	o.logger.Info("title changed", zap.String("title", title))
}

func (o *logObserver) OnFullscreenChange(fullscreen bool) {
	o.logger.Info("fullscreen changed", zap.Bool("fullscreen", fullscreen))
}

func (o *logObserver) OnMessage(message string) {
	o.logger.Info("message", zap.String("message", message))
}
