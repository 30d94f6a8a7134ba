package webview

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/webview/errors"
	"github.com/wippyai/webview/metrics"
	"github.com/wippyai/webview/native"
)

// Options configures the engine. Empty paths use the engine defaults.
type Options struct {
	CachePath             string
	BrowserSubprocessPath string
	SchemePath            string
}

func (o Options) validate() error {
	for name, v := range map[string]string{
		"cache_path":              o.CachePath,
		"browser_subprocess_path": o.BrowserSubprocessPath,
		"scheme_path":             o.SchemePath,
	} {
		if strings.IndexByte(v, 0) >= 0 {
			return errors.New(errors.PhaseCreate, errors.KindInvalidInput).
				Path("options", name).
				Detail("contains NUL byte").
				Build()
		}
	}
	return nil
}

func (o Options) native() native.EngineOptions {
	return native.EngineOptions{
		CachePath:             o.CachePath,
		BrowserSubprocessPath: o.BrowserSubprocessPath,
		SchemePath:            o.SchemePath,
	}
}

// PageOptions configures a page.
type PageOptions struct {
	// WindowHandle is the native parent window. Zero lets the engine create
	// its own window, or none when IsOffscreen is set.
	WindowHandle      uintptr
	FrameRate         uint32
	Width             uint32
	Height            uint32
	DeviceScaleFactor float32
	IsOffscreen       bool
}

// DefaultPageOptions returns 30 fps, 800x600 at scale 1, windowed.
func DefaultPageOptions() PageOptions {
	return PageOptions{
		FrameRate:         30,
		Width:             800,
		Height:            600,
		DeviceScaleFactor: 1.0,
	}
}

func (o PageOptions) native() native.PageOptions {
	return native.PageOptions{
		WindowHandle:      o.WindowHandle,
		FrameRate:         o.FrameRate,
		Width:             o.Width,
		Height:            o.Height,
		DeviceScaleFactor: o.DeviceScaleFactor,
		IsOffscreen:       o.IsOffscreen,
	}
}

// Option configures New.
type Option func(*settings)

type settings struct {
	opener  native.Opener
	logger  *zap.Logger
	metrics *metrics.Collector
	args    []string
	fatal   func(error)
}

func newSettings(opts []Option) *settings {
	s := &settings{
		opener: native.Open,
		args:   os.Args,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = Logger()
	}
	if s.fatal == nil {
		l := s.logger
		s.fatal = func(err error) {
			l.Panic("engine run loop exited unexpectedly, this is a bug", zap.Error(err))
		}
	}
	return s
}

// WithOpener replaces the native library. Tests pass nativetest's Open.
func WithOpener(open native.Opener) Option {
	return func(s *settings) {
		if open != nil {
			s.opener = open
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithMetrics enables instrumentation.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *settings) { s.metrics = c }
}

// WithArgs sets the arguments passed to the engine run loop. Defaults to os.Args.
func WithArgs(args []string) Option {
	return func(s *settings) { s.args = args }
}

// withFatalHandler replaces the panic raised when the run loop fails after
// the engine became ready.
func withFatalHandler(fn func(error)) Option {
	return func(s *settings) { s.fatal = fn }
}
