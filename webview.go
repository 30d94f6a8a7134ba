package webview

import (
	stderrors "errors"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/webview/errors"
	"github.com/wippyai/webview/internal/oneshot"
	"github.com/wippyai/webview/metrics"
	"github.com/wippyai/webview/native"
	"github.com/wippyai/webview/resource"
)

// running guards the process-wide engine slot. The engine library supports
// a single instance per process.
var running atomic.Bool

// Engine owns the native engine instance and the goroutine driving its run
// loop.
type Engine struct {
	lib     native.Library
	handle  native.EngineHandle
	table   *resource.Table
	logger  *zap.Logger
	metrics *metrics.Collector
	fatal   func(error)

	done     chan struct{}
	exitCode int

	mu     sync.Mutex
	pages  map[*Page]struct{}
	closed bool

	exitOnce  sync.Once
	closeOnce sync.Once
}

// New creates the engine and blocks until it reports that its context is
// initialized. Only one engine may be live per process.
func New(opts Options, options ...Option) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	s := newSettings(options)

	if !running.CompareAndSwap(false, true) {
		return nil, errors.AlreadyRunning()
	}
	release := true
	defer func() {
		if release {
			running.Store(false)
		}
	}()

	log := s.logger.With(zap.String("component", "webview"))
	table := resource.NewTable()
	if s.metrics != nil {
		table.Subscribe(s.metrics.ContextObserver(contextTypeName))
	}

	lib, err := s.opener(newDispatcher(table, log, s.metrics))
	if err != nil {
		if stderrors.Is(err, native.ErrUnavailable) {
			return nil, errors.Unavailable(err)
		}
		return nil, errors.EngineCreation("open native library", err)
	}

	ready := oneshot.New[error]()
	readyCtx := table.Insert(typeEngine, &engineContext{ready: ready})
	if readyCtx == 0 {
		return nil, errors.EngineCreation("register ready context", nil)
	}

	handle := lib.CreateEngine(opts.native(), native.Context(readyCtx))
	if handle == 0 {
		table.Remove(readyCtx)
		table.Close()
		return nil, errors.EngineCreation("native factory returned null", nil)
	}

	e := &Engine{
		lib:     lib,
		handle:  handle,
		table:   table,
		logger:  log,
		metrics: s.metrics,
		fatal:   s.fatal,
		done:    make(chan struct{}),
		pages:   make(map[*Page]struct{}),
	}

	go e.run(s.args, ready)

	if err, _ := ready.Recv(); err != nil {
		<-e.done
		e.exitOnce.Do(func() {
			lib.ExitEngine(handle)
		})
		table.Remove(readyCtx)
		table.Close()
		return nil, errors.EngineCreation("run loop exited before ready", err)
	}
	table.Remove(readyCtx)

	release = false
	e.metrics.EngineStarted()
	log.Info("engine ready")
	return e, nil
}

// run drives the native run loop on a dedicated OS thread.
func (e *Engine) run(args []string, ready *oneshot.Chan[error]) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	code := e.lib.RunEngine(e.handle, args)
	e.exitCode = code
	exitErr := errors.RunLoopExit(code)

	// Before readiness the exit is reported to New instead.
	switch {
	case ready.Send(exitErr):
		e.logger.Warn("run loop exited before ready", zap.Int("code", code))
	case code != 0:
		e.fatal(exitErr)
	default:
		e.logger.Info("run loop exited")
	}
	close(e.done)
}

// CreatePage navigates a new page to url and blocks until its first load
// either completes or fails. observer may be nil.
func (e *Engine) CreatePage(url string, opts PageOptions, observer Observer) (*Page, error) {
	if err := validateString(errors.PhaseCreate, "url", url); err != nil {
		return nil, err
	}
	if observer == nil {
		observer = NopObserver{}
	}

	p, err := e.openPage(url, opts, observer)
	if err != nil {
		return nil, err
	}
	return p.waitLoaded()
}

func (e *Engine) openPage(url string, opts PageOptions, observer Observer) (*Page, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.exited() {
		return nil, errors.Closed(errors.PhaseCreate, "engine")
	}

	p := newPage(e, url)
	ctx := e.table.Insert(typePage, &pageContext{
		observer: observer,
		states:   p.states,
		logger:   p.logger,
	})
	if ctx == 0 {
		return nil, errors.Closed(errors.PhaseCreate, "engine")
	}

	handle := e.lib.CreatePage(e.handle, url, opts.native(), native.Context(ctx))
	if handle == 0 {
		e.table.Remove(ctx)
		e.metrics.RecordPageCreation(metrics.OutcomeNullPage, 0)
		return nil, errors.PageCreation(url, "native factory returned null")
	}

	p.handle = handle
	p.ctx = ctx
	e.pages[p] = struct{}{}
	e.metrics.PageOpened()
	return p, nil
}

func (e *Engine) forget(p *Page) {
	e.mu.Lock()
	delete(e.pages, p)
	e.mu.Unlock()
}

func (e *Engine) exited() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the engine run loop exits.
func (e *Engine) Wait() {
	<-e.done
}

// Done is closed when the engine run loop exits.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// ExitCode returns the run loop's return value. Valid after Done is closed.
func (e *Engine) ExitCode() int {
	<-e.done
	return e.exitCode
}

// Pages returns the live pages.
func (e *Engine) Pages() []*Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Page, 0, len(e.pages))
	for p := range e.pages {
		out = append(out, p)
	}
	return out
}

// Close closes every page, shuts the engine down and waits for the run loop
// to exit. Safe to call more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		pages := make([]*Page, 0, len(e.pages))
		for p := range e.pages {
			pages = append(pages, p)
		}
		e.mu.Unlock()

		for _, p := range pages {
			_ = p.Close()
		}

		e.exitOnce.Do(func() {
			e.lib.ExitEngine(e.handle)
		})
		<-e.done

		if n := e.table.Len(); n > 0 {
			e.logger.Warn("releasing callback contexts at shutdown", zap.Int("contexts", n))
		}
		_ = e.table.Close()
		e.metrics.EngineStopped()
		running.Store(false)
		e.logger.Info("engine closed")
	})
	return nil
}
