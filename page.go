package webview

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/webview/errors"
	"github.com/wippyai/webview/internal/oneshot"
	"github.com/wippyai/webview/metrics"
	"github.com/wippyai/webview/native"
	"github.com/wippyai/webview/resource"
)

// stateBuffer bounds how many page states the engine can deliver ahead of
// the relay goroutine.
const stateBuffer = 64

// Page owns one native browser instance and its callback context.
type Page struct {
	id     string
	url    string
	engine *Engine
	handle native.PageHandle
	ctx    resource.Handle
	states chan PageState
	logger *zap.Logger

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func newPage(e *Engine, url string) *Page {
	id := uuid.NewString()
	return &Page{
		id:     id,
		url:    url,
		engine: e,
		states: make(chan PageState, stateBuffer),
		logger: e.logger.With(zap.String("page", id), zap.String("url", url)),
	}
}

// relay turns the page's state stream into a single outcome: true on the
// first Load, false on the first LoadError. Later states are drained until
// the channel is closed by Page.Close. A stream that ends without a terminal
// state closes the outcome without a value.
func relay(states <-chan PageState, outcome *oneshot.Chan[bool]) {
	for s := range states {
		switch s {
		case StateLoad:
			outcome.Send(true)
		case StateLoadError:
			outcome.Send(false)
		}
	}
	outcome.Close()
}

// waitLoaded blocks until the first terminal state. On failure the page is
// closed and an error returned.
func (p *Page) waitLoaded() (*Page, error) {
	m := p.engine.metrics
	outcome := oneshot.New[bool]()
	start := time.Now()
	go relay(p.states, outcome)

	loaded, ok := outcome.Recv()
	switch {
	case !ok:
		_ = p.Close()
		m.RecordPageCreation(metrics.OutcomeAborted, 0)
		return nil, errors.New(errors.PhaseLoad, errors.KindPageCreation).
			Value(p.url).
			Detail("page closed before first load: %s", p.url).
			Cause(errors.Closed(errors.PhaseLoad, "page")).
			Build()
	case !loaded:
		_ = p.Close()
		m.RecordPageCreation(metrics.OutcomeLoadError, time.Since(start))
		p.logger.Warn("page failed to load")
		return nil, errors.LoadFailed(p.url, nil)
	}

	m.RecordPageCreation(metrics.OutcomeOK, time.Since(start))
	p.logger.Debug("page loaded", zap.Duration("elapsed", time.Since(start)))
	return p, nil
}

// ID returns the page's unique identifier.
func (p *Page) ID() string { return p.id }

// URL returns the URL the page was created with.
func (p *Page) URL() string { return p.url }

// do forwards one input call unless the page is closed. Close waits for
// in-flight calls before tearing the handle down.
func (p *Page) do(kind string, fn func(lib native.Library, h native.PageHandle)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errors.Closed(errors.PhaseInput, "page")
	}
	fn(p.engine.lib, p.handle)
	p.engine.metrics.RecordInput(kind)
	return nil
}

func validateString(phase errors.Phase, field, s string) error {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return errors.New(phase, errors.KindInvalidInput).
			Path(field).
			Detail("contains NUL byte at offset %d", i).
			Build()
	}
	return nil
}

func validateDim(field string, v uint32) error {
	if v > math.MaxInt32 {
		return errors.New(errors.PhaseInput, errors.KindInvalidInput).
			Path(field).
			Value(v).
			Detail("%d exceeds %d", v, math.MaxInt32).
			Build()
	}
	return nil
}

// SendMouse forwards a mouse action.
func (p *Page) SendMouse(action MouseAction) error {
	switch a := action.(type) {
	case MouseClick:
		return p.do("mouse_click", func(lib native.Library, h native.PageHandle) {
			if a.Position != nil {
				lib.SendMouseClickAt(h, a.Button, a.State.Pressed(), a.Position.X, a.Position.Y)
			} else {
				lib.SendMouseClick(h, a.Button, a.State.Pressed())
			}
		})
	case MouseMove:
		return p.do("mouse_move", func(lib native.Library, h native.PageHandle) {
			lib.SendMouseMove(h, a.Position.X, a.Position.Y)
		})
	case MouseWheel:
		return p.do("mouse_wheel", func(lib native.Library, h native.PageHandle) {
			lib.SendMouseWheel(h, a.Position.X, a.Position.Y)
		})
	default:
		return errors.InvalidInput(errors.PhaseInput, "unknown mouse action")
	}
}

// SendKeyboard forwards a key event by scan code.
func (p *Page) SendKeyboard(scanCode uint32, state ActionState, modifiers Modifiers) error {
	if err := validateDim("scan_code", scanCode); err != nil {
		return err
	}
	return p.do("keyboard", func(lib native.Library, h native.PageHandle) {
		lib.SendKeyboard(h, int32(scanCode), state.Pressed(), modifiers)
	})
}

// SendTouch forwards a touch event.
func (p *Page) SendTouch(id, x, y int32, typ TouchEventType, pointer TouchPointerType) error {
	return p.do("touch", func(lib native.Library, h native.PageHandle) {
		lib.SendTouch(h, id, x, y, typ, pointer)
	})
}

// SendIME forwards an IME composition or pre-edit update.
func (p *Page) SendIME(action IMEAction) error {
	switch a := action.(type) {
	case IMEComposition:
		if err := validateString(errors.PhaseInput, "ime", a.Text); err != nil {
			return err
		}
		return p.do("ime", func(lib native.Library, h native.PageHandle) {
			lib.SendIMEComposition(h, a.Text)
		})
	case IMEPreedit:
		if err := validateString(errors.PhaseInput, "ime", a.Text); err != nil {
			return err
		}
		return p.do("ime", func(lib native.Library, h native.PageHandle) {
			lib.SendIMESetComposition(h, a.Text, a.X, a.Y)
		})
	default:
		return errors.InvalidInput(errors.PhaseInput, "unknown ime action")
	}
}

// SendMessage posts message to the page's script context.
func (p *Page) SendMessage(message string) error {
	if err := validateString(errors.PhaseInput, "message", message); err != nil {
		return err
	}
	return p.do("message", func(lib native.Library, h native.PageHandle) {
		lib.SendMessage(h, message)
	})
}

// SetDevToolsOpen shows or hides the developer tools.
func (p *Page) SetDevToolsOpen(open bool) error {
	return p.do("devtools", func(lib native.Library, h native.PageHandle) {
		lib.SetDevToolsState(h, open)
	})
}

// Resize changes the view size.
func (p *Page) Resize(width, height uint32) error {
	if err := validateDim("width", width); err != nil {
		return err
	}
	if err := validateDim("height", height); err != nil {
		return err
	}
	return p.do("resize", func(lib native.Library, h native.PageHandle) {
		lib.Resize(h, int32(width), int32(height))
	})
}

// WindowHandle returns the native window handle backing the page.
func (p *Page) WindowHandle() (uintptr, error) {
	var hwnd uintptr
	err := p.do("window_handle", func(lib native.Library, h native.PageHandle) {
		hwnd = lib.WindowHandle(h)
	})
	return hwnd, err
}

// Close tears the page down. After Close returns no observer method is
// running or will be called. Safe to call more than once.
func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		p.engine.lib.ExitPage(p.handle)
		// Waits for callbacks that already borrowed the context, then closes
		// the state stream.
		p.engine.table.Remove(p.ctx)

		p.engine.forget(p)
		p.engine.metrics.PageClosed()
		p.logger.Debug("page closed")
	})
	return nil
}
