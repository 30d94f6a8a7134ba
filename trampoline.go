package webview

import (
	"math"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/webview/errors"
	"github.com/wippyai/webview/internal/oneshot"
	"github.com/wippyai/webview/metrics"
	"github.com/wippyai/webview/native"
	"github.com/wippyai/webview/resource"
)

// Context type IDs in the handle table.
const (
	typeEngine uint32 = iota + 1
	typePage
)

func contextTypeName(typeID uint32) string {
	switch typeID {
	case typeEngine:
		return "engine"
	case typePage:
		return "page"
	default:
		return "unknown"
	}
}

// engineContext is the target of the ready callback.
type engineContext struct {
	ready *oneshot.Chan[error]
}

// Drop resolves a ready wait that never saw the ready callback.
func (c *engineContext) Drop() {
	c.ready.Close()
}

// pageContext is the target of every page callback. It lives in the handle
// table from before CreatePage until Page.Close.
type pageContext struct {
	observer Observer
	states   chan<- PageState
	logger   *zap.Logger
}

// Drop ends the state stream. The table calls it once no callback can send
// on states any more.
func (c *pageContext) Drop() {
	close(c.states)
}

// dispatcher implements native.Callbacks for one engine.
type dispatcher struct {
	table   *resource.Table
	logger  *zap.Logger
	metrics *metrics.Collector
}

func newDispatcher(table *resource.Table, logger *zap.Logger, m *metrics.Collector) *dispatcher {
	return &dispatcher{table: table, logger: logger, metrics: m}
}

// borrow pins the table entry behind ctx. The caller must call release.
func (d *dispatcher) borrow(ctx native.Context, typeID uint32) (value any, release func(), ok bool) {
	if ctx == 0 || uint64(ctx) > math.MaxUint32 {
		return nil, nil, false
	}
	h := resource.Handle(ctx)
	value, ok = d.table.Borrow(h, typeID)
	if !ok {
		return nil, nil, false
	}
	return value, func() { d.table.ReturnBorrow(h) }, true
}

func (d *dispatcher) OnEngineReady(ctx native.Context) {
	v, release, ok := d.borrow(ctx, typeEngine)
	if !ok {
		d.logger.Debug("ready callback for unknown context", zap.Uintptr("ctx", uintptr(ctx)))
		return
	}
	defer release()
	d.metrics.RecordCallback("ready")
	v.(*engineContext).ready.Send(nil)
}

// withPage runs fn against the page context behind ctx while holding a
// borrow on it.
func (d *dispatcher) withPage(kind string, ctx native.Context, fn func(pc *pageContext)) {
	v, release, ok := d.borrow(ctx, typePage)
	if !ok {
		d.logger.Debug("page callback for unknown context",
			zap.String("callback", kind),
			zap.Uintptr("ctx", uintptr(ctx)))
		return
	}
	defer release()
	d.metrics.RecordCallback(kind)
	fn(v.(*pageContext))
}

// invoke calls the observer, converting a panic into a logged error.
func (d *dispatcher) invoke(pc *pageContext, kind, method string, fn func(Observer)) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.ObserverPanic(method, r)
			pc.logger.Error("observer failed", zap.Error(err), zap.Stack("stack"))
			d.metrics.RecordObserverPanic(kind)
		}
	}()
	fn(pc.observer)
}

func (d *dispatcher) OnStateChange(ctx native.Context, state native.PageState) {
	d.withPage("state_change", ctx, func(pc *pageContext) {
		pc.states <- state
		d.invoke(pc, "state_change", "OnStateChange", func(o Observer) {
			o.OnStateChange(state)
		})
	})
}

func (d *dispatcher) OnIMERect(ctx native.Context, rect native.Rect) {
	d.withPage("ime_rect", ctx, func(pc *pageContext) {
		d.invoke(pc, "ime_rect", "OnIMERect", func(o Observer) {
			o.OnIMERect(rect)
		})
	})
}

func (d *dispatcher) OnFrame(ctx native.Context, buf unsafe.Pointer, width, height int32) {
	d.withPage("frame", ctx, func(pc *pageContext) {
		if buf == nil || width <= 0 || height <= 0 {
			pc.logger.Debug("dropping empty frame",
				zap.Int32("width", width),
				zap.Int32("height", height),
				zap.Bool("nil_buffer", buf == nil))
			return
		}
		n := int(width) * int(height) * 4
		pixels := unsafe.Slice((*byte)(buf), n)
		d.invoke(pc, "frame", "OnFrame", func(o Observer) {
			o.OnFrame(pixels, uint32(width), uint32(height))
		})
		d.metrics.RecordFrame(n)
	})
}

func (d *dispatcher) OnTitleChange(ctx native.Context, title string) {
	d.withPage("title_change", ctx, func(pc *pageContext) {
		d.invoke(pc, "title_change", "OnTitleChange", func(o Observer) {
			o.OnTitleChange(title)
		})
	})
}

func (d *dispatcher) OnFullscreenChange(ctx native.Context, fullscreen bool) {
	d.withPage("fullscreen_change", ctx, func(pc *pageContext) {
		d.invoke(pc, "fullscreen_change", "OnFullscreenChange", func(o Observer) {
			o.OnFullscreenChange(fullscreen)
		})
	})
}

func (d *dispatcher) OnMessage(ctx native.Context, message string) {
	d.withPage("message", ctx, func(pc *pageContext) {
		d.invoke(pc, "message", "OnMessage", func(o Observer) {
			o.OnMessage(message)
		})
	})
}

var _ native.Callbacks = (*dispatcher)(nil)
