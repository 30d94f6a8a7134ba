// Package nativetest provides an in-memory native.Library for tests.
//
// The fake behaves like the engine library at the ABI level. The ready
// callback fires from the goroutine running RunEngine and page states are
// emitted from their own goroutine after CreatePage. No callback for a page
// starts after ExitPage for that page has returned. Every call is
// recorded so tests can assert exactly what crossed the boundary.
package nativetest

import (
	"sync"
	"unsafe"

	"github.com/wippyai/webview/native"
)

// Call is one recorded library call.
type Call struct {
	Method string
	Page   native.PageHandle
	Args   []any
}

// Option configures a Library.
type Option func(*Library)

// WithOpenError makes Open fail with err.
func WithOpenError(err error) Option {
	return func(l *Library) { l.openErr = err }
}

// WithEngineFailure makes CreateEngine return the null handle.
func WithEngineFailure() Option {
	return func(l *Library) { l.failEngine = true }
}

// WithoutReady suppresses the ready callback.
func WithoutReady() Option {
	return func(l *Library) { l.skipReady = true }
}

// WithRunExit sets the code RunEngine returns after ExitEngine.
func WithRunExit(code int) Option {
	return func(l *Library) { l.runExit = code }
}

// WithRunFailure makes RunEngine return code immediately, before readiness.
func WithRunFailure(code int) Option {
	return func(l *Library) {
		l.runFail = true
		l.runExit = code
	}
}

// WithPageStates scripts the states emitted after CreatePage for a url.
// The default is BeforeLoad followed by Load.
func WithPageStates(fn func(url string) []native.PageState) Option {
	return func(l *Library) { l.states = fn }
}

// WithPageFailure makes CreatePage return the null handle when fn reports true.
func WithPageFailure(fn func(url string) bool) Option {
	return func(l *Library) { l.failPage = fn }
}

type engine struct {
	ctx      native.Context
	exit     chan struct{}
	exitOnce sync.Once
	exits    int
}

type page struct {
	url    string
	ctx    native.Context
	exited bool
	exits  int
}

// Library is a scriptable fake of the native engine library.
type Library struct {
	openErr    error
	failEngine bool
	skipReady  bool
	runFail    bool
	runExit    int
	states     func(url string) []native.PageState
	failPage   func(url string) bool

	mu      sync.Mutex
	cb      native.Callbacks
	next    uintptr
	engines map[native.EngineHandle]*engine
	pages   map[native.PageHandle]*page
	order   []native.PageHandle
	calls   []Call
	emitted sync.WaitGroup
}

// New creates a fake library.
func New(opts ...Option) *Library {
	l := &Library{
		engines: make(map[native.EngineHandle]*engine),
		pages:   make(map[native.PageHandle]*page),
		next:    0x100,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open binds cb. Its method value satisfies native.Opener.
func (l *Library) Open(cb native.Callbacks) (native.Library, error) {
	if l.openErr != nil {
		return nil, l.openErr
	}
	l.mu.Lock()
	l.cb = cb
	l.mu.Unlock()
	return l, nil
}

func (l *Library) record(method string, h native.PageHandle, args ...any) {
	l.mu.Lock()
	l.calls = append(l.calls, Call{Method: method, Page: h, Args: args})
	l.mu.Unlock()
}

func (l *Library) allocLocked() uintptr {
	l.next += 0x10
	return l.next
}

func (l *Library) ExecuteSubprocess(args []string) {
	l.record("ExecuteSubprocess", 0, append([]string(nil), args...))
}

func (l *Library) CreateEngine(opts native.EngineOptions, ctx native.Context) native.EngineHandle {
	l.record("CreateEngine", 0, opts)
	if l.failEngine {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	h := native.EngineHandle(l.allocLocked())
	l.engines[h] = &engine{ctx: ctx, exit: make(chan struct{})}
	return h
}

func (l *Library) RunEngine(h native.EngineHandle, args []string) int {
	l.record("RunEngine", 0, append([]string(nil), args...))
	l.mu.Lock()
	e := l.engines[h]
	cb := l.cb
	l.mu.Unlock()
	if e == nil {
		return -1
	}
	if l.runFail {
		return l.runExit
	}
	if !l.skipReady && cb != nil {
		cb.OnEngineReady(e.ctx)
	}
	<-e.exit
	return l.runExit
}

func (l *Library) ExitEngine(h native.EngineHandle) {
	l.record("ExitEngine", 0)
	l.mu.Lock()
	e := l.engines[h]
	if e != nil {
		e.exits++
	}
	l.mu.Unlock()
	if e != nil {
		e.exitOnce.Do(func() { close(e.exit) })
	}
}

func (l *Library) CreatePage(eh native.EngineHandle, url string, opts native.PageOptions, ctx native.Context) native.PageHandle {
	l.record("CreatePage", 0, url, opts)
	if l.failPage != nil && l.failPage(url) {
		return 0
	}

	l.mu.Lock()
	if _, ok := l.engines[eh]; !ok {
		l.mu.Unlock()
		return 0
	}
	h := native.PageHandle(l.allocLocked())
	l.pages[h] = &page{url: url, ctx: ctx}
	l.order = append(l.order, h)
	l.mu.Unlock()

	states := []native.PageState{native.StateBeforeLoad, native.StateLoad}
	if l.states != nil {
		states = l.states(url)
	}

	l.emitted.Add(1)
	go func() {
		defer l.emitted.Done()
		for _, s := range states {
			l.EmitState(h, s)
		}
	}()
	return h
}

func (l *Library) ExitPage(h native.PageHandle) {
	l.record("ExitPage", h)
	l.mu.Lock()
	p := l.pages[h]
	if p != nil {
		p.exits++
		p.exited = true
	}
	l.mu.Unlock()
}

func (l *Library) SendMouseClick(h native.PageHandle, button native.MouseButton, pressed bool) {
	l.record("SendMouseClick", h, button, pressed)
}

func (l *Library) SendMouseClickAt(h native.PageHandle, button native.MouseButton, pressed bool, x, y int32) {
	l.record("SendMouseClickAt", h, button, pressed, x, y)
}

func (l *Library) SendMouseWheel(h native.PageHandle, x, y int32) {
	l.record("SendMouseWheel", h, x, y)
}

func (l *Library) SendMouseMove(h native.PageHandle, x, y int32) {
	l.record("SendMouseMove", h, x, y)
}

func (l *Library) SendKeyboard(h native.PageHandle, scanCode int32, pressed bool, modifiers native.Modifiers) {
	l.record("SendKeyboard", h, scanCode, pressed, modifiers)
}

func (l *Library) SendTouch(h native.PageHandle, id, x, y int32, typ native.TouchEventType, pointer native.TouchPointerType) {
	l.record("SendTouch", h, id, x, y, typ, pointer)
}

func (l *Library) SendMessage(h native.PageHandle, message string) {
	l.record("SendMessage", h, message)
}

func (l *Library) SetDevToolsState(h native.PageHandle, open bool) {
	l.record("SetDevToolsState", h, open)
}

func (l *Library) Resize(h native.PageHandle, width, height int32) {
	l.record("Resize", h, width, height)
}

func (l *Library) WindowHandle(h native.PageHandle) uintptr {
	l.record("WindowHandle", h)
	return uintptr(h) + 0x1000
}

func (l *Library) SendIMEComposition(h native.PageHandle, text string) {
	l.record("SendIMEComposition", h, text)
}

func (l *Library) SendIMESetComposition(h native.PageHandle, text string, x, y int32) {
	l.record("SendIMESetComposition", h, text, x, y)
}

// emit runs fn with the page context unless the page has been exited.
// A callback that passed the check before ExitPage keeps running, like a
// paint already in flight on an engine thread. Reports whether it ran.
func (l *Library) emit(h native.PageHandle, fn func(cb native.Callbacks, ctx native.Context)) bool {
	l.mu.Lock()
	p := l.pages[h]
	cb := l.cb
	if p == nil || p.exited || cb == nil {
		l.mu.Unlock()
		return false
	}
	ctx := p.ctx
	l.mu.Unlock()

	fn(cb, ctx)
	return true
}

// EmitState raises a state change for page h.
func (l *Library) EmitState(h native.PageHandle, state native.PageState) bool {
	return l.emit(h, func(cb native.Callbacks, ctx native.Context) {
		cb.OnStateChange(ctx, state)
	})
}

// EmitFrame raises a paint for page h. An empty buf is delivered as nil.
func (l *Library) EmitFrame(h native.PageHandle, buf []byte, width, height int32) bool {
	var ptr unsafe.Pointer
	if len(buf) > 0 {
		ptr = unsafe.Pointer(&buf[0])
	}
	return l.emit(h, func(cb native.Callbacks, ctx native.Context) {
		cb.OnFrame(ctx, ptr, width, height)
	})
}

func (l *Library) EmitIMERect(h native.PageHandle, rect native.Rect) bool {
	return l.emit(h, func(cb native.Callbacks, ctx native.Context) {
		cb.OnIMERect(ctx, rect)
	})
}

func (l *Library) EmitTitle(h native.PageHandle, title string) bool {
	return l.emit(h, func(cb native.Callbacks, ctx native.Context) {
		cb.OnTitleChange(ctx, title)
	})
}

func (l *Library) EmitFullscreen(h native.PageHandle, fullscreen bool) bool {
	return l.emit(h, func(cb native.Callbacks, ctx native.Context) {
		cb.OnFullscreenChange(ctx, fullscreen)
	})
}

func (l *Library) EmitMessage(h native.PageHandle, message string) bool {
	return l.emit(h, func(cb native.Callbacks, ctx native.Context) {
		cb.OnMessage(ctx, message)
	})
}

// EmitReady fires the ready callback for engine h again. Used to check that
// duplicate ready signals are harmless.
func (l *Library) EmitReady(h native.EngineHandle) bool {
	l.mu.Lock()
	e := l.engines[h]
	cb := l.cb
	l.mu.Unlock()
	if e == nil || cb == nil {
		return false
	}
	cb.OnEngineReady(e.ctx)
	return true
}

// Settle waits until every scripted state sequence has been emitted.
func (l *Library) Settle() {
	l.emitted.Wait()
}

// Calls returns a copy of the recorded calls.
func (l *Library) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Call(nil), l.calls...)
}

// CallsTo returns the recorded calls to method.
func (l *Library) CallsTo(method string) []Call {
	var out []Call
	for _, c := range l.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Pages returns the created page handles in creation order.
func (l *Library) Pages() []native.PageHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]native.PageHandle(nil), l.order...)
}

// LastPage returns the most recently created page handle, or 0.
func (l *Library) LastPage() native.PageHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.order) == 0 {
		return 0
	}
	return l.order[len(l.order)-1]
}

// Engine returns the created engine handle, or 0.
func (l *Library) Engine() native.EngineHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	for h := range l.engines {
		return h
	}
	return 0
}

// PageExits reports how many times ExitPage was called for h.
func (l *Library) PageExits(h native.PageHandle) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p := l.pages[h]; p != nil {
		return p.exits
	}
	return 0
}

// EngineExits reports how many times ExitEngine was called for h.
func (l *Library) EngineExits(h native.EngineHandle) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e := l.engines[h]; e != nil {
		return e.exits
	}
	return 0
}

var _ native.Library = (*Library)(nil)
