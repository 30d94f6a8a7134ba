package native

import (
	"errors"
	"unsafe"
)

// ErrUnavailable is returned by Open when the binary was built without the
// native engine library.
var ErrUnavailable = errors.New("native: engine library not linked (build with -tags cef)")

// Library is the call surface of the native engine. Every method is a direct
// one-way call; none of them wait for an acknowledgement.
//
// Handles passed to page methods must not have been passed to ExitPage.
type Library interface {
	// ExecuteSubprocess runs the engine helper entry point and returns when
	// the helper process is done.
	ExecuteSubprocess(args []string)

	// CreateEngine returns 0 on failure. On success, OnEngineReady fires with
	// ctx once the engine context is initialized.
	CreateEngine(opts EngineOptions, ctx Context) EngineHandle

	// RunEngine blocks in the engine message loop until ExitEngine is called.
	RunEngine(h EngineHandle, args []string) int
	ExitEngine(h EngineHandle)

	// CreatePage returns 0 on failure. Page callbacks carry ctx.
	CreatePage(engine EngineHandle, url string, opts PageOptions, ctx Context) PageHandle
	ExitPage(h PageHandle)

	SendMouseClick(h PageHandle, button MouseButton, pressed bool)
	SendMouseClickAt(h PageHandle, button MouseButton, pressed bool, x, y int32)
	SendMouseWheel(h PageHandle, x, y int32)
	SendMouseMove(h PageHandle, x, y int32)
	SendKeyboard(h PageHandle, scanCode int32, pressed bool, modifiers Modifiers)
	SendTouch(h PageHandle, id, x, y int32, typ TouchEventType, pointer TouchPointerType)
	SendMessage(h PageHandle, message string)
	SetDevToolsState(h PageHandle, open bool)
	Resize(h PageHandle, width, height int32)
	WindowHandle(h PageHandle) uintptr
	SendIMEComposition(h PageHandle, text string)
	SendIMESetComposition(h PageHandle, text string, x, y int32)
}

// Callbacks receives native events. Implementations are invoked on threads
// owned by the engine and must not block for long.
type Callbacks interface {
	OnEngineReady(ctx Context)
	OnStateChange(ctx Context, state PageState)
	OnIMERect(ctx Context, rect Rect)
	// buf points at width*height*4 bytes of BGRA pixels and is only valid
	// for the duration of the call. It may be nil.
	OnFrame(ctx Context, buf unsafe.Pointer, width, height int32)
	OnTitleChange(ctx Context, title string)
	OnFullscreenChange(ctx Context, fullscreen bool)
	OnMessage(ctx Context, message string)
}

// Opener binds cb as the process-wide callback target and returns the
// library. Open is the default; tests inject nativetest.Open.
type Opener func(cb Callbacks) (Library, error)
