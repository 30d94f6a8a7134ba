//go:build cef

package native

/*
#cgo CFLAGS: -I${SRCDIR}
#cgo LDFLAGS: -lwebview
#include <stdint.h>
#include <stdlib.h>
#include "webview.h"

extern void webviewOnReady(void* ctx);
extern void webviewOnStateChange(PageState state, void* ctx);
extern void webviewOnIMERect(Rect rect, void* ctx);
extern void webviewOnFrame(void* buf, int width, int height, void* ctx);
extern void webviewOnTitleChange(char* title, void* ctx);
extern void webviewOnFullscreenChange(bool fullscreen, void* ctx);
extern void webviewOnMessage(char* message, void* ctx);

static void wv_on_frame(const void* buf, int width, int height, void* ctx) {
	webviewOnFrame((void*)buf, width, height, ctx);
}

static void wv_on_title_change(const char* title, void* ctx) {
	webviewOnTitleChange((char*)title, ctx);
}

static void wv_on_message(const char* message, void* ctx) {
	webviewOnMessage((char*)message, ctx);
}

static void wv_execute_sub_process(int argc, char** argv) {
	execute_sub_process(argc, (const char**)argv);
}

static uintptr_t wv_create_webview(const char* cache_path, const char* subprocess_path,
		const char* scheme_path, uintptr_t ctx) {
	WebviewOptions opts = { cache_path, subprocess_path, scheme_path };
	return (uintptr_t)create_webview(&opts, webviewOnReady, (void*)ctx);
}

static int wv_run(uintptr_t app, int argc, char** argv) {
	return webview_run((void*)app, argc, (const char**)argv);
}

static void wv_exit(uintptr_t app) {
	webview_exit((void*)app);
}

static uintptr_t wv_create_page(uintptr_t app, const char* url, uintptr_t window_handle,
		uint32_t frame_rate, uint32_t width, uint32_t height, float scale, bool offscreen,
		uintptr_t ctx) {
	PageOptions opts = { (const void*)window_handle, frame_rate, width, height, scale, offscreen };
	PageObserver observer = {
		webviewOnStateChange,
		webviewOnIMERect,
		wv_on_frame,
		wv_on_title_change,
		webviewOnFullscreenChange,
		wv_on_message,
	};
	return (uintptr_t)create_page((void*)app, url, &opts, observer, (void*)ctx);
}

static void wv_page_exit(uintptr_t b) { page_exit((void*)b); }

static void wv_mouse_click(uintptr_t b, int button, bool pressed) {
	page_send_mouse_click((void*)b, (MouseButtons)button, pressed);
}

static void wv_mouse_click_with_pos(uintptr_t b, int button, bool pressed, int x, int y) {
	page_send_mouse_click_with_pos((void*)b, (MouseButtons)button, pressed, x, y);
}

static void wv_mouse_wheel(uintptr_t b, int x, int y) { page_send_mouse_wheel((void*)b, x, y); }
static void wv_mouse_move(uintptr_t b, int x, int y) { page_send_mouse_move((void*)b, x, y); }

static void wv_keyboard(uintptr_t b, int scan_code, bool pressed, int modifiers) {
	page_send_keyboard((void*)b, scan_code, pressed, (Modifiers)modifiers);
}

static void wv_touch(uintptr_t b, int id, int x, int y, int type, int pointer_type) {
	page_send_touch((void*)b, id, x, y, (TouchEventType)type, (TouchPointerType)pointer_type);
}

static void wv_message(uintptr_t b, const char* message) { page_send_message((void*)b, message); }
static void wv_devtools(uintptr_t b, bool open) { page_set_devtools_state((void*)b, open); }
static void wv_resize(uintptr_t b, int width, int height) { page_resize((void*)b, width, height); }
static uintptr_t wv_hwnd(uintptr_t b) { return (uintptr_t)page_get_hwnd((void*)b); }

static void wv_ime_composition(uintptr_t b, const char* input) {
	page_send_ime_composition((void*)b, input);
}

static void wv_ime_set_composition(uintptr_t b, const char* input, int x, int y) {
	page_send_ime_set_composition((void*)b, input, x, y);
}
*/
import "C"

import (
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"
)

// bound is the callback target the exported trampolines forward to.
var bound atomic.Pointer[callbacksBox]

type callbacksBox struct {
	cb Callbacks
}

type cefLibrary struct{}

// Open binds cb as the target of every native callback and returns the
// linked engine library. A later Open replaces the binding.
func Open(cb Callbacks) (Library, error) {
	bound.Store(&callbacksBox{cb: cb})
	Logger().Debug("native library bound")
	return cefLibrary{}, nil
}

// cString returns NULL for the empty string. The caller frees non-NULL results.
func cString(s string) *C.char {
	if s == "" {
		return nil
	}
	return C.CString(s)
}

func freeString(p *C.char) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}

// argv is a C argument vector owned by Go code until free is called.
type argv struct {
	ptr **C.char
	len int
}

func newArgv(args []string) argv {
	if len(args) == 0 {
		return argv{}
	}
	size := C.size_t(len(args)) * C.size_t(unsafe.Sizeof((*C.char)(nil)))
	ptr := (**C.char)(C.malloc(size))
	items := unsafe.Slice(ptr, len(args))
	for i, a := range args {
		items[i] = C.CString(a)
	}
	return argv{ptr: ptr, len: len(args)}
}

func (a argv) free() {
	if a.ptr == nil {
		return
	}
	for _, p := range unsafe.Slice(a.ptr, a.len) {
		C.free(unsafe.Pointer(p))
	}
	C.free(unsafe.Pointer(a.ptr))
}

func (cefLibrary) ExecuteSubprocess(args []string) {
	av := newArgv(args)
	defer av.free()
	C.wv_execute_sub_process(C.int(av.len), av.ptr)
}

func (cefLibrary) CreateEngine(opts EngineOptions, ctx Context) EngineHandle {
	cache := cString(opts.CachePath)
	sub := cString(opts.BrowserSubprocessPath)
	scheme := cString(opts.SchemePath)
	defer func() {
		freeString(cache)
		freeString(sub)
		freeString(scheme)
	}()

	h := C.wv_create_webview(cache, sub, scheme, C.uintptr_t(ctx))
	Logger().Debug("create_webview", zap.Uintptr("handle", uintptr(h)))
	return EngineHandle(h)
}

func (cefLibrary) RunEngine(h EngineHandle, args []string) int {
	av := newArgv(args)
	defer av.free()
	return int(C.wv_run(C.uintptr_t(h), C.int(av.len), av.ptr))
}

func (cefLibrary) ExitEngine(h EngineHandle) {
	C.wv_exit(C.uintptr_t(h))
}

func (cefLibrary) CreatePage(engine EngineHandle, url string, opts PageOptions, ctx Context) PageHandle {
	curl := C.CString(url)
	defer C.free(unsafe.Pointer(curl))

	h := C.wv_create_page(
		C.uintptr_t(engine),
		curl,
		C.uintptr_t(opts.WindowHandle),
		C.uint32_t(opts.FrameRate),
		C.uint32_t(opts.Width),
		C.uint32_t(opts.Height),
		C.float(opts.DeviceScaleFactor),
		C.bool(opts.IsOffscreen),
		C.uintptr_t(ctx),
	)
	Logger().Debug("create_page", zap.String("url", url), zap.Uintptr("handle", uintptr(h)))
	return PageHandle(h)
}

func (cefLibrary) ExitPage(h PageHandle) {
	C.wv_page_exit(C.uintptr_t(h))
}

func (cefLibrary) SendMouseClick(h PageHandle, button MouseButton, pressed bool) {
	C.wv_mouse_click(C.uintptr_t(h), C.int(button), C.bool(pressed))
}

func (cefLibrary) SendMouseClickAt(h PageHandle, button MouseButton, pressed bool, x, y int32) {
	C.wv_mouse_click_with_pos(C.uintptr_t(h), C.int(button), C.bool(pressed), C.int(x), C.int(y))
}

func (cefLibrary) SendMouseWheel(h PageHandle, x, y int32) {
	C.wv_mouse_wheel(C.uintptr_t(h), C.int(x), C.int(y))
}

func (cefLibrary) SendMouseMove(h PageHandle, x, y int32) {
	C.wv_mouse_move(C.uintptr_t(h), C.int(x), C.int(y))
}

func (cefLibrary) SendKeyboard(h PageHandle, scanCode int32, pressed bool, modifiers Modifiers) {
	C.wv_keyboard(C.uintptr_t(h), C.int(scanCode), C.bool(pressed), C.int(modifiers))
}

func (cefLibrary) SendTouch(h PageHandle, id, x, y int32, typ TouchEventType, pointer TouchPointerType) {
	C.wv_touch(C.uintptr_t(h), C.int(id), C.int(x), C.int(y), C.int(typ), C.int(pointer))
}

func (cefLibrary) SendMessage(h PageHandle, message string) {
	cmsg := C.CString(message)
	defer C.free(unsafe.Pointer(cmsg))
	C.wv_message(C.uintptr_t(h), cmsg)
}

func (cefLibrary) SetDevToolsState(h PageHandle, open bool) {
	C.wv_devtools(C.uintptr_t(h), C.bool(open))
}

func (cefLibrary) Resize(h PageHandle, width, height int32) {
	C.wv_resize(C.uintptr_t(h), C.int(width), C.int(height))
}

func (cefLibrary) WindowHandle(h PageHandle) uintptr {
	return uintptr(C.wv_hwnd(C.uintptr_t(h)))
}

func (cefLibrary) SendIMEComposition(h PageHandle, text string) {
	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	C.wv_ime_composition(C.uintptr_t(h), ctext)
}

func (cefLibrary) SendIMESetComposition(h PageHandle, text string, x, y int32) {
	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	C.wv_ime_set_composition(C.uintptr_t(h), ctext, C.int(x), C.int(y))
}
