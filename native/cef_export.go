//go:build cef

package native

/*
#include <stdbool.h>
#include "webview.h"
*/
import "C"

import (
	"unicode/utf8"
	"unsafe"

	"go.uber.org/zap"
)

// dispatch runs fn against the bound callbacks. Panics are logged and
// swallowed so they never unwind into native frames.
func dispatch(name string, ctx unsafe.Pointer, fn func(cb Callbacks, ctx Context)) {
	box := bound.Load()
	if box == nil {
		Logger().Warn("native callback without bound target", zap.String("callback", name))
		return
	}
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("native callback panicked",
				zap.String("callback", name),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	fn(box.cb, Context(uintptr(ctx)))
}

// goString converts a borrowed C string. NULL and invalid UTF-8 are dropped.
func goString(name string, p *C.char) (string, bool) {
	if p == nil {
		return "", false
	}
	s := C.GoString(p)
	if !utf8.ValidString(s) {
		Logger().Debug("dropping invalid utf-8 string", zap.String("callback", name))
		return "", false
	}
	return s, true
}

//export webviewOnReady
func webviewOnReady(ctx unsafe.Pointer) {
	dispatch("ready", ctx, func(cb Callbacks, c Context) {
		cb.OnEngineReady(c)
	})
}

//export webviewOnStateChange
func webviewOnStateChange(state C.PageState, ctx unsafe.Pointer) {
	dispatch("state_change", ctx, func(cb Callbacks, c Context) {
		cb.OnStateChange(c, PageState(state))
	})
}

//export webviewOnIMERect
func webviewOnIMERect(rect C.Rect, ctx unsafe.Pointer) {
	dispatch("ime_rect", ctx, func(cb Callbacks, c Context) {
		cb.OnIMERect(c, Rect{
			X:      int32(rect.x),
			Y:      int32(rect.y),
			Width:  int32(rect.width),
			Height: int32(rect.height),
		})
	})
}

//export webviewOnFrame
func webviewOnFrame(buf unsafe.Pointer, width, height C.int, ctx unsafe.Pointer) {
	dispatch("frame", ctx, func(cb Callbacks, c Context) {
		cb.OnFrame(c, buf, int32(width), int32(height))
	})
}

//export webviewOnTitleChange
func webviewOnTitleChange(title *C.char, ctx unsafe.Pointer) {
	s, ok := goString("title_change", title)
	if !ok {
		return
	}
	dispatch("title_change", ctx, func(cb Callbacks, c Context) {
		cb.OnTitleChange(c, s)
	})
}

//export webviewOnFullscreenChange
func webviewOnFullscreenChange(fullscreen C.bool, ctx unsafe.Pointer) {
	dispatch("fullscreen_change", ctx, func(cb Callbacks, c Context) {
		cb.OnFullscreenChange(c, bool(fullscreen))
	})
}

//export webviewOnMessage
func webviewOnMessage(message *C.char, ctx unsafe.Pointer) {
	s, ok := goString("message", message)
	if !ok {
		return
	}
	dispatch("message", ctx, func(cb Callbacks, c Context) {
		cb.OnMessage(c, s)
	})
}
