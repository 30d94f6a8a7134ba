package native

import "fmt"

// EngineHandle is the opaque engine instance returned by CreateEngine.
// Zero is the null sentinel.
type EngineHandle uintptr

// PageHandle is the opaque browser instance returned by CreatePage.
// Zero is the null sentinel.
type PageHandle uintptr

// Context is the opaque value passed to every creation call and echoed back
// as the last argument of every callback raised for that creation.
// It is never dereferenced by native code.
type Context uintptr

// EngineOptions configures engine creation. Empty strings are passed as NULL.
type EngineOptions struct {
	CachePath             string
	BrowserSubprocessPath string
	SchemePath            string
}

// PageOptions configures page creation. Copied into the native call.
type PageOptions struct {
	WindowHandle      uintptr
	FrameRate         uint32
	Width             uint32
	Height            uint32
	DeviceScaleFactor float32
	IsOffscreen       bool
}

// MouseButton mirrors the native MouseButtons enum.
type MouseButton int32

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	default:
		return fmt.Sprintf("MouseButton(%d)", int32(b))
	}
}

// Modifiers mirrors the native Modifiers enum. Values are not bit flags.
type Modifiers int32

const (
	ModifierNone  Modifiers = 0
	ModifierShift Modifiers = 1
	ModifierCtrl  Modifiers = 2
	ModifierAlt   Modifiers = 3
	ModifierWin   Modifiers = 4
)

func (m Modifiers) String() string {
	switch m {
	case ModifierNone:
		return "none"
	case ModifierShift:
		return "shift"
	case ModifierCtrl:
		return "ctrl"
	case ModifierAlt:
		return "alt"
	case ModifierWin:
		return "win"
	default:
		return fmt.Sprintf("Modifiers(%d)", int32(m))
	}
}

// TouchEventType mirrors the native TouchEventType enum.
type TouchEventType int32

const (
	TouchReleased  TouchEventType = 0
	TouchPressed   TouchEventType = 1
	TouchMoved     TouchEventType = 2
	TouchCancelled TouchEventType = 3
)

func (t TouchEventType) String() string {
	switch t {
	case TouchReleased:
		return "released"
	case TouchPressed:
		return "pressed"
	case TouchMoved:
		return "moved"
	case TouchCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("TouchEventType(%d)", int32(t))
	}
}

// TouchPointerType mirrors the native TouchPointerType enum.
type TouchPointerType int32

const (
	PointerTouch   TouchPointerType = 0
	PointerMouse   TouchPointerType = 1
	PointerPen     TouchPointerType = 2
	PointerEraser  TouchPointerType = 3
	PointerUnknown TouchPointerType = 4
)

func (p TouchPointerType) String() string {
	switch p {
	case PointerTouch:
		return "touch"
	case PointerMouse:
		return "mouse"
	case PointerPen:
		return "pen"
	case PointerEraser:
		return "eraser"
	case PointerUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("TouchPointerType(%d)", int32(p))
	}
}

// PageState mirrors the native PageState enum.
type PageState int32

const (
	StateLoad        PageState = 1
	StateLoadError   PageState = 2
	StateBeforeLoad  PageState = 3
	StateBeforeClose PageState = 4
	StateClose       PageState = 5
)

// Terminal reports whether the state ends the initial navigation wait.
func (s PageState) Terminal() bool {
	return s == StateLoad || s == StateLoadError
}

func (s PageState) String() string {
	switch s {
	case StateLoad:
		return "load"
	case StateLoadError:
		return "load_error"
	case StateBeforeLoad:
		return "before_load"
	case StateBeforeClose:
		return "before_close"
	case StateClose:
		return "close"
	default:
		return fmt.Sprintf("PageState(%d)", int32(s))
	}
}

// Rect is the IME caret rectangle in view coordinates.
type Rect struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}
