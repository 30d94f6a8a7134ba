package webview

import "github.com/wippyai/webview/native"

type (
	MouseButton      = native.MouseButton
	Modifiers        = native.Modifiers
	TouchEventType   = native.TouchEventType
	TouchPointerType = native.TouchPointerType
	PageState        = native.PageState
	Rect             = native.Rect
)

const (
	MouseLeft   = native.MouseLeft
	MouseRight  = native.MouseRight
	MouseMiddle = native.MouseMiddle

	ModifierNone  = native.ModifierNone
	ModifierShift = native.ModifierShift
	ModifierCtrl  = native.ModifierCtrl
	ModifierAlt   = native.ModifierAlt
	ModifierWin   = native.ModifierWin

	TouchReleased  = native.TouchReleased
	TouchPressed   = native.TouchPressed
	TouchMoved     = native.TouchMoved
	TouchCancelled = native.TouchCancelled

	PointerTouch   = native.PointerTouch
	PointerMouse   = native.PointerMouse
	PointerPen     = native.PointerPen
	PointerEraser  = native.PointerEraser
	PointerUnknown = native.PointerUnknown

	StateLoad        = native.StateLoad
	StateLoadError   = native.StateLoadError
	StateBeforeLoad  = native.StateBeforeLoad
	StateBeforeClose = native.StateBeforeClose
	StateClose       = native.StateClose
)

// Position is a point relative to the top-left corner of the view.
type Position struct {
	X int32
	Y int32
}

// ActionState is the press state of a button or key.
type ActionState uint8

const (
	Down ActionState = iota
	Up
)

// Pressed reports whether the state is Down.
func (s ActionState) Pressed() bool {
	return s == Down
}

func (s ActionState) String() string {
	if s == Down {
		return "down"
	}
	return "up"
}

// MouseAction is one of MouseClick, MouseMove or MouseWheel.
type MouseAction interface {
	mouseAction()
}

// MouseClick presses or releases a button. A nil Position clicks at the
// current cursor position.
type MouseClick struct {
	Button   MouseButton
	State    ActionState
	Position *Position
}

// MouseMove moves the cursor.
type MouseMove struct {
	Position Position
}

// MouseWheel scrolls; Position is forwarded as the engine's wheel x, y.
type MouseWheel struct {
	Position Position
}

func (MouseClick) mouseAction() {}
func (MouseMove) mouseAction()  {}
func (MouseWheel) mouseAction() {}

// IMEAction is one of IMEComposition or IMEPreedit.
type IMEAction interface {
	imeAction()
}

// IMEComposition commits Text into the focused node.
type IMEComposition struct {
	Text string
}

// IMEPreedit sets uncommitted composition text with the caret at X, Y.
type IMEPreedit struct {
	Text string
	X    int32
	Y    int32
}

func (IMEComposition) imeAction() {}
func (IMEPreedit) imeAction()     {}
