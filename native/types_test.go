package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageState(t *testing.T) {
	tests := []struct {
		state    PageState
		name     string
		terminal bool
	}{
		{StateLoad, "load", true},
		{StateLoadError, "load_error", true},
		{StateBeforeLoad, "before_load", false},
		{StateBeforeClose, "before_close", false},
		{StateClose, "close", false},
		{PageState(9), "PageState(9)", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.state.String())
			assert.Equal(t, tt.terminal, tt.state.Terminal())
		})
	}
}

func TestEnumValuesMatchABI(t *testing.T) {
	assert.EqualValues(t, 0, MouseLeft)
	assert.EqualValues(t, 1, MouseRight)
	assert.EqualValues(t, 2, MouseMiddle)

	assert.EqualValues(t, 0, ModifierNone)
	assert.EqualValues(t, 4, ModifierWin)

	assert.EqualValues(t, 0, TouchReleased)
	assert.EqualValues(t, 3, TouchCancelled)

	assert.EqualValues(t, 0, PointerTouch)
	assert.EqualValues(t, 4, PointerUnknown)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "middle", MouseMiddle.String())
	assert.Equal(t, "ctrl", ModifierCtrl.String())
	assert.Equal(t, "moved", TouchMoved.String())
	assert.Equal(t, "eraser", PointerEraser.String())
	assert.Equal(t, "MouseButton(7)", MouseButton(7).String())
}
