package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	webview "github.com/wippyai/webview"
	"github.com/wippyai/webview/config"
	"github.com/wippyai/webview/native/nativetest"
)

func newTestModel(eng *webview.Engine) *interactiveModel {
	obs := &tuiObserver{limiter: rate.NewLimiter(rate.Inf, 1)}
	return newInteractiveModel(eng, config.Default(), obs, 80, 24)
}

func update(t *testing.T, m *interactiveModel, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := m.Update(msg)
	require.Same(t, m, next)
	return cmd
}

func TestInteractiveModel_PageEvents(t *testing.T) {
	m := newTestModel(nil)

	update(t, m, stateMsg(webview.StateLoad))
	update(t, m, titleMsg("Example Domain"))
	update(t, m, fullscreenMsg(true))
	update(t, m, frameMsg{width: 640, height: 480})
	update(t, m, imeMsg(webview.Rect{X: 1, Y: 2, Width: 3, Height: 4}))
	update(t, m, messageMsg("pong"))

	assert.Equal(t, "load", m.state)
	assert.Equal(t, "Example Domain", m.title)
	assert.True(t, m.fullscreen)
	assert.Equal(t, "640x480", m.frameSize)
	assert.Equal(t, "1,2 3x4", m.ime)
	require.Len(t, m.log, 1)

	view := m.View()
	assert.Contains(t, view, "Example Domain")
	assert.Contains(t, view, "640x480")
	assert.Contains(t, view, "pong")
}

func TestInteractiveModel_PageError(t *testing.T) {
	m := newTestModel(nil)

	update(t, m, pageMsg{err: assert.AnError})

	assert.Equal(t, "failed", m.state)
	assert.Contains(t, m.View(), assert.AnError.Error())
}

func TestInteractiveModel_LogIsBounded(t *testing.T) {
	m := newTestModel(nil)

	for i := 0; i < maxLogLines+25; i++ {
		update(t, m, messageMsg("line"))
	}

	assert.Len(t, m.log, maxLogLines)
}

func TestInteractiveModel_Quit(t *testing.T) {
	for _, msg := range []tea.Msg{
		tea.KeyMsg{Type: tea.KeyEsc},
		tea.KeyMsg{Type: tea.KeyCtrlC},
		engineExitedMsg{},
	} {
		m := newTestModel(nil)
		cmd := update(t, m, msg)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestInteractiveModel_SendsToPage(t *testing.T) {
	fake := nativetest.New()
	eng, err := webview.New(webview.Options{},
		webview.WithOpener(fake.Open),
		webview.WithArgs([]string{"webview"}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	m := newTestModel(eng)
	msg := m.createPage()
	require.IsType(t, pageMsg{}, msg)
	require.NoError(t, msg.(pageMsg).err)
	update(t, m, msg)
	require.NotNil(t, m.page)

	m.input.SetValue("  ping  ")
	update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})

	calls := fake.CallsTo("SendMessage")
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"ping"}, calls[0].Args)
	require.Len(t, fake.CallsTo("SetDevToolsState"), 1)
	assert.True(t, m.devtools)
	assert.Empty(t, m.input.Value())
	assert.True(t, strings.HasPrefix(m.log[len(m.log)-1], "> ping"))
}

func TestTUIObserver_CountsEveryFrame(t *testing.T) {
	obs := &tuiObserver{limiter: rate.NewLimiter(1, 1)}

	for i := 0; i < 3; i++ {
		obs.OnFrame(nil, 1, 1)
	}

	assert.Equal(t, uint64(3), obs.frames.Load())
}
