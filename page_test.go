package webview

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/wippyai/webview/errors"
	"github.com/wippyai/webview/native"
	"github.com/wippyai/webview/native/nativetest"
)

func TestCreatePage_Loaded(t *testing.T) {
	eng, fake := newTestEngine(t, nil)
	obs := &recorder{}

	page, err := eng.CreatePage("https://example.com", DefaultPageOptions(), obs)
	require.NoError(t, err)
	fake.Settle()

	assert.Equal(t, "https://example.com", page.URL())
	assert.NotEmpty(t, page.ID())
	assert.Equal(t, []PageState{StateBeforeLoad, StateLoad}, obs.snapshotStates())

	call := fake.CallsTo("CreatePage")[0]
	assert.Equal(t, "https://example.com", call.Args[0])
	assert.Equal(t, native.PageOptions{
		FrameRate:         30,
		Width:             800,
		Height:            600,
		DeviceScaleFactor: 1.0,
	}, call.Args[1])
}

func TestCreatePage_LoadError(t *testing.T) {
	eng, fake := newTestEngine(t, []nativetest.Option{
		nativetest.WithPageStates(func(url string) []native.PageState {
			if strings.Contains(url, "nonexistent.invalid") {
				return []native.PageState{native.StateBeforeLoad, native.StateLoadError}
			}
			return []native.PageState{native.StateLoad}
		}),
	})
	obs := &recorder{}

	page, err := eng.CreatePage("https://nonexistent.invalid", DefaultPageOptions(), obs)
	require.Error(t, err)
	assert.Nil(t, page)
	assert.True(t, errors.IsKind(err, errors.KindPageCreation))
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindPageCreation})

	h := fake.LastPage()
	assert.Equal(t, 1, fake.PageExits(h))
	assert.Empty(t, eng.Pages())

	// The engine stays usable after a failed page.
	_, err = eng.CreatePage("https://example.com", DefaultPageOptions(), nil)
	assert.NoError(t, err)
}

func TestCreatePage_NullHandle(t *testing.T) {
	eng, fake := newTestEngine(t, []nativetest.Option{
		nativetest.WithPageFailure(func(string) bool { return true }),
	})

	_, err := eng.CreatePage("https://example.com", DefaultPageOptions(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseCreate, Kind: errors.KindPageCreation})
	assert.Empty(t, fake.CallsTo("ExitPage"))
}

func TestCreatePage_FirstTerminalStateWins(t *testing.T) {
	tests := []struct {
		name   string
		states []native.PageState
		ok     bool
	}{
		{"load then error", []native.PageState{native.StateLoad, native.StateLoadError}, true},
		{"error then load", []native.PageState{native.StateLoadError, native.StateLoad}, false},
		{"noise before load", []native.PageState{native.StateBeforeLoad, native.StateBeforeClose, native.StateLoad}, true},
		{"noise before error", []native.PageState{native.StateClose, native.StateLoadError}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _ := newTestEngine(t, []nativetest.Option{
				nativetest.WithPageStates(func(string) []native.PageState { return tt.states }),
			})
			_, err := eng.CreatePage("https://example.com", DefaultPageOptions(), nil)
			assert.Equal(t, tt.ok, err == nil, "err = %v", err)
			require.NoError(t, eng.Close())
		})
	}
}

func TestCreatePage_InvalidURL(t *testing.T) {
	eng, fake := newTestEngine(t, nil)
	_, err := eng.CreatePage("https://exa\x00mple.com", DefaultPageOptions(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
	assert.Empty(t, fake.CallsTo("CreatePage"))
}

func TestCreatePage_EngineClosed(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	require.NoError(t, eng.Close())

	_, err := eng.CreatePage("https://example.com", DefaultPageOptions(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindClosed))
}

func TestCreatePage_PendingAbortedByEngineClose(t *testing.T) {
	eng, fake := newTestEngine(t, []nativetest.Option{
		nativetest.WithPageStates(func(string) []native.PageState {
			return []native.PageState{native.StateBeforeLoad}
		}),
	})

	result := make(chan error, 1)
	go func() {
		_, err := eng.CreatePage("https://slow.example", DefaultPageOptions(), nil)
		result <- err
	}()

	require.Eventually(t, func() bool { return len(eng.Pages()) == 1 }, time.Second, time.Millisecond)
	require.NoError(t, eng.Close())

	select {
	case err := <-result:
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindPageCreation))
	case <-time.After(time.Second):
		t.Fatal("pending CreatePage not released by engine Close")
	}
	assert.Equal(t, 1, fake.PageExits(fake.LastPage()))
}

func TestProperty_FirstTerminalStateDecidesOutcome(t *testing.T) {
	var scripts sync.Map
	eng, _ := newTestEngine(t, []nativetest.Option{
		nativetest.WithPageStates(func(url string) []native.PageState {
			v, _ := scripts.Load(url)
			return v.([]native.PageState)
		}),
	})

	nonTerminal := rapid.SampledFrom([]native.PageState{
		native.StateBeforeLoad, native.StateBeforeClose, native.StateClose,
	})
	anyState := rapid.SampledFrom([]native.PageState{
		native.StateLoad, native.StateLoadError,
		native.StateBeforeLoad, native.StateBeforeClose, native.StateClose,
	})
	terminal := rapid.SampledFrom([]native.PageState{native.StateLoad, native.StateLoadError})

	var seq atomic.Int64
	rapid.Check(t, func(rt *rapid.T) {
		prefix := rapid.SliceOfN(nonTerminal, 0, 5).Draw(rt, "prefix")
		first := terminal.Draw(rt, "terminal")
		suffix := rapid.SliceOfN(anyState, 0, 5).Draw(rt, "suffix")

		states := append(append(prefix, first), suffix...)
		url := fmt.Sprintf("https://example.com/%d", seq.Add(1))
		scripts.Store(url, states)

		page, err := eng.CreatePage(url, DefaultPageOptions(), nil)
		if first == native.StateLoad {
			require.NoError(rt, err)
			require.NoError(rt, page.Close())
		} else {
			require.Error(rt, err)
			require.True(rt, errors.IsKind(err, errors.KindPageCreation))
		}
	})
}

func TestPage_SendMouseClickAt(t *testing.T) {
	eng, fake := newTestEngine(t, nil)
	page, err := eng.CreatePage("https://example.com", DefaultPageOptions(), nil)
	require.NoError(t, err)

	require.NoError(t, page.SendMouse(MouseClick{
		Button:   MouseLeft,
		State:    Down,
		Position: &Position{X: 100, Y: 200},
	}))

	calls := fake.CallsTo("SendMouseClickAt")
	require.Len(t, calls, 1)
	assert.Equal(t, fake.LastPage(), calls[0].Page)
	assert.Equal(t, []any{native.MouseLeft, true, int32(100), int32(200)}, calls[0].Args)
}

func TestPage_InputForwarding(t *testing.T) {
	eng, fake := newTestEngine(t, nil)
	page, err := eng.CreatePage("https://example.com", DefaultPageOptions(), nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		send   func() error
		method string
		args   []any
	}{
		{
			name:   "click without position",
			send:   func() error { return page.SendMouse(MouseClick{Button: MouseRight, State: Up}) },
			method: "SendMouseClick",
			args:   []any{native.MouseRight, false},
		},
		{
			name:   "move",
			send:   func() error { return page.SendMouse(MouseMove{Position: Position{X: 5, Y: 6}}) },
			method: "SendMouseMove",
			args:   []any{int32(5), int32(6)},
		},
		{
			name:   "wheel",
			send:   func() error { return page.SendMouse(MouseWheel{Position: Position{X: 0, Y: -120}}) },
			method: "SendMouseWheel",
			args:   []any{int32(0), int32(-120)},
		},
		{
			name:   "keyboard",
			send:   func() error { return page.SendKeyboard(30, Down, ModifierShift) },
			method: "SendKeyboard",
			args:   []any{int32(30), true, native.ModifierShift},
		},
		{
			name:   "touch",
			send:   func() error { return page.SendTouch(1, 10, 20, TouchPressed, PointerPen) },
			method: "SendTouch",
			args:   []any{int32(1), int32(10), int32(20), native.TouchPressed, native.PointerPen},
		},
		{
			name:   "ime composition",
			send:   func() error { return page.SendIME(IMEComposition{Text: "日本"}) },
			method: "SendIMEComposition",
			args:   []any{"日本"},
		},
		{
			name:   "ime preedit",
			send:   func() error { return page.SendIME(IMEPreedit{Text: "に", X: 3, Y: 4}) },
			method: "SendIMESetComposition",
			args:   []any{"に", int32(3), int32(4)},
		},
		{
			name:   "message",
			send:   func() error { return page.SendMessage(`{"type":"ping"}`) },
			method: "SendMessage",
			args:   []any{`{"type":"ping"}`},
		},
		{
			name:   "devtools",
			send:   func() error { return page.SetDevToolsOpen(true) },
			method: "SetDevToolsState",
			args:   []any{true},
		},
		{
			name:   "resize",
			send:   func() error { return page.Resize(1024, 768) },
			method: "Resize",
			args:   []any{int32(1024), int32(768)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.send())
			calls := fake.CallsTo(tt.method)
			require.NotEmpty(t, calls)
			last := calls[len(calls)-1]
			assert.Equal(t, fake.LastPage(), last.Page)
			assert.Equal(t, tt.args, last.Args)
		})
	}

	hwnd, err := page.WindowHandle()
	require.NoError(t, err)
	assert.Equal(t, uintptr(fake.LastPage())+0x1000, hwnd)
}

func TestPage_InvalidInput(t *testing.T) {
	eng, fake := newTestEngine(t, nil)
	page, err := eng.CreatePage("https://example.com", DefaultPageOptions(), nil)
	require.NoError(t, err)

	errs := []error{
		page.SendMessage("a\x00b"),
		page.SendIME(IMEComposition{Text: "\x00"}),
		page.SendIME(IMEPreedit{Text: "x\x00"}),
		page.SendIME(nil),
		page.SendMouse(nil),
		page.Resize(math.MaxInt32+1, 10),
		page.Resize(10, math.MaxUint32),
		page.SendKeyboard(math.MaxUint32, Down, ModifierNone),
	}
	for i, err := range errs {
		require.Error(t, err, "case %d", i)
		assert.True(t, errors.IsKind(err, errors.KindInvalidInput), "case %d: %v", i, err)
	}

	assert.Empty(t, fake.CallsTo("SendMessage"))
	assert.Empty(t, fake.CallsTo("Resize"))
	assert.Empty(t, fake.CallsTo("SendKeyboard"))
}

func TestPage_CloseIdempotent(t *testing.T) {
	eng, fake := newTestEngine(t, nil)
	obs := &recorder{}
	page, err := eng.CreatePage("https://example.com", DefaultPageOptions(), obs)
	require.NoError(t, err)
	fake.Settle()
	h := fake.LastPage()

	require.NoError(t, page.Close())
	require.NoError(t, page.Close())
	assert.Equal(t, 1, fake.PageExits(h))

	err = page.SendMessage("hello")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindClosed))
	_, err = page.WindowHandle()
	assert.True(t, errors.IsKind(err, errors.KindClosed))
	assert.Empty(t, fake.CallsTo("SendMessage"))

	assert.False(t, fake.EmitMessage(h, "late"))
	assert.Empty(t, obs.snapshotMessages())
	assert.Empty(t, eng.Pages())
}

func TestPage_CloseWaitsForInFlightFrame(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var sawLen atomic.Int64

	obs := &recorder{onFrame: func(buf []byte) {
		close(entered)
		<-release
		// The buffer must still be readable while Close is pending.
		sawLen.Store(int64(len(buf)))
		_ = buf[len(buf)-1]
	}}

	eng, fake := newTestEngine(t, nil)
	page, err := eng.CreatePage("https://example.com", DefaultPageOptions(), obs)
	require.NoError(t, err)
	h := fake.LastPage()

	frame := make([]byte, 4*3*4)
	go fake.EmitFrame(h, frame, 4, 3)
	<-entered

	closed := make(chan struct{})
	go func() {
		_ = page.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a frame callback was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the callback finished")
	}

	assert.EqualValues(t, len(frame), sawLen.Load())
	assert.Equal(t, 1, fake.PageExits(h))
	assert.False(t, fake.EmitFrame(h, frame, 4, 3))
	assert.Equal(t, []int{len(frame)}, obs.snapshotFrames())
}

func TestPage_ConcurrentInputAndFrames(t *testing.T) {
	eng, fake := newTestEngine(t, nil)
	obs := &recorder{}
	page, err := eng.CreatePage("https://example.com", DefaultPageOptions(), obs)
	require.NoError(t, err)
	h := fake.LastPage()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			frame := make([]byte, 8*8*4)
			for {
				select {
				case <-stop:
					return
				default:
					fake.EmitFrame(h, frame, 8, 8)
				}
			}
		}()
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if err := page.Resize(uint32(100+j), uint32(100+i)); err != nil {
					assert.True(t, errors.IsKind(err, errors.KindClosed))
					return
				}
				_ = page.SendMouse(MouseMove{Position: Position{X: int32(j), Y: int32(i)}})
			}
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, page.Close())
	close(stop)
	wg.Wait()

	for _, n := range obs.snapshotFrames() {
		assert.Equal(t, 8*8*4, n)
	}
	assert.Equal(t, 1, fake.PageExits(h))
}
