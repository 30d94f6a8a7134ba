package webview

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/webview/native/nativetest"
)

// recorder is a thread-safe Observer that keeps everything it receives.
type recorder struct {
	NopObserver

	mu         sync.Mutex
	states     []PageState
	frames     []int
	titles     []string
	messages   []string
	fullscreen []bool
	rects      []Rect

	onFrame   func(buf []byte)
	onMessage func(string)
}

func (r *recorder) OnStateChange(s PageState) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *recorder) OnIMERect(rect Rect) {
	r.mu.Lock()
	r.rects = append(r.rects, rect)
	r.mu.Unlock()
}

func (r *recorder) OnFrame(buf []byte, width, height uint32) {
	if r.onFrame != nil {
		r.onFrame(buf)
	}
	r.mu.Lock()
	r.frames = append(r.frames, len(buf))
	r.mu.Unlock()
}

func (r *recorder) OnTitleChange(title string) {
	r.mu.Lock()
	r.titles = append(r.titles, title)
	r.mu.Unlock()
}

func (r *recorder) OnFullscreenChange(fs bool) {
	r.mu.Lock()
	r.fullscreen = append(r.fullscreen, fs)
	r.mu.Unlock()
}

func (r *recorder) OnMessage(msg string) {
	if r.onMessage != nil {
		r.onMessage(msg)
	}
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
}

func (r *recorder) snapshotStates() []PageState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PageState(nil), r.states...)
}

func (r *recorder) snapshotFrames() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.frames...)
}

func (r *recorder) snapshotMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// newTestEngine starts an engine on a fake library and closes it when the
// test ends.
func newTestEngine(t *testing.T, fakeOpts []nativetest.Option, opts ...Option) (*Engine, *nativetest.Library) {
	t.Helper()
	fake := nativetest.New(fakeOpts...)
	opts = append([]Option{WithOpener(fake.Open), WithArgs([]string{"webview-test"})}, opts...)
	eng, err := New(Options{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng, fake
}

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}
