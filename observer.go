package webview

// Observer receives page events. Methods are called on threads owned by the
// engine, possibly concurrently with each other and with calls made by the
// host, so implementations must be safe for concurrent use.
//
// A panic in an Observer method is recovered and logged; it never reaches
// the engine. Methods must not call Page.Close or Engine.Close.
type Observer interface {
	OnStateChange(state PageState)
	OnIMERect(rect Rect)
	// OnFrame receives width*height*4 bytes of BGRA pixels. buf aliases
	// engine memory and must not be retained after the call returns.
	OnFrame(buf []byte, width, height uint32)
	OnTitleChange(title string)
	OnFullscreenChange(fullscreen bool)
	OnMessage(message string)
}

// NopObserver implements Observer with no-op methods. Embed it to implement
// only the events you need.
type NopObserver struct{}

func (NopObserver) OnStateChange(PageState)        {}
func (NopObserver) OnIMERect(Rect)                 {}
func (NopObserver) OnFrame([]byte, uint32, uint32) {}
func (NopObserver) OnTitleChange(string)           {}
func (NopObserver) OnFullscreenChange(bool)        {}
func (NopObserver) OnMessage(string)               {}

var _ Observer = NopObserver{}
