// Package webview is a Go binding over an embedded Chromium engine.
//
// The engine itself lives in a native library reached through the native
// package. This package owns the handles that library hands out, turns its
// callbacks into calls on a host Observer, and turns asynchronous
// initialization into blocking constructors.
//
// # Architecture Overview
//
//	webview/             Engine, Page, Observer and input types
//	├── native/          Raw C ABI: handles, enums, Library and Callbacks
//	│   └── nativetest/  In-memory Library for tests
//	├── resource/        Handle table backing native callback contexts
//	├── internal/oneshot Single-value signaling channel
//	├── errors/          Structured error types
//	├── metrics/         Prometheus instrumentation
//	├── config/          YAML and environment configuration
//	└── cmd/webview/     Host application with an interactive terminal UI
//
// # Quick Start
//
// A binary that embeds the engine is re-executed by it as a helper process,
// so main must dispatch first:
//
//	if webview.IsSubprocess(os.Args) {
//		webview.ExecuteSubprocess(native.Open, os.Args)
//	}
//
//	eng, err := webview.New(webview.Options{CachePath: "/tmp/cache"})
//	if err != nil {
//		return err
//	}
//	defer eng.Close()
//
//	page, err := eng.CreatePage("https://example.com", webview.DefaultPageOptions(), obs)
//	if err != nil {
//		return err // load errors are reported here
//	}
//	page.SendMouse(webview.MouseClick{Button: webview.MouseLeft, State: webview.Down,
//		Position: &webview.Position{X: 100, Y: 200}})
//
//	eng.Wait()
//
// # Lifetimes
//
// New blocks until the engine reports that its context is initialized.
// CreatePage blocks until the page's first navigation either loads or fails;
// a page that never reaches either state blocks its creator until the engine
// is closed.
//
// Each native callback carries a context value that indexes a handle table.
// A callback borrows its entry for the duration of the dispatch, and
// Page.Close removes the entry only after every borrow is returned, so the
// observer is never called after Close returns. As a consequence Close must
// not be called from inside an Observer method.
//
// Input methods never block on the engine. They fail with a closed error once
// the page is closed.
package webview
