//go:build !cef

package native

// Open reports ErrUnavailable: this build does not link the engine library.
func Open(Callbacks) (Library, error) {
	return nil, ErrUnavailable
}
