// Package resource maps integer handles to Go values for native code.
//
// Native libraries identify callback targets by an opaque context value that
// they store and echo back on every callback. Go pointers cannot be retained
// by native code, so the binding hands out a Handle instead and resolves it
// through a Table when the callback arrives.
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	handle := table.Insert(typeID, ctx)
//
//	// Pin the value for the duration of a callback
//	if v, ok := table.Borrow(handle, typeID); ok {
//	    defer table.ReturnBorrow(handle)
//	    use(v)
//	}
//
//	// Retire and reclaim
//	value, ok := table.Remove(handle)
//
// # Teardown Ordering
//
// Remove marks the entry as retiring, so later Borrow calls fail, and then
// blocks until every outstanding borrow has been returned. A value is
// therefore never reclaimed while a callback is still using it. Remove must
// not be called while the calling goroutine holds a borrow on the same
// handle.
//
// # Observers
//
// Register observers to track resource lifecycle events:
//
//	table.Subscribe(observer)
//
// EventCreated is emitted on Insert and EventDropped once Remove completes.
package resource
