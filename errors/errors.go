package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCreate   Phase = "create"   // native engine/page creation
	PhaseLoad     Phase = "load"     // first navigation of a page
	PhaseRun      Phase = "run"      // engine run loop
	PhaseInput    Phase = "input"    // input injection into a page
	PhaseCallback Phase = "callback" // native to host callback dispatch
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindEngineCreation Kind = "engine_creation"
	KindPageCreation   Kind = "page_creation"
	KindAlreadyRunning Kind = "already_running"
	KindUnavailable    Kind = "unavailable"
	KindClosed         Kind = "closed"
	KindInvalidInput   Kind = "invalid_input"
	KindNotFound       Kind = "not_found"
	KindObserverPanic  Kind = "observer_panic"
	KindRunLoopExit    Kind = "run_loop_exit"
	KindInvalidData    Kind = "invalid_data"
)

// Error is the structured error type used throughout the binding
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err's chain contains an *Error of the given kind,
// regardless of phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// EngineCreation creates an engine creation error
func EngineCreation(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseCreate,
		Kind:   KindEngineCreation,
		Detail: detail,
		Cause:  cause,
	}
}

// PageCreation creates a page creation error for a native factory failure
func PageCreation(url, detail string) *Error {
	return &Error{
		Phase:  PhaseCreate,
		Kind:   KindPageCreation,
		Detail: fmt.Sprintf("%s: %s", detail, url),
		Value:  url,
	}
}

// LoadFailed creates a page creation error for a page whose first terminal
// state was a load error
func LoadFailed(url string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindPageCreation,
		Detail: fmt.Sprintf("load %s", url),
		Value:  url,
		Cause:  cause,
	}
}

// AlreadyRunning creates an error for a second live engine in one process
func AlreadyRunning() *Error {
	return &Error{
		Phase:  PhaseCreate,
		Kind:   KindAlreadyRunning,
		Detail: "an engine is already running in this process",
	}
}

// Unavailable creates an error for a missing native library
func Unavailable(cause error) *Error {
	return &Error{
		Phase:  PhaseCreate,
		Kind:   KindUnavailable,
		Detail: "native engine library unavailable",
		Cause:  cause,
	}
}

// Closed creates an error for use of a torn-down handle
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// ObserverPanic records a recovered panic raised by a host observer method
func ObserverPanic(method string, recovered any) *Error {
	e := &Error{
		Phase:  PhaseCallback,
		Kind:   KindObserverPanic,
		Path:   []string{method},
		Detail: fmt.Sprintf("observer panicked: %v", recovered),
		Value:  recovered,
	}
	if err, ok := recovered.(error); ok {
		e.Cause = err
	}
	return e
}

// RunLoopExit creates an error for a native run loop that returned non-zero
func RunLoopExit(code int) *Error {
	return &Error{
		Phase:  PhaseRun,
		Kind:   KindRunLoopExit,
		Detail: fmt.Sprintf("native run loop exited with code %d", code),
		Value:  code,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
