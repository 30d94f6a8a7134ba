// Package errors provides structured error types for the webview binding.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries a detail message, an optional field path, the offending
// value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInput, errors.KindInvalidInput).
//		Path("resize", "width").
//		Value(w).
//		Detail("width %d exceeds int32", w).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.EngineCreation("native factory returned null", nil)
//	err := errors.LoadFailed(url, cause)
//
// Creation failures carry KindEngineCreation or KindPageCreation. A page whose
// first navigation fails is reported as KindPageCreation in PhaseLoad, so
// callers that only care about "could not get a page" can test the kind:
//
//	if errors.IsKind(err, errors.KindPageCreation) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
