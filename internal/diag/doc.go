// Package diag defines the diagnostic model shared by the tag checker,
// the driver and the output formatters.
//
// Diagnostic is the central record: a Severity, a stable Code, a message,
// a primary source.Span and optional Notes and Fixes. Producers emit
// through the Reporter interface so they stay decoupled from storage and
// rendering; diag.BagReporter aggregates into a Bag, which supports
// sorting, deduplication and filtering.
//
// Severity is a closed set that includes SevIgnore. An ignored diagnostic
// is still computed and recorded like any other; whether "ignore" means
// "drop" or "record silently" is decided by the consumer (the formatter or
// the exit-code logic), never by the producer. Severity travels as an
// explicit argument of every Report call; there is no ambient severity
// state anywhere in the package, so one producer instance may be shared
// across goroutines.
//
// Rendering lives in internal/diagfmt, orchestration in internal/driver.
package diag
