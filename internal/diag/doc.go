// Package diag defines the diagnostic model shared by the environment
// collector, the rewrite passes and the build pipeline.
//
// Diagnostics are author-facing: they describe problems in the contract
// source that the author can fix. Internal faults of the compiler (a broken
// invariant found during layout or lowering) are not diagnostics; they are
// returned as Go errors and abort the build.
//
// # Data model
//
//   - Severity: tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code: compact numeric identifier (see codes.go) with stable string form.
//   - Message: human oriented text; keep it short and actionable.
//   - Primary span: the source.Span carried by the offending AST node.
//   - Notes: optional secondary spans/messages for additional context.
//
// # Emitting diagnostics
//
// Phases report through a Reporter. ReportError/ReportWarning return a
// Pending diagnostic that can collect notes before Emit. BagReporter stores
// into a Bag, LockedReporter serializes concurrent producers and
// DedupReporter drops repeats.
//
// Any error-severity diagnostic in the bag prevents lowering.
package diag
