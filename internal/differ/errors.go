package differ

import "errors"

// Sentinel errors for the differ's internal bookkeeping. Per the error
// handling design, none of these ever propagate out of the core: each is
// handled locally (the offending sub-case is skipped, at most logged at
// debug level) and the diff continues to produce a best-effort plan.
var (
	// ErrInvalidSchemaReference marks a requested column/table/index
	// that the model refuses to resolve.
	ErrInvalidSchemaReference = errors.New("differ: invalid schema reference")

	// ErrAmbiguousDiff marks two field definitions that are textually
	// different but equal once the tolerant normalization is applied;
	// treated as equal, never surfaced.
	ErrAmbiguousDiff = errors.New("differ: ambiguous diff under tolerant comparison")
)
