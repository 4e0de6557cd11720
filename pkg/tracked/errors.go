package tracked

import "errors"

// Misuse sentinels. These surface as panic values because they indicate
// programming errors, not runtime conditions; the panic value is the
// sentinel itself so recovering code can assert identity with errors.Is.
var (
	// ErrMutationActive reports a Read or Begin while a mutation handle
	// is outstanding on the same tracker.
	ErrMutationActive = errors.New("tracked: mutation handle outstanding")

	// ErrMutationReleased reports use of a mutation handle after End.
	ErrMutationReleased = errors.New("tracked: mutation handle already released")
)
