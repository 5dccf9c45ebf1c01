package pitch

import "errors"

// Error kinds for the permutation and role pipelines. Wrap with
// fmt.Errorf("...: %w", kind) and match with errors.Is.
var (
	// ErrConfiguration marks unknown shirt numbers or slot names,
	// malformed slot maps, and unsupported formations combined with a
	// substitution-aware request.
	ErrConfiguration = errors.New("configuration error")

	// ErrDataIntegrity marks frame length mismatches against the declared
	// player count and substitution queues exhausted with no remaining
	// valid candidate. Units failing with it must be aborted rather than
	// emit partially wrong permuted output.
	ErrDataIntegrity = errors.New("data integrity error")

	// ErrNumerical marks factorizations that failed to produce a
	// finite-valued result. Reaching the iteration cap is not this error.
	ErrNumerical = errors.New("numerical error")
)
