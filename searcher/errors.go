package searcher

import "github.com/pkg/errors"

var (
	// ErrContractViolation reports a malformed tree or a collaborator that broke
	// its contract (missing child, no actions at a live node, no root children).
	ErrContractViolation = errors.New("search contract violation")

	// ErrNonFiniteEvaluation reports an evaluator that returned NaN or ±Inf.
	ErrNonFiniteEvaluation = errors.New("evaluator returned a non-finite score")

	// ErrInvalidParams reports a search configuration that cannot be run.
	ErrInvalidParams = errors.New("invalid search parameters")
)

func contractViolation(format string, args ...any) error {
	return errors.Wrapf(ErrContractViolation, format, args...)
}
