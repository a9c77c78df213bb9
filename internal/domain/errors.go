package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrUnknownTool           = errors.New("unknown tool")
	ErrUnknownField          = errors.New("unknown field")
	ErrQuotaExceeded         = errors.New("quota exceeded")
	ErrInsufficientCredits   = errors.New("insufficient credits")
	ErrGenerationInProgress  = errors.New("generation in progress")
	ErrGenerationFailure     = errors.New("generation failed")
	ErrNoSuggestionsSelected = errors.New("no suggestions selected")
	ErrNoPriorResult         = errors.New("no prior result")
	ErrInvalidAmount         = errors.New("invalid credit amount")
	ErrUnsupportedPlan       = errors.New("unsupported plan")
	ErrDuplicateAccount      = errors.New("duplicate account")
)

// ValidationError reports user-correctable input problems. Step is zero when
// the failure is not tied to a wizard step (refinement preconditions).
type ValidationError struct {
	Step          int
	MissingFields []string
	Reason        error
}

func (e *ValidationError) Error() string {
	switch {
	case e.Reason != nil && len(e.MissingFields) == 0:
		return "validation failed: " + e.Reason.Error()
	case len(e.MissingFields) > 0:
		return fmt.Sprintf("validation failed at step %d: missing %s", e.Step, strings.Join(e.MissingFields, ", "))
	default:
		return fmt.Sprintf("validation failed at step %d", e.Step)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDenial reports whether err is an eligibility denial. Denials are not
// retried automatically; they only clear after a top-up or identity change.
func IsDenial(err error) bool {
	return errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrInsufficientCredits)
}

// IsRetryable reports whether the caller may safely retry the same request.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrGenerationFailure)
}
