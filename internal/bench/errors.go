package bench

import (
	"errors"
	"fmt"
)

var (
	// ErrCommandNotFound is returned when no definition is registered under
	// the requested name.
	ErrCommandNotFound = errors.New("command not found")

	// ErrCredentialMissing is returned when a command needs a token and the
	// user did not provide one.
	ErrCredentialMissing = errors.New("api token not provided")

	// ErrEmptyTransform is returned when a transform produced no content.
	ErrEmptyTransform = errors.New("transform produced no content")

	// ErrScratchCollision is returned when the scratch path a proposal needs
	// is already held by a pending edit for a different resource.
	ErrScratchCollision = errors.New("scratch path already holds a pending edit")

	// ErrDraftResource is returned when the resource to transform lives in
	// the scratch root and would be overwritten by its own draft.
	ErrDraftResource = errors.New("resource is a proposed draft")

	// ErrRetryDisabled is returned when retrying with a larger model is not
	// permitted by the settings.
	ErrRetryDisabled = errors.New("retry with a larger model is disabled")
)

// EligibilityError reports that a command refused to run on a document.
type EligibilityError struct {
	Command string
	Reason  string
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("%s not eligible: %s", e.Command, e.Reason)
}
