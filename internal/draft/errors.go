package draft

import "errors"

var (
	// ErrNotFound means a referenced draft id does not exist.
	ErrNotFound = errors.New("draft not found")
	// ErrInvalidName means a supplied name is empty after trimming.
	ErrInvalidName = errors.New("invalid draft name")
	// ErrLastDraft means a delete would remove the sole remaining draft.
	ErrLastDraft = errors.New("cannot delete the last draft")
)

// SaveFailure reports a failed background persistence write. It is delivered
// through the service's notifier, never as an action result: the in-memory
// edit has already succeeded and must not be lost.
type SaveFailure struct {
	DraftID string
	Op      string
	Err     error
}
