// Package matcher drives AI CLI backends that pick the episode a transcript
// belongs to. Backends only propose; validation against the candidate set
// happens in the engine.
package matcher

import (
	"context"
	"fmt"

	"dialogdetective/internal/catalog"
)

// Reference is a backend's proposed season and episode plus the free-text
// rationale it gave for the pick.
type Reference struct {
	Season   int    `json:"season"`
	Episode  int    `json:"episode"`
	Evidence string `json:"evidence,omitempty"`
}

func (r Reference) String() string {
	return fmt.Sprintf("S%02dE%02d", r.Season, r.Episode)
}

// Backend invokes an external AI tool against a transcript and candidate
// episode list.
type Backend interface {
	// Invoke runs the backend and returns its proposed reference. Failures
	// are reported as *BackendError so callers can decide about retries.
	Invoke(ctx context.Context, transcript string, candidates []catalog.Episode) (Reference, error)
	// ID is the backend name used in cache keys and logs, e.g. "claude".
	ID() string
	// Model is the configured model identifier, or "default" when the CLI
	// picks its own.
	Model() string
}

// FailureKind classifies backend invocation failures.
type FailureKind string

const (
	// FailureTimeout means the CLI exceeded its deadline. Retryable.
	FailureTimeout FailureKind = "timeout"
	// FailureProcess means the CLI exited nonzero or could not run. Retryable.
	FailureProcess FailureKind = "process"
	// FailureMalformed means the CLI ran but its output had no usable
	// reference. Not retryable: the tool answered, just badly.
	FailureMalformed FailureKind = "malformed"
)

// BackendError describes a failed backend invocation.
type BackendError struct {
	Backend string
	Kind    FailureKind
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend %s failure: %v", e.Backend, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a second invocation could plausibly succeed.
func (e *BackendError) Retryable() bool {
	return e.Kind == FailureTimeout || e.Kind == FailureProcess
}
