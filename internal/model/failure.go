package model

import "fmt"

// FailureKind classifies why a backend call did not produce a result.
type FailureKind int

const (
	// FailureUnreachable covers connection refusal, DNS failure, resets and lost channels.
	FailureUnreachable FailureKind = iota + 1
	// FailureTimeout means the per-call deadline elapsed.
	FailureTimeout
	// FailureBackendRejected means the backend answered with a business error, such as not found.
	FailureBackendRejected
	// FailureMalformedResponse means the backend answered with something that could not be read.
	FailureMalformedResponse
)

func (k FailureKind) String() string {
	switch k {
	case FailureUnreachable:
		return "unreachable"
	case FailureTimeout:
		return "timeout"
	case FailureBackendRejected:
		return "backend_rejected"
	case FailureMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Failure is the normalized error returned by every backend adapter.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

// NewFailure builds a Failure whose message is taken from err.
func NewFailure(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Message: err.Error(), Err: err}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
