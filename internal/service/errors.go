package service

import (
	"errors"

	"api-gateway-go/internal/model"
)

// ErrorKind classifies translator errors for the dispatcher.
type ErrorKind int

const (
	// KindValidation means the inbound request was rejected before any backend call.
	KindValidation ErrorKind = iota + 1
	// KindUserService means the user service could not be reached or timed out.
	KindUserService
	// KindPromoOperation means a promo backend call failed for any reason.
	KindPromoOperation
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUserService:
		return "user_service"
	case KindPromoOperation:
		return "promo_operation"
	default:
		return "unknown"
	}
}

// Error is returned by the Translator. Detail is safe to show to callers.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FailureKind returns the backend failure kind behind e, if any.
func (e *Error) FailureKind() (model.FailureKind, bool) {
	var f *model.Failure
	if errors.As(e.Err, &f) {
		return f.Kind, true
	}
	return 0, false
}
