package domain

import "errors"

// Domain errors
var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerExists       = errors.New("player already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidScore       = errors.New("score out of supported range")
	ErrInvalidLimit       = errors.New("limit out of supported range")
	ErrTimeOutOfRange     = errors.New("timestamp outside encodable horizon")
	ErrConflictRetryable  = errors.New("transient store conflict, retry submission")
	ErrIndexSync          = errors.New("rank index out of sync")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInternalError      = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPlayerNotFound)
}

// IsInvalidArgument reports whether an error stems from caller input that was
// rejected before any store was touched.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidScore) || errors.Is(err, ErrInvalidLimit) || errors.Is(err, ErrInvalidRequest)
}

// IsRetryable reports whether the whole submission may be safely retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflictRetryable)
}
