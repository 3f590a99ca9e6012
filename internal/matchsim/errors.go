package matchsim

import "errors"

var (
	ErrInvalidConfig    = errors.New("invalid simulator configuration")
	ErrUnhealthy        = errors.New("service is not healthy")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrMismatch         = errors.New("service state differs from local ledger")
)
