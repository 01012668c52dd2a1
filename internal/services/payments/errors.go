package payments

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrConfiguration    = errors.New("payment gateway not configured")
	ErrGateway          = errors.New("payment gateway error")
	ErrSignatureInvalid = errors.New("payment signature verification failed")
)

// GatewayError carries the gateway's own description of a failed call.
type GatewayError struct {
	StatusCode  int
	Code        string
	Description string
	Err         error
}

func (e *GatewayError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", ErrGateway, e.Description)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrGateway, e.Err)
	}
	return ErrGateway.Error()
}

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

func (e *GatewayError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidRequest}, args...)...)
}
