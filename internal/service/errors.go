package service

import (
	"errors"
	"fmt"

	"medibill/internal/payment"
)

// Error taxonomy for billing operations. The first four are caller-fault and
// map to 4xx responses; GatewayError and ErrConflict are provider/server
// fault and map to 5xx.
var (
	ErrBillNotFound        = errors.New("bill not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyPaid         = errors.New("bill is already paid")
	ErrInvalidAmount       = errors.New("bill amount must be greater than zero")
	ErrSignatureInvalid    = payment.ErrSignatureInvalid
	ErrConflict            = errors.New("concurrent modification of bill")
)

// GatewayError wraps a payment provider failure with the operation that hit it.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
