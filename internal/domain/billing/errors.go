package billing

import "errors"

var (
	ErrNotFound       = errors.New("bill not found")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrBillFinalized  = errors.New("bill is finalized")
	ErrInvalidInput   = errors.New("invalid input")
	ErrOpenBillExists = errors.New("patient already has an open bill")
)
