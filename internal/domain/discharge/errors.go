package discharge

import "errors"

var (
	ErrDuplicateDischarge = errors.New("patient is not admitted")
	ErrNegativeAmount     = errors.New("amount must not be negative")
	ErrNotFound           = errors.New("discharge not found")
	ErrInvalidInput       = errors.New("invalid input")
)
