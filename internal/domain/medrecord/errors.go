package medrecord

import "errors"

var (
	ErrMalformedPrescription = errors.New("malformed prescription")
	ErrEmptyPrescription     = errors.New("no medicines or quantities provided")
	ErrAlreadyDispensed      = errors.New("prescription already dispensed")
	ErrNotFound              = errors.New("medical record not found")
	ErrInvalidInput          = errors.New("invalid input")
)
