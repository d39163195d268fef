package pharmacy

import (
	"errors"
	"fmt"
)

var (
	ErrMedicineNotFound  = errors.New("medicine not found in pharmacy stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must not be negative")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrNotFound          = errors.New("pharmacy not found")
	ErrInvalidInput      = errors.New("invalid input")
)

// StockError reports a shortfall for one medicine. It matches
// ErrInsufficientStock under errors.Is.
type StockError struct {
	Medicine  string
	Required  int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: required %d, available %d", e.Medicine, e.Required, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
