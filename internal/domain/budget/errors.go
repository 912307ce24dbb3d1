package budget

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrInvalidColor        = errors.New("invalid color")
)
