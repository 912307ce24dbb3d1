package shopping

import "errors"

var (
	ErrListNotFound = errors.New("shopping list not found")
	ErrItemNotFound = errors.New("shopping item not found")
)
