package orders

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrEmptyCart     = errors.New("cart is empty")
)
