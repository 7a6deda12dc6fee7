package services

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be a non-zero delta between -99 and 99")
	ErrEmptyCart       = errors.New("cart is empty, nothing to order")
	ErrOrderRejected   = errors.New("order rejected")
)
