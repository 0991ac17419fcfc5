package orders

import "errors"

// ErrInsufficientStock is returned when an order asks for more units than a
// product has in stock.
var ErrInsufficientStock = errors.New("insufficient stock")
