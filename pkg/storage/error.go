package storage

import "fmt"

// Entity kinds reported by NotFoundError.
const (
	KindProduct = "product"
	KindOrder   = "order"
)

// NotFoundError is returned when an entity doesn't exist in the store.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e NotFoundError) Error() string {
	if e.Key == "" {
		return e.Kind + " not found"
	}

	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// ProductNotFound builds the NotFoundError for a product ID.
func ProductNotFound(id int64) NotFoundError {
	return NotFoundError{Kind: KindProduct, Key: fmt.Sprint(id)}
}

// OrderNotFound builds the NotFoundError for an order ID.
func OrderNotFound(orderID string) NotFoundError {
	return NotFoundError{Kind: KindOrder, Key: orderID}
}
