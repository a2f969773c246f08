package orders

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrAlreadyExists = errors.New("order already exists")
)

// InvalidTransitionError: transisi status di luar tabel validNext.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition %s -> %s", e.From, e.To)
}

// FulfillmentError names the item whose inventory adjustment sank a transition.
// Unwrap mengekspos error ledger aslinya (InsufficientStockError dsb).
type FulfillmentError struct {
	OrderID   string
	ProductID string
	Err       error
}

func (e *FulfillmentError) Error() string {
	return fmt.Sprintf("fulfillment of order %s failed on product %s: %v", e.OrderID, e.ProductID, e.Err)
}

func (e *FulfillmentError) Unwrap() error { return e.Err }
