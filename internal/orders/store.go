package orders

import (
	"context"
	"time"

	"github.com/sigmart/go-order-fulfillment.git/internal/inventory"
)

// FulfillmentStore hands out scoped transactions. Setiap transisi status jalan
// penuh di satu FulfillmentTx: commit hanya saat semua write sukses.
type FulfillmentStore interface {
	Begin(ctx context.Context) (FulfillmentTx, error)
}

// FulfillmentTx spans the order writes and the inventory writes of one
// transition. Embeds inventory.Tx so the ledger shares the same transaction.
type FulfillmentTx interface {
	inventory.Tx

	// OrderForUpdate re-reads the order inside the transaction with a row lock,
	// so concurrent transitions on one order serialize on the status check.
	OrderForUpdate(ctx context.Context, orderID string) (Order, error)
	ItemsOf(ctx context.Context, orderID string) ([]OrderItem, error)
	SetOrderStatus(ctx context.Context, orderID string, s Status, at time.Time) error
	SetPaymentStatus(ctx context.Context, paymentID string, s PaymentStatus, at time.Time) error
	AppendHistory(ctx context.Context, h StatusHistory) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
