package orders

import (
	"context"
	"time"

	"github.com/sigmart/go-order-fulfillment.git/internal/inventory"
)

// Coordinator drives an order through PLACED -> PROCESSING -> SHIPPED with
// CANCELLED reachable from the first two. Satu transisi = satu transaksi:
// status, payment, stock adjustment dan history row commit bareng atau tidak
// sama sekali. Authorization (role/ownership) urusan caller; di sini cuma
// legalitas transisi yang dicek.
type Coordinator struct {
	Store  FulfillmentStore
	Ledger *inventory.Ledger
	Now    func() time.Time
}

// Result is the committed outcome of a transition.
type Result struct {
	Order Order
	From  Status
}

// Cancel restores stock for every item (bonus units included), marks the
// payment FAILED and the order CANCELLED. Allowed from PLACED or PROCESSING.
func (c *Coordinator) Cancel(ctx context.Context, orderID, actorID string) (Result, error) {
	return c.transition(ctx, orderID, actorID, StatusCancelled, "cancelled by actor",
		func(ctx context.Context, tx FulfillmentTx, o Order, items []OrderItem) error {
			for _, it := range items {
				_, err := c.Ledger.Adjust(ctx, tx, o.StoreID, it.ProductID, it.RestoreQty(), inventory.AdjustContext{
					OrderID: o.ID,
					ActorID: actorID,
					Reason:  inventory.ReasonCancelRestore,
				})
				if err != nil {
					return &FulfillmentError{OrderID: o.ID, ProductID: it.ProductID, Err: err}
				}
			}
			return tx.SetPaymentStatus(ctx, o.PaymentID, PaymentFailed, c.now())
		})
}

// MarkProcessing confirms payment and moves PLACED -> PROCESSING.
func (c *Coordinator) MarkProcessing(ctx context.Context, orderID, actorID string) (Result, error) {
	return c.transition(ctx, orderID, actorID, StatusProcessing, "payment confirmed",
		func(ctx context.Context, tx FulfillmentTx, o Order, _ []OrderItem) error {
			return tx.SetPaymentStatus(ctx, o.PaymentID, PaymentCompleted, c.now())
		})
}

// Ship commits the stock decrease at ship time (reserve-at-ship) and moves
// PROCESSING -> SHIPPED. Kalau satu item kurang stok, semua di-rollback dan
// order tetap PROCESSING.
func (c *Coordinator) Ship(ctx context.Context, orderID, actorID string) (Result, error) {
	return c.transition(ctx, orderID, actorID, StatusShipped, "shipped",
		func(ctx context.Context, tx FulfillmentTx, o Order, items []OrderItem) error {
			for _, it := range items {
				_, err := c.Ledger.Adjust(ctx, tx, o.StoreID, it.ProductID, -it.Qty, inventory.AdjustContext{
					OrderID: o.ID,
					ActorID: actorID,
					Reason:  inventory.ReasonShipCommit,
				})
				if err != nil {
					return &FulfillmentError{OrderID: o.ID, ProductID: it.ProductID, Err: err}
				}
			}
			return nil
		})
}

// transition is the shared skeleton: begin, re-read + lock the order, check
// legality, run the per-transition effects, write status + history, commit.
func (c *Coordinator) transition(
	ctx context.Context,
	orderID, actorID string,
	to Status,
	note string,
	effects func(ctx context.Context, tx FulfillmentTx, o Order, items []OrderItem) error,
) (Result, error) {
	tx, err := c.Store.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := tx.OrderForUpdate(ctx, orderID)
	if err != nil {
		return Result{}, err
	}
	from := o.Status
	if !CanTransition(from, to) {
		return Result{}, &InvalidTransitionError{From: from, To: to}
	}

	items, err := tx.ItemsOf(ctx, orderID)
	if err != nil {
		return Result{}, err
	}

	if err := effects(ctx, tx, o, items); err != nil {
		return Result{}, err
	}

	now := c.now()
	if err := tx.SetOrderStatus(ctx, orderID, to, now); err != nil {
		return Result{}, err
	}
	if err := tx.AppendHistory(ctx, StatusHistory{
		OrderID: orderID,
		From:    from,
		To:      to,
		ActorID: actorID,
		Note:    note,
		At:      now,
	}); err != nil {
		return Result{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, err
	}

	o.Status = to
	o.UpdatedAt = now
	return Result{Order: o, From: from}, nil
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}
