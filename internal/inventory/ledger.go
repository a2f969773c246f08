package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownInventory: tidak ada row inventory utk (store, product).
// Sengaja tidak auto-create row kosong supaya stok hantu tidak muncul diam-diam.
var ErrUnknownInventory = errors.New("unknown inventory record")

// InsufficientStockError berarti adjustment akan membuat stok negatif.
type InsufficientStockError struct {
	StoreID   string
	ProductID string
	Required  int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s at store %s: required=%d available=%d",
		e.ProductID, e.StoreID, e.Required, e.Available)
}

type Reason string

const (
	ReasonCancelRestore Reason = "CANCEL_RESTORE"
	ReasonShipCommit    Reason = "SHIP_COMMIT"
	ReasonManual        Reason = "MANUAL"
)

// Adjustment is the append-only audit row written once per Adjust call.
type Adjustment struct {
	ID        string
	StoreID   string
	ProductID string
	OrderID   string // optional
	ActorID   string
	Delta     int
	Reason    Reason
	CreatedAt time.Time
}

// Tx is the slice of the fulfillment transaction the ledger needs. Semua operasi
// berjalan di scope transaksi milik caller: commit/rollback bukan urusan ledger.
type Tx interface {
	// StockForUpdate reads current stock with a row lock; ErrUnknownInventory
	// when the (storeID, productID) record does not exist.
	StockForUpdate(ctx context.Context, storeID, productID string) (int, error)
	SetStock(ctx context.Context, storeID, productID string, stock int, at time.Time) error
	AppendAdjustment(ctx context.Context, adj Adjustment) error
}

// AdjustContext carries the audit attribution of an adjustment.
type AdjustContext struct {
	OrderID string
	ActorID string
	Reason  Reason
}

// Ledger applies signed stock deltas. Stateless; clock injectable for tests.
type Ledger struct {
	Now func() time.Time
}

// Adjust reads stock for (storeID, productID), applies delta and appends one
// audit row, all through tx. Fails without writing anything when the record is
// missing or the delta would drive stock negative. No retries here: the caller
// retries the whole coordinating transaction if it wants to.
func (l *Ledger) Adjust(ctx context.Context, tx Tx, storeID, productID string, delta int, ac AdjustContext) (Adjustment, error) {
	stock, err := tx.StockForUpdate(ctx, storeID, productID)
	if err != nil {
		return Adjustment{}, err
	}

	newStock := stock + delta
	if newStock < 0 {
		return Adjustment{}, &InsufficientStockError{
			StoreID:   storeID,
			ProductID: productID,
			Required:  -delta,
			Available: stock,
		}
	}

	now := l.now()
	if err := tx.SetStock(ctx, storeID, productID, newStock, now); err != nil {
		return Adjustment{}, err
	}

	adj := Adjustment{
		ID:        uuid.NewString(),
		StoreID:   storeID,
		ProductID: productID,
		OrderID:   ac.OrderID,
		ActorID:   ac.ActorID,
		Delta:     delta,
		Reason:    ac.Reason,
		CreatedAt: now,
	}
	if err := tx.AppendAdjustment(ctx, adj); err != nil {
		return Adjustment{}, err
	}
	return adj, nil
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now().UTC()
}
