package orders

import (
	"context"
	"time"

	"github.com/sigmart/go-order-fulfillment.git/internal/inventory"
)

// memStore adalah FulfillmentStore in-memory dengan semantik transaksi
// copy-on-write: Begin menyalin state, Commit menukar state store, Rollback
// buang salinan. Cukup untuk menguji atomisitas transisi tanpa DB.
type memState struct {
	orders   map[string]Order
	items    map[string][]OrderItem
	payments map[string]Payment
	stock    map[string]int
	adjs     []inventory.Adjustment
	history  []StatusHistory
}

func newMemState() memState {
	return memState{
		orders:   map[string]Order{},
		items:    map[string][]OrderItem{},
		payments: map[string]Payment{},
		stock:    map[string]int{},
	}
}

func (s memState) clone() memState {
	c := newMemState()
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]OrderItem(nil), v...)
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	c.adjs = append([]inventory.Adjustment(nil), s.adjs...)
	c.history = append([]StatusHistory(nil), s.history...)
	return c
}

type memStore struct{ state memState }

func newMemStore() *memStore { return &memStore{state: newMemState()} }

func (m *memStore) Begin(_ context.Context) (FulfillmentTx, error) {
	return &memTx{store: m, state: m.state.clone()}, nil
}

type memTx struct {
	store *memStore
	state memState
}

func stockKey(storeID, productID string) string { return storeID + "|" + productID }

func (t *memTx) OrderForUpdate(_ context.Context, orderID string) (Order, error) {
	o, ok := t.state.orders[orderID]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (t *memTx) ItemsOf(_ context.Context, orderID string) ([]OrderItem, error) {
	return append([]OrderItem(nil), t.state.items[orderID]...), nil
}

func (t *memTx) SetOrderStatus(_ context.Context, orderID string, s Status, at time.Time) error {
	o := t.state.orders[orderID]
	o.Status = s
	o.UpdatedAt = at
	t.state.orders[orderID] = o
	return nil
}

func (t *memTx) SetPaymentStatus(_ context.Context, paymentID string, s PaymentStatus, at time.Time) error {
	p := t.state.payments[paymentID]
	p.Status = s
	p.UpdatedAt = at
	t.state.payments[paymentID] = p
	return nil
}

func (t *memTx) AppendHistory(_ context.Context, h StatusHistory) error {
	t.state.history = append(t.state.history, h)
	return nil
}

func (t *memTx) StockForUpdate(_ context.Context, storeID, productID string) (int, error) {
	v, ok := t.state.stock[stockKey(storeID, productID)]
	if !ok {
		return 0, inventory.ErrUnknownInventory
	}
	return v, nil
}

func (t *memTx) SetStock(_ context.Context, storeID, productID string, stock int, _ time.Time) error {
	t.state.stock[stockKey(storeID, productID)] = stock
	return nil
}

func (t *memTx) AppendAdjustment(_ context.Context, adj inventory.Adjustment) error {
	t.state.adjs = append(t.state.adjs, adj)
	return nil
}

func (t *memTx) Commit(_ context.Context) error {
	t.store.state = t.state
	return nil
}

func (t *memTx) Rollback(_ context.Context) error { return nil }
