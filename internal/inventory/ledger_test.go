package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	stock map[string]int
	adjs  []Adjustment
}

func invKey(storeID, productID string) string { return storeID + "|" + productID }

func (f *fakeTx) StockForUpdate(_ context.Context, storeID, productID string) (int, error) {
	v, ok := f.stock[invKey(storeID, productID)]
	if !ok {
		return 0, ErrUnknownInventory
	}
	return v, nil
}

func (f *fakeTx) SetStock(_ context.Context, storeID, productID string, stock int, _ time.Time) error {
	f.stock[invKey(storeID, productID)] = stock
	return nil
}

func (f *fakeTx) AppendAdjustment(_ context.Context, adj Adjustment) error {
	f.adjs = append(f.adjs, adj)
	return nil
}

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newLedger() *Ledger {
	return &Ledger{Now: func() time.Time { return fixedNow }}
}

func TestAdjustAppliesDeltaAndAudits(t *testing.T) {
	tx := &fakeTx{stock: map[string]int{invKey("s1", "p1"): 10}}
	l := newLedger()

	adj, err := l.Adjust(context.Background(), tx, "s1", "p1", -4, AdjustContext{
		OrderID: "o1", ActorID: "admin-1", Reason: ReasonShipCommit,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, tx.stock[invKey("s1", "p1")])
	require.Len(t, tx.adjs, 1)
	assert.NotEmpty(t, adj.ID)
	assert.Equal(t, "s1", adj.StoreID)
	assert.Equal(t, "p1", adj.ProductID)
	assert.Equal(t, "o1", adj.OrderID)
	assert.Equal(t, "admin-1", adj.ActorID)
	assert.Equal(t, -4, adj.Delta)
	assert.Equal(t, ReasonShipCommit, adj.Reason)
	assert.Equal(t, fixedNow, adj.CreatedAt)
}

func TestAdjustInsufficientStock(t *testing.T) {
	tx := &fakeTx{stock: map[string]int{invKey("s1", "p1"): 2}}
	l := newLedger()

	_, err := l.Adjust(context.Background(), tx, "s1", "p1", -5, AdjustContext{Reason: ReasonShipCommit})

	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "p1", ise.ProductID)
	assert.Equal(t, 5, ise.Required)
	assert.Equal(t, 2, ise.Available)

	// tidak ada write sama sekali
	assert.Equal(t, 2, tx.stock[invKey("s1", "p1")])
	assert.Empty(t, tx.adjs)
}

func TestAdjustUnknownInventory(t *testing.T) {
	tx := &fakeTx{stock: map[string]int{}}
	l := newLedger()

	_, err := l.Adjust(context.Background(), tx, "s1", "ghost", 3, AdjustContext{Reason: ReasonManual})
	assert.ErrorIs(t, err, ErrUnknownInventory)
	assert.Empty(t, tx.adjs)
}

// Urutan adjust berhenti di delta pertama yang bikin negatif; stok akhir =
// S0 + jumlah delta yang sempat lolos.
func TestAdjustSequenceHaltsAtFirstNegative(t *testing.T) {
	tx := &fakeTx{stock: map[string]int{invKey("s1", "p1"): 10}}
	l := newLedger()

	deltas := []int{-4, -7, 2}
	var applied int
	for _, d := range deltas {
		if _, err := l.Adjust(context.Background(), tx, "s1", "p1", d, AdjustContext{Reason: ReasonManual}); err != nil {
			break
		}
		applied++
	}

	assert.Equal(t, 1, applied)
	assert.Equal(t, 6, tx.stock[invKey("s1", "p1")])
	assert.Len(t, tx.adjs, 1)
}
