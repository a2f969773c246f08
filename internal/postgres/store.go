package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigmart/go-order-fulfillment.git/internal/inventory"
	"github.com/sigmart/go-order-fulfillment.git/internal/orders"
)

// Store is the pgx-backed orders.FulfillmentStore. Row lock (FOR UPDATE) di
// order dan di row inventory bikin transisi konkuren pada order/stok yang sama
// antre, bukan saling timpa.
type Store struct{ Pool *pgxpool.Pool }

func (s *Store) Begin(ctx context.Context) (orders.FulfillmentTx, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &fulfillmentTx{tx: tx}, nil
}

type fulfillmentTx struct{ tx pgx.Tx }

func (t *fulfillmentTx) OrderForUpdate(ctx context.Context, orderID string) (orders.Order, error) {
	var o orders.Order
	err := t.tx.QueryRow(ctx, `
		SELECT id, external_id, customer_id, store_id, payment_id, status, total_cents, created_at, updated_at
		FROM orders WHERE id=$1 FOR UPDATE`, orderID).
		Scan(&o.ID, &o.ExternalID, &o.CustomerID, &o.StoreID, &o.PaymentID, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	return o, err
}

func (t *fulfillmentTx) ItemsOf(ctx context.Context, orderID string) ([]orders.OrderItem, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT order_id, product_id, qty, price_cents, bonus_buy, bonus_get
		FROM order_items WHERE order_id=$1 ORDER BY product_id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.OrderItem
	for rows.Next() {
		var it orders.OrderItem
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.Qty, &it.PriceCents, &it.BonusBuy, &it.BonusGet); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (t *fulfillmentTx) SetOrderStatus(ctx context.Context, orderID string, s orders.Status, at time.Time) error {
	_, err := t.tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`, orderID, s, at)
	return err
}

func (t *fulfillmentTx) SetPaymentStatus(ctx context.Context, paymentID string, s orders.PaymentStatus, at time.Time) error {
	_, err := t.tx.Exec(ctx, `UPDATE payments SET status=$2, updated_at=$3 WHERE id=$1`, paymentID, s, at)
	return err
}

func (t *fulfillmentTx) AppendHistory(ctx context.Context, h orders.StatusHistory) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO order_status_history(order_id, from_status, to_status, actor_id, note, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		h.OrderID, h.From, h.To, h.ActorID, h.Note, h.At)
	return err
}

func (t *fulfillmentTx) StockForUpdate(ctx context.Context, storeID, productID string) (int, error) {
	var stock int
	err := t.tx.QueryRow(ctx, `
		SELECT stock FROM inventory WHERE store_id=$1 AND product_id=$2 FOR UPDATE`,
		storeID, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("store=%s product=%s: %w", storeID, productID, inventory.ErrUnknownInventory)
	}
	return stock, err
}

func (t *fulfillmentTx) SetStock(ctx context.Context, storeID, productID string, stock int, at time.Time) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE inventory SET stock=$3, updated_at=$4 WHERE store_id=$1 AND product_id=$2`,
		storeID, productID, stock, at)
	return err
}

func (t *fulfillmentTx) AppendAdjustment(ctx context.Context, adj inventory.Adjustment) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO inventory_adjustments(id, store_id, product_id, order_id, actor_id, delta, reason, created_at)
		VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7,$8)`,
		adj.ID, adj.StoreID, adj.ProductID, adj.OrderID, adj.ActorID, adj.Delta, adj.Reason, adj.CreatedAt)
	return err
}

func (t *fulfillmentTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *fulfillmentTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// ---- order intake (di luar coordinator) ----

type ItemInput struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	BonusBuy  int    `json:"bonus_buy,omitempty"`
	BonusGet  int    `json:"bonus_get,omitempty"`
}

// CreateOrder: idempotent via external_id.
// - jika external_id sudah ada -> return existing order_id + total (existed=true).
// Harga diambil dari table products, bukan dari client.
func (s *Store) CreateOrder(ctx context.Context, externalID, customerID, storeID string, items []ItemInput) (orderID string, total int, existed bool, err error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, total_cents FROM orders WHERE external_id=$1`, externalID)
	if err = row.Scan(&orderID, &total); err == nil {
		return orderID, total, true, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return "", 0, false, err
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", 0, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	rows, err := tx.Query(ctx, `SELECT id, price_cents FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return "", 0, false, err
	}
	prices := map[string]int{}
	for rows.Next() {
		var id string
		var price int
		if err := rows.Scan(&id, &price); err != nil {
			return "", 0, false, err
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return "", 0, false, err
	}

	for _, it := range items {
		price, ok := prices[it.ProductID]
		if !ok {
			return "", 0, false, fmt.Errorf("product not found: %s", it.ProductID)
		}
		if it.Qty <= 0 {
			return "", 0, false, fmt.Errorf("invalid qty for product %s", it.ProductID)
		}
		total += price * it.Qty
	}

	orderID = uuid.NewString()
	paymentID := uuid.NewString()
	if _, err = tx.Exec(ctx, `
		INSERT INTO payments(id, order_id, status) VALUES ($1, $2, 'PENDING')`,
		paymentID, orderID); err != nil {
		return "", 0, false, err
	}
	if _, err = tx.Exec(ctx, `
		INSERT INTO orders(id, external_id, customer_id, store_id, payment_id, status, total_cents)
		VALUES ($1, $2, $3, $4, $5, 'PLACED', $6)`,
		orderID, externalID, customerID, storeID, paymentID, total); err != nil {
		return "", 0, false, err
	}

	for _, it := range items {
		if _, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, price_cents, bonus_buy, bonus_get)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			orderID, it.ProductID, it.Qty, prices[it.ProductID], it.BonusBuy, it.BonusGet); err != nil {
			return "", 0, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", 0, false, err
	}
	return orderID, total, false, nil
}

func (s *Store) GetOrderStatus(ctx context.Context, orderID string) (orders.Status, error) {
	var st string
	err := s.Pool.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&st)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", orders.ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	return orders.Status(st), nil
}
