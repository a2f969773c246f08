package orders

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type Order struct {
	ID         string
	ExternalID string
	CustomerID string
	StoreID    string
	PaymentID  string
	Status     Status // lihat status.go
	TotalCents int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type OrderItem struct {
	OrderID    string
	ProductID  string
	Qty        int
	PriceCents int
	// Promo "buy X get Y": BonusBuy/BonusGet nol berarti tanpa promo.
	BonusBuy int
	BonusGet int
}

// RestoreQty is the quantity returned to stock when the order is cancelled:
// the ordered qty plus the free units the promotion granted.
func (it OrderItem) RestoreQty() int {
	if it.BonusBuy <= 0 || it.BonusGet <= 0 {
		return it.Qty
	}
	return it.Qty + (it.Qty/it.BonusBuy)*it.BonusGet
}

type Payment struct {
	ID        string
	OrderID   string
	Status    PaymentStatus
	UpdatedAt time.Time
}

// StatusHistory is appended exactly once per committed transition.
type StatusHistory struct {
	OrderID string
	From    Status
	To      Status
	ActorID string
	Note    string
	At      time.Time
}
