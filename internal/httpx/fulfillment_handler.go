package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sigmart/go-order-fulfillment.git/internal/auth"
	"github.com/sigmart/go-order-fulfillment.git/internal/geo"
	"github.com/sigmart/go-order-fulfillment.git/internal/inventory"
	kafkax "github.com/sigmart/go-order-fulfillment.git/internal/kafka"
	"github.com/sigmart/go-order-fulfillment.git/internal/orders"
	"github.com/sigmart/go-order-fulfillment.git/internal/postgres"
	"github.com/sigmart/go-order-fulfillment.git/internal/redisx"

	kafkago "github.com/segmentio/kafka-go"
)

type FulfillmentHandler struct {
	Store     *postgres.Store
	Coord     *orders.Coordinator
	Directory *geo.Directory
	Producer  *kafkax.Producer
	Redis     *redis.Client
	Service   string
}

type CreateOrderReq struct {
	ExternalID  string               `json:"external_id"`
	CustomerID  string               `json:"customer_id"`
	DeliveryLat string               `json:"delivery_lat"`
	DeliveryLng string               `json:"delivery_lng"`
	Items       []postgres.ItemInput `json:"items"`
}

type CreateOrderResp struct {
	OrderID    string  `json:"order_id"`
	StoreID    string  `json:"store_id"`
	DistanceKm float64 `json:"distance_km"`
	TotalCents int     `json:"total_cents"`
	Idempotent bool    `json:"idempotent"`
}

func (h *FulfillmentHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Post("/orders/{id}/process", h.processOrder)
	r.Post("/orders/{id}/ship", h.shipOrder)
	r.Get("/stores/nearest", h.nearestStore)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForErr maps the typed core errors to HTTP codes. Semua error punya
// jenis yang bisa dibedakan, jadi jangan jatuh ke 500 kecuali benar2 internal.
func statusForErr(err error) int {
	var invalidTransition *orders.InvalidTransitionError
	var insufficient *inventory.InsufficientStockError
	switch {
	case errors.Is(err, orders.ErrOrderNotFound), errors.Is(err, geo.ErrNoCandidates):
		return http.StatusNotFound
	case errors.As(err, &insufficient):
		return http.StatusConflict
	case errors.As(err, &invalidTransition),
		errors.Is(err, inventory.ErrUnknownInventory),
		errors.Is(err, geo.ErrInvalidCoordinate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseCoord(latStr, lngStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, geo.ErrInvalidCoordinate
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return 0, 0, geo.ErrInvalidCoordinate
	}
	return lat, lng, nil
}

func (h *FulfillmentHandler) nearestStore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lat, lng, err := parseCoord(r.URL.Query().Get("lat"), r.URL.Query().Get("lng"))
	if err != nil {
		writeJSON(w, statusForErr(err), map[string]string{"error": err.Error()})
		return
	}
	candidates, err := h.Directory.ListCandidates(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	m, err := geo.Locate(lat, lng, candidates)
	if err != nil {
		writeJSON(w, statusForErr(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *FulfillmentHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ExternalID == "" || req.CustomerID == "" || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lat, lng, err := parseCoord(req.DeliveryLat, req.DeliveryLng)
	if err != nil {
		writeJSON(w, statusForErr(err), map[string]string{"error": err.Error()})
		return
	}

	// Resolve fulfillment store dulu, order dibuat terhadap store itu.
	candidates, err := h.Directory.ListCandidates(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	match, err := geo.Locate(lat, lng, candidates)
	if err != nil {
		writeJSON(w, statusForErr(err), map[string]string{"error": err.Error()})
		return
	}

	orderID, total, existed, err := h.Store.CreateOrder(ctx, req.ExternalID, req.CustomerID, match.StoreID, req.Items)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Shortcut idempotency + cache status (DB tetap jadi kebenaran).
	idemKey := fmt.Sprintf(redisx.KeyIdemOrderCreate, req.ExternalID)
	_ = h.Redis.Set(ctx, idemKey, orderID, redisx.TTLIdempotency).Err()
	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"PLACED"}`, redisx.TTLStatusCache).Err()

	if !existed {
		items := make([]orders.ItemQty, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, orders.ItemQty{ProductID: it.ProductID, Qty: it.Qty})
		}
		h.publish(orders.TopicOrderPlaced, orders.EventOrderPlaced, orderID, r.Header.Get("X-Request-Id"),
			orders.OrderPlacedPayload{
				OrderID:    orderID,
				ExternalID: req.ExternalID,
				CustomerID: req.CustomerID,
				StoreID:    match.StoreID,
				Items:      items,
				TotalCents: total,
			})
	}

	writeJSON(w, http.StatusAccepted, CreateOrderResp{
		OrderID:    orderID,
		StoreID:    match.StoreID,
		DistanceKm: match.DistanceKm,
		TotalCents: total,
		Idempotent: existed,
	})
}

func (h *FulfillmentHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	// 2) fallback DB
	status, err := h.Store.GetOrderStatus(ctx, orderID)
	if err != nil {
		writeJSON(w, statusForErr(err), map[string]string{"error": err.Error()})
		return
	}
	b, _ := json.Marshal(map[string]any{"status": status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *FulfillmentHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, orders.StatusCancelled, h.Coord.Cancel)
}

func (h *FulfillmentHandler) processOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, orders.StatusProcessing, h.Coord.MarkProcessing)
}

func (h *FulfillmentHandler) shipOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, orders.StatusShipped, h.Coord.Ship)
}

func (h *FulfillmentHandler) transition(
	w http.ResponseWriter, r *http.Request,
	to orders.Status,
	op func(ctx context.Context, orderID, actorID string) (orders.Result, error),
) {
	orderID := chi.URLParam(r, "id")
	actorID := r.Header.Get("X-Actor-Id")
	if orderID == "" || actorID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing order id or actor"})
		return
	}

	role, err := auth.ParseRole(r.Header.Get("X-Actor-Role"))
	if err != nil || !auth.CanDrive(role, to) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "role not allowed for this transition"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := op(ctx, orderID, actorID)
	if err != nil {
		writeJSON(w, statusForErr(err), map[string]string{"error": err.Error()})
		return
	}

	// Cache ikut status baru; notifikasi downstream lewat event, bukan dari coordinator.
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	b, _ := json.Marshal(map[string]any{"status": res.Order.Status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()

	h.publish(orders.TopicOrderStatusChanged, orders.EventOrderStatusChanged, orderID, r.Header.Get("X-Request-Id"),
		orders.OrderStatusChangedPayload{OrderID: orderID, From: res.From, To: res.Order.Status, ActorID: actorID})

	writeJSON(w, http.StatusOK, map[string]any{"order_id": res.Order.ID, "status": res.Order.Status})
}

func (h *FulfillmentHandler) publish(topic, eventType, orderID, traceID string, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	h.Producer.Publish(topic, orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
