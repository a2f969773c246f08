package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/sigmart/go-order-fulfillment.git/internal/kafka"
	"github.com/sigmart/go-order-fulfillment.git/internal/orders"
	"github.com/sigmart/go-order-fulfillment.git/internal/redisx"
)

// Service consumes order.status.changed and hands the notification off to the
// outside world. Email/SMS delivery bukan tanggung jawab core ini; di sini
// cuma dedup, refresh cache status, dan log hand-off.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleStatusChanged dipasang sebagai handler consumer.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil // ignore
	}

	// dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, "notify", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)
	b, _ := json.Marshal(map[string]any{"status": p.To})
	_ = s.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()

	log.Printf("notify: order=%s %s -> %s actor=%s", p.OrderID, p.From, p.To, p.ActorID)
	return nil
}
