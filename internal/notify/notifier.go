package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/fekt2016/eaz-back-sub005/pkg/logger"
)

// Event is a fire-and-forget settlement notification. Delivery is best
// effort: a failed publish is logged and never aborts the settlement that
// produced it.
type Event struct {
	Type       string     `json:"type"`
	OrderID    uuid.UUID  `json:"order_id"`
	SellerID   *uuid.UUID `json:"seller_id,omitempty"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	AmountCent int64      `json:"amount_cents,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

const (
	EventPaymentRecognized = "settlement.payment_recognized"
	EventSellersCredited   = "settlement.sellers_credited"
	EventSellersReversed   = "settlement.sellers_reversed"
	EventWalletCredited    = "wallet.credited"
	EventWalletDebited     = "wallet.debited"
)

// Channel is the pub/sub channel settlement events fan out on.
const Channel = "settlement.events"

type publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Notifier publishes settlement events over redis pub/sub.
type Notifier struct {
	pub  publisher
	logg *logger.Logger
}

// New builds a notifier. A nil publisher yields a no-op notifier so tests
// and offline tooling need no redis.
func New(pub publisher, logg *logger.Logger) *Notifier {
	return &Notifier{pub: pub, logg: logg}
}

// Publish sends the event, swallowing and logging any failure.
func (n *Notifier) Publish(ctx context.Context, event Event) {
	if n == nil || n.pub == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.logError(ctx, "marshal settlement event", err)
		return
	}
	if err := n.pub.Publish(ctx, Channel, payload); err != nil {
		n.logError(ctx, "publish settlement event", err)
	}
}

func (n *Notifier) logError(ctx context.Context, msg string, err error) {
	if n.logg == nil {
		return
	}
	n.logg.Error(ctx, msg, err)
}
