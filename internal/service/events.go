package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
)

const publishTimeout = 5 * time.Second

type UserRegistered struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type OrderPlaced struct {
	Type        string `json:"type"`
	OrderID     string `json:"orderId"`
	ProductID   string `json:"productId"`
	PaymentMode string `json:"paymentMode"`
	CustomerID  string `json:"customerId"`
}

// publish is best effort. A nil publisher disables events.
func publish(ctx context.Context, p EventPublisher, svc, topic, key string, event any) {
	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).With("svc", svc).Warn("event_publish_failed", "topic", topic, "error", err)
	}
}
