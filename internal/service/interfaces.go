package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/session"
)

type AccountRepository interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	AccountDirectory
}

// AccountDirectory is the read side used to address notifications.
type AccountDirectory interface {
	FindAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]models.Order, error)
}

type ProductCatalog interface {
	FindProductByID(ctx context.Context, id string) (*models.Product, error)
}

type ContactRepository interface {
	CreateContact(ctx context.Context, c *models.Contact) error
	ListContactsByUser(ctx context.Context, userID uuid.UUID) ([]models.Contact, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Notifier interface {
	Enqueue(msg notify.Message) bool
}

type Authenticator interface {
	RequireAuthenticated(ctx context.Context, token string) (*session.Record, error)
	RequireAdmin(ctx context.Context, token string) (*session.Record, error)
}
