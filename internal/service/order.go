package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

const (
	orderIDMin = 100000000
	orderIDMax = 999999999

	UnknownProduct    = "Unknown Product"
	ConfirmationTitle = "Order Confirmation"
)

type PlaceOrderInput struct {
	ProductID   string
	PaymentMode string
	CardNumber  string
	CVV         string
	UPIID       string
	BankName    string
}

type Receipt struct {
	OrderID     string             `json:"orderId"`
	ProductID   string             `json:"productId"`
	ProductName string             `json:"productName"`
	PaymentMode models.PaymentMode `json:"paymentMode"`
}

type OrderPage struct {
	Orders []models.Order `json:"orders"`
	Page   int            `json:"page"`
	Size   int            `json:"size"`
}

type OrderService struct {
	Gate     Authenticator
	Orders   OrderRepository
	Catalog  ProductCatalog
	Accounts AccountDirectory
	Hasher   hash.Hasher
	Notifier Notifier
	Events   EventPublisher

	NewOrderID func() string
}

// GenerateOrderID draws a 9-digit id uniformly from [100000000, 999999999].
// Ids are not checked for uniqueness.
func GenerateOrderID() string {
	return strconv.Itoa(orderIDMin + rand.IntN(orderIDMax-orderIDMin+1))
}

func (s *OrderService) PlaceOrder(ctx context.Context, token string, in PlaceOrderInput) (*Receipt, error) {
	l := logging.FromContext(ctx).With("svc", "order")

	rec, err := s.Gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return nil, err
	}

	if in.ProductID == "" || in.PaymentMode == "" {
		return nil, invalid(MsgMissingFields)
	}

	order := &models.Order{
		ProductID:   in.ProductID,
		PaymentMode: models.PaymentMode(in.PaymentMode),
		CustomerID:  rec.AccountID,
	}
	if err := s.securePayment(ctx, order, in); err != nil {
		return nil, err
	}

	order.OrderID = s.orderID()
	if err := s.Orders.CreateOrder(ctx, order); err != nil {
		return nil, internal(ctx, "order", "order_create", err)
	}
	l.Info("order_create", "status", "ok", "order_id", order.OrderID, "payment_mode", order.PaymentMode)

	productName := s.productName(ctx, order.ProductID)
	s.notifyCustomer(ctx, order, productName)
	publish(ctx, s.Events, "order", mykafka.TopicOrderEvents, order.OrderID, OrderPlaced{
		Type:        "order_placed",
		OrderID:     order.OrderID,
		ProductID:   order.ProductID,
		PaymentMode: string(order.PaymentMode),
		CustomerID:  order.CustomerID.String(),
	})

	return &Receipt{
		OrderID:     order.OrderID,
		ProductID:   order.ProductID,
		ProductName: productName,
		PaymentMode: order.PaymentMode,
	}, nil
}

// securePayment fills the detail block for the order's payment mode. Fields
// belonging to other modes are dropped.
func (s *OrderService) securePayment(ctx context.Context, order *models.Order, in PlaceOrderInput) error {
	switch order.PaymentMode {
	case models.PaymentCard:
		if in.CardNumber == "" || in.CVV == "" {
			return invalid(MsgMissingCard)
		}
		number, err := s.Hasher.Hash(in.CardNumber)
		if err != nil {
			return internal(ctx, "order", "order_hash", err)
		}
		cvv, err := s.Hasher.Hash(in.CVV)
		if err != nil {
			return internal(ctx, "order", "order_hash", err)
		}
		order.CardNumberHash = &number
		order.CardCVVHash = &cvv
	case models.PaymentUPI:
		if in.UPIID == "" {
			return invalid(MsgMissingUPI)
		}
		upi, err := s.Hasher.Hash(in.UPIID)
		if err != nil {
			return internal(ctx, "order", "order_hash", err)
		}
		order.UPIIDHash = &upi
	case models.PaymentNetBanking:
		if in.BankName == "" {
			return invalid(MsgMissingBank)
		}
		bank := in.BankName
		order.BankName = &bank
	case models.PaymentCOD:
	default:
		return invalid(MsgUnsupportedPayment)
	}
	return nil
}

func (s *OrderService) orderID() string {
	if s.NewOrderID != nil {
		return s.NewOrderID()
	}
	return GenerateOrderID()
}

func (s *OrderService) productName(ctx context.Context, id string) string {
	if s.Catalog == nil {
		return UnknownProduct
	}
	p, err := s.Catalog.FindProductByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			logging.FromContext(ctx).With("svc", "order").Warn("product_lookup", "status", "failed", "error", err)
		}
		return UnknownProduct
	}
	return p.Name
}

func (s *OrderService) notifyCustomer(ctx context.Context, order *models.Order, productName string) {
	l := logging.FromContext(ctx).With("svc", "order")
	if s.Notifier == nil || s.Accounts == nil {
		return
	}

	account, err := s.Accounts.FindAccountByID(ctx, order.CustomerID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			l.Warn("order_notify", "status", "skipped", "reason", "account_lookup", "error", err)
		}
		return
	}
	if account.Email == "" {
		return
	}

	if !s.Notifier.Enqueue(ConfirmationMessage(account, productName, order)) {
		l.Warn("order_notify", "status", "dropped", "order_id", order.OrderID)
	}
}

func ConfirmationMessage(account *models.Account, productName string, order *models.Order) notify.Message {
	return notify.Message{
		To:      account.Email,
		Subject: ConfirmationTitle,
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour order for \"%s\" has been placed successfully!\n\nOrder ID: %s\nPayment Mode: %s\n\nThank you for shopping with us!",
			account.Name, productName, order.OrderID, order.PaymentMode,
		),
	}
}

func (s *OrderService) ListMine(ctx context.Context, token string, page, size int) (*OrderPage, error) {
	rec, err := s.Gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return nil, err
	}

	page, size = util.Normalize(page, size)
	from, limit := util.Calculate(page, size)
	orders, err := s.Orders.ListOrdersByCustomer(ctx, rec.AccountID, limit, from)
	if err != nil {
		return nil, internal(ctx, "order", "order_list", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderPage{Orders: orders, Page: page, Size: size}, nil
}

func (s *OrderService) ListAll(ctx context.Context, token string, page, size int) (*OrderPage, error) {
	if _, err := s.Gate.RequireAdmin(ctx, token); err != nil {
		return nil, err
	}

	page, size = util.Normalize(page, size)
	from, limit := util.Calculate(page, size)
	orders, err := s.Orders.ListOrders(ctx, limit, from)
	if err != nil {
		return nil, internal(ctx, "order", "order_list_all", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderPage{Orders: orders, Page: page, Size: size}, nil
}
