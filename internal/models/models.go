package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentMode string

const (
	PaymentCard       PaymentMode = "card"
	PaymentUPI        PaymentMode = "upi"
	PaymentNetBanking PaymentMode = "netbanking"
	PaymentCOD        PaymentMode = "cod"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCard, PaymentUPI, PaymentNetBanking, PaymentCOD:
		return true
	}
	return false
}

type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Name         string    `gorm:"not null"              json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID          string  `gorm:"primaryKey"  json:"id"`
	Name        string  `gorm:"not null"    json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Order keeps one nullable column per secure payment field; only the ones
// belonging to PaymentMode are set.
type Order struct {
	ID             uint        `gorm:"primaryKey;autoIncrement"          json:"-"`
	OrderID        string      `gorm:"index;size:9;not null"             json:"orderId"`
	ProductID      string      `gorm:"not null"                          json:"productId"`
	PaymentMode    PaymentMode `gorm:"not null"                          json:"paymentMode"`
	CustomerID     uuid.UUID   `gorm:"type:uuid;index;not null"          json:"customerId"`
	CardNumberHash *string     `gorm:"column:card_number_hash"           json:"-"`
	CardCVVHash    *string     `gorm:"column:card_cvv_hash"              json:"-"`
	UPIIDHash      *string     `gorm:"column:upi_id_hash"                json:"-"`
	BankName       *string     `gorm:"column:bank_name"                  json:"bankName,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Session is the database row behind a session token. Only the SHA-256 of the
// token is stored.
type Session struct {
	TokenHash string    `gorm:"primaryKey;size:64"`
	AccountID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string
	IsAdmin   bool
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index;not null"`
}

type Contact struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name      string    `gorm:"not null"                  json:"name"`
	Email     string    `gorm:"not null"                  json:"email"`
	Message   string    `gorm:"not null"                  json:"message"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"  json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
