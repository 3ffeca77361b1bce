package shared

import (
	"time"

	"github.com/google/uuid"
)

// Minimal snapshots for command-side reads. Read-side views live in queries.

type ProxySnapshot struct {
	ID           uuid.UUID
	IP           string
	Port         int
	Username     string
	Password     string
	Country      string
	CountryCode  string
	MaxUsage     int32
	CurrentUsage int32
	ExpiresAt    time.Time
	IsActive     bool
	Status       string
}

func (p *ProxySnapshot) Exhausted() bool {
	return p.CurrentUsage >= p.MaxUsage
}

type EmailSnapshot struct {
	ID       uuid.UUID
	Address  string
	Password string
	Domain   string
	DomainID uuid.UUID
	Server   string
	Status   string
}

type EmailDomainSnapshot struct {
	ID        uuid.UUID
	Domain    string
	Kind      string
	Server    string
	IsEnabled bool
}

type PricingSnapshot struct {
	ID          uuid.UUID
	Country     string
	CountryCode string
	Daily       int64
	IsEnabled   bool
}

type EmailPricingSnapshot struct {
	ID            uuid.UUID
	DomainID      uuid.UUID
	PricePerEmail int64
	IsEnabled     bool
}

type OrderSnapshot struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Country           string
	Price             int64
	PhoneNumber       string
	PaymentMethod     string
	CheckoutRequestID string
	ReceiptNumber     string
	Status            string
	TargetProxyID     *uuid.UUID
	CreatedAt         time.Time
	PaidAt            *time.Time
}

type EmailOrderSnapshot struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Domain            string
	DomainID          uuid.UUID
	Quantity          int
	PricePerEmail     int64
	TotalPrice        int64
	PhoneNumber       string
	PaymentMethod     string
	CheckoutRequestID string
	ReceiptNumber     string
	Status            string
	CreatedAt         time.Time
	PaidAt            *time.Time
}

type TopUpSnapshot struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Amount            int64
	PhoneNumber       string
	CheckoutRequestID string
	ReceiptNumber     string
	Status            string
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

type UserSnapshot struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	Balance      int64
	IsActive     bool
}

// PurchasedEmail is the credential tuple frozen into an email purchase record.
type PurchasedEmail struct {
	Address  string `json:"emailAddress"`
	Password string `json:"password"`
	Domain   string `json:"domain"`
	Server   string `json:"server,omitempty"`
}
