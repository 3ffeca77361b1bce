package queries

import (
	"time"

	"github.com/google/uuid"

	"rayproxy/internal/usecase/shared"
)

// CountryAvailabilityView aggregates sellable proxy capacity per country.
// AvailableSlots counts remaining slots, not proxy rows: a unit with three
// free slots sells three times.
type CountryAvailabilityView struct {
	Country        string `json:"country"`
	CountryCode    string `json:"country_code"`
	DailyPrice     int64  `json:"daily_price"`
	AvailableSlots int64  `json:"available_slots"`
}

// EmailAvailabilityView reports purchasable stock per email domain.
type EmailAvailabilityView struct {
	DomainID      uuid.UUID `json:"domain_id"`
	Domain        string    `json:"domain"`
	Kind          string    `json:"kind"`
	PricePerEmail int64     `json:"price_per_email"`
	Available     int       `json:"available"`
}

// PurchaseView is a proxy lease as the buyer sees it. Credentials were frozen
// at purchase time and never change with the inventory row.
type PurchaseView struct {
	ID          uuid.UUID `json:"id"`
	IP          string    `json:"ip"`
	Port        int       `json:"port"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	Country     string    `json:"country"`
	CountryCode string    `json:"country_code"`
	ExpiresAt   time.Time `json:"expires_at"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// PurchaseListView partitions a buyer's leases by expiry at read time.
type PurchaseListView struct {
	Active  []PurchaseView `json:"active"`
	Expired []PurchaseView `json:"expired"`
}

type EmailPurchaseView struct {
	ID          uuid.UUID              `json:"id"`
	Emails      []shared.PurchasedEmail `json:"emails"`
	Quantity    int                    `json:"quantity"`
	Domain      string                 `json:"domain"`
	TotalPrice  int64                  `json:"total_price"`
	PurchasedAt time.Time              `json:"purchased_at"`
}

type OrderView struct {
	ID            uuid.UUID  `json:"id"`
	Country       string     `json:"country"`
	Price         int64      `json:"price"`
	PaymentMethod string     `json:"payment_method"`
	Status        string     `json:"status"`
	ReceiptNumber string     `json:"receipt_number,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

type EmailOrderView struct {
	ID            uuid.UUID  `json:"id"`
	Domain        string     `json:"domain"`
	Quantity      int        `json:"quantity"`
	TotalPrice    int64      `json:"total_price"`
	PaymentMethod string     `json:"payment_method"`
	Status        string     `json:"status"`
	ReceiptNumber string     `json:"receipt_number,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

type TopUpView struct {
	ID            uuid.UUID  `json:"id"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	ReceiptNumber string     `json:"receipt_number,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// AuthorizedUserView represents read-optimized user data with authorization info
type AuthorizedUserView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Balance  int64     `json:"balance"`
	IsActive bool      `json:"is_active"`
}

// ProxyAdminView exposes full inventory state to operators, counters included.
type ProxyAdminView struct {
	ID           uuid.UUID `json:"id"`
	IP           string    `json:"ip"`
	Port         int       `json:"port"`
	Country      string    `json:"country"`
	CountryCode  string    `json:"country_code"`
	MaxUsage     int32     `json:"max_usage"`
	CurrentUsage int32     `json:"current_usage"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsActive     bool      `json:"is_active"`
	Status       string    `json:"status"`
}

// OrderAdminView flattens proxy orders, email orders and top-ups into one
// operator listing. Detail carries the kind-specific descriptor: country for
// proxy orders, domain for email orders, phone number for top-ups.
type OrderAdminView struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Kind              string    `json:"kind"`
	Detail            string    `json:"detail"`
	Amount            int64     `json:"amount"`
	Status            string    `json:"status"`
	CheckoutRequestID string    `json:"checkout_request_id,omitempty"`
	ReceiptNumber     string    `json:"receipt_number,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// EmailAdminView lists email stock with sale state for operators.
type EmailAdminView struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Domain    string    `json:"domain"`
	DomainID  uuid.UUID `json:"domain_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type PricingView struct {
	ID          uuid.UUID `json:"id"`
	Country     string    `json:"country"`
	CountryCode string    `json:"country_code"`
	Daily       int64     `json:"daily"`
	IsEnabled   bool      `json:"is_enabled"`
}

type EmailDomainView struct {
	ID        uuid.UUID `json:"id"`
	Domain    string    `json:"domain"`
	Kind      string    `json:"kind"`
	Server    string    `json:"server,omitempty"`
	IsEnabled bool      `json:"is_enabled"`
}
