package shared

import (
	"context"
	"time"

	"rayproxy/internal/domain/email"
	"rayproxy/internal/domain/order"
	"rayproxy/internal/domain/proxy"
	"rayproxy/internal/domain/user"

	"github.com/google/uuid"
)

// UnitOfWork runs command-side work inside a single store transaction.
// Allocation correctness rests on the store's conditional updates, not on
// in-process locks: multiple handler instances may run concurrently.
type UnitOfWork interface {
	// Within: full transaction for write operations with retry on
	// serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Proxies() ProxyRepository
	Emails() EmailRepository
	Orders() OrderRepository
	EmailOrders() EmailOrderRepository
	TopUps() TopUpRepository
	Users() UserRepository
	Purchases() PurchaseRepository
	EmailPurchases() EmailPurchaseRepository
	Pricing() PricingRepository
	EmailCatalog() EmailCatalogRepository
}

type ProxyRepository interface {
	// SelectCandidate returns the latest-expiring proxy for the country with
	// expiry after the cutoff, excluding units the buyer holds a lease on at
	// now. KindNotFound when the tier is empty.
	SelectCandidate(ctx context.Context, country string, buyerID uuid.UUID, expiresAfter, now time.Time) (*ProxySnapshot, error)
	// AcquireSlot conditionally increments the usage counter
	// (active, unexpired, below cap). KindConflict when the unit was
	// claimed, exhausted or deactivated in the meantime.
	AcquireSlot(ctx context.Context, id uuid.UUID, now time.Time) (*ProxySnapshot, error)
	// DeactivateExhausted flips is_active off once the counter hit the cap
	// so the unit drops out of future selection scans.
	DeactivateExhausted(ctx context.Context, id uuid.UUID) error
	Create(ctx context.Context, p *proxy.Proxy) error
	CreateBatch(ctx context.Context, ps []*proxy.Proxy) (int, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateProxyParams) error
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkExpired sweeps available proxies whose expiry has passed.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

type UpdateProxyParams struct {
	MaxUsage  *int32
	ExpiresAt *time.Time
	IsActive  *bool
	Status    *string
}

type EmailRepository interface {
	// LockAvailable picks up to limit available units for the domain and
	// locks them for the duration of the transaction (SKIP LOCKED keeps
	// concurrent purchases from queueing on the same rows).
	LockAvailable(ctx context.Context, domainID uuid.UUID, limit int) ([]EmailSnapshot, error)
	CountAvailable(ctx context.Context, domainID uuid.UUID) (int, error)
	// MarkSold transitions the batch available->sold and reports how many
	// rows actually transitioned; callers abort unless all did.
	MarkSold(ctx context.Context, ids []uuid.UUID) (int64, error)
	CreateBatch(ctx context.Context, es []*email.Email) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	// FindByCheckoutForUpdate locks the order row so a replayed callback
	// serializes behind the first; (nil, nil) when no order matches.
	FindByCheckoutForUpdate(ctx context.Context, checkoutRequestID string) (*OrderSnapshot, error)
	FindPendingByIDForUser(ctx context.Context, id, userID uuid.UUID) (*OrderSnapshot, error)
	SetCheckoutRequestID(ctx context.Context, id uuid.UUID, checkoutRequestID string) error
	// MarkPaid / MarkFailed only fire from pending; false means the order
	// was already finalized.
	MarkPaid(ctx context.Context, id uuid.UUID, receipt string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type EmailOrderRepository interface {
	Create(ctx context.Context, o *order.EmailOrder) error
	FindByCheckoutForUpdate(ctx context.Context, checkoutRequestID string) (*EmailOrderSnapshot, error)
	FindPendingByIDForUser(ctx context.Context, id, userID uuid.UUID) (*EmailOrderSnapshot, error)
	SetCheckoutRequestID(ctx context.Context, id uuid.UUID, checkoutRequestID string) error
	MarkPaid(ctx context.Context, id uuid.UUID, receipt string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
}

type TopUpRepository interface {
	Create(ctx context.Context, t *order.TopUp) error
	FindByCheckoutForUpdate(ctx context.Context, checkoutRequestID string) (*TopUpSnapshot, error)
	FindPendingByIDForUser(ctx context.Context, id, userID uuid.UUID) (*TopUpSnapshot, error)
	SetCheckoutRequestID(ctx context.Context, id uuid.UUID, checkoutRequestID string) error
	Complete(ctx context.Context, id uuid.UUID, receipt string, completedAt time.Time) (bool, error)
	Fail(ctx context.Context, id uuid.UUID) (bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*UserSnapshot, error)
	// DebitBalance is conditional on balance >= amount; KindConflict
	// otherwise. Runs in the same transaction as the allocation commit so
	// debit and lease stand or fall together.
	DebitBalance(ctx context.Context, id uuid.UUID, amount int64) error
	CreditBalance(ctx context.Context, id uuid.UUID, amount int64) error
}

type CreatePurchaseParams struct {
	UserID  uuid.UUID
	ProxyID uuid.UUID
	OrderID uuid.UUID
	Proxy   ProxySnapshot
	// ExpiresAt is the proxy's operator-set expiry, frozen into the lease.
	ExpiresAt   time.Time
	PurchasedAt time.Time
}

type PurchaseRepository interface {
	Create(ctx context.Context, params CreatePurchaseParams) (uuid.UUID, error)
	// HeldProxyIDs returns proxy ids the buyer holds unexpired leases on.
	HeldProxyIDs(ctx context.Context, userID uuid.UUID, now time.Time) ([]uuid.UUID, error)
}

type CreateEmailPurchaseParams struct {
	UserID      uuid.UUID
	OrderID     uuid.UUID
	Emails      []PurchasedEmail
	Quantity    int
	Domain      string
	TotalPrice  int64
	PurchasedAt time.Time
}

type EmailPurchaseRepository interface {
	Create(ctx context.Context, params CreateEmailPurchaseParams) (uuid.UUID, error)
}

type PricingRepository interface {
	FindEnabledByCountry(ctx context.Context, country string) (*PricingSnapshot, error)
	Create(ctx context.Context, country, countryCode string, daily int64) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, daily *int64, isEnabled *bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type EmailCatalogRepository interface {
	FindEnabledDomainByID(ctx context.Context, id uuid.UUID) (*EmailDomainSnapshot, error)
	FindEnabledPricingByDomain(ctx context.Context, domainID uuid.UUID) (*EmailPricingSnapshot, error)
	CreateDomain(ctx context.Context, domain, kind, server string) (uuid.UUID, error)
	UpdateDomain(ctx context.Context, id uuid.UUID, isEnabled *bool, server *string) error
	DeleteDomain(ctx context.Context, id uuid.UUID) error
	CreatePricing(ctx context.Context, domainID uuid.UUID, pricePerEmail int64) (uuid.UUID, error)
	UpdatePricing(ctx context.Context, id uuid.UUID, pricePerEmail *int64, isEnabled *bool) error
	DeletePricing(ctx context.Context, id uuid.UUID) error
}
