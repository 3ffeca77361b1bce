//go:build unit

package commands

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"rayproxy/internal/domain/email"
	"rayproxy/internal/domain/order"
	"rayproxy/internal/domain/proxy"
	"rayproxy/internal/domain/user"
	"rayproxy/internal/infra"
	"rayproxy/internal/usecase/shared"
)

// In-memory doubles mirroring the conditional-update contracts of the real
// repositories: AcquireSlot and DebitBalance refuse with KindConflict instead
// of blocking, Mark* transitions only fire from pending. The proxy and email
// doubles are mutex-guarded so contention tests can race real goroutines
// against them; each method is one critical section, like one statement
// against the store.

type fakeProxyRepo struct {
	mu            sync.Mutex
	proxies       []*shared.ProxySnapshot
	held          map[uuid.UUID][]uuid.UUID
	forceConflict bool
	selectCalls   int
	acquireCalls  int
}

func (f *fakeProxyRepo) SelectCandidate(_ context.Context, country string, buyerID uuid.UUID, expiresAfter, _ time.Time) (*shared.ProxySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectCalls++
	var best *shared.ProxySnapshot
	for _, p := range f.proxies {
		if p.Country != country || !p.IsActive || p.Status != "available" {
			continue
		}
		if p.CurrentUsage >= p.MaxUsage || !p.ExpiresAt.After(expiresAfter) {
			continue
		}
		if f.isHeld(buyerID, p.ID) {
			continue
		}
		if best == nil || p.ExpiresAt.After(best.ExpiresAt) {
			best = p
		}
	}
	if best == nil {
		return nil, infra.WrapRepoErr("no candidate", nil, infra.KindNotFound)
	}
	cp := *best
	return &cp, nil
}

func (f *fakeProxyRepo) isHeld(buyerID, proxyID uuid.UUID) bool {
	for _, id := range f.held[buyerID] {
		if id == proxyID {
			return true
		}
	}
	return false
}

func (f *fakeProxyRepo) AcquireSlot(_ context.Context, id uuid.UUID, now time.Time) (*shared.ProxySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquireCalls++
	if f.forceConflict {
		return nil, infra.WrapRepoErr("slot conflict", nil, infra.KindConflict)
	}
	for _, p := range f.proxies {
		if p.ID != id {
			continue
		}
		if !p.IsActive || p.Status != "available" || !p.ExpiresAt.After(now) || p.CurrentUsage >= p.MaxUsage {
			return nil, infra.WrapRepoErr("slot conflict", nil, infra.KindConflict)
		}
		p.CurrentUsage++
		cp := *p
		return &cp, nil
	}
	return nil, infra.WrapRepoErr("slot conflict", nil, infra.KindConflict)
}

func (f *fakeProxyRepo) DeactivateExhausted(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.proxies {
		if p.ID == id {
			p.IsActive = false
		}
	}
	return nil
}

func (f *fakeProxyRepo) find(id uuid.UUID) *shared.ProxySnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.proxies {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (f *fakeProxyRepo) Create(_ context.Context, _ *proxy.Proxy) error { return nil }
func (f *fakeProxyRepo) CreateBatch(_ context.Context, ps []*proxy.Proxy) (int, error) {
	return len(ps), nil
}
func (f *fakeProxyRepo) Update(_ context.Context, _ uuid.UUID, _ shared.UpdateProxyParams) error {
	return nil
}
func (f *fakeProxyRepo) Delete(_ context.Context, _ uuid.UUID) error           { return nil }
func (f *fakeProxyRepo) MarkExpired(_ context.Context, _ time.Time) (int64, error) { return 0, nil }

type fakeEmailRepo struct {
	mu     sync.Mutex
	emails []*shared.EmailSnapshot
	locked map[uuid.UUID]bool
}

// LockAvailable mimics FOR UPDATE SKIP LOCKED: rows already handed to one
// caller are invisible to the next.
func (f *fakeEmailRepo) LockAvailable(_ context.Context, domainID uuid.UUID, limit int) ([]shared.EmailSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locked == nil {
		f.locked = map[uuid.UUID]bool{}
	}
	out := make([]shared.EmailSnapshot, 0, limit)
	for _, e := range f.emails {
		if len(out) == limit {
			break
		}
		if e.DomainID == domainID && e.Status == "available" && !f.locked[e.ID] {
			f.locked[e.ID] = true
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEmailRepo) CountAvailable(_ context.Context, domainID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.emails {
		if e.DomainID == domainID && e.Status == "available" {
			n++
		}
	}
	return n, nil
}

func (f *fakeEmailRepo) MarkSold(_ context.Context, ids []uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var affected int64
	for _, id := range ids {
		for _, e := range f.emails {
			if e.ID == id && e.Status == "available" {
				e.Status = "sold"
				affected++
			}
		}
	}
	return affected, nil
}

func (f *fakeEmailRepo) CreateBatch(_ context.Context, es []*email.Email) (int, error) {
	return len(es), nil
}
func (f *fakeEmailRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type fakeOrderRepo struct {
	orders map[uuid.UUID]*shared.OrderSnapshot
}

func (f *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	f.orders[o.ID()] = &shared.OrderSnapshot{
		ID:            o.ID(),
		UserID:        o.UserID(),
		Country:       o.Country(),
		Price:         o.Price(),
		PhoneNumber:   o.PhoneNumber(),
		PaymentMethod: string(o.PaymentMethod()),
		Status:        string(o.Status()),
		TargetProxyID: o.TargetProxyID(),
		CreatedAt:     o.CreatedAt(),
		PaidAt:        o.PaidAt(),
	}
	return nil
}

func (f *fakeOrderRepo) FindByCheckoutForUpdate(_ context.Context, checkoutRequestID string) (*shared.OrderSnapshot, error) {
	for _, o := range f.orders {
		if o.CheckoutRequestID == checkoutRequestID && checkoutRequestID != "" {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) FindPendingByIDForUser(_ context.Context, id, userID uuid.UUID) (*shared.OrderSnapshot, error) {
	o, ok := f.orders[id]
	if !ok || o.UserID != userID || o.Status != "pending" {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) SetCheckoutRequestID(_ context.Context, id uuid.UUID, checkoutRequestID string) error {
	if o, ok := f.orders[id]; ok {
		o.CheckoutRequestID = checkoutRequestID
	}
	return nil
}

func (f *fakeOrderRepo) MarkPaid(_ context.Context, id uuid.UUID, receipt string, paidAt time.Time) (bool, error) {
	o, ok := f.orders[id]
	if !ok || o.Status != "pending" {
		return false, nil
	}
	o.Status = "paid"
	o.ReceiptNumber = receipt
	o.PaidAt = &paidAt
	return true, nil
}

func (f *fakeOrderRepo) MarkFailed(_ context.Context, id uuid.UUID) (bool, error) {
	o, ok := f.orders[id]
	if !ok || o.Status != "pending" {
		return false, nil
	}
	o.Status = "failed"
	return true, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	o, ok := f.orders[id]
	if !ok {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	o.Status = status
	return nil
}

type fakeEmailOrderRepo struct {
	orders map[uuid.UUID]*shared.EmailOrderSnapshot
}

func (f *fakeEmailOrderRepo) Create(_ context.Context, o *order.EmailOrder) error {
	f.orders[o.ID()] = &shared.EmailOrderSnapshot{
		ID:            o.ID(),
		UserID:        o.UserID(),
		Domain:        o.Domain(),
		DomainID:      o.DomainID(),
		Quantity:      o.Quantity(),
		PricePerEmail: o.PricePerEmail(),
		TotalPrice:    o.TotalPrice(),
		PhoneNumber:   o.PhoneNumber(),
		PaymentMethod: string(o.PaymentMethod()),
		Status:        string(o.Status()),
		CreatedAt:     o.CreatedAt(),
		PaidAt:        o.PaidAt(),
	}
	return nil
}

func (f *fakeEmailOrderRepo) FindByCheckoutForUpdate(_ context.Context, checkoutRequestID string) (*shared.EmailOrderSnapshot, error) {
	for _, o := range f.orders {
		if o.CheckoutRequestID == checkoutRequestID && checkoutRequestID != "" {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeEmailOrderRepo) FindPendingByIDForUser(_ context.Context, id, userID uuid.UUID) (*shared.EmailOrderSnapshot, error) {
	o, ok := f.orders[id]
	if !ok || o.UserID != userID || o.Status != "pending" {
		return nil, infra.WrapRepoErr("email order not found", nil, infra.KindNotFound)
	}
	cp := *o
	return &cp, nil
}

func (f *fakeEmailOrderRepo) SetCheckoutRequestID(_ context.Context, id uuid.UUID, checkoutRequestID string) error {
	if o, ok := f.orders[id]; ok {
		o.CheckoutRequestID = checkoutRequestID
	}
	return nil
}

func (f *fakeEmailOrderRepo) MarkPaid(_ context.Context, id uuid.UUID, receipt string, paidAt time.Time) (bool, error) {
	o, ok := f.orders[id]
	if !ok || o.Status != "pending" {
		return false, nil
	}
	o.Status = "paid"
	o.ReceiptNumber = receipt
	o.PaidAt = &paidAt
	return true, nil
}

func (f *fakeEmailOrderRepo) MarkFailed(_ context.Context, id uuid.UUID) (bool, error) {
	o, ok := f.orders[id]
	if !ok || o.Status != "pending" {
		return false, nil
	}
	o.Status = "failed"
	return true, nil
}

type fakeTopUpRepo struct {
	topups map[uuid.UUID]*shared.TopUpSnapshot
}

func (f *fakeTopUpRepo) Create(_ context.Context, t *order.TopUp) error {
	f.topups[t.ID()] = &shared.TopUpSnapshot{
		ID:          t.ID(),
		UserID:      t.UserID(),
		Amount:      t.Amount(),
		PhoneNumber: t.PhoneNumber(),
		Status:      string(t.Status()),
		CreatedAt:   t.CreatedAt(),
	}
	return nil
}

func (f *fakeTopUpRepo) FindByCheckoutForUpdate(_ context.Context, checkoutRequestID string) (*shared.TopUpSnapshot, error) {
	for _, t := range f.topups {
		if t.CheckoutRequestID == checkoutRequestID && checkoutRequestID != "" {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeTopUpRepo) FindPendingByIDForUser(_ context.Context, id, userID uuid.UUID) (*shared.TopUpSnapshot, error) {
	t, ok := f.topups[id]
	if !ok || t.UserID != userID || t.Status != "pending" {
		return nil, infra.WrapRepoErr("topup not found", nil, infra.KindNotFound)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTopUpRepo) SetCheckoutRequestID(_ context.Context, id uuid.UUID, checkoutRequestID string) error {
	if t, ok := f.topups[id]; ok {
		t.CheckoutRequestID = checkoutRequestID
	}
	return nil
}

func (f *fakeTopUpRepo) Complete(_ context.Context, id uuid.UUID, receipt string, completedAt time.Time) (bool, error) {
	t, ok := f.topups[id]
	if !ok || t.Status != "pending" {
		return false, nil
	}
	t.Status = "completed"
	t.ReceiptNumber = receipt
	t.CompletedAt = &completedAt
	return true, nil
}

func (f *fakeTopUpRepo) Fail(_ context.Context, id uuid.UUID) (bool, error) {
	t, ok := f.topups[id]
	if !ok || t.Status != "pending" {
		return false, nil
	}
	t.Status = "failed"
	return true, nil
}

type fakeUserRepo struct {
	balances map[uuid.UUID]int64
}

func (f *fakeUserRepo) Create(_ context.Context, _ *user.User) error { return nil }

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*shared.UserSnapshot, error) {
	balance, ok := f.balances[id]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return &shared.UserSnapshot{ID: id, Balance: balance, IsActive: true, Role: "user"}, nil
}

func (f *fakeUserRepo) DebitBalance(_ context.Context, id uuid.UUID, amount int64) error {
	if f.balances[id] < amount {
		return infra.WrapRepoErr("insufficient balance", nil, infra.KindConflict)
	}
	f.balances[id] -= amount
	return nil
}

func (f *fakeUserRepo) CreditBalance(_ context.Context, id uuid.UUID, amount int64) error {
	f.balances[id] += amount
	return nil
}

type fakePurchaseRepo struct {
	created []shared.CreatePurchaseParams
}

func (f *fakePurchaseRepo) Create(_ context.Context, params shared.CreatePurchaseParams) (uuid.UUID, error) {
	f.created = append(f.created, params)
	return uuid.New(), nil
}

func (f *fakePurchaseRepo) HeldProxyIDs(_ context.Context, userID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, p := range f.created {
		if p.UserID == userID && p.ExpiresAt.After(now) {
			ids = append(ids, p.ProxyID)
		}
	}
	return ids, nil
}

type fakeEmailPurchaseRepo struct {
	created []shared.CreateEmailPurchaseParams
}

func (f *fakeEmailPurchaseRepo) Create(_ context.Context, params shared.CreateEmailPurchaseParams) (uuid.UUID, error) {
	f.created = append(f.created, params)
	return uuid.New(), nil
}

type fakePricingRepo struct {
	byCountry map[string]*shared.PricingSnapshot
}

func (f *fakePricingRepo) FindEnabledByCountry(_ context.Context, country string) (*shared.PricingSnapshot, error) {
	p, ok := f.byCountry[country]
	if !ok || !p.IsEnabled {
		return nil, infra.WrapRepoErr("pricing not found", nil, infra.KindNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePricingRepo) Create(_ context.Context, _, _ string, _ int64) (uuid.UUID, error) {
	return uuid.New(), nil
}
func (f *fakePricingRepo) Update(_ context.Context, _ uuid.UUID, _ *int64, _ *bool) error {
	return nil
}
func (f *fakePricingRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type fakeEmailCatalogRepo struct {
	domain  *shared.EmailDomainSnapshot
	pricing *shared.EmailPricingSnapshot
}

func (f *fakeEmailCatalogRepo) FindEnabledDomainByID(_ context.Context, id uuid.UUID) (*shared.EmailDomainSnapshot, error) {
	if f.domain == nil || f.domain.ID != id || !f.domain.IsEnabled {
		return nil, infra.WrapRepoErr("domain not found", nil, infra.KindNotFound)
	}
	cp := *f.domain
	return &cp, nil
}

func (f *fakeEmailCatalogRepo) FindEnabledPricingByDomain(_ context.Context, domainID uuid.UUID) (*shared.EmailPricingSnapshot, error) {
	if f.pricing == nil || f.pricing.DomainID != domainID || !f.pricing.IsEnabled {
		return nil, infra.WrapRepoErr("pricing not found", nil, infra.KindNotFound)
	}
	cp := *f.pricing
	return &cp, nil
}

func (f *fakeEmailCatalogRepo) CreateDomain(_ context.Context, _, _, _ string) (uuid.UUID, error) {
	return uuid.New(), nil
}
func (f *fakeEmailCatalogRepo) UpdateDomain(_ context.Context, _ uuid.UUID, _ *bool, _ *string) error {
	return nil
}
func (f *fakeEmailCatalogRepo) DeleteDomain(_ context.Context, _ uuid.UUID) error { return nil }
func (f *fakeEmailCatalogRepo) CreatePricing(_ context.Context, _ uuid.UUID, _ int64) (uuid.UUID, error) {
	return uuid.New(), nil
}
func (f *fakeEmailCatalogRepo) UpdatePricing(_ context.Context, _ uuid.UUID, _ *int64, _ *bool) error {
	return nil
}
func (f *fakeEmailCatalogRepo) DeletePricing(_ context.Context, _ uuid.UUID) error { return nil }

type fakeTx struct {
	proxies        *fakeProxyRepo
	emails         *fakeEmailRepo
	orders         *fakeOrderRepo
	emailOrders    *fakeEmailOrderRepo
	topups         *fakeTopUpRepo
	users          *fakeUserRepo
	purchases      *fakePurchaseRepo
	emailPurchases *fakeEmailPurchaseRepo
	pricing        *fakePricingRepo
	emailCatalog   *fakeEmailCatalogRepo
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		proxies:        &fakeProxyRepo{held: map[uuid.UUID][]uuid.UUID{}},
		emails:         &fakeEmailRepo{},
		orders:         &fakeOrderRepo{orders: map[uuid.UUID]*shared.OrderSnapshot{}},
		emailOrders:    &fakeEmailOrderRepo{orders: map[uuid.UUID]*shared.EmailOrderSnapshot{}},
		topups:         &fakeTopUpRepo{topups: map[uuid.UUID]*shared.TopUpSnapshot{}},
		users:          &fakeUserRepo{balances: map[uuid.UUID]int64{}},
		purchases:      &fakePurchaseRepo{},
		emailPurchases: &fakeEmailPurchaseRepo{},
		pricing:        &fakePricingRepo{byCountry: map[string]*shared.PricingSnapshot{}},
		emailCatalog:   &fakeEmailCatalogRepo{},
	}
}

func (t *fakeTx) Proxies() shared.ProxyRepository                 { return t.proxies }
func (t *fakeTx) Emails() shared.EmailRepository                  { return t.emails }
func (t *fakeTx) Orders() shared.OrderRepository                  { return t.orders }
func (t *fakeTx) EmailOrders() shared.EmailOrderRepository        { return t.emailOrders }
func (t *fakeTx) TopUps() shared.TopUpRepository                  { return t.topups }
func (t *fakeTx) Users() shared.UserRepository                    { return t.users }
func (t *fakeTx) Purchases() shared.PurchaseRepository            { return t.purchases }
func (t *fakeTx) EmailPurchases() shared.EmailPurchaseRepository  { return t.emailPurchases }
func (t *fakeTx) Pricing() shared.PricingRepository               { return t.pricing }
func (t *fakeTx) EmailCatalog() shared.EmailCatalogRepository     { return t.emailCatalog }

// fakeUoW runs the function directly; rollback semantics are not simulated,
// so assertions focus on what was written, not on atomicity.
type fakeUoW struct {
	tx *fakeTx
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

type fakeGateway struct {
	result   *shared.STKPushResult
	err      error
	requests []shared.STKPushRequest
}

func (g *fakeGateway) InitiateSTKPush(_ context.Context, req shared.STKPushRequest) (*shared.STKPushResult, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	if g.result != nil {
		return g.result, nil
	}
	return &shared.STKPushResult{MerchantRequestID: "merchant-1", CheckoutRequestID: "ws_CO_test"}, nil
}

func proxySnap(country string, expiresAt time.Time, maxUsage, currentUsage int32) *shared.ProxySnapshot {
	return &shared.ProxySnapshot{
		ID:           uuid.New(),
		IP:           "10.0.0.1",
		Port:         8080,
		Username:     "px",
		Password:     "secret",
		Country:      country,
		CountryCode:  "KE",
		MaxUsage:     maxUsage,
		CurrentUsage: currentUsage,
		ExpiresAt:    expiresAt,
		IsActive:     true,
		Status:       "available",
	}
}

func emailSnap(domainID uuid.UUID, address string) *shared.EmailSnapshot {
	return &shared.EmailSnapshot{
		ID:       uuid.New(),
		Address:  address,
		Password: "pw123456",
		Domain:   "raymail.io",
		DomainID: domainID,
		Server:   "mail.raymail.io",
		Status:   "available",
	}
}
