package queries

import (
	"context"

	"github.com/google/uuid"
)

type AdminQueries interface {
	ListProxies(ctx context.Context) ([]ProxyAdminView, error)
	ListOrders(ctx context.Context) ([]OrderAdminView, error)
	// ListEmails filters on domain when domainID is non-nil.
	ListEmails(ctx context.Context, domainID *uuid.UUID) ([]EmailAdminView, error)
	ListPricing(ctx context.Context) ([]PricingView, error)
	ListEmailDomains(ctx context.Context) ([]EmailDomainView, error)
}

type AdminReadStore interface {
	ListProxies(ctx context.Context) ([]ProxyAdminView, error)
	ListOrders(ctx context.Context) ([]OrderAdminView, error)
	ListEmails(ctx context.Context, domainID *uuid.UUID) ([]EmailAdminView, error)
	ListPricing(ctx context.Context) ([]PricingView, error)
	ListEmailDomains(ctx context.Context) ([]EmailDomainView, error)
}

type adminQueriesImpl struct {
	readStore AdminReadStore
}

func NewAdminQueries(readStore AdminReadStore) AdminQueries {
	return &adminQueriesImpl{readStore: readStore}
}

func (q *adminQueriesImpl) ListProxies(ctx context.Context) ([]ProxyAdminView, error) {
	return q.readStore.ListProxies(ctx)
}

func (q *adminQueriesImpl) ListOrders(ctx context.Context) ([]OrderAdminView, error) {
	return q.readStore.ListOrders(ctx)
}

func (q *adminQueriesImpl) ListEmails(ctx context.Context, domainID *uuid.UUID) ([]EmailAdminView, error) {
	return q.readStore.ListEmails(ctx, domainID)
}

func (q *adminQueriesImpl) ListPricing(ctx context.Context) ([]PricingView, error) {
	return q.readStore.ListPricing(ctx)
}

func (q *adminQueriesImpl) ListEmailDomains(ctx context.Context) ([]EmailDomainView, error) {
	return q.readStore.ListEmailDomains(ctx)
}
