package queries

import (
	"context"

	"rayproxy/internal/infra"
	"rayproxy/internal/pkg/errs"
)

var ErrCountryNotOnSale = errs.New("country not on sale")

type AvailabilityQueries interface {
	ListCountries(ctx context.Context) ([]CountryAvailabilityView, error)
	GetCountry(ctx context.Context, country string) (*CountryAvailabilityView, error)
	ListEmailDomains(ctx context.Context) ([]EmailAvailabilityView, error)
}

type AvailabilityReadStore interface {
	ListCountryAvailability(ctx context.Context) ([]CountryAvailabilityView, error)
	GetCountryAvailability(ctx context.Context, country string) (*CountryAvailabilityView, error)
	ListEmailAvailability(ctx context.Context) ([]EmailAvailabilityView, error)
}

type availabilityQueriesImpl struct {
	readStore AvailabilityReadStore
}

func NewAvailabilityQueries(readStore AvailabilityReadStore) AvailabilityQueries {
	return &availabilityQueriesImpl{readStore: readStore}
}

func (q *availabilityQueriesImpl) ListCountries(ctx context.Context) ([]CountryAvailabilityView, error) {
	return q.readStore.ListCountryAvailability(ctx)
}

func (q *availabilityQueriesImpl) GetCountry(ctx context.Context, country string) (*CountryAvailabilityView, error) {
	view, err := q.readStore.GetCountryAvailability(ctx, country)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCountryNotOnSale
		}
		return nil, err
	}
	return view, nil
}

func (q *availabilityQueriesImpl) ListEmailDomains(ctx context.Context) ([]EmailAvailabilityView, error) {
	return q.readStore.ListEmailAvailability(ctx)
}
