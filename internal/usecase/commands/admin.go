package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"rayproxy/internal/domain/email"
	"rayproxy/internal/domain/order"
	"rayproxy/internal/domain/proxy"
	reqdto "rayproxy/internal/handler/dto/request"
	"rayproxy/internal/infra"
	"rayproxy/internal/pkg/clock"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/shared"
)

// InventoryCommands is the operator-side write surface: proxy and email
// stock, domains and pricing.
type InventoryCommands interface {
	CreateProxy(ctx context.Context, req reqdto.CreateProxyRequest) (uuid.UUID, error)
	BulkCreateProxies(ctx context.Context, req reqdto.BulkCreateProxiesRequest) (int, error)
	UpdateProxy(ctx context.Context, id uuid.UUID, req reqdto.UpdateProxyRequest) error
	DeleteProxy(ctx context.Context, id uuid.UUID) error
	// SweepExpired marks available proxies past expiry; run lazily before
	// inventory listings.
	SweepExpired(ctx context.Context) (int64, error)

	// UpdateOrderStatus is the manual override for stuck payments: a
	// callback that never arrived, or a refund settled out of band.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, req reqdto.UpdateOrderStatusRequest) error

	BulkCreateEmails(ctx context.Context, req reqdto.BulkCreateEmailsRequest) (int, error)
	DeleteEmail(ctx context.Context, id uuid.UUID) error

	CreateEmailDomain(ctx context.Context, req reqdto.CreateEmailDomainRequest) (uuid.UUID, error)
	UpdateEmailDomain(ctx context.Context, id uuid.UUID, req reqdto.UpdateEmailDomainRequest) error
	DeleteEmailDomain(ctx context.Context, id uuid.UUID) error

	CreateEmailPricing(ctx context.Context, req reqdto.CreateEmailPricingRequest) (uuid.UUID, error)
	UpdateEmailPricing(ctx context.Context, id uuid.UUID, req reqdto.UpdateEmailPricingRequest) error
	DeleteEmailPricing(ctx context.Context, id uuid.UUID) error

	CreatePricing(ctx context.Context, req reqdto.CreatePricingRequest) (uuid.UUID, error)
	UpdatePricing(ctx context.Context, id uuid.UUID, req reqdto.UpdatePricingRequest) error
	DeletePricing(ctx context.Context, id uuid.UUID) error
}

type inventoryUseCaseImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewInventoryUseCase(uow shared.UnitOfWork, clk clock.Clock) InventoryCommands {
	return &inventoryUseCaseImpl{uow: uow, clock: clk}
}

func (u *inventoryUseCaseImpl) CreateProxy(ctx context.Context, req reqdto.CreateProxyRequest) (uuid.UUID, error) {
	p, err := proxy.NewProxy(req.IP, req.Port, req.Username, req.Password,
		req.Country, req.CountryCode, req.MaxUsage, req.ExpiresAt, u.clock.Now())
	if err != nil {
		return uuid.Nil, err
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Proxies().Create(ctx, p)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID(), nil
}

func (u *inventoryUseCaseImpl) BulkCreateProxies(ctx context.Context, req reqdto.BulkCreateProxiesRequest) (int, error) {
	now := u.clock.Now()
	ps := make([]*proxy.Proxy, 0, len(req.Proxies))
	for _, pr := range req.Proxies {
		p, err := proxy.NewProxy(pr.IP, pr.Port, pr.Username, pr.Password,
			pr.Country, pr.CountryCode, pr.MaxUsage, pr.ExpiresAt, now)
		if err != nil {
			return 0, err
		}
		ps = append(ps, p)
	}

	var created int
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		created, err = tx.Proxies().CreateBatch(ctx, ps)
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.Info("proxies imported", "requested", len(ps), "created", created)
	return created, nil
}

func (u *inventoryUseCaseImpl) UpdateProxy(ctx context.Context, id uuid.UUID, req reqdto.UpdateProxyRequest) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		err := tx.Proxies().Update(ctx, id, shared.UpdateProxyParams{
			MaxUsage:  req.MaxUsage,
			ExpiresAt: req.ExpiresAt,
			IsActive:  req.IsActive,
			Status:    req.Status,
		})
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrProxyNotFound
		}
		return err
	})
}

func (u *inventoryUseCaseImpl) DeleteProxy(ctx context.Context, id uuid.UUID) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		err := tx.Proxies().Delete(ctx, id)
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrProxyNotFound
		}
		return err
	})
}

func (u *inventoryUseCaseImpl) SweepExpired(ctx context.Context) (int64, error) {
	var swept int64
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		swept, err = tx.Proxies().MarkExpired(ctx, u.clock.Now())
		return err
	})
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		slog.Info("expired proxies swept", "count", swept)
	}
	return swept, nil
}

func (u *inventoryUseCaseImpl) UpdateOrderStatus(ctx context.Context, id uuid.UUID, req reqdto.UpdateOrderStatusRequest) error {
	status := order.Status(req.Status)
	if !status.IsValid() {
		return errs.ErrInvalidOrderState
	}

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		err := tx.Orders().UpdateStatus(ctx, id, status.String())
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrOrderNotFound
		}
		return err
	})
	if err != nil {
		return err
	}

	slog.Warn("order status overridden by operator",
		"order_id", id,
		"status", status.String())
	return nil
}

func (u *inventoryUseCaseImpl) BulkCreateEmails(ctx context.Context, req reqdto.BulkCreateEmailsRequest) (int, error) {
	var created int
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		domain, err := tx.EmailCatalog().FindEnabledDomainByID(ctx, req.DomainID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrEmailDomainNotFound
			}
			return err
		}

		es := make([]*email.Email, 0, len(req.Emails))
		for _, cred := range req.Emails {
			e, err := email.NewEmail(cred.Address, cred.Password, domain.Domain, domain.ID, domain.Server)
			if err != nil {
				return err
			}
			es = append(es, e)
		}

		created, err = tx.Emails().CreateBatch(ctx, es)
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.Info("emails imported", "requested", len(req.Emails), "created", created)
	return created, nil
}

func (u *inventoryUseCaseImpl) DeleteEmail(ctx context.Context, id uuid.UUID) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		err := tx.Emails().Delete(ctx, id)
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrEmailNotFound
		}
		return err
	})
}

func (u *inventoryUseCaseImpl) CreateEmailDomain(ctx context.Context, req reqdto.CreateEmailDomainRequest) (uuid.UUID, error) {
	var id uuid.UUID
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		id, err = tx.EmailCatalog().CreateDomain(ctx, req.Domain, req.Kind, req.Server)
		return err
	})
	return id, err
}

func (u *inventoryUseCaseImpl) UpdateEmailDomain(ctx context.Context, id uuid.UUID, req reqdto.UpdateEmailDomainRequest) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		err := tx.EmailCatalog().UpdateDomain(ctx, id, req.IsEnabled, req.Server)
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrEmailDomainNotFound
		}
		return err
	})
}

func (u *inventoryUseCaseImpl) DeleteEmailDomain(ctx context.Context, id uuid.UUID) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		err := tx.EmailCatalog().DeleteDomain(ctx, id)
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrEmailDomainNotFound
		}
		return err
	})
}

func (u *inventoryUseCaseImpl) CreateEmailPricing(ctx context.Context, req reqdto.CreateEmailPricingRequest) (uuid.UUID, error) {
	var id uuid.UUID
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		id, err = tx.EmailCatalog().CreatePricing(ctx, req.DomainID, req.PricePerEmail)
		return err
	})
	return id, err
}

func (u *inventoryUseCaseImpl) UpdateEmailPricing(ctx context.Context, id uuid.UUID, req reqdto.UpdateEmailPricingRequest) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		err := tx.EmailCatalog().UpdatePricing(ctx, id, req.PricePerEmail, req.IsEnabled)
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrEmailPricingNotFound
		}
		return err
	})
}

func (u *inventoryUseCaseImpl) DeleteEmailPricing(ctx context.Context, id uuid.UUID) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		err := tx.EmailCatalog().DeletePricing(ctx, id)
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrEmailPricingNotFound
		}
		return err
	})
}

func (u *inventoryUseCaseImpl) CreatePricing(ctx context.Context, req reqdto.CreatePricingRequest) (uuid.UUID, error) {
	var id uuid.UUID
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		id, err = tx.Pricing().Create(ctx, req.Country, req.CountryCode, req.Daily)
		return err
	})
	return id, err
}

func (u *inventoryUseCaseImpl) UpdatePricing(ctx context.Context, id uuid.UUID, req reqdto.UpdatePricingRequest) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Pricing().Update(ctx, id, req.Daily, req.IsEnabled)
	})
}

func (u *inventoryUseCaseImpl) DeletePricing(ctx context.Context, id uuid.UUID) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Pricing().Delete(ctx, id)
	})
}
