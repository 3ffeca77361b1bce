package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"rayproxy/internal/domain/order"
	"rayproxy/internal/domain/user"
	reqdto "rayproxy/internal/handler/dto/request"
	"rayproxy/internal/infra"
	"rayproxy/internal/pkg/clock"
	"rayproxy/internal/pkg/config"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/shared"
)

type CreateProxyOrderResult struct {
	OrderID           uuid.UUID
	Status            string
	Price             int64
	CheckoutRequestID string
	PurchaseID        *uuid.UUID
}

type OrderCommands interface {
	CreateProxyOrder(ctx context.Context, userID uuid.UUID, req reqdto.CreateProxyOrderRequest) (*CreateProxyOrderResult, error)
}

type orderUseCaseImpl struct {
	uow       shared.UnitOfWork
	gateway   shared.PaymentGateway
	allocator *allocator
	clock     clock.Clock
}

func NewOrderUseCase(uow shared.UnitOfWork, gateway shared.PaymentGateway, cfg config.AllocatorConfig, clk clock.Clock) OrderCommands {
	return &orderUseCaseImpl{
		uow:       uow,
		gateway:   gateway,
		allocator: newAllocator(cfg.FreshnessWindow, cfg.MaxAttempts),
		clock:     clk,
	}
}

func (u *orderUseCaseImpl) CreateProxyOrder(ctx context.Context, userID uuid.UUID, req reqdto.CreateProxyOrderRequest) (*CreateProxyOrderResult, error) {
	switch order.PaymentMethod(req.PaymentMethod) {
	case order.PaymentBalance:
		return u.createBalanceOrder(ctx, userID, req.Country)
	case order.PaymentMpesa:
		return u.createMpesaOrder(ctx, userID, req.Country, req.PhoneNumber)
	default:
		return nil, errs.ErrInvalidOrderState
	}
}

// createBalanceOrder settles immediately: debit, slot commit, lease and paid
// order all land in one transaction, so a failure at any step rolls back the
// debit too.
func (u *orderUseCaseImpl) createBalanceOrder(ctx context.Context, userID uuid.UUID, country string) (*CreateProxyOrderResult, error) {
	now := u.clock.Now()
	var result *CreateProxyOrderResult

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pricing, err := tx.Pricing().FindEnabledByCountry(ctx, country)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrCountryNotAvailable
			}
			return err
		}

		if err := tx.Users().DebitBalance(ctx, userID, pricing.Daily); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.ErrInsufficientBalance
			}
			return err
		}

		acquired, err := u.allocator.allocate(ctx, tx, country, userID, now)
		if err != nil {
			return err
		}

		o, err := order.NewBalanceOrder(userID, country, pricing.Daily, now)
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}

		purchaseID, err := tx.Purchases().Create(ctx, shared.CreatePurchaseParams{
			UserID:      userID,
			ProxyID:     acquired.ID,
			OrderID:     o.ID(),
			Proxy:       *acquired,
			ExpiresAt:   acquired.ExpiresAt,
			PurchasedAt: now,
		})
		if err != nil {
			return err
		}

		result = &CreateProxyOrderResult{
			OrderID:    o.ID(),
			Status:     string(o.Status()),
			Price:      o.Price(),
			PurchaseID: &purchaseID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("proxy order settled from balance",
		"order_id", result.OrderID,
		"user_id", userID,
		"country", country)
	return result, nil
}

// createMpesaOrder pins the selected unit without committing a slot; the
// counter only moves when the payment callback confirms success.
func (u *orderUseCaseImpl) createMpesaOrder(ctx context.Context, userID uuid.UUID, country, phoneNumber string) (*CreateProxyOrderResult, error) {
	phone, err := user.NewPhone(phoneNumber)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	var (
		o     *order.Order
		price int64
	)

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pricing, err := tx.Pricing().FindEnabledByCountry(ctx, country)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrCountryNotAvailable
			}
			return err
		}
		price = pricing.Daily

		candidate, err := u.allocator.selectCandidate(ctx, tx.Proxies(), country, userID, now)
		if err != nil {
			return err
		}

		o, err = order.NewMpesaOrder(userID, country, price, phone.Value(), candidate.ID, now)
		if err != nil {
			return err
		}
		return tx.Orders().Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	push, err := u.gateway.InitiateSTKPush(ctx, shared.STKPushRequest{
		PhoneNumber:      phone.Value(),
		Amount:           price,
		AccountReference: o.ID().String(),
		Description:      fmt.Sprintf("Proxy Purchase - %s", country),
	})
	if err != nil {
		u.failOrderAfterPushError(ctx, o.ID())
		return nil, errs.Mark(err, errs.ErrPaymentInitiation)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Orders().SetCheckoutRequestID(ctx, o.ID(), push.CheckoutRequestID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("stk push initiated for proxy order",
		"order_id", o.ID(),
		"checkout_request_id", push.CheckoutRequestID)

	return &CreateProxyOrderResult{
		OrderID:           o.ID(),
		Status:            string(o.Status()),
		Price:             price,
		CheckoutRequestID: push.CheckoutRequestID,
	}, nil
}

// failOrderAfterPushError closes a pending order whose push never reached the
// provider; nothing was committed so there is nothing to release.
func (u *orderUseCaseImpl) failOrderAfterPushError(ctx context.Context, orderID uuid.UUID) {
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Orders().MarkFailed(ctx, orderID)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("failed to close order after push error",
			"order_id", orderID,
			"error", err.Error())
	}
}
