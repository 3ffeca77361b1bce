package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"rayproxy/internal/domain/order"
	"rayproxy/internal/domain/user"
	reqdto "rayproxy/internal/handler/dto/request"
	"rayproxy/internal/infra"
	"rayproxy/internal/pkg/clock"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/shared"
)

type CreateEmailOrderResult struct {
	OrderID           uuid.UUID
	Status            string
	TotalPrice        int64
	CheckoutRequestID string
	PurchaseID        *uuid.UUID
}

type EmailOrderCommands interface {
	CreateEmailOrder(ctx context.Context, userID uuid.UUID, req reqdto.CreateEmailOrderRequest) (*CreateEmailOrderResult, error)
}

type emailOrderUseCaseImpl struct {
	uow     shared.UnitOfWork
	gateway shared.PaymentGateway
	clock   clock.Clock
}

func NewEmailOrderUseCase(uow shared.UnitOfWork, gateway shared.PaymentGateway, clk clock.Clock) EmailOrderCommands {
	return &emailOrderUseCaseImpl{uow: uow, gateway: gateway, clock: clk}
}

func (u *emailOrderUseCaseImpl) CreateEmailOrder(ctx context.Context, userID uuid.UUID, req reqdto.CreateEmailOrderRequest) (*CreateEmailOrderResult, error) {
	switch order.PaymentMethod(req.PaymentMethod) {
	case order.PaymentBalance:
		return u.createBalanceOrder(ctx, userID, req)
	case order.PaymentMpesa:
		return u.createMpesaOrder(ctx, userID, req)
	default:
		return nil, errs.ErrInvalidOrderState
	}
}

// createBalanceOrder is all-or-nothing: the batch either sells in full inside
// one transaction or nothing is committed and the caller learns how many
// accounts were actually available.
func (u *emailOrderUseCaseImpl) createBalanceOrder(ctx context.Context, userID uuid.UUID, req reqdto.CreateEmailOrderRequest) (*CreateEmailOrderResult, error) {
	now := u.clock.Now()
	var result *CreateEmailOrderResult

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		domain, pricing, err := u.lookupCatalog(ctx, tx, req.DomainID)
		if err != nil {
			return err
		}
		totalPrice := pricing.PricePerEmail * int64(req.Quantity)

		if err := tx.Users().DebitBalance(ctx, userID, totalPrice); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.ErrInsufficientBalance
			}
			return err
		}

		sold, err := sellEmailBatch(ctx, tx, req.DomainID, req.Quantity)
		if err != nil {
			return err
		}

		o, err := order.NewEmailOrder(userID, domain.Domain, domain.ID, req.Quantity, pricing.PricePerEmail, "", order.PaymentBalance, now)
		if err != nil {
			return err
		}
		if err := tx.EmailOrders().Create(ctx, o); err != nil {
			return err
		}

		purchaseID, err := tx.EmailPurchases().Create(ctx, shared.CreateEmailPurchaseParams{
			UserID:      userID,
			OrderID:     o.ID(),
			Emails:      sold,
			Quantity:    req.Quantity,
			Domain:      domain.Domain,
			TotalPrice:  totalPrice,
			PurchasedAt: now,
		})
		if err != nil {
			return err
		}

		result = &CreateEmailOrderResult{
			OrderID:    o.ID(),
			Status:     string(o.Status()),
			TotalPrice: totalPrice,
			PurchaseID: &purchaseID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("email order settled from balance",
		"order_id", result.OrderID,
		"user_id", userID,
		"quantity", req.Quantity)
	return result, nil
}

// createMpesaOrder pre-checks availability so the buyer is not pushed a
// payment prompt for stock that is already gone; the authoritative check
// still happens at settlement.
func (u *emailOrderUseCaseImpl) createMpesaOrder(ctx context.Context, userID uuid.UUID, req reqdto.CreateEmailOrderRequest) (*CreateEmailOrderResult, error) {
	phone, err := user.NewPhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	var (
		emailOrder *order.EmailOrder
		totalPrice int64
	)

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		domain, pricing, err := u.lookupCatalog(ctx, tx, req.DomainID)
		if err != nil {
			return err
		}
		totalPrice = pricing.PricePerEmail * int64(req.Quantity)

		available, err := tx.Emails().CountAvailable(ctx, req.DomainID)
		if err != nil {
			return err
		}
		if available < req.Quantity {
			return &errs.InsufficientStockError{Requested: req.Quantity, Available: available}
		}

		emailOrder, err = order.NewEmailOrder(userID, domain.Domain, domain.ID, req.Quantity, pricing.PricePerEmail, phone.Value(), order.PaymentMpesa, now)
		if err != nil {
			return err
		}
		return tx.EmailOrders().Create(ctx, emailOrder)
	})
	if err != nil {
		return nil, err
	}

	push, err := u.gateway.InitiateSTKPush(ctx, shared.STKPushRequest{
		PhoneNumber:      phone.Value(),
		Amount:           totalPrice,
		AccountReference: emailOrder.ID().String(),
		Description:      fmt.Sprintf("Email Purchase - %d x %s", req.Quantity, emailOrder.Domain()),
	})
	if err != nil {
		u.failOrderAfterPushError(ctx, emailOrder.ID())
		return nil, errs.Mark(err, errs.ErrPaymentInitiation)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.EmailOrders().SetCheckoutRequestID(ctx, emailOrder.ID(), push.CheckoutRequestID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("stk push initiated for email order",
		"order_id", emailOrder.ID(),
		"checkout_request_id", push.CheckoutRequestID)

	return &CreateEmailOrderResult{
		OrderID:           emailOrder.ID(),
		Status:            string(emailOrder.Status()),
		TotalPrice:        totalPrice,
		CheckoutRequestID: push.CheckoutRequestID,
	}, nil
}

func (u *emailOrderUseCaseImpl) lookupCatalog(ctx context.Context, tx shared.Tx, domainID uuid.UUID) (*shared.EmailDomainSnapshot, *shared.EmailPricingSnapshot, error) {
	domain, err := tx.EmailCatalog().FindEnabledDomainByID(ctx, domainID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, errs.ErrEmailDomainNotFound
		}
		return nil, nil, err
	}
	pricing, err := tx.EmailCatalog().FindEnabledPricingByDomain(ctx, domainID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, errs.ErrEmailPricingNotFound
		}
		return nil, nil, err
	}
	return domain, pricing, nil
}

func (u *emailOrderUseCaseImpl) failOrderAfterPushError(ctx context.Context, orderID uuid.UUID) {
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.EmailOrders().MarkFailed(ctx, orderID)
		return err
	})
	if err != nil {
		slog.Error("failed to close email order after push error",
			"order_id", orderID,
			"error", err.Error())
	}
}

// sellEmailBatch locks, verifies and sells exactly quantity accounts. The
// rows-affected check guards against a row slipping away between the lock
// and the update.
func sellEmailBatch(ctx context.Context, tx shared.Tx, domainID uuid.UUID, quantity int) ([]shared.PurchasedEmail, error) {
	locked, err := tx.Emails().LockAvailable(ctx, domainID, quantity)
	if err != nil {
		return nil, err
	}
	if len(locked) < quantity {
		return nil, &errs.InsufficientStockError{Requested: quantity, Available: len(locked)}
	}

	ids := make([]uuid.UUID, 0, quantity)
	sold := make([]shared.PurchasedEmail, 0, quantity)
	for _, e := range locked {
		ids = append(ids, e.ID)
		sold = append(sold, shared.PurchasedEmail{
			Address:  e.Address,
			Password: e.Password,
			Domain:   e.Domain,
			Server:   e.Server,
		})
	}

	affected, err := tx.Emails().MarkSold(ctx, ids)
	if err != nil {
		return nil, err
	}
	if affected != int64(quantity) {
		return nil, errs.ErrDatabaseOperationFailed
	}
	return sold, nil
}
