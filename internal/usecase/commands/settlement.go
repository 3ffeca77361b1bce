package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rayproxy/internal/domain/order"
	"rayproxy/internal/pkg/clock"
	"rayproxy/internal/pkg/config"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/shared"
)

// SettlementCommands reconciles asynchronous payment outcomes with orders.
// The caller (the callback handler) always acks the provider; errors returned
// here are logged, never surfaced to the provider.
type SettlementCommands interface {
	Settle(ctx context.Context, checkoutRequestID string, success bool, receipt string) error
}

type settlementUseCaseImpl struct {
	uow       shared.UnitOfWork
	allocator *allocator
	clock     clock.Clock
}

func NewSettlementUseCase(uow shared.UnitOfWork, cfg config.AllocatorConfig, clk clock.Clock) SettlementCommands {
	return &settlementUseCaseImpl{
		uow:       uow,
		allocator: newAllocator(cfg.FreshnessWindow, cfg.MaxAttempts),
		clock:     clk,
	}
}

// Settle resolves the reference against proxy orders, top-ups, then email
// orders. The matching row is locked FOR UPDATE and transitions only from
// pending, so a replayed callback finds a finalized row and becomes a no-op.
func (u *settlementUseCaseImpl) Settle(ctx context.Context, checkoutRequestID string, success bool, receipt string) error {
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if o, err := tx.Orders().FindByCheckoutForUpdate(ctx, checkoutRequestID); err != nil {
			return err
		} else if o != nil {
			return u.settleProxyOrder(ctx, tx, o, success, receipt)
		}

		if t, err := tx.TopUps().FindByCheckoutForUpdate(ctx, checkoutRequestID); err != nil {
			return err
		} else if t != nil {
			return u.settleTopUp(ctx, tx, t, success, receipt)
		}

		if eo, err := tx.EmailOrders().FindByCheckoutForUpdate(ctx, checkoutRequestID); err != nil {
			return err
		} else if eo != nil {
			return u.settleEmailOrder(ctx, tx, eo, success, receipt)
		}

		// Not ours, or a row that never got its checkout id persisted.
		// Discarded by design: the provider retries until acked.
		slog.Warn("callback for unknown reference discarded",
			"checkout_request_id", checkoutRequestID)
		return errs.ErrUnknownReference
	})
}

func (u *settlementUseCaseImpl) settleProxyOrder(ctx context.Context, tx shared.Tx, o *shared.OrderSnapshot, success bool, receipt string) error {
	if order.Status(o.Status).IsTerminal() {
		slog.Info("duplicate settlement ignored", "order_id", o.ID, "status", o.Status)
		return errs.ErrDuplicateSettlement
	}

	if !success {
		if _, err := tx.Orders().MarkFailed(ctx, o.ID); err != nil {
			return err
		}
		slog.Info("proxy order settled as failed", "order_id", o.ID)
		return nil
	}

	now := u.clock.Now()

	acquired, err := u.acquireForSettlement(ctx, tx, o, now)
	if err != nil {
		if errors.Is(err, errs.ErrNoProxyAvailable) {
			// Payment took but nothing to deliver. The order fails and the
			// case is logged for manual reconciliation.
			if _, markErr := tx.Orders().MarkFailed(ctx, o.ID); markErr != nil {
				return markErr
			}
			slog.Warn("paid order failed, no proxy deliverable",
				"order_id", o.ID, "user_id", o.UserID, "receipt", receipt)
			return nil
		}
		return err
	}

	transitioned, err := tx.Orders().MarkPaid(ctx, o.ID, receipt, now)
	if err != nil {
		return err
	}
	if !transitioned {
		return errs.ErrDuplicateSettlement
	}

	if _, err := tx.Purchases().Create(ctx, shared.CreatePurchaseParams{
		UserID:      o.UserID,
		ProxyID:     acquired.ID,
		OrderID:     o.ID,
		Proxy:       *acquired,
		ExpiresAt:   acquired.ExpiresAt,
		PurchasedAt: now,
	}); err != nil {
		return err
	}

	slog.Info("proxy order settled as paid",
		"order_id", o.ID,
		"proxy_id", acquired.ID,
		"receipt", receipt)
	return nil
}

// acquireForSettlement tries the unit pinned at order time first so the buyer
// gets what they were quoted. If it was exhausted, deactivated or expired
// while the payment was in flight, or the buyer acquired a lease on it through
// another purchase in the meantime, a fresh two-tier selection fills in.
func (u *settlementUseCaseImpl) acquireForSettlement(ctx context.Context, tx shared.Tx, o *shared.OrderSnapshot, now time.Time) (*shared.ProxySnapshot, error) {
	if o.TargetProxyID != nil {
		pinned := *o.TargetProxyID

		held, err := tx.Purchases().HeldProxyIDs(ctx, o.UserID, now)
		if err != nil {
			return nil, err
		}
		if containsID(held, pinned) {
			slog.Info("pinned proxy already leased by buyer, falling back",
				"order_id", o.ID,
				"pinned_proxy_id", pinned)
			return u.allocator.allocate(ctx, tx, o.Country, o.UserID, now)
		}

		acquired, err := u.allocator.acquire(ctx, tx.Proxies(), pinned, now)
		if err == nil {
			return acquired, nil
		}
		if !errors.Is(err, errs.ErrConcurrentExhaustion) {
			return nil, err
		}
		slog.Info("pinned proxy unavailable at settlement, falling back",
			"order_id", o.ID,
			"pinned_proxy_id", pinned)
	}
	return u.allocator.allocate(ctx, tx, o.Country, o.UserID, now)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func (u *settlementUseCaseImpl) settleTopUp(ctx context.Context, tx shared.Tx, t *shared.TopUpSnapshot, success bool, receipt string) error {
	if order.TopUpStatus(t.Status) != order.TopUpPending {
		slog.Info("duplicate topup settlement ignored", "topup_id", t.ID, "status", t.Status)
		return errs.ErrDuplicateSettlement
	}

	if !success {
		if _, err := tx.TopUps().Fail(ctx, t.ID); err != nil {
			return err
		}
		slog.Info("topup settled as failed", "topup_id", t.ID)
		return nil
	}

	transitioned, err := tx.TopUps().Complete(ctx, t.ID, receipt, u.clock.Now())
	if err != nil {
		return err
	}
	if !transitioned {
		return errs.ErrDuplicateSettlement
	}

	if err := tx.Users().CreditBalance(ctx, t.UserID, t.Amount); err != nil {
		return err
	}

	slog.Info("topup settled as completed",
		"topup_id", t.ID,
		"user_id", t.UserID,
		"amount", t.Amount)
	return nil
}

func (u *settlementUseCaseImpl) settleEmailOrder(ctx context.Context, tx shared.Tx, eo *shared.EmailOrderSnapshot, success bool, receipt string) error {
	if order.Status(eo.Status).IsTerminal() {
		slog.Info("duplicate email settlement ignored", "order_id", eo.ID, "status", eo.Status)
		return errs.ErrDuplicateSettlement
	}

	if !success {
		if _, err := tx.EmailOrders().MarkFailed(ctx, eo.ID); err != nil {
			return err
		}
		slog.Info("email order settled as failed", "order_id", eo.ID)
		return nil
	}

	now := u.clock.Now()

	sold, err := sellEmailBatch(ctx, tx, eo.DomainID, eo.Quantity)
	if err != nil {
		if _, ok := errs.IsInsufficientStock(err); ok {
			// Stock drained while the payment was in flight; never deliver
			// a partial batch.
			if _, markErr := tx.EmailOrders().MarkFailed(ctx, eo.ID); markErr != nil {
				return markErr
			}
			slog.Warn("paid email order failed on stock",
				"order_id", eo.ID, "user_id", eo.UserID, "receipt", receipt)
			return nil
		}
		return err
	}

	transitioned, err := tx.EmailOrders().MarkPaid(ctx, eo.ID, receipt, now)
	if err != nil {
		return err
	}
	if !transitioned {
		return errs.ErrDuplicateSettlement
	}

	if _, err := tx.EmailPurchases().Create(ctx, shared.CreateEmailPurchaseParams{
		UserID:      eo.UserID,
		OrderID:     eo.ID,
		Emails:      sold,
		Quantity:    eo.Quantity,
		Domain:      eo.Domain,
		TotalPrice:  eo.TotalPrice,
		PurchasedAt: now,
	}); err != nil {
		return err
	}

	slog.Info("email order settled as paid",
		"order_id", eo.ID,
		"quantity", eo.Quantity,
		"receipt", receipt)
	return nil
}
