//go:build unit

package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rayproxy/internal/pkg/clock"
	"rayproxy/internal/pkg/config"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/shared"
)

func newSettlement(tx *fakeTx) SettlementCommands {
	return NewSettlementUseCase(&fakeUoW{tx: tx}, config.AllocatorConfig{
		FreshnessWindow: 6 * time.Hour,
		MaxAttempts:     3,
	}, clock.NewMockClock(baseTime))
}

func pendingOrder(tx *fakeTx, checkoutID string, target *uuid.UUID) *shared.OrderSnapshot {
	o := &shared.OrderSnapshot{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		Country:           "kenya",
		Price:             500,
		PhoneNumber:       "254712345678",
		PaymentMethod:     "mpesa",
		CheckoutRequestID: checkoutID,
		Status:            "pending",
		TargetProxyID:     target,
		CreatedAt:         baseTime.Add(-time.Minute),
	}
	tx.orders.orders[o.ID] = o
	return o
}

func TestSettleProxyOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("success delivers the pinned unit", func(t *testing.T) {
		tx := newFakeTx()
		pinned := proxySnap("kenya", baseTime.Add(10*time.Hour), 3, 0)
		tx.proxies.proxies = append(tx.proxies.proxies, pinned)
		o := pendingOrder(tx, "ws_CO_1", &pinned.ID)

		err := newSettlement(tx).Settle(ctx, "ws_CO_1", true, "RCT123")
		require.NoError(t, err)

		assert.Equal(t, "paid", tx.orders.orders[o.ID].Status)
		assert.Equal(t, "RCT123", tx.orders.orders[o.ID].ReceiptNumber)
		require.Len(t, tx.purchases.created, 1)
		assert.Equal(t, pinned.ID, tx.purchases.created[0].ProxyID)
		assert.Equal(t, o.UserID, tx.purchases.created[0].UserID)
		assert.Equal(t, int32(1), tx.proxies.find(pinned.ID).CurrentUsage)
	})

	t.Run("pinned unit gone falls back to fresh selection", func(t *testing.T) {
		tx := newFakeTx()
		pinned := proxySnap("kenya", baseTime.Add(10*time.Hour), 1, 1)
		spare := proxySnap("kenya", baseTime.Add(8*time.Hour), 3, 0)
		tx.proxies.proxies = append(tx.proxies.proxies, pinned, spare)
		o := pendingOrder(tx, "ws_CO_2", &pinned.ID)

		err := newSettlement(tx).Settle(ctx, "ws_CO_2", true, "RCT124")
		require.NoError(t, err)

		assert.Equal(t, "paid", tx.orders.orders[o.ID].Status)
		require.Len(t, tx.purchases.created, 1)
		assert.Equal(t, spare.ID, tx.purchases.created[0].ProxyID)
	})

	t.Run("pinned unit the buyer already leases falls back to another", func(t *testing.T) {
		tx := newFakeTx()
		pinned := proxySnap("kenya", baseTime.Add(10*time.Hour), 3, 1)
		spare := proxySnap("kenya", baseTime.Add(8*time.Hour), 3, 0)
		tx.proxies.proxies = append(tx.proxies.proxies, pinned, spare)
		o := pendingOrder(tx, "ws_CO_held", &pinned.ID)

		// The buyer acquired the pinned unit through another purchase while
		// the payment was in flight.
		tx.purchases.created = append(tx.purchases.created, shared.CreatePurchaseParams{
			UserID:    o.UserID,
			ProxyID:   pinned.ID,
			ExpiresAt: baseTime.Add(10 * time.Hour),
		})
		tx.proxies.held[o.UserID] = []uuid.UUID{pinned.ID}

		err := newSettlement(tx).Settle(ctx, "ws_CO_held", true, "RCT128")
		require.NoError(t, err)

		assert.Equal(t, "paid", tx.orders.orders[o.ID].Status)
		require.Len(t, tx.purchases.created, 2)
		assert.Equal(t, spare.ID, tx.purchases.created[1].ProxyID)
		assert.Equal(t, int32(1), tx.proxies.find(pinned.ID).CurrentUsage)
	})

	t.Run("pinned unit already leased with no spare fails, never doubles up", func(t *testing.T) {
		tx := newFakeTx()
		pinned := proxySnap("kenya", baseTime.Add(10*time.Hour), 3, 1)
		tx.proxies.proxies = append(tx.proxies.proxies, pinned)
		o := pendingOrder(tx, "ws_CO_held2", &pinned.ID)

		tx.purchases.created = append(tx.purchases.created, shared.CreatePurchaseParams{
			UserID:    o.UserID,
			ProxyID:   pinned.ID,
			ExpiresAt: baseTime.Add(10 * time.Hour),
		})
		tx.proxies.held[o.UserID] = []uuid.UUID{pinned.ID}

		err := newSettlement(tx).Settle(ctx, "ws_CO_held2", true, "RCT129")
		require.NoError(t, err)

		assert.Equal(t, "failed", tx.orders.orders[o.ID].Status)
		assert.Len(t, tx.purchases.created, 1)
		assert.Equal(t, int32(1), tx.proxies.find(pinned.ID).CurrentUsage)
	})

	t.Run("nothing deliverable fails the order without a lease", func(t *testing.T) {
		tx := newFakeTx()
		pinned := proxySnap("kenya", baseTime.Add(10*time.Hour), 1, 1)
		tx.proxies.proxies = append(tx.proxies.proxies, pinned)
		o := pendingOrder(tx, "ws_CO_3", &pinned.ID)

		err := newSettlement(tx).Settle(ctx, "ws_CO_3", true, "RCT125")
		require.NoError(t, err)

		assert.Equal(t, "failed", tx.orders.orders[o.ID].Status)
		assert.Empty(t, tx.purchases.created)
	})

	t.Run("failed payment closes the order and moves no counters", func(t *testing.T) {
		tx := newFakeTx()
		pinned := proxySnap("kenya", baseTime.Add(10*time.Hour), 3, 0)
		tx.proxies.proxies = append(tx.proxies.proxies, pinned)
		o := pendingOrder(tx, "ws_CO_4", &pinned.ID)

		err := newSettlement(tx).Settle(ctx, "ws_CO_4", false, "")
		require.NoError(t, err)

		assert.Equal(t, "failed", tx.orders.orders[o.ID].Status)
		assert.Empty(t, tx.purchases.created)
		assert.Equal(t, int32(0), tx.proxies.find(pinned.ID).CurrentUsage)
	})

	t.Run("replayed callback is a no-op", func(t *testing.T) {
		tx := newFakeTx()
		pinned := proxySnap("kenya", baseTime.Add(10*time.Hour), 3, 0)
		tx.proxies.proxies = append(tx.proxies.proxies, pinned)
		pendingOrder(tx, "ws_CO_5", &pinned.ID)

		s := newSettlement(tx)
		require.NoError(t, s.Settle(ctx, "ws_CO_5", true, "RCT126"))
		err := s.Settle(ctx, "ws_CO_5", true, "RCT126")
		assert.ErrorIs(t, err, errs.ErrDuplicateSettlement)

		assert.Len(t, tx.purchases.created, 1)
		assert.Equal(t, int32(1), tx.proxies.find(pinned.ID).CurrentUsage)
	})

	t.Run("unknown reference is reported, never acked as a match", func(t *testing.T) {
		tx := newFakeTx()
		err := newSettlement(tx).Settle(ctx, "ws_CO_unknown", true, "RCT127")
		assert.ErrorIs(t, err, errs.ErrUnknownReference)
	})
}

func TestSettleTopUp(t *testing.T) {
	ctx := context.Background()

	t.Run("success credits the balance once", func(t *testing.T) {
		tx := newFakeTx()
		userID := uuid.New()
		tx.users.balances[userID] = 100
		topUp := &shared.TopUpSnapshot{
			ID:                uuid.New(),
			UserID:            userID,
			Amount:            250,
			CheckoutRequestID: "ws_CO_t1",
			Status:            "pending",
		}
		tx.topups.topups[topUp.ID] = topUp

		s := newSettlement(tx)
		require.NoError(t, s.Settle(ctx, "ws_CO_t1", true, "RCT200"))
		assert.Equal(t, int64(350), tx.users.balances[userID])
		assert.Equal(t, "completed", tx.topups.topups[topUp.ID].Status)

		err := s.Settle(ctx, "ws_CO_t1", true, "RCT200")
		assert.ErrorIs(t, err, errs.ErrDuplicateSettlement)
		assert.Equal(t, int64(350), tx.users.balances[userID])
	})

	t.Run("failure never credits", func(t *testing.T) {
		tx := newFakeTx()
		userID := uuid.New()
		tx.users.balances[userID] = 100
		topUp := &shared.TopUpSnapshot{
			ID:                uuid.New(),
			UserID:            userID,
			Amount:            250,
			CheckoutRequestID: "ws_CO_t2",
			Status:            "pending",
		}
		tx.topups.topups[topUp.ID] = topUp

		require.NoError(t, newSettlement(tx).Settle(ctx, "ws_CO_t2", false, ""))
		assert.Equal(t, int64(100), tx.users.balances[userID])
		assert.Equal(t, "failed", tx.topups.topups[topUp.ID].Status)
	})
}

func TestSettleEmailOrder(t *testing.T) {
	ctx := context.Background()
	domainID := uuid.New()

	pendingEmailOrder := func(tx *fakeTx, checkoutID string, quantity int) *shared.EmailOrderSnapshot {
		o := &shared.EmailOrderSnapshot{
			ID:                uuid.New(),
			UserID:            uuid.New(),
			Domain:            "raymail.io",
			DomainID:          domainID,
			Quantity:          quantity,
			PricePerEmail:     50,
			TotalPrice:        int64(quantity) * 50,
			PaymentMethod:     "mpesa",
			CheckoutRequestID: checkoutID,
			Status:            "pending",
		}
		tx.emailOrders.orders[o.ID] = o
		return o
	}

	t.Run("success sells the full batch", func(t *testing.T) {
		tx := newFakeTx()
		for i := 0; i < 3; i++ {
			tx.emails.emails = append(tx.emails.emails, emailSnap(domainID, "u"+string(rune('a'+i))+"@raymail.io"))
		}
		o := pendingEmailOrder(tx, "ws_CO_e1", 3)

		require.NoError(t, newSettlement(tx).Settle(ctx, "ws_CO_e1", true, "RCT300"))

		assert.Equal(t, "paid", tx.emailOrders.orders[o.ID].Status)
		require.Len(t, tx.emailPurchases.created, 1)
		assert.Len(t, tx.emailPurchases.created[0].Emails, 3)
		for _, e := range tx.emails.emails {
			assert.Equal(t, "sold", e.Status)
		}
	})

	t.Run("stock drained in flight fails the order, sells nothing", func(t *testing.T) {
		tx := newFakeTx()
		tx.emails.emails = append(tx.emails.emails, emailSnap(domainID, "only@raymail.io"))
		o := pendingEmailOrder(tx, "ws_CO_e2", 3)

		require.NoError(t, newSettlement(tx).Settle(ctx, "ws_CO_e2", true, "RCT301"))

		assert.Equal(t, "failed", tx.emailOrders.orders[o.ID].Status)
		assert.Empty(t, tx.emailPurchases.created)
		assert.Equal(t, "available", tx.emails.emails[0].Status)
	})
}
