//go:build unit

package commands

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reqdto "rayproxy/internal/handler/dto/request"
	"rayproxy/internal/pkg/clock"
	"rayproxy/internal/pkg/errs"
)

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	newInventory := func(tx *fakeTx) InventoryCommands {
		return NewInventoryUseCase(&fakeUoW{tx: tx}, clock.NewMockClock(baseTime))
	}

	t.Run("overrides a stuck order", func(t *testing.T) {
		tx := newFakeTx()
		o := pendingOrder(tx, "ws_CO_stuck", nil)

		err := newInventory(tx).UpdateOrderStatus(ctx, o.ID, reqdto.UpdateOrderStatusRequest{Status: "cancelled"})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", tx.orders.orders[o.ID].Status)
	})

	t.Run("rejects a status outside the lifecycle", func(t *testing.T) {
		tx := newFakeTx()
		o := pendingOrder(tx, "ws_CO_stuck2", nil)

		err := newInventory(tx).UpdateOrderStatus(ctx, o.ID, reqdto.UpdateOrderStatusRequest{Status: "refunded"})
		assert.ErrorIs(t, err, errs.ErrInvalidOrderState)
		assert.Equal(t, "pending", tx.orders.orders[o.ID].Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		tx := newFakeTx()
		err := newInventory(tx).UpdateOrderStatus(ctx, uuid.New(), reqdto.UpdateOrderStatusRequest{Status: "failed"})
		assert.ErrorIs(t, err, errs.ErrOrderNotFound)
	})
}
