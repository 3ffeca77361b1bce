//go:build unit

package order_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rayproxy/internal/domain/order"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewBalanceOrder(t *testing.T) {
	t.Run("settles at creation", func(t *testing.T) {
		o, err := order.NewBalanceOrder(uuid.New(), "kenya", 500, now)
		require.NoError(t, err)

		assert.Equal(t, order.StatusPaid, o.Status())
		assert.Equal(t, order.PaymentBalance, o.PaymentMethod())
		require.NotNil(t, o.PaidAt())
		assert.Equal(t, now, *o.PaidAt())
		assert.Nil(t, o.TargetProxyID())
	})

	t.Run("non-positive price", func(t *testing.T) {
		_, err := order.NewBalanceOrder(uuid.New(), "kenya", 0, now)
		assert.ErrorIs(t, err, order.ErrInvalidPrice)
	})
}

func TestNewMpesaOrder(t *testing.T) {
	target := uuid.New()

	t.Run("starts pending with a pinned target", func(t *testing.T) {
		o, err := order.NewMpesaOrder(uuid.New(), "kenya", 500, "254712345678", target, now)
		require.NoError(t, err)

		assert.Equal(t, order.StatusPending, o.Status())
		assert.True(t, o.IsPending())
		require.NotNil(t, o.TargetProxyID())
		assert.Equal(t, target, *o.TargetProxyID())
		assert.Nil(t, o.PaidAt())
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			name   string
			price  int64
			phone  string
			target uuid.UUID
			errIs  error
		}{
			{name: "zero price", price: 0, phone: "254712345678", target: target, errIs: order.ErrInvalidPrice},
			{name: "missing phone", price: 500, phone: "", target: target, errIs: order.ErrPhoneRequired},
			{name: "missing target", price: 500, phone: "254712345678", target: uuid.Nil, errIs: order.ErrMissingTarget},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := order.NewMpesaOrder(uuid.New(), "kenya", tc.price, tc.phone, tc.target, now)
				assert.ErrorIs(t, err, tc.errIs)
			})
		}
	})
}

func TestOrderTransitions(t *testing.T) {
	newPending := func(t *testing.T) *order.Order {
		t.Helper()
		o, err := order.NewMpesaOrder(uuid.New(), "kenya", 500, "254712345678", uuid.New(), now)
		require.NoError(t, err)
		return o
	}

	t.Run("pending to paid", func(t *testing.T) {
		o := newPending(t)
		require.NoError(t, o.MarkPaid("RCT123", now.Add(time.Minute)))
		assert.Equal(t, order.StatusPaid, o.Status())
		assert.Equal(t, "RCT123", o.ReceiptNumber())
	})

	t.Run("pending to failed", func(t *testing.T) {
		o := newPending(t)
		require.NoError(t, o.MarkFailed())
		assert.Equal(t, order.StatusFailed, o.Status())
	})

	t.Run("terminal states refuse further transitions", func(t *testing.T) {
		paid := newPending(t)
		require.NoError(t, paid.MarkPaid("RCT123", now))
		assert.ErrorIs(t, paid.MarkPaid("RCT999", now), order.ErrAlreadyFinalized)
		assert.ErrorIs(t, paid.MarkFailed(), order.ErrAlreadyFinalized)

		failed := newPending(t)
		require.NoError(t, failed.MarkFailed())
		assert.ErrorIs(t, failed.MarkPaid("RCT123", now), order.ErrAlreadyFinalized)
	})
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, order.StatusPending.IsTerminal())
	for _, s := range []order.Status{order.StatusPaid, order.StatusFailed, order.StatusCancelled, order.StatusExpired} {
		assert.True(t, s.IsTerminal(), string(s))
	}
}

func TestNewEmailOrder(t *testing.T) {
	domainID := uuid.New()

	t.Run("balance settles at creation with the computed total", func(t *testing.T) {
		o, err := order.NewEmailOrder(uuid.New(), "raymail.io", domainID, 4, 50, "", order.PaymentBalance, now)
		require.NoError(t, err)

		assert.Equal(t, order.StatusPaid, o.Status())
		assert.Equal(t, int64(200), o.TotalPrice())
		require.NotNil(t, o.PaidAt())
	})

	t.Run("mpesa starts pending and requires a phone", func(t *testing.T) {
		o, err := order.NewEmailOrder(uuid.New(), "raymail.io", domainID, 4, 50, "254712345678", order.PaymentMpesa, now)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, o.Status())

		_, err = order.NewEmailOrder(uuid.New(), "raymail.io", domainID, 4, 50, "", order.PaymentMpesa, now)
		assert.ErrorIs(t, err, order.ErrPhoneRequired)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := order.NewEmailOrder(uuid.New(), "raymail.io", domainID, 0, 50, "", order.PaymentBalance, now)
		assert.ErrorIs(t, err, order.ErrInvalidQuantity)

		_, err = order.NewEmailOrder(uuid.New(), "raymail.io", domainID, 4, 0, "", order.PaymentBalance, now)
		assert.ErrorIs(t, err, order.ErrInvalidPrice)
	})
}

func TestTopUp(t *testing.T) {
	t.Run("minimum amount", func(t *testing.T) {
		_, err := order.NewTopUp(uuid.New(), order.MinTopUpAmount-1, "254712345678", now)
		assert.ErrorIs(t, err, order.ErrTopUpBelowMinimum)

		topUp, err := order.NewTopUp(uuid.New(), order.MinTopUpAmount, "254712345678", now)
		require.NoError(t, err)
		assert.Equal(t, order.TopUpPending, topUp.Status())
	})

	t.Run("complete is one-way", func(t *testing.T) {
		topUp, err := order.NewTopUp(uuid.New(), 500, "254712345678", now)
		require.NoError(t, err)

		require.NoError(t, topUp.Complete("RCT200", now))
		assert.Equal(t, order.TopUpCompleted, topUp.Status())
		assert.ErrorIs(t, topUp.Complete("RCT201", now), order.ErrAlreadyFinalized)
		assert.ErrorIs(t, topUp.Fail(), order.ErrAlreadyFinalized)
	})

	t.Run("fail is one-way", func(t *testing.T) {
		topUp, err := order.NewTopUp(uuid.New(), 500, "254712345678", now)
		require.NoError(t, err)

		require.NoError(t, topUp.Fail())
		assert.ErrorIs(t, topUp.Complete("RCT200", now), order.ErrAlreadyFinalized)
	})
}
