package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"rayproxy/internal/domain/order"
	"rayproxy/internal/domain/user"
	reqdto "rayproxy/internal/handler/dto/request"
	"rayproxy/internal/pkg/clock"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/shared"
)

type CreateTopUpResult struct {
	TopUpID           uuid.UUID
	Amount            int64
	CheckoutRequestID string
}

type TopUpCommands interface {
	CreateTopUp(ctx context.Context, userID uuid.UUID, req reqdto.CreateTopUpRequest) (*CreateTopUpResult, error)
}

type topUpUseCaseImpl struct {
	uow     shared.UnitOfWork
	gateway shared.PaymentGateway
	clock   clock.Clock
}

func NewTopUpUseCase(uow shared.UnitOfWork, gateway shared.PaymentGateway, clk clock.Clock) TopUpCommands {
	return &topUpUseCaseImpl{uow: uow, gateway: gateway, clock: clk}
}

// CreateTopUp records the intent and fires the push; the balance only moves
// when the callback confirms the payment.
func (u *topUpUseCaseImpl) CreateTopUp(ctx context.Context, userID uuid.UUID, req reqdto.CreateTopUpRequest) (*CreateTopUpResult, error) {
	phone, err := user.NewPhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	topUp, err := order.NewTopUp(userID, req.Amount, phone.Value(), u.clock.Now())
	if err != nil {
		return nil, err
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.TopUps().Create(ctx, topUp)
	})
	if err != nil {
		return nil, err
	}

	push, err := u.gateway.InitiateSTKPush(ctx, shared.STKPushRequest{
		PhoneNumber:      phone.Value(),
		Amount:           topUp.Amount(),
		AccountReference: fmt.Sprintf("TOPUP-%s", topUp.ID()),
		Description:      fmt.Sprintf("Balance Top-up - KES %d", topUp.Amount()),
	})
	if err != nil {
		u.failTopUpAfterPushError(ctx, topUp.ID())
		return nil, errs.Mark(err, errs.ErrPaymentInitiation)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.TopUps().SetCheckoutRequestID(ctx, topUp.ID(), push.CheckoutRequestID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("stk push initiated for topup",
		"topup_id", topUp.ID(),
		"checkout_request_id", push.CheckoutRequestID)

	return &CreateTopUpResult{
		TopUpID:           topUp.ID(),
		Amount:            topUp.Amount(),
		CheckoutRequestID: push.CheckoutRequestID,
	}, nil
}

func (u *topUpUseCaseImpl) failTopUpAfterPushError(ctx context.Context, topUpID uuid.UUID) {
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.TopUps().Fail(ctx, topUpID)
		return err
	})
	if err != nil {
		slog.Error("failed to close topup after push error",
			"topup_id", topUpID,
			"error", err.Error())
	}
}
