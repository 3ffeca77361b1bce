package order

import (
	"time"

	"github.com/google/uuid"
)

// TopUp is a balance credit intent settled by the same payment callback as
// purchases. It has no inventory contention.
type TopUp struct {
	id                uuid.UUID
	userID            uuid.UUID
	amount            int64
	phoneNumber       string
	checkoutRequestID string
	receiptNumber     string
	status            TopUpStatus
	createdAt         time.Time
	completedAt       *time.Time
}

func NewTopUp(userID uuid.UUID, amount int64, phoneNumber string, now time.Time) (*TopUp, error) {
	if amount < MinTopUpAmount {
		return nil, ErrTopUpBelowMinimum
	}
	if phoneNumber == "" {
		return nil, ErrPhoneRequired
	}
	return &TopUp{
		id:          uuid.New(),
		userID:      userID,
		amount:      amount,
		phoneNumber: phoneNumber,
		status:      TopUpPending,
		createdAt:   now,
	}, nil
}

func ReconstructTopUp(id, userID uuid.UUID, amount int64, phoneNumber, checkoutRequestID, receiptNumber string, status TopUpStatus, createdAt time.Time, completedAt *time.Time) *TopUp {
	return &TopUp{
		id:                id,
		userID:            userID,
		amount:            amount,
		phoneNumber:       phoneNumber,
		checkoutRequestID: checkoutRequestID,
		receiptNumber:     receiptNumber,
		status:            status,
		createdAt:         createdAt,
		completedAt:       completedAt,
	}
}

func (t *TopUp) Complete(receipt string, now time.Time) error {
	if t.status != TopUpPending {
		return ErrAlreadyFinalized
	}
	t.status = TopUpCompleted
	t.receiptNumber = receipt
	t.completedAt = &now
	return nil
}

func (t *TopUp) Fail() error {
	if t.status != TopUpPending {
		return ErrAlreadyFinalized
	}
	t.status = TopUpFailed
	return nil
}

func (t *TopUp) ID() uuid.UUID             { return t.id }
func (t *TopUp) UserID() uuid.UUID         { return t.userID }
func (t *TopUp) Amount() int64             { return t.amount }
func (t *TopUp) PhoneNumber() string       { return t.phoneNumber }
func (t *TopUp) CheckoutRequestID() string { return t.checkoutRequestID }
func (t *TopUp) ReceiptNumber() string     { return t.receiptNumber }
func (t *TopUp) Status() TopUpStatus       { return t.status }
func (t *TopUp) CreatedAt() time.Time      { return t.createdAt }
func (t *TopUp) CompletedAt() *time.Time   { return t.completedAt }
