package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPrice      = errors.New("price must be positive")
	ErrPhoneRequired     = errors.New("phone number required for mpesa payment")
	ErrAlreadyFinalized  = errors.New("order already finalized")
	ErrMissingTarget     = errors.New("mpesa proxy order requires a pinned target proxy")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrTopUpBelowMinimum = errors.New("minimum top-up amount is KES 10")
)

const MinTopUpAmount int64 = 10

// Order is a proxy purchase intent. For mpesa orders the target proxy is
// pinned at creation time so the buyer settles onto the unit they were
// quoted; counters are only mutated at confirmed-success time, so a lost
// callback leaves nothing to compensate.
type Order struct {
	id                uuid.UUID
	userID            uuid.UUID
	country           string
	price             int64
	phoneNumber       string
	paymentMethod     PaymentMethod
	checkoutRequestID string
	receiptNumber     string
	status            Status
	targetProxyID     *uuid.UUID
	createdAt         time.Time
	paidAt            *time.Time
}

func NewBalanceOrder(userID uuid.UUID, country string, price int64, now time.Time) (*Order, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	paidAt := now
	return &Order{
		id:            uuid.New(),
		userID:        userID,
		country:       country,
		price:         price,
		paymentMethod: PaymentBalance,
		status:        StatusPaid,
		createdAt:     now,
		paidAt:        &paidAt,
	}, nil
}

func NewMpesaOrder(userID uuid.UUID, country string, price int64, phoneNumber string, targetProxyID uuid.UUID, now time.Time) (*Order, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if phoneNumber == "" {
		return nil, ErrPhoneRequired
	}
	if targetProxyID == uuid.Nil {
		return nil, ErrMissingTarget
	}
	target := targetProxyID
	return &Order{
		id:            uuid.New(),
		userID:        userID,
		country:       country,
		price:         price,
		phoneNumber:   phoneNumber,
		paymentMethod: PaymentMpesa,
		status:        StatusPending,
		targetProxyID: &target,
		createdAt:     now,
	}, nil
}

func ReconstructOrder(id, userID uuid.UUID, country string, price int64, phoneNumber string, paymentMethod PaymentMethod, checkoutRequestID, receiptNumber string, status Status, targetProxyID *uuid.UUID, createdAt time.Time, paidAt *time.Time) *Order {
	return &Order{
		id:                id,
		userID:            userID,
		country:           country,
		price:             price,
		phoneNumber:       phoneNumber,
		paymentMethod:     paymentMethod,
		checkoutRequestID: checkoutRequestID,
		receiptNumber:     receiptNumber,
		status:            status,
		targetProxyID:     targetProxyID,
		createdAt:         createdAt,
		paidAt:            paidAt,
	}
}

func (o *Order) MarkPaid(receipt string, now time.Time) error {
	if o.status.IsTerminal() {
		return ErrAlreadyFinalized
	}
	o.status = StatusPaid
	o.receiptNumber = receipt
	o.paidAt = &now
	return nil
}

func (o *Order) MarkFailed() error {
	if o.status.IsTerminal() {
		return ErrAlreadyFinalized
	}
	o.status = StatusFailed
	return nil
}

func (o *Order) IsPending() bool { return o.status == StatusPending }

func (o *Order) ID() uuid.UUID               { return o.id }
func (o *Order) UserID() uuid.UUID           { return o.userID }
func (o *Order) Country() string             { return o.country }
func (o *Order) Price() int64                { return o.price }
func (o *Order) PhoneNumber() string         { return o.phoneNumber }
func (o *Order) PaymentMethod() PaymentMethod { return o.paymentMethod }
func (o *Order) CheckoutRequestID() string   { return o.checkoutRequestID }
func (o *Order) ReceiptNumber() string       { return o.receiptNumber }
func (o *Order) Status() Status              { return o.status }
func (o *Order) TargetProxyID() *uuid.UUID   { return o.targetProxyID }
func (o *Order) CreatedAt() time.Time        { return o.createdAt }
func (o *Order) PaidAt() *time.Time          { return o.paidAt }
