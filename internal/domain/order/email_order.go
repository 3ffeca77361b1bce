package order

import (
	"time"

	"github.com/google/uuid"
)

// EmailOrder does not pin specific units up front: availability drifts
// between creation and settlement, so the batch is re-checked when the
// payment outcome arrives.
type EmailOrder struct {
	id                uuid.UUID
	userID            uuid.UUID
	domain            string
	domainID          uuid.UUID
	quantity          int
	pricePerEmail     int64
	totalPrice        int64
	phoneNumber       string
	paymentMethod     PaymentMethod
	checkoutRequestID string
	receiptNumber     string
	status            Status
	createdAt         time.Time
	paidAt            *time.Time
}

func NewEmailOrder(userID uuid.UUID, domain string, domainID uuid.UUID, quantity int, pricePerEmail int64, phoneNumber string, method PaymentMethod, now time.Time) (*EmailOrder, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if pricePerEmail <= 0 {
		return nil, ErrInvalidPrice
	}
	if method == PaymentMpesa && phoneNumber == "" {
		return nil, ErrPhoneRequired
	}

	o := &EmailOrder{
		id:            uuid.New(),
		userID:        userID,
		domain:        domain,
		domainID:      domainID,
		quantity:      quantity,
		pricePerEmail: pricePerEmail,
		totalPrice:    pricePerEmail * int64(quantity),
		phoneNumber:   phoneNumber,
		paymentMethod: method,
		status:        StatusPending,
		createdAt:     now,
	}
	if method == PaymentBalance {
		paidAt := now
		o.status = StatusPaid
		o.paidAt = &paidAt
	}
	return o, nil
}

func ReconstructEmailOrder(id, userID uuid.UUID, domain string, domainID uuid.UUID, quantity int, pricePerEmail, totalPrice int64, phoneNumber string, method PaymentMethod, checkoutRequestID, receiptNumber string, status Status, createdAt time.Time, paidAt *time.Time) *EmailOrder {
	return &EmailOrder{
		id:                id,
		userID:            userID,
		domain:            domain,
		domainID:          domainID,
		quantity:          quantity,
		pricePerEmail:     pricePerEmail,
		totalPrice:        totalPrice,
		phoneNumber:       phoneNumber,
		paymentMethod:     method,
		checkoutRequestID: checkoutRequestID,
		receiptNumber:     receiptNumber,
		status:            status,
		createdAt:         createdAt,
		paidAt:            paidAt,
	}
}

func (o *EmailOrder) MarkPaid(receipt string, now time.Time) error {
	if o.status.IsTerminal() {
		return ErrAlreadyFinalized
	}
	o.status = StatusPaid
	o.receiptNumber = receipt
	o.paidAt = &now
	return nil
}

func (o *EmailOrder) MarkFailed() error {
	if o.status.IsTerminal() {
		return ErrAlreadyFinalized
	}
	o.status = StatusFailed
	return nil
}

func (o *EmailOrder) ID() uuid.UUID                { return o.id }
func (o *EmailOrder) UserID() uuid.UUID            { return o.userID }
func (o *EmailOrder) Domain() string               { return o.domain }
func (o *EmailOrder) DomainID() uuid.UUID          { return o.domainID }
func (o *EmailOrder) Quantity() int                { return o.quantity }
func (o *EmailOrder) PricePerEmail() int64         { return o.pricePerEmail }
func (o *EmailOrder) TotalPrice() int64            { return o.totalPrice }
func (o *EmailOrder) PhoneNumber() string          { return o.phoneNumber }
func (o *EmailOrder) PaymentMethod() PaymentMethod { return o.paymentMethod }
func (o *EmailOrder) CheckoutRequestID() string    { return o.checkoutRequestID }
func (o *EmailOrder) ReceiptNumber() string        { return o.receiptNumber }
func (o *EmailOrder) Status() Status               { return o.status }
func (o *EmailOrder) CreatedAt() time.Time         { return o.createdAt }
func (o *EmailOrder) PaidAt() *time.Time           { return o.paidAt }
