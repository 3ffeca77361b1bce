package shared

import "context"

// STKPushRequest asks the provider to pop a payment prompt on the buyer's
// phone. Amount is whole KES.
type STKPushRequest struct {
	PhoneNumber      string
	Amount           int64
	AccountReference string
	Description      string
}

// STKPushResult carries the provider's correlation ids. CheckoutRequestID is
// the key the asynchronous callback is later matched on.
type STKPushResult struct {
	MerchantRequestID string
	CheckoutRequestID string
}

type PaymentGateway interface {
	InitiateSTKPush(ctx context.Context, req STKPushRequest) (*STKPushResult, error)
}
