package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across usecase layers. Handlers map these to HTTP
// statuses; the settlement path logs them and always acks the provider.
var (
	// Allocation errors
	ErrNoProxyAvailable     = errors.New("no proxy available")
	ErrConcurrentExhaustion = errors.New("proxy claimed by concurrent request")
	ErrCountryNotAvailable  = errors.New("country not available")

	// Email allocation errors
	ErrEmailDomainNotFound  = errors.New("email domain not found")
	ErrEmailPricingNotFound = errors.New("email pricing not found")

	// Order errors
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotPending   = errors.New("order is not pending")
	ErrInvalidOrderState = errors.New("invalid order state transition")

	// Payment errors
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateSettlement = errors.New("settlement already applied")
	ErrUnknownReference    = errors.New("unknown payment reference")
	ErrPaymentInitiation   = errors.New("payment initiation failed")

	// Inventory errors
	ErrProxyNotFound = errors.New("proxy not found")
	ErrEmailNotFound = errors.New("email not found")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)

// InsufficientStockError reports how many email accounts were actually
// available so the caller can retry with a corrected quantity.
type InsufficientStockError struct {
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d of %d emails available", e.Available, e.Requested)
}

func IsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}
