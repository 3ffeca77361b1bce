package order

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether settlement may still act on an order in this
// state. Only pending orders accept a payment outcome; everything else makes
// a replayed or late callback a no-op.
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

type PaymentMethod string

const (
	PaymentMpesa   PaymentMethod = "mpesa"
	PaymentBalance PaymentMethod = "balance"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMpesa, PaymentBalance:
		return true
	default:
		return false
	}
}

type TopUpStatus string

const (
	TopUpPending   TopUpStatus = "pending"
	TopUpCompleted TopUpStatus = "completed"
	TopUpFailed    TopUpStatus = "failed"
)
