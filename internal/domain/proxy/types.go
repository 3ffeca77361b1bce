package proxy

type Status string

const (
	StatusAvailable Status = "available"
	StatusExpired   Status = "expired"
	StatusDead      Status = "dead"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusExpired, StatusDead:
		return true
	default:
		return false
	}
}
