package email

type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
	StatusReserved  Status = "reserved"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusSold, StatusReserved:
		return true
	default:
		return false
	}
}

type DomainKind string

const (
	DomainKindGmail    DomainKind = "gmail"
	DomainKindRayproxy DomainKind = "rayproxy"
)

func (k DomainKind) IsValid() bool {
	switch k {
	case DomainKindGmail, DomainKindRayproxy:
		return true
	default:
		return false
	}
}
