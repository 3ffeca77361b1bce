package email

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAddress = errors.New("invalid email address")
	ErrEmptyPassword  = errors.New("email account password required")
	ErrAlreadySold    = errors.New("email already sold")
)

// Email is a single-use inventory unit. available -> sold is one-way; the
// transition itself happens in the store as an atomic batch update.
type Email struct {
	id       uuid.UUID
	address  string
	password string
	domain   string
	domainID uuid.UUID
	server   string
	status   Status
	createdAt time.Time
}

func NewEmail(address, password, domain string, domainID uuid.UUID, server string) (*Email, error) {
	address = strings.TrimSpace(strings.ToLower(address))
	if address == "" || !strings.Contains(address, "@") {
		return nil, ErrInvalidAddress
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	return &Email{
		id:       uuid.New(),
		address:  address,
		password: password,
		domain:   domain,
		domainID: domainID,
		server:   server,
		status:   StatusAvailable,
	}, nil
}

func Reconstruct(id uuid.UUID, address, password, domain string, domainID uuid.UUID, server string, status Status, createdAt time.Time) *Email {
	return &Email{
		id:        id,
		address:   address,
		password:  password,
		domain:    domain,
		domainID:  domainID,
		server:    server,
		status:    status,
		createdAt: createdAt,
	}
}

func (e *Email) IsAvailable() bool {
	return e.status == StatusAvailable
}

// MarkSold is the one legal status mutation; sold is terminal.
func (e *Email) MarkSold() error {
	if e.status == StatusSold {
		return ErrAlreadySold
	}
	e.status = StatusSold
	return nil
}

func (e *Email) ID() uuid.UUID        { return e.id }
func (e *Email) Address() string      { return e.address }
func (e *Email) Password() string     { return e.password }
func (e *Email) Domain() string       { return e.domain }
func (e *Email) DomainID() uuid.UUID  { return e.domainID }
func (e *Email) Server() string       { return e.server }
func (e *Email) Status() Status       { return e.status }
func (e *Email) CreatedAt() time.Time { return e.createdAt }
