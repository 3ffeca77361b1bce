package proxy

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidEndpoint = errors.New("proxy endpoint requires ip and port")
	ErrInvalidCapacity = errors.New("max usage must be positive")
	ErrAlreadyExpired  = errors.New("expiry must be in the future")
)

// Proxy is a finite-capacity, time-bounded inventory unit. The usage counter
// is only ever advanced through the store's conditional increment, so
// currentUsage <= maxUsage holds across concurrent buyers.
type Proxy struct {
	id           uuid.UUID
	ip           string
	port         int
	username     string
	password     string
	country      string
	countryCode  string
	maxUsage     int32
	currentUsage int32
	expiresAt    time.Time
	isActive     bool
	status       Status
	createdAt    time.Time
}

func NewProxy(ip string, port int, username, password, country, countryCode string, maxUsage int32, expiresAt time.Time, now time.Time) (*Proxy, error) {
	if ip == "" || port <= 0 || port > 65535 {
		return nil, ErrInvalidEndpoint
	}
	if maxUsage <= 0 {
		return nil, ErrInvalidCapacity
	}

	status := StatusAvailable
	if !expiresAt.After(now) {
		status = StatusExpired
	}

	return &Proxy{
		id:          uuid.New(),
		ip:          ip,
		port:        port,
		username:    username,
		password:    password,
		country:     country,
		countryCode: countryCode,
		maxUsage:    maxUsage,
		expiresAt:   expiresAt,
		isActive:    true,
		status:      status,
		createdAt:   now,
	}, nil
}

func Reconstruct(id uuid.UUID, ip string, port int, username, password, country, countryCode string, maxUsage, currentUsage int32, expiresAt time.Time, isActive bool, status Status, createdAt time.Time) *Proxy {
	return &Proxy{
		id:           id,
		ip:           ip,
		port:         port,
		username:     username,
		password:     password,
		country:      country,
		countryCode:  countryCode,
		maxUsage:     maxUsage,
		currentUsage: currentUsage,
		expiresAt:    expiresAt,
		isActive:     isActive,
		status:       status,
		createdAt:    createdAt,
	}
}

func (p *Proxy) HasExpired(now time.Time) bool {
	return !p.expiresAt.After(now)
}

// IsFresh reports whether the proxy has more than the freshness window of
// remaining life. Tier-1 selection only considers fresh units.
func (p *Proxy) IsFresh(now time.Time, window time.Duration) bool {
	return p.expiresAt.After(now.Add(window))
}

func (p *Proxy) HasCapacity() bool {
	return p.currentUsage < p.maxUsage
}

func (p *Proxy) IsExhausted() bool {
	return p.currentUsage >= p.maxUsage
}

func (p *Proxy) CanServe(now time.Time) bool {
	return p.isActive && p.HasCapacity() && !p.HasExpired(now)
}

func (p *Proxy) ID() uuid.UUID        { return p.id }
func (p *Proxy) IP() string           { return p.ip }
func (p *Proxy) Port() int            { return p.port }
func (p *Proxy) Username() string     { return p.username }
func (p *Proxy) Password() string     { return p.password }
func (p *Proxy) Country() string      { return p.country }
func (p *Proxy) CountryCode() string  { return p.countryCode }
func (p *Proxy) MaxUsage() int32      { return p.maxUsage }
func (p *Proxy) CurrentUsage() int32  { return p.currentUsage }
func (p *Proxy) ExpiresAt() time.Time { return p.expiresAt }
func (p *Proxy) IsActive() bool       { return p.isActive }
func (p *Proxy) Status() Status       { return p.status }
func (p *Proxy) CreatedAt() time.Time { return p.createdAt }
