package model

import (
	"strings"
	"time"

	"event-access-platform/internal/domain"
)

// AccessType records how an account obtained access. It is provenance, not a
// live flag: a revoked account keeps its last AccessType as history.
type AccessType string

const (
	AccessNone         AccessType = "none"
	AccessPaid         AccessType = "paid"
	AccessCoupon       AccessType = "coupon"
	AccessAdminGranted AccessType = "admin-granted"
)

// Role is the authorization level of an account, independent of access type.
type Role string

const (
	RoleUser       Role = "user"
	RoleViewer     Role = "viewer"
	RoleSupport    Role = "support"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Account is keyed by EmailKey, the normalized form of the email address.
// AccessGranted is the single authoritative gate for content access; every
// content check reads it and nothing else.
type Account struct {
	EmailKey         string
	Email            string
	Name             string
	Role             Role
	AccessGranted    bool
	AccessType       AccessType
	CouponCode       string     // set only when AccessType == coupon
	PaymentReference string     // set only when AccessType == paid
	GrantedAt        *time.Time
	RevokedAt        *time.Time
	CreatedAt        time.Time
	LastActiveAt     time.Time
}

func NewAccount(email, name string) (*Account, error) {
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Account{
		EmailKey:      EmailKey(email),
		Email:         email,
		Name:          name,
		Role:          RoleUser,
		AccessGranted: false,
		AccessType:    AccessNone,
		CreatedAt:     now,
		LastActiveAt:  now,
	}, nil
}

// EmailKey normalizes an email address into a collision-free store key:
// lowercased, with every "." replaced by "_".
func EmailKey(email string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(email)), ".", "_")
}

func (a *Account) IsZero() bool { return a == nil || a.EmailKey == "" }
func (a *Account) Touch()       { a.LastActiveAt = time.Now() }

// GrantPaid marks the account as paid. Idempotent callers must check
// AccessGranted first; this method always overwrites provenance.
func (a *Account) GrantPaid(paymentRef string) {
	now := time.Now()
	a.AccessGranted = true
	a.AccessType = AccessPaid
	a.PaymentReference = paymentRef
	a.CouponCode = ""
	a.GrantedAt = &now
	a.RevokedAt = nil
}

// GrantCoupon marks the account as granted via the given coupon code.
func (a *Account) GrantCoupon(code string) {
	now := time.Now()
	a.AccessGranted = true
	a.AccessType = AccessCoupon
	a.CouponCode = code
	a.PaymentReference = ""
	a.GrantedAt = &now
	a.RevokedAt = nil
}

// GrantAdmin sets the gate without overwriting an existing paid or coupon
// provenance. Only an account that never had access gets "admin-granted".
func (a *Account) GrantAdmin() {
	now := time.Now()
	a.AccessGranted = true
	if a.AccessType == AccessNone || a.AccessType == "" {
		a.AccessType = AccessAdminGranted
	}
	a.GrantedAt = &now
	a.RevokedAt = nil
}

// Revoke closes the gate but keeps AccessType as the historical record of
// how access was originally obtained.
func (a *Account) Revoke() {
	now := time.Now()
	a.AccessGranted = false
	a.RevokedAt = &now
}

// HasAdminRole reports whether the account's role alone implies admin
// capability. The admins registry is checked separately and takes priority.
func (a *Account) HasAdminRole() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}
