package model

import "time"

// AdminEntry is one row of the dedicated admins registry. The registry takes
// priority over the account Role field when verifying admin capability.
type AdminEntry struct {
	EmailKey  string
	Active    bool
	Role      Role
	CreatedAt time.Time
}

// CachedVerdict is a prior admin-check result the caller threads through the
// next check. Only a non-expired positive verdict may satisfy the check when
// the registry is unreachable; grants never consult it.
type CachedVerdict struct {
	Value  bool
	Expiry time.Time
}

// Usable reports whether the verdict can stand in for a live registry read.
func (v CachedVerdict) Usable(now time.Time) bool {
	return v.Value && now.Before(v.Expiry)
}
