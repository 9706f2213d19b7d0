// Package auth holds the capability model gating every functional area.
// Checks live here, not in HTTP middleware, so they stay testable without gin.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kd5jp/ChurchBell/internal/models"
)

// Capability tags. The set is closed: tts and announcements are reserved for
// features that do not exist yet but must already round-trip through the
// permission schema.
const (
	CapBells         = "bells"
	CapBackup        = "backup"
	CapUsers         = "users"
	CapTTS           = "tts"
	CapAnnouncements = "announcements"
)

var AllCapabilities = []string{CapBells, CapBackup, CapUsers, CapTTS, CapAnnouncements}

var (
	ErrUnauthorized = errors.New("unauthorized")

	// Role-mutation rules, each its own rejection so callers can say why.
	ErrSelfDelete      = errors.New("you cannot delete your own account")
	ErrSelfRoleChange  = errors.New("you cannot change your own role")
	ErrAdminOnlyCreate = errors.New("only an admin may create an admin account")
	ErrAdminOnlyRole   = errors.New("only an admin may change roles")
	ErrAdminOnlyDelete = errors.New("only an admin may delete an admin account")
)

// HasPermission reports whether u may touch the given functional area.
// Admins hold every capability regardless of their stored set.
func HasPermission(u *models.Users, cap string) bool {
	if u.IsAdmin() {
		return true
	}
	for _, p := range u.PermissionList() {
		if p == cap {
			return true
		}
	}
	return false
}

// EffectivePermissions is what the UI should render: the full vocabulary for
// admins, the stored set for everyone else.
func EffectivePermissions(u *models.Users) []string {
	if u.IsAdmin() {
		return AllCapabilities
	}
	return u.PermissionList()
}

// Require is the first call of every guarded operation. It returns a wrapped
// ErrUnauthorized naming the missing capability, and the operation must have
// had no side effect yet.
func Require(u *models.Users, cap string) error {
	if !HasPermission(u, cap) {
		return fmt.Errorf("%w: missing capability %q", ErrUnauthorized, cap)
	}
	return nil
}

// ValidCapability reports membership in the closed vocabulary.
func ValidCapability(cap string) bool {
	for _, c := range AllCapabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// NormalizePermissions drops unknown tags and duplicates, returning the
// canonical comma-separated form for storage.
func NormalizePermissions(raw []string) string {
	seen := make(map[string]bool)
	var kept []string
	for _, cap := range raw {
		cap = strings.TrimSpace(cap)
		if ValidCapability(cap) && !seen[cap] {
			seen[cap] = true
			kept = append(kept, cap)
		}
	}
	return strings.Join(kept, ",")
}
