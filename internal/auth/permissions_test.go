package auth

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kd5jp/ChurchBell/internal/models"
)

func TestAdminHoldsEverything(t *testing.T) {
	// Even with a bogus stored set, an admin has every capability.
	admin := &models.Users{Role: models.RoleAdmin, Permissions: "bells"}

	for _, cap := range AllCapabilities {
		if !HasPermission(admin, cap) {
			t.Errorf("admin lacks %q", cap)
		}
	}
	if got := EffectivePermissions(admin); !reflect.DeepEqual(got, AllCapabilities) {
		t.Errorf("EffectivePermissions(admin) = %v, want full vocabulary", got)
	}
}

func TestUserHasExactlyStoredSet(t *testing.T) {
	user := &models.Users{Role: models.RoleUser, Permissions: "bells, backup"}

	tests := []struct {
		cap  string
		want bool
	}{
		{CapBells, true},
		{CapBackup, true},
		{CapUsers, false},
		{CapTTS, false},
		{CapAnnouncements, false},
	}
	for _, tt := range tests {
		if got := HasPermission(user, tt.cap); got != tt.want {
			t.Errorf("HasPermission(user, %q) = %v, want %v", tt.cap, got, tt.want)
		}
	}

	if got := EffectivePermissions(user); !reflect.DeepEqual(got, []string{"bells", "backup"}) {
		t.Errorf("EffectivePermissions = %v, want stored set", got)
	}
}

func TestRequire(t *testing.T) {
	user := &models.Users{Role: models.RoleUser, Permissions: "bells"}

	if err := Require(user, CapBells); err != nil {
		t.Errorf("Require(bells) = %v, want nil", err)
	}
	if err := Require(user, CapBackup); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Require(backup) = %v, want ErrUnauthorized", err)
	}
}

func TestNormalizePermissions(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"drops unknown", []string{"bells", "sudo"}, "bells"},
		{"dedupes", []string{"bells", "bells", "backup"}, "bells,backup"},
		{"trims", []string{" tts ", "announcements"}, "tts,announcements"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePermissions(tt.in); got != tt.want {
				t.Errorf("NormalizePermissions(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
