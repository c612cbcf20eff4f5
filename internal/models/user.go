package models

import (
	"fmt"
	"strings"
	"time"
)

type Permission string

const (
	PermissionRead   Permission = "read"
	PermissionWrite  Permission = "write"
	PermissionDelete Permission = "delete"
)

// AllPermissions lists the recognized permissions in canonical order.
var AllPermissions = []Permission{PermissionRead, PermissionWrite, PermissionDelete}

func (p Permission) bit() PermissionSet {
	switch p {
	case PermissionRead:
		return 1 << 0
	case PermissionWrite:
		return 1 << 1
	case PermissionDelete:
		return 1 << 2
	}
	return 0
}

func (p Permission) Valid() bool {
	return p.bit() != 0
}

// PermissionSet is a bitset over the closed Permission enumeration.
type PermissionSet uint8

func NewPermissionSet(perms ...Permission) PermissionSet {
	var s PermissionSet
	for _, p := range perms {
		s = s.With(p)
	}
	return s
}

// ParsePermissions converts raw values into a set. Any unrecognized value
// fails the whole conversion.
func ParsePermissions(values []string) (PermissionSet, error) {
	var (
		set     PermissionSet
		invalid []string
	)
	for _, v := range values {
		p := Permission(v)
		if !p.Valid() {
			invalid = append(invalid, v)
			continue
		}
		set = set.With(p)
	}
	if len(invalid) > 0 {
		return 0, &InvalidPermissionsError{Values: invalid}
	}
	return set, nil
}

func (s PermissionSet) With(p Permission) PermissionSet {
	return s | p.bit()
}

func (s PermissionSet) Has(p Permission) bool {
	b := p.bit()
	return b != 0 && s&b == b
}

func (s PermissionSet) Strings() []string {
	out := make([]string, 0, len(AllPermissions))
	for _, p := range AllPermissions {
		if s.Has(p) {
			out = append(out, string(p))
		}
	}
	return out
}

type InvalidPermissionsError struct {
	Values []string
}

func (e *InvalidPermissionsError) Error() string {
	valid := make([]string, 0, len(AllPermissions))
	for _, p := range AllPermissions {
		valid = append(valid, string(p))
	}
	return fmt.Sprintf("Invalid permissions: %s. Valid permissions are: %s",
		strings.Join(e.Values, ", "), strings.Join(valid, ", "))
}

// PasswordReset is present on a user only while a reset is pending.
type PasswordReset struct {
	TokenHash []byte
	ExpiresAt time.Time
}

func (r *PasswordReset) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Permissions  PermissionSet
	PendingReset *PasswordReset
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RefreshToken struct {
	TokenHash []byte
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
