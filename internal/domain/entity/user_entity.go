package entity

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of user roles. Every authorization decision in the
// service goes through the policy table keyed on these values.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleDonor:
		return RoleDonor, nil
	case RoleVolunteer:
		return RoleVolunteer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// AccountStatus gates whether a user may create donation requests.
type AccountStatus string

const (
	AccountActive  AccountStatus = "active"
	AccountBlocked AccountStatus = "blocked"
)

func ParseAccountStatus(s string) (AccountStatus, error) {
	switch AccountStatus(strings.ToLower(strings.TrimSpace(s))) {
	case AccountActive:
		return AccountActive, nil
	case AccountBlocked:
		return AccountBlocked, nil
	}
	return "", fmt.Errorf("unknown account status %q", s)
}

// User is the aggregate root for the user domain. Credentials live in the
// external identity provider; this service only stores the profile and the
// authorization attributes.
type User struct {
	ID         string
	Email      string
	Name       string
	AvatarURL  string
	BloodGroup BloodGroup
	District   string
	Upazila    string
	Role       Role
	Status     AccountStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Identity is the authenticated caller as resolved from a bearer token.
// Passed explicitly into every service operation.
type Identity struct {
	ID     string
	Email  string
	Name   string
	Role   Role
	Status AccountStatus
}

func (id Identity) Blocked() bool { return id.Status == AccountBlocked }

// Identity derives the acting identity for a stored user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Status: u.Status}
}
