package entity

import (
	"fmt"
	"net/mail"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleStaff:
		return Role(s), nil
	default:
		return "", &ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", s)}
	}
}

// CanManageTasks - admins and managers create, edit and delete tasks.
func (r Role) CanManageTasks() bool {
	switch r {
	case RoleAdmin, RoleManager:
		return true
	case RoleStaff:
		return false
	default:
		return false
	}
}

// CanCreate reports whether a user with role r may create a user with role target.
func (r Role) CanCreate(target Role) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleManager:
		return target == RoleStaff
	case RoleStaff:
		return false
	default:
		return false
	}
}

// Tier is the organisational hierarchy level, independent of Role.
type Tier string

const (
	TierPrincipal Tier = "principal"
	TierAlpha     Tier = "alpha"
	TierStandard  Tier = "standard"
)

func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierPrincipal, TierAlpha, TierStandard:
		return Tier(s), nil
	case "":
		return TierStandard, nil
	default:
		return "", &ValidationError{Field: "tier", Message: fmt.Sprintf("unknown tier %q", s)}
	}
}

// SeesAllTasks - principal and alpha tiers have organisation-wide read access.
func (t Tier) SeesAllTasks() bool {
	switch t {
	case TierPrincipal, TierAlpha:
		return true
	case TierStandard:
		return false
	default:
		return false
	}
}

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

func ParseUserStatus(s string) (UserStatus, error) {
	switch UserStatus(s) {
	case UserActive, UserInactive:
		return UserStatus(s), nil
	default:
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
	}
}

type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          Role       `json:"role"`
	Tier          Tier       `json:"tier"`
	DepartmentID  string     `json:"department_id,omitempty"`
	DesignationID string     `json:"designation_id,omitempty"`
	Status        UserStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsBareEmail - только голый адрес вида user@host, без display name.
// Emails are stored and looked up verbatim.
func IsBareEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == s
}

type CreateUserRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          Role   `json:"role"`
	Tier          Tier   `json:"tier"`
	DepartmentID  string `json:"department_id"`
	DesignationID string `json:"designation_id"`
}

func (r *CreateUserRequest) Validate() error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(r.Name) > 255 {
		return &ValidationError{Field: "name", Message: "name must be at most 255 characters"}
	}
	if !IsBareEmail(r.Email) {
		return &ValidationError{Field: "email", Message: "email is malformed"}
	}
	if len(r.Password) < 8 {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if _, err := ParseRole(string(r.Role)); err != nil {
		return err
	}
	tier, err := ParseTier(string(r.Tier))
	if err != nil {
		return err
	}
	r.Tier = tier
	return nil
}

// Session is the authenticated caller, resolved once per request by the
// auth middleware and passed explicitly to services.
type Session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Tier   Tier   `json:"tier"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	User        *User     `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r *PasswordResetConfirmRequest) Validate() error {
	if r.Token == "" {
		return &ValidationError{Field: "token", Message: "token is required"}
	}
	if len(r.Password) < 8 {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}
