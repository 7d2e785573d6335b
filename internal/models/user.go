package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        Roles     `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const (
	RoleUser  = "ROLE_USER"
	RoleEdit1 = "ROLE_EDIT_1"
	RoleEdit2 = "ROLE_EDIT_2"
	RoleAdmin = "ROLE_ADMIN"
)

// KnownRoles lists every role a user may be granted.
var KnownRoles = []string{RoleUser, RoleEdit1, RoleEdit2, RoleAdmin}

// EditorRoles may manage product images.
var EditorRoles = []string{RoleEdit1, RoleEdit2, RoleAdmin}

// Roles is stored as a JSON array in a text column. ROLE_USER is always implied.
type Roles []string

func (r Roles) Has(role string) bool {
	return role == RoleUser || slices.Contains(r, role)
}

func (r Roles) HasAny(roles ...string) bool {
	for _, role := range roles {
		if r.Has(role) {
			return true
		}
	}
	return false
}

// Normalize returns a sorted, de-duplicated copy that always contains ROLE_USER.
func (r Roles) Normalize() Roles {
	out := make(Roles, 0, len(r)+1)
	out = append(out, RoleUser)
	for _, role := range r {
		if !slices.Contains(out, role) {
			out = append(out, role)
		}
	}
	slices.Sort(out)
	return out
}

func (r Roles) Value() (driver.Value, error) {
	b, err := json.Marshal(r.Normalize())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Roles) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*r = Roles{RoleUser}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("roles: unsupported column type %T", src)
	}

	var roles []string
	if err := json.Unmarshal(raw, &roles); err != nil {
		return fmt.Errorf("roles: %w", err)
	}
	*r = Roles(roles).Normalize()
	return nil
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=180"`
	Email    string `json:"email" validate:"required,email,max=180"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// SelfProfileUpdate is what a user may change on their own record.
type SelfProfileUpdate struct {
	Username Optional[string] `json:"username"`
	Email    Optional[string] `json:"email"`
	Password Optional[string] `json:"password"`
}

// RoleUpdate is what an administrator may change on someone else's record.
type RoleUpdate struct {
	Roles Optional[[]string] `json:"roles"`
}
