package model

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
)

// Role governs what an account is authorized to do.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// AccountStore defines persistence operations for accounts.
// Lookups never return soft-deleted accounts.
type AccountStore interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByVerificationToken(ctx context.Context, tokenHash string) (Account, error)
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (Account, error)
	Update(ctx context.Context, id uuid.UUID, update AccountUpdate) (Account, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter AccountFilter) ([]Account, int, error)
	Ping(ctx context.Context) error
}

// Account represents a stored account with its credential material.
type Account struct {
	ID                    uuid.UUID
	Email                 string
	PasswordHash          string
	FirstName             string
	LastName              string
	Phone                 *string
	IsActive              bool
	EmailVerified         bool
	VerificationTokenHash *string
	ResetTokenHash        *string
	ResetExpires          *time.Time
	LastLogin             *time.Time
	Role                  Role
	AvatarKey             *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             *time.Time
}

// HasRole reports whether the account role is one of roles.
func (a Account) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// AccountDraft carries the fields needed to create an account.
// Password is plaintext and is hashed before it reaches the store.
type AccountDraft struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	Phone         *string
	Role          Role
	EmailVerified bool
}

// AccountPatch is a partial update coming from callers of the credential store.
// A non-nil Password is hashed before persisting.
type AccountPatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	IsActive  *bool
	Role      *Role
	Password  *string
}

// AccountUpdate is the store-level partial update. Nil fields are left untouched.
type AccountUpdate struct {
	FirstName     *string
	LastName      *string
	Phone         *string
	IsActive      *bool
	Role          *Role
	PasswordHash  *string
	EmailVerified *bool
	LastLogin     *time.Time
	AvatarKey     *string

	// ClearVerificationToken nulls the verification token.
	ClearVerificationToken bool

	// ResetTokenHash and ResetExpires are set together. ClearResetToken nulls both.
	ResetTokenHash  *string
	ResetExpires    *time.Time
	ClearResetToken bool
}

// Empty reports whether the update changes nothing.
func (u AccountUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Phone == nil && u.IsActive == nil &&
		u.Role == nil && u.PasswordHash == nil && u.EmailVerified == nil && u.LastLogin == nil &&
		u.AvatarKey == nil && !u.ClearVerificationToken && u.ResetTokenHash == nil && !u.ClearResetToken
}

// SortField is a column accounts can be listed by.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByEmail     SortField = "email"
	SortByFirstName SortField = "firstName"
	SortByLastName  SortField = "lastName"
	SortByLastLogin SortField = "lastLogin"
)

// AccountFilter selects a page of accounts.
type AccountFilter struct {
	Page     int
	Limit    int
	SortBy   SortField
	SortDesc bool
	Search   string
	IsActive *bool
}

// Offset returns the number of rows to skip for the filter page. It saturates at math.MaxInt
// instead of overflowing, so a page past the end is simply empty.
func (f AccountFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// Pagination describes a page of a listing.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// AccountPage is one page of accounts.
type AccountPage struct {
	Accounts   []Account
	Pagination Pagination
}
