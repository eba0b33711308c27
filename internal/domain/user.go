package domain

import "time"

// UserStatus is the lifecycle state of a user account
type UserStatus string

const (
	UserStatusActive              UserStatus = "active"
	UserStatusInactive            UserStatus = "inactive"
	UserStatusSuspended           UserStatus = "suspended"
	UserStatusBanned              UserStatus = "banned"
	UserStatusPendingVerification UserStatus = "pending_verification"
)

// User represents a directory user account
type User struct {
	ID              string // UUID
	Name            string
	PhoneNumber     string // Unique, always present
	Email           string // Unique when present
	NationalID      string // Unique when present
	PasswordHash    string // Bcrypt hashed password (not returned in API)
	Status          UserStatus
	IsEmailVerified bool
	IsPhoneVerified bool
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserPatch carries the fields of a user update; nil means leave unchanged
type UserPatch struct {
	Name        *string `json:"name,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Email       *string `json:"email,omitempty"`
	NationalID  *string `json:"nationalId,omitempty"`
}

// UserFilter captures search parameters for users
type UserFilter struct {
	Query  string
	Status string
	Page   int
	Limit  int
	SortBy string
	Order  string
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByPhone(phone string) (*User, error)
	GetByEmail(email string) (*User, error)
	GetByNationalID(nationalID string) (*User, error)
	Update(user *User) error
	Delete(id string) error
	Search(filter UserFilter) ([]*User, int, error)
}
