package domain

import "time"

// TenantType classifies a tenant profile
type TenantType string

const (
	TenantTypeIndividual TenantType = "individual"
	TenantTypeFamily     TenantType = "family"
	TenantTypeCompany    TenantType = "company"
)

// TenantStatus is the lifecycle state of a tenant profile
type TenantStatus string

const (
	TenantStatusActive     TenantStatus = "active"
	TenantStatusInactive   TenantStatus = "inactive"
	TenantStatusPending    TenantStatus = "pending_approval"
	TenantStatusRejected   TenantStatus = "rejected"
	TenantStatusTerminated TenantStatus = "terminated"
)

// Tenant represents a renter profile linked to a user account
type Tenant struct {
	ID                string // UUID
	Name              string
	PhoneNumber       string // Unique, always present
	Email             string // Unique when present
	NationalID        string // Unique when present
	Type              TenantType
	Status            TenantStatus
	Address           Address
	Occupation        string
	MonthlyIncome     float64
	UserID            string // UUID of the owning user account, one profile per user
	CurrentPropertyID string // UUID of the occupied property, empty when unassigned
	CaretakerID       string // UUID of the responsible caretaker, empty when unassigned
	LeaseStartDate    *time.Time
	LeaseEndDate      *time.Time
	MonthlyRent       float64
	SecurityDeposit   float64
	LeaseTerms        string
	IsVerified        bool
	VerifiedAt        *time.Time
	ActiveLeases      int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TenantPatch carries the fields of a tenant update; nil means leave unchanged
type TenantPatch struct {
	Name          *string  `json:"name,omitempty"`
	PhoneNumber   *string  `json:"phoneNumber,omitempty"`
	Email         *string  `json:"email,omitempty"`
	NationalID    *string  `json:"nationalId,omitempty"`
	Type          *string  `json:"type,omitempty"`
	Status        *string  `json:"status,omitempty"`
	Address       *Address `json:"address,omitempty"`
	Occupation    *string  `json:"occupation,omitempty"`
	MonthlyIncome *float64 `json:"monthlyIncome,omitempty"`
	LeaseTerms    *string  `json:"leaseTerms,omitempty"`
}

// LeaseAssignment is the payload of a tenant-to-property assignment
type LeaseAssignment struct {
	PropertyID      string     `json:"propertyId"`
	CaretakerID     string     `json:"caretakerId"`
	LeaseStartDate  time.Time  `json:"leaseStartDate"`
	LeaseEndDate    *time.Time `json:"leaseEndDate,omitempty"`
	MonthlyRent     float64    `json:"monthlyRent"`
	SecurityDeposit float64    `json:"securityDeposit"`
	LeaseTerms      string     `json:"leaseTerms,omitempty"`
}

// TenantFilter captures search parameters for tenants
type TenantFilter struct {
	Query        string
	City         string
	District     string
	Type         string
	Status       string
	PropertyID   string
	CaretakerID  string
	OnlyVerified bool
	Page         int
	Limit        int
	SortBy       string
	Order        string
}

// TenantRepository defines data access for tenants
type TenantRepository interface {
	Create(tenant *Tenant) error
	GetByID(id string) (*Tenant, error)
	GetByUserID(userID string) (*Tenant, error)
	GetByPhone(phone string) (*Tenant, error)
	Update(tenant *Tenant) error
	Delete(id string) error
	Search(filter TenantFilter) ([]*Tenant, int, error)
}
