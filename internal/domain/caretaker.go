package domain

import "time"

// CaretakerType classifies a caretaker profile
type CaretakerType string

const (
	CaretakerTypeIndividual CaretakerType = "individual"
	CaretakerTypeCompany    CaretakerType = "company"
	CaretakerTypeAgency     CaretakerType = "agency"
)

// CaretakerStatus is the lifecycle state of a caretaker profile
type CaretakerStatus string

const (
	CaretakerStatusActive    CaretakerStatus = "active"
	CaretakerStatusInactive  CaretakerStatus = "inactive"
	CaretakerStatusSuspended CaretakerStatus = "suspended"
)

// Caretaker represents a property manager profile linked to a user account
type Caretaker struct {
	ID               string // UUID
	Name             string
	PhoneNumber      string // Unique, always present
	Email            string // Unique when present
	NationalID       string // Unique when present
	Type             CaretakerType
	Status           CaretakerStatus
	CompanyName      string
	LicenseNumber    string
	Description      string
	Address          Address
	Specialties      []string
	Languages        []string
	Rating           float64
	TotalProperties  int
	ActiveProperties int
	TotalTenants     int
	IsVerified       bool
	VerifiedAt       *time.Time
	Documents        []string
	UserID           string // UUID of the owning user account, one profile per user
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CaretakerPatch carries the fields of a caretaker update; nil means leave unchanged
type CaretakerPatch struct {
	Name          *string   `json:"name,omitempty"`
	Email         *string   `json:"email,omitempty"`
	NationalID    *string   `json:"nationalId,omitempty"`
	Type          *string   `json:"type,omitempty"`
	CompanyName   *string   `json:"companyName,omitempty"`
	LicenseNumber *string   `json:"licenseNumber,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Address       *Address  `json:"address,omitempty"`
	Specialties   *[]string `json:"specialties,omitempty"`
	Languages     *[]string `json:"languages,omitempty"`
	Documents     *[]string `json:"documents,omitempty"`
}

// CaretakerFilter captures search parameters for caretakers
type CaretakerFilter struct {
	Query        string
	City         string
	District     string
	Type         string
	Status       string
	MinRating    *float64
	OnlyVerified bool
	Page         int
	Limit        int
	SortBy       string
	Order        string
}

// CaretakerRepository defines data access for caretakers
type CaretakerRepository interface {
	Create(caretaker *Caretaker) error
	GetByID(id string) (*Caretaker, error)
	GetByUserID(userID string) (*Caretaker, error)
	GetByPhone(phone string) (*Caretaker, error)
	Update(caretaker *Caretaker) error
	Delete(id string) error
	Search(filter CaretakerFilter) ([]*Caretaker, int, error)
}
