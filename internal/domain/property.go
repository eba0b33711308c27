package domain

import "time"

// PropertyType classifies a listed property
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeLand       PropertyType = "land"
)

// PropertyStatus is the lifecycle state of a property listing
type PropertyStatus string

const (
	PropertyStatusAvailable   PropertyStatus = "available"
	PropertyStatusOccupied    PropertyStatus = "occupied"
	PropertyStatusMaintenance PropertyStatus = "maintenance"
	PropertyStatusRented      PropertyStatus = "rented"
)

// Address is the postal address shared by properties and profiles
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	District   string `json:"district,omitempty"`
	Division   string `json:"division,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Landmark   string `json:"landmark,omitempty"`
}

// Property represents a rentable property managed by a caretaker
type Property struct {
	ID              string // UUID
	Name            string
	Description     string
	Type            PropertyType
	Status          PropertyStatus
	Address         Address
	RentAmount      float64
	SecurityDeposit float64
	Area            float64 // square feet
	Bedrooms        int
	Bathrooms       int
	Floor           int
	TotalFloors     int
	Amenities       []string
	Images          []string
	CaretakerID     string // UUID of the managing caretaker
	CurrentTenantID string // UUID of the occupying tenant, empty when vacant
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PropertyPatch carries the fields of a property update; nil means leave unchanged
type PropertyPatch struct {
	Name            *string   `json:"name,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Type            *string   `json:"type,omitempty"`
	Status          *string   `json:"status,omitempty"`
	Address         *Address  `json:"address,omitempty"`
	RentAmount      *float64  `json:"rentAmount,omitempty"`
	SecurityDeposit *float64  `json:"securityDeposit,omitempty"`
	Area            *float64  `json:"area,omitempty"`
	Bedrooms        *int      `json:"bedrooms,omitempty"`
	Bathrooms       *int      `json:"bathrooms,omitempty"`
	Floor           *int      `json:"floor,omitempty"`
	TotalFloors     *int      `json:"totalFloors,omitempty"`
	Amenities       *[]string `json:"amenities,omitempty"`
	Images          *[]string `json:"images,omitempty"`
	CurrentTenantID *string   `json:"currentTenantId,omitempty"`
}

// PropertyFilter captures search parameters for properties. Numeric ranges are
// inclusive; nil disables the bound.
type PropertyFilter struct {
	Query         string
	City          string
	District      string
	Type          string
	Status        string
	CaretakerID   string
	MinRent       *float64
	MaxRent       *float64
	MinBedrooms   *int
	MaxBedrooms   *int
	OnlyAvailable bool
	Page          int
	Limit         int
	SortBy        string
	Order         string
}

// PropertyRepository defines data access for properties
type PropertyRepository interface {
	Create(property *Property) error
	GetByID(id string) (*Property, error)
	Update(property *Property) error
	Delete(id string) error
	Search(filter PropertyFilter) ([]*Property, int, error)
}
