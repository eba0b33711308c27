package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/iamEzaz/baribhara/internal/domain"
)

// PostgresPropertyRepository implements domain.PropertyRepository using PostgreSQL
type PostgresPropertyRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPropertyRepository creates a new property repository
func NewPostgresPropertyRepository(db *sql.DB, logger *slog.Logger) *PostgresPropertyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPropertyRepository{db: db, logger: logger}
}

const propertyColumns = `id, name, COALESCE(description, ''), type, status,
	COALESCE(street, ''), COALESCE(city, ''), COALESCE(district, ''), COALESCE(division, ''),
	COALESCE(postal_code, ''), COALESCE(landmark, ''),
	rent_amount, security_deposit, area,
	COALESCE(bedrooms, 0), COALESCE(bathrooms, 0), COALESCE(floor, 0), COALESCE(total_floors, 0),
	amenities, images, caretaker_id, COALESCE(current_tenant_id::text, ''), created_at, updated_at`

func scanProperty(row interface{ Scan(...interface{}) error }) (*domain.Property, error) {
	p := &domain.Property{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Type, &p.Status,
		&p.Address.Street, &p.Address.City, &p.Address.District, &p.Address.Division,
		&p.Address.PostalCode, &p.Address.Landmark,
		&p.RentAmount, &p.SecurityDeposit, &p.Area, &p.Bedrooms, &p.Bathrooms, &p.Floor, &p.TotalFloors,
		pq.Array(&p.Amenities), pq.Array(&p.Images), &p.CaretakerID, &p.CurrentTenantID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new property listing
func (r *PostgresPropertyRepository) Create(property *domain.Property) error {
	query := `
		INSERT INTO properties (id, name, description, type, status, street, city, district, division,
			postal_code, landmark, rent_amount, security_deposit, area, bedrooms, bathrooms, floor,
			total_floors, amenities, images, caretaker_id, current_tenant_id)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
			NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, NULLIF($22, '')::uuid)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(
		query,
		property.ID, property.Name, property.Description, property.Type, property.Status,
		property.Address.Street, property.Address.City, property.Address.District, property.Address.Division,
		property.Address.PostalCode, property.Address.Landmark,
		property.RentAmount, property.SecurityDeposit, property.Area,
		property.Bedrooms, property.Bathrooms, property.Floor, property.TotalFloors,
		pq.Array(property.Amenities), pq.Array(property.Images),
		property.CaretakerID, property.CurrentTenantID,
	).Scan(&property.CreatedAt, &property.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create property",
			slog.String("name", property.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

// GetByID retrieves a property by ID
func (r *PostgresPropertyRepository) GetByID(id string) (*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return p, nil
}

// Update persists a modified property record
func (r *PostgresPropertyRepository) Update(property *domain.Property) error {
	query := `
		UPDATE properties
		SET name = $1, description = NULLIF($2, ''), type = $3, status = $4,
			street = NULLIF($5, ''), city = NULLIF($6, ''), district = NULLIF($7, ''), division = NULLIF($8, ''),
			postal_code = NULLIF($9, ''), landmark = NULLIF($10, ''),
			rent_amount = $11, security_deposit = $12, area = $13, bedrooms = $14, bathrooms = $15,
			floor = $16, total_floors = $17, amenities = $18, images = $19,
			current_tenant_id = NULLIF($20, '')::uuid, updated_at = NOW()
		WHERE id = $21
		RETURNING updated_at
	`
	err := r.db.QueryRow(
		query,
		property.Name, property.Description, property.Type, property.Status,
		property.Address.Street, property.Address.City, property.Address.District, property.Address.Division,
		property.Address.PostalCode, property.Address.Landmark,
		property.RentAmount, property.SecurityDeposit, property.Area, property.Bedrooms, property.Bathrooms,
		property.Floor, property.TotalFloors, pq.Array(property.Amenities), pq.Array(property.Images),
		property.CurrentTenantID, property.ID,
	).Scan(&property.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("property %s: %w", property.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update property: %w", err)
	}
	return nil
}

// Delete removes a property by ID
func (r *PostgresPropertyRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

var propertySortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"name":       "name",
	"rentAmount": "rent_amount",
	"area":       "area",
	"bedrooms":   "bedrooms",
}

// Search returns a filtered, paginated page of properties and the total match count
func (r *PostgresPropertyRepository) Search(filter domain.PropertyFilter) ([]*domain.Property, int, error) {
	b := &queryBuilder{}
	b.freeText(filter.Query, "name", "city", "district")
	b.equal("city", filter.City)
	b.equal("district", filter.District)
	b.equal("type", filter.Type)
	b.equal("status", filter.Status)
	b.equal("caretaker_id", filter.CaretakerID)
	b.rangeFloat("rent_amount", filter.MinRent, filter.MaxRent)
	b.rangeInt("bedrooms", filter.MinBedrooms, filter.MaxBedrooms)
	if filter.OnlyAvailable {
		b.where("status = " + b.bind(string(domain.PropertyStatusAvailable)))
	}
	b.sort(filter.SortBy, filter.Order, propertySortColumns)
	b.paginate(filter.Page, filter.Limit)

	var total int
	countQuery := `SELECT COUNT(*) FROM properties` + b.whereClause()
	if err := r.db.QueryRow(countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	query := `SELECT ` + propertyColumns + ` FROM properties` + b.whereClause() + b.tail()
	rows, err := r.db.Query(query, b.args...)
	if err != nil {
		r.logger.Error("failed to search properties", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to search properties: %w", err)
	}
	defer rows.Close()

	var properties []*domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}
	return properties, total, rows.Err()
}
