package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/iamEzaz/baribhara/internal/domain"
)

// PostgresCaretakerRepository implements domain.CaretakerRepository using PostgreSQL
type PostgresCaretakerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCaretakerRepository creates a new caretaker repository
func NewPostgresCaretakerRepository(db *sql.DB, logger *slog.Logger) *PostgresCaretakerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCaretakerRepository{db: db, logger: logger}
}

const caretakerColumns = `id, name, phone_number, COALESCE(email, ''), COALESCE(national_id, ''), type, status,
	COALESCE(street, ''), COALESCE(city, ''), COALESCE(district, ''), COALESCE(division, ''), COALESCE(postal_code, ''),
	COALESCE(company_name, ''), COALESCE(license_number, ''), COALESCE(description, ''),
	specialties, languages, documents,
	COALESCE(rating, 0), total_properties, active_properties, total_tenants,
	is_verified, verified_at, user_id, created_at, updated_at`

func scanCaretaker(row interface{ Scan(...interface{}) error }) (*domain.Caretaker, error) {
	c := &domain.Caretaker{}
	var verifiedAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.Name, &c.PhoneNumber, &c.Email, &c.NationalID, &c.Type, &c.Status,
		&c.Address.Street, &c.Address.City, &c.Address.District, &c.Address.Division, &c.Address.PostalCode,
		&c.CompanyName, &c.LicenseNumber, &c.Description,
		pq.Array(&c.Specialties), pq.Array(&c.Languages), pq.Array(&c.Documents),
		&c.Rating, &c.TotalProperties, &c.ActiveProperties, &c.TotalTenants,
		&c.IsVerified, &verifiedAt, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if verifiedAt.Valid {
		v := verifiedAt.Time
		c.VerifiedAt = &v
	}
	return c, nil
}

// Create inserts a new caretaker profile
func (r *PostgresCaretakerRepository) Create(caretaker *domain.Caretaker) error {
	query := `
		INSERT INTO caretakers (id, name, phone_number, email, national_id, type, status, street, city,
			district, division, postal_code, company_name, license_number, description, specialties,
			languages, documents, rating, total_properties, active_properties, total_tenants, is_verified, user_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, NULLIF($8, ''), NULLIF($9, ''),
			NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''), NULLIF($14, ''), NULLIF($15, ''),
			$16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(
		query,
		caretaker.ID, caretaker.Name, caretaker.PhoneNumber, caretaker.Email, caretaker.NationalID,
		caretaker.Type, caretaker.Status,
		caretaker.Address.Street, caretaker.Address.City, caretaker.Address.District,
		caretaker.Address.Division, caretaker.Address.PostalCode,
		caretaker.CompanyName, caretaker.LicenseNumber, caretaker.Description,
		pq.Array(caretaker.Specialties), pq.Array(caretaker.Languages), pq.Array(caretaker.Documents),
		caretaker.Rating, caretaker.TotalProperties, caretaker.ActiveProperties, caretaker.TotalTenants,
		caretaker.IsVerified, caretaker.UserID,
	).Scan(&caretaker.CreatedAt, &caretaker.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("caretaker %s: %w", caretaker.PhoneNumber, domain.ErrConflict)
		}
		r.logger.Error("failed to create caretaker",
			slog.String("user_id", caretaker.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create caretaker: %w", err)
	}
	return nil
}

// GetByID retrieves a caretaker by ID
func (r *PostgresCaretakerRepository) GetByID(id string) (*domain.Caretaker, error) {
	return r.getOne("id = $1", id)
}

// GetByUserID retrieves the caretaker profile owned by a user account
func (r *PostgresCaretakerRepository) GetByUserID(userID string) (*domain.Caretaker, error) {
	return r.getOne("user_id = $1", userID)
}

// GetByPhone retrieves a caretaker by phone number
func (r *PostgresCaretakerRepository) GetByPhone(phone string) (*domain.Caretaker, error) {
	return r.getOne("phone_number = $1", phone)
}

func (r *PostgresCaretakerRepository) getOne(cond string, arg interface{}) (*domain.Caretaker, error) {
	query := `SELECT ` + caretakerColumns + ` FROM caretakers WHERE ` + cond
	c, err := scanCaretaker(r.db.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("caretaker: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get caretaker: %w", err)
	}
	return c, nil
}

// Update persists a modified caretaker record
func (r *PostgresCaretakerRepository) Update(caretaker *domain.Caretaker) error {
	query := `
		UPDATE caretakers
		SET name = $1, phone_number = $2, email = NULLIF($3, ''), national_id = NULLIF($4, ''),
			type = $5, status = $6,
			street = NULLIF($7, ''), city = NULLIF($8, ''), district = NULLIF($9, ''),
			division = NULLIF($10, ''), postal_code = NULLIF($11, ''),
			company_name = NULLIF($12, ''), license_number = NULLIF($13, ''), description = NULLIF($14, ''),
			specialties = $15, languages = $16, documents = $17,
			rating = $18, total_properties = $19, active_properties = $20, total_tenants = $21,
			is_verified = $22, verified_at = $23, updated_at = NOW()
		WHERE id = $24
		RETURNING updated_at
	`
	var verifiedAt sql.NullTime
	if caretaker.VerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: *caretaker.VerifiedAt, Valid: true}
	}
	err := r.db.QueryRow(
		query,
		caretaker.Name, caretaker.PhoneNumber, caretaker.Email, caretaker.NationalID,
		caretaker.Type, caretaker.Status,
		caretaker.Address.Street, caretaker.Address.City, caretaker.Address.District,
		caretaker.Address.Division, caretaker.Address.PostalCode,
		caretaker.CompanyName, caretaker.LicenseNumber, caretaker.Description,
		pq.Array(caretaker.Specialties), pq.Array(caretaker.Languages), pq.Array(caretaker.Documents),
		caretaker.Rating, caretaker.TotalProperties, caretaker.ActiveProperties, caretaker.TotalTenants,
		caretaker.IsVerified, verifiedAt, caretaker.ID,
	).Scan(&caretaker.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("caretaker %s: %w", caretaker.ID, domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("caretaker %s: %w", caretaker.ID, domain.ErrConflict)
		}
		return fmt.Errorf("failed to update caretaker: %w", err)
	}
	return nil
}

// Delete removes a caretaker by ID
func (r *PostgresCaretakerRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM caretakers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete caretaker: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("caretaker %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

var caretakerSortColumns = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"name":            "name",
	"rating":          "rating",
	"totalProperties": "total_properties",
	"status":          "status",
}

// Search returns a filtered, paginated page of caretakers and the total match count
func (r *PostgresCaretakerRepository) Search(filter domain.CaretakerFilter) ([]*domain.Caretaker, int, error) {
	b := &queryBuilder{}
	b.freeText(filter.Query, "name", "phone_number", "company_name")
	b.equal("city", filter.City)
	b.equal("district", filter.District)
	b.equal("type", filter.Type)
	b.equal("status", filter.Status)
	b.rangeFloat("rating", filter.MinRating, nil)
	if filter.OnlyVerified {
		b.where("is_verified = TRUE")
		b.where("status = " + b.bind(string(domain.CaretakerStatusActive)))
	}
	b.sort(filter.SortBy, filter.Order, caretakerSortColumns)
	b.paginate(filter.Page, filter.Limit)

	var total int
	countQuery := `SELECT COUNT(*) FROM caretakers` + b.whereClause()
	if err := r.db.QueryRow(countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count caretakers: %w", err)
	}

	query := `SELECT ` + caretakerColumns + ` FROM caretakers` + b.whereClause() + b.tail()
	rows, err := r.db.Query(query, b.args...)
	if err != nil {
		r.logger.Error("failed to search caretakers", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to search caretakers: %w", err)
	}
	defer rows.Close()

	var caretakers []*domain.Caretaker
	for rows.Next() {
		c, err := scanCaretaker(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan caretaker: %w", err)
		}
		caretakers = append(caretakers, c)
	}
	return caretakers, total, rows.Err()
}
