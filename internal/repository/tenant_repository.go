package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iamEzaz/baribhara/internal/domain"
)

// PostgresTenantRepository implements domain.TenantRepository using PostgreSQL
type PostgresTenantRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTenantRepository creates a new tenant repository
func NewPostgresTenantRepository(db *sql.DB, logger *slog.Logger) *PostgresTenantRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTenantRepository{db: db, logger: logger}
}

const tenantColumns = `id, name, phone_number, COALESCE(email, ''), COALESCE(national_id, ''), type, status,
	COALESCE(street, ''), COALESCE(city, ''), COALESCE(district, ''), COALESCE(division, ''), COALESCE(postal_code, ''),
	COALESCE(occupation, ''), COALESCE(monthly_income, 0), user_id,
	COALESCE(current_property_id::text, ''), COALESCE(caretaker_id::text, ''),
	lease_start_date, lease_end_date, COALESCE(monthly_rent, 0), COALESCE(security_deposit, 0),
	COALESCE(lease_terms, ''), is_verified, verified_at, active_leases, created_at, updated_at`

func scanTenant(row interface{ Scan(...interface{}) error }) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	var leaseStart, leaseEnd, verifiedAt sql.NullTime
	err := row.Scan(
		&t.ID, &t.Name, &t.PhoneNumber, &t.Email, &t.NationalID, &t.Type, &t.Status,
		&t.Address.Street, &t.Address.City, &t.Address.District, &t.Address.Division, &t.Address.PostalCode,
		&t.Occupation, &t.MonthlyIncome, &t.UserID,
		&t.CurrentPropertyID, &t.CaretakerID,
		&leaseStart, &leaseEnd, &t.MonthlyRent, &t.SecurityDeposit,
		&t.LeaseTerms, &t.IsVerified, &verifiedAt, &t.ActiveLeases, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if leaseStart.Valid {
		v := leaseStart.Time
		t.LeaseStartDate = &v
	}
	if leaseEnd.Valid {
		v := leaseEnd.Time
		t.LeaseEndDate = &v
	}
	if verifiedAt.Valid {
		v := verifiedAt.Time
		t.VerifiedAt = &v
	}
	return t, nil
}

// Create inserts a new tenant profile
func (r *PostgresTenantRepository) Create(tenant *domain.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, phone_number, email, national_id, type, status, street, city,
			district, division, postal_code, occupation, monthly_income, user_id, is_verified, active_leases)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, NULLIF($8, ''), NULLIF($9, ''),
			NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''), $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(
		query,
		tenant.ID, tenant.Name, tenant.PhoneNumber, tenant.Email, tenant.NationalID,
		tenant.Type, tenant.Status,
		tenant.Address.Street, tenant.Address.City, tenant.Address.District, tenant.Address.Division,
		tenant.Address.PostalCode, tenant.Occupation, tenant.MonthlyIncome, tenant.UserID,
		tenant.IsVerified, tenant.ActiveLeases,
	).Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tenant %s: %w", tenant.PhoneNumber, domain.ErrConflict)
		}
		r.logger.Error("failed to create tenant",
			slog.String("user_id", tenant.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// GetByID retrieves a tenant by ID
func (r *PostgresTenantRepository) GetByID(id string) (*domain.Tenant, error) {
	return r.getOne("id = $1", id)
}

// GetByUserID retrieves the tenant profile owned by a user account
func (r *PostgresTenantRepository) GetByUserID(userID string) (*domain.Tenant, error) {
	return r.getOne("user_id = $1", userID)
}

// GetByPhone retrieves a tenant by phone number
func (r *PostgresTenantRepository) GetByPhone(phone string) (*domain.Tenant, error) {
	return r.getOne("phone_number = $1", phone)
}

func (r *PostgresTenantRepository) getOne(cond string, arg interface{}) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE ` + cond
	t, err := scanTenant(r.db.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tenant: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

// Update persists a modified tenant record
func (r *PostgresTenantRepository) Update(tenant *domain.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, phone_number = $2, email = NULLIF($3, ''), national_id = NULLIF($4, ''),
			type = $5, status = $6,
			street = NULLIF($7, ''), city = NULLIF($8, ''), district = NULLIF($9, ''),
			division = NULLIF($10, ''), postal_code = NULLIF($11, ''),
			occupation = NULLIF($12, ''), monthly_income = $13,
			current_property_id = NULLIF($14, '')::uuid, caretaker_id = NULLIF($15, '')::uuid,
			lease_start_date = $16, lease_end_date = $17, monthly_rent = $18, security_deposit = $19,
			lease_terms = NULLIF($20, ''), is_verified = $21, verified_at = $22, active_leases = $23,
			updated_at = NOW()
		WHERE id = $24
		RETURNING updated_at
	`
	var leaseStart, leaseEnd, verifiedAt sql.NullTime
	if tenant.LeaseStartDate != nil {
		leaseStart = sql.NullTime{Time: *tenant.LeaseStartDate, Valid: true}
	}
	if tenant.LeaseEndDate != nil {
		leaseEnd = sql.NullTime{Time: *tenant.LeaseEndDate, Valid: true}
	}
	if tenant.VerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: *tenant.VerifiedAt, Valid: true}
	}
	err := r.db.QueryRow(
		query,
		tenant.Name, tenant.PhoneNumber, tenant.Email, tenant.NationalID,
		tenant.Type, tenant.Status,
		tenant.Address.Street, tenant.Address.City, tenant.Address.District,
		tenant.Address.Division, tenant.Address.PostalCode,
		tenant.Occupation, tenant.MonthlyIncome,
		tenant.CurrentPropertyID, tenant.CaretakerID,
		leaseStart, leaseEnd, tenant.MonthlyRent, tenant.SecurityDeposit,
		tenant.LeaseTerms, tenant.IsVerified, verifiedAt, tenant.ActiveLeases,
		tenant.ID,
	).Scan(&tenant.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("tenant %s: %w", tenant.ID, domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("tenant %s: %w", tenant.ID, domain.ErrConflict)
		}
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	return nil
}

// Delete removes a tenant by ID
func (r *PostgresTenantRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("tenant %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

var tenantSortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"name":        "name",
	"phoneNumber": "phone_number",
	"status":      "status",
	"monthlyRent": "monthly_rent",
}

// Search returns a filtered, paginated page of tenants and the total match count
func (r *PostgresTenantRepository) Search(filter domain.TenantFilter) ([]*domain.Tenant, int, error) {
	b := &queryBuilder{}
	b.freeText(filter.Query, "name", "phone_number", "email")
	b.equal("city", filter.City)
	b.equal("district", filter.District)
	b.equal("type", filter.Type)
	b.equal("status", filter.Status)
	b.equal("current_property_id::text", filter.PropertyID)
	b.equal("caretaker_id::text", filter.CaretakerID)
	if filter.OnlyVerified {
		b.where("is_verified = TRUE")
		b.where("status = " + b.bind(string(domain.TenantStatusActive)))
	}
	b.sort(filter.SortBy, filter.Order, tenantSortColumns)
	b.paginate(filter.Page, filter.Limit)

	var total int
	countQuery := `SELECT COUNT(*) FROM tenants` + b.whereClause()
	if err := r.db.QueryRow(countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	query := `SELECT ` + tenantColumns + ` FROM tenants` + b.whereClause() + b.tail()
	rows, err := r.db.Query(query, b.args...)
	if err != nil {
		r.logger.Error("failed to search tenants", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to search tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, total, rows.Err()
}
