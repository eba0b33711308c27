package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iamEzaz/baribhara/internal/domain"
)

// PostgresUserRepository implements domain.UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserRepository{db: db, logger: logger}
}

const userColumns = `id, name, phone_number, COALESCE(email, ''), COALESCE(national_id, ''),
	password_hash, status, is_email_verified, is_phone_verified, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	u := &domain.User{}
	var lastLogin sql.NullTime
	err := row.Scan(
		&u.ID, &u.Name, &u.PhoneNumber, &u.Email, &u.NationalID,
		&u.PasswordHash, &u.Status, &u.IsEmailVerified, &u.IsPhoneVerified,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

// Create inserts a new user
func (r *PostgresUserRepository) Create(user *domain.User) error {
	query := `
		INSERT INTO users (id, name, phone_number, email, national_id, password_hash, status, is_email_verified, is_phone_verified)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(
		query,
		user.ID, user.Name, user.PhoneNumber, user.Email, user.NationalID,
		user.PasswordHash, user.Status, user.IsEmailVerified, user.IsPhoneVerified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.PhoneNumber, domain.ErrConflict)
		}
		r.logger.Error("failed to create user",
			slog.String("phone", user.PhoneNumber),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(id string) (*domain.User, error) {
	return r.getOne("id = $1", id)
}

// GetByPhone retrieves a user by phone number
func (r *PostgresUserRepository) GetByPhone(phone string) (*domain.User, error) {
	return r.getOne("phone_number = $1", phone)
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(email string) (*domain.User, error) {
	return r.getOne("email = $1", email)
}

// GetByNationalID retrieves a user by national ID
func (r *PostgresUserRepository) GetByNationalID(nationalID string) (*domain.User, error) {
	return r.getOne("national_id = $1", nationalID)
}

func (r *PostgresUserRepository) getOne(cond string, arg interface{}) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + cond
	u, err := scanUser(r.db.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// Update persists a modified user record
func (r *PostgresUserRepository) Update(user *domain.User) error {
	query := `
		UPDATE users
		SET name = $1, phone_number = $2, email = NULLIF($3, ''), national_id = NULLIF($4, ''),
			password_hash = $5, status = $6, is_email_verified = $7, is_phone_verified = $8,
			last_login_at = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`
	var lastLogin sql.NullTime
	if user.LastLoginAt != nil {
		lastLogin = sql.NullTime{Time: *user.LastLoginAt, Valid: true}
	}
	err := r.db.QueryRow(
		query,
		user.Name, user.PhoneNumber, user.Email, user.NationalID,
		user.PasswordHash, user.Status, user.IsEmailVerified, user.IsPhoneVerified,
		lastLogin, user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.ID, domain.ErrConflict)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes a user by ID
func (r *PostgresUserRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

var userSortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"name":        "name",
	"phoneNumber": "phone_number",
	"status":      "status",
}

// Search returns a filtered, paginated page of users and the total match count
func (r *PostgresUserRepository) Search(filter domain.UserFilter) ([]*domain.User, int, error) {
	b := &queryBuilder{}
	b.freeText(filter.Query, "name", "phone_number", "email")
	b.equal("status", filter.Status)
	b.sort(filter.SortBy, filter.Order, userSortColumns)
	b.paginate(filter.Page, filter.Limit)

	var total int
	countQuery := `SELECT COUNT(*) FROM users` + b.whereClause()
	if err := r.db.QueryRow(countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + b.whereClause() + b.tail()
	rows, err := r.db.Query(query, b.args...)
	if err != nil {
		r.logger.Error("failed to search users", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
