package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-site-api/internal/models"
)

const adminUserColumns = `id, email, password_hash, role, created_at`

// AdminUserRepository provides database access for admin panel accounts.
type AdminUserRepository struct {
	db *sqlx.DB
}

// NewAdminUserRepository creates a new instance of AdminUserRepository.
func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// FindByEmail returns an admin user by email address.
func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	query := r.db.Rebind(`SELECT ` + adminUserColumns + ` FROM admin_users WHERE email = ? LIMIT 1`)
	var user models.AdminUser
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns an admin user by identifier.
func (r *AdminUserRepository) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	query := r.db.Rebind(`SELECT ` + adminUserColumns + ` FROM admin_users WHERE id = ? LIMIT 1`)
	var user models.AdminUser
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin user by id: %w", err)
	}
	return &user, nil
}

// Count returns the number of admin accounts.
func (r *AdminUserRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM admin_users`); err != nil {
		return 0, fmt.Errorf("count admin users: %w", err)
	}
	return total, nil
}

// Create inserts an admin user.
func (r *AdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	query := r.db.Rebind(`INSERT INTO admin_users (` + adminUserColumns + `) VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.Role, user.CreatedAt); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	return nil
}
