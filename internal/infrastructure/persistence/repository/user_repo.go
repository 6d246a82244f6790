package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/approval"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
	"github.com/salahatech/KFSH-Ordering-sub009/pkg/database"
)

// UserRepository implements the role/user directory over the users table.
type UserRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user directory repository
func NewUserRepository(db *database.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// ActiveUsersByRole returns every active user holding the role.
func (r *UserRepository) ActiveUsersByRole(ctx context.Context, role status.Role) ([]*approval.User, error) {
	query := `
		SELECT id, name, role, active
		FROM users
		WHERE role = ? AND active = 1
		ORDER BY id
	`

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, role.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	defer rows.Close()

	var users []*approval.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetUser returns a user by id; approval.ErrNotFound when absent.
func (r *UserRepository) GetUser(ctx context.Context, id int64) (*approval.User, error) {
	query := `SELECT id, name, role, active FROM users WHERE id = ?`

	row := r.db.Querier(ctx).QueryRowContext(ctx, query, id)
	var user approval.User
	var role string
	err := row.Scan(&user.ID, &user.Name, &role, &user.Active)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", id, approval.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Role = status.Role(role)
	return &user, nil
}

func scanUser(rows *sql.Rows) (*approval.User, error) {
	var user approval.User
	var role string
	if err := rows.Scan(&user.ID, &user.Name, &role, &user.Active); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	user.Role = status.Role(role)
	return &user, nil
}
