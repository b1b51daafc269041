package postgres

import (
	"context"
	"errors"

	"github.com/chungyifen/tax-refund/internal/errs"
	"github.com/chungyifen/tax-refund/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO sys_user (id, username, pwd_hash, salt_auth, email, enabled)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.PwdHash, u.SaltAuth, u.Email, u.Enabled)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// AssignRole links a user to a role by name.
func (r *UserRepo) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	const q = `
INSERT INTO sys_user_roles (user_id, role_id)
SELECT $1, id FROM sys_role WHERE name = $2`
	tag, err := r.db.Pool.Exec(ctx, q, userID, roleName)
	if isUniqueViolation(err) {
		return nil // already assigned
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound // no such role
	}
	return nil
}

// GetByUsername selects a user by unique username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
SELECT id, username, pwd_hash, salt_auth, email, enabled, created_at
FROM sys_user WHERE username=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, username))
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `
SELECT id, username, pwd_hash, salt_auth, email, enabled, created_at
FROM sys_user WHERE id=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

type rowScanner interface{ Scan(dest ...any) error }

func (r *UserRepo) scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PwdHash, &u.SaltAuth, &u.Email, &u.Enabled, &u.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

// Authorities returns role names and function codes granted to the user.
func (r *UserRepo) Authorities(ctx context.Context, id uuid.UUID) ([]string, error) {
	const q = `
SELECT r.name AS authority
FROM sys_role r JOIN sys_user_roles ur ON ur.role_id = r.id
WHERE ur.user_id = $1
UNION
SELECT f.code
FROM sys_function f
JOIN sys_role_functions rf ON rf.function_id = f.id
JOIN sys_user_roles ur ON ur.role_id = rf.role_id
WHERE ur.user_id = $1
ORDER BY authority`
	rows, err := r.db.Pool.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// List returns all accounts with aggregated role names.
func (r *UserRepo) List(ctx context.Context) ([]model.UserSummary, error) {
	const q = `
SELECT u.id, u.username, u.email, u.enabled,
       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}')
FROM sys_user u
LEFT JOIN sys_user_roles ur ON ur.user_id = u.id
LEFT JOIN sys_role r ON r.id = ur.role_id
GROUP BY u.id, u.username, u.email, u.enabled
ORDER BY u.username`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserSummary
	for rows.Next() {
		var s model.UserSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.Email, &s.Enabled, &s.Roles); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
