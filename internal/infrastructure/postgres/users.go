package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/pkg/dbutil"
)

var userColumns = []string{"id", "name", "email", "phone", "password_hash", "role", "created_at", "updated_at"}

// UserRepo provides typed Postgres operations for the users table.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	data := map[string]interface{}{
		"id":            u.UserID,
		"name":          u.Name,
		"email":         u.Email,
		"phone":         u.Phone,
		"password_hash": u.PasswordHash,
		"role":          u.Role,
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.getBy(ctx, map[string]interface{}{"id": userID})
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, map[string]interface{}{"email": email})
}

func (r *UserRepo) getBy(ctx context.Context, where map[string]interface{}) (*domain.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", where, userColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var u domain.User
	err = row.Scan(&u.UserID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", map[string]interface{}{"_orderby": "created_at desc"}, userColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.UserID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdatePassword replaces the stored bcrypt hash for email.
func (r *UserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	sqlStr, args, err := builder.BuildUpdate("users",
		map[string]interface{}{"email": email},
		map[string]interface{}{"password_hash": passwordHash, "updated_at": time.Now().UTC()})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, userID string) error {
	sqlStr, args, err := builder.BuildDelete("users", map[string]interface{}{"id": userID})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}
