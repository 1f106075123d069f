package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

const userColumns = `
	id, name, email, password_hash, role, phone, bio, hourly_rate,
	is_verified, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, email, passwordHash, role, phone string) (*User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING` + userColumns

	var u User
	err := r.db.GetContext(ctx, &u, query, name, email, passwordHash, role, phone)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &u, nil
}

func (r *repository) Update(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET name = $1, phone = $2, bio = $3, hourly_rate = $4, is_verified = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		u.Name, u.Phone, u.Bio, u.HourlyRate, u.IsVerified, u.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUser(ctx, `SELECT`+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	return r.getUser(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *repository) getUser(ctx context.Context, query string, arg interface{}) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repository) ListInstructors(ctx context.Context, onlyVerified bool, limit, offset int) ([]User, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT` + userColumns + ` FROM users WHERE role = 'instructor'`
	if onlyVerified {
		query += ` AND is_verified = TRUE`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	var instructors []User
	if err := r.db.SelectContext(ctx, &instructors, query, limit, offset); err != nil {
		return nil, err
	}

	return instructors, nil
}
