package user

import "context"

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash, role, phone string) (*User, error)
	Update(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListInstructors(ctx context.Context, onlyVerified bool, limit, offset int) ([]User, error)
}
