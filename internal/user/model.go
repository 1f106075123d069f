package user

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is any account on the platform. Instructors additionally carry an
// hourly rate and a verification flag; a wallet exists only once verified.
type User struct {
	ID           int              `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Email        string           `db:"email" json:"email"`
	PasswordHash string           `db:"password_hash" json:"-"`
	Role         string           `db:"role" json:"role"`
	Phone        string           `db:"phone" json:"phone,omitempty"`
	Bio          string           `db:"bio" json:"bio,omitempty"`
	HourlyRate   *decimal.Decimal `db:"hourly_rate" json:"hourly_rate,omitempty"`
	IsVerified   bool             `db:"is_verified" json:"is_verified"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=student instructor"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type UpdateProfileRequest struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Bio        string  `json:"bio"`
	HourlyRate *string `json:"hourly_rate"`
}
