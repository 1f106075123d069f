package user

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/auth"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/logger"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/wallet"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotInstructor      = errors.New("user is not an instructor")
	ErrAlreadyVerified    = errors.New("instructor already verified")
	ErrInvalidHourlyRate  = errors.New("hourly rate must be positive")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	ListInstructors(ctx context.Context, limit, offset int) ([]User, error)
	VerifyInstructor(ctx context.Context, instructorID int, currency string) (*User, error)
}

type service struct {
	repo      Repository
	wallets   wallet.Service
	jwtSecret string
}

func NewService(repo Repository, wallets wallet.Service, jwtSecret string) Service {
	return &service{
		repo:      repo,
		wallets:   wallets,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	role := req.Role
	if role == "" {
		role = auth.RoleStudent
	}

	u, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, role, req.Phone)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		u.ID,
		u.Email,
		u.Role,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		u.ID,
		u.Email,
		u.Role,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Phone != "" {
		u.Phone = req.Phone
	}
	if req.Bio != "" {
		u.Bio = req.Bio
	}
	if req.HourlyRate != nil {
		if u.Role != auth.RoleInstructor {
			return nil, ErrNotInstructor
		}
		rate, err := decimal.NewFromString(*req.HourlyRate)
		if err != nil || !rate.IsPositive() {
			return nil, ErrInvalidHourlyRate
		}
		u.HourlyRate = &rate
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	newAccessToken, err := auth.GenerateAccessToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, u, nil
}

func (s *service) ListInstructors(ctx context.Context, limit, offset int) ([]User, error) {
	return s.repo.ListInstructors(ctx, true, limit, offset)
}

// VerifyInstructor flips the verification flag and opens the instructor's
// wallet. The wallet is the marker that the instructor can earn.
func (s *service) VerifyInstructor(ctx context.Context, instructorID int, currency string) (*User, error) {
	u, err := s.repo.FindByID(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	if u.Role != auth.RoleInstructor {
		return nil, ErrNotInstructor
	}
	if u.IsVerified {
		return nil, ErrAlreadyVerified
	}

	u.IsVerified = true
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	if _, err := s.wallets.CreateWallet(ctx, u.ID, currency); err != nil && !errors.Is(err, wallet.ErrWalletExists) {
		logger.Errorf("wallet creation for instructor %d failed: %v", u.ID, err)
		return nil, err
	}

	return u, nil
}
