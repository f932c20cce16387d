package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nyumbani/rental-service/internal/config"
	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/utils"
)

const tokenTTL = 24 * time.Hour

type AuthService struct {
	cfg      *config.Config
	userRepo repositories.UserRepository
}

func NewAuthService(cfg *config.Config, userRepo repositories.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

// Login verifies the credentials and issues a signed token carrying the
// user's role. Unknown username and wrong password are deliberately
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *dtos.LoginRequest) (*dtos.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("login lookup: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &dtos.LoginResponse{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

// Register creates a login identity. Staff accounts can only be minted
// by existing staff; the controller enforces that.
func (s *AuthService) Register(ctx context.Context, req *dtos.RegisterUserRequest) (*models.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		IsStaff:      req.IsStaff,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUsername) {
			return nil, utils.ErrUsernameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role(),
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.cfg.RSAPrivateKey)
}
