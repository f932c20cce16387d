package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyumbani/rental-service/internal/config"
	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/utils"
)

type fakeUserRepo struct {
	byUsername map[string]*models.User
	createErr  error
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byUsername[u.Username] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return f.byUsername[username], nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	for name, u := range f.byUsername {
		if u.ID == id {
			delete(f.byUsername, name)
		}
	}
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	repo := &fakeUserRepo{byUsername: map[string]*models.User{}}
	cfg := &config.Config{RSAPrivateKey: key, RSAPublicKey: &key.PublicKey}
	return NewAuthService(cfg, repo), repo, key
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password string, staff bool) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		IsStaff:      staff,
	}
	repo.byUsername[username] = u
	return u
}

func TestLoginIssuesRoleToken(t *testing.T) {
	svc, repo, key := newAuthFixture(t)
	u := seedUser(t, repo, "admin", "admin12345", true)

	resp, err := svc.Login(context.Background(), &dtos.LoginRequest{Username: "admin", Password: "admin12345"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.UserID)
	assert.Equal(t, models.RoleStaff, resp.Role)

	tok, err := jwt.Parse(resp.Token, func(t *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, u.ID.String(), claims["sub"])
	assert.Equal(t, models.RoleStaff, claims["role"])
}

func TestLoginUnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	seedUser(t, repo, "admin", "admin12345", true)

	_, errUnknown := svc.Login(context.Background(), &dtos.LoginRequest{Username: "nobody", Password: "admin12345"})
	_, errWrongPw := svc.Login(context.Background(), &dtos.LoginRequest{Username: "admin", Password: "wrong"})

	assert.ErrorIs(t, errUnknown, utils.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, utils.ErrInvalidCredentials)
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)

	u, err := svc.Register(context.Background(), &dtos.RegisterUserRequest{
		Username: "jane",
		Email:    "jane@example.com",
		Password: "s3cret-pw",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pw", u.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("s3cret-pw", u.PasswordHash))
	assert.Equal(t, models.RoleTenant, u.Role())
	assert.NotNil(t, repo.byUsername["jane"])
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	repo.createErr = repositories.ErrDuplicateUsername

	_, err := svc.Register(context.Background(), &dtos.RegisterUserRequest{
		Username: "admin",
		Password: "pw123456",
	})
	assert.ErrorIs(t, err, utils.ErrUsernameExists)
}
