package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/unischedule-api/internal/models"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail      *models.User
	findByEmailErr   error
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func newAuthFixture(t *testing.T, password string) (*AuthService, *mockAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	dept := "dept-1"
	repo := &mockAuthRepo{userByEmail: &models.User{
		ID:           "user-1",
		Email:        "head@example.edu",
		PasswordHash: string(hash),
		FullName:     "Department Head",
		Role:         models.RoleDepartmentHead,
		DepartmentID: &dept,
		Active:       true,
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "unischedule-test",
	})
	return svc, repo
}

func TestAuthServiceLoginIssuesScopedToken(t *testing.T) {
	svc, repo := newAuthFixture(t, "password123")

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "head@example.edu", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "dept-1", resp.User.DepartmentID)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDepartmentHead, claims.Role)
	assert.Equal(t, "dept-1", claims.DepartmentID)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestAuthServiceLoginInvalidPassword(t *testing.T) {
	svc, _ := newAuthFixture(t, "password123")

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "head@example.edu", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc, repo := newAuthFixture(t, "password123")
	repo.findByEmailErr = sql.ErrNoRows

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.edu", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Status, appErrors.FromError(err).Status)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	svc, repo := newAuthFixture(t, "password123")
	repo.userByEmail.Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "head@example.edu", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRepositoryFailure(t *testing.T) {
	svc, repo := newAuthFixture(t, "password123")
	repo.findByEmailErr = errors.New("db down")

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "head@example.edu", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc, _ := newAuthFixture(t, "password123")

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceIssueTokenRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthFixture(t, "password123")

	_, _, err := svc.IssueToken(models.JWTClaims{UserID: "u", Role: "JANITOR"})
	assert.Error(t, err)
}

func TestAuthServiceValidateTokenRejectsForeignIssuer(t *testing.T) {
	svc, _ := newAuthFixture(t, "password123")
	other := NewAuthService(nil, nil, nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "someone-else"})

	token, _, err := other.IssueToken(models.JWTClaims{UserID: "u", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	svc, _ := newAuthFixture(t, "password123")

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &models.JWTClaims{
		UserID:           "u",
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "unischedule-test"},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}
