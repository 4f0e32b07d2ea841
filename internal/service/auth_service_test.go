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
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/wallsetting-api/internal/models"
	appErrors "github.com/noah-isme/wallsetting-api/pkg/errors"
)

type mockAuthRepo struct {
	user             *models.User
	findErr          error
	lastLoginUpdated bool
	created          []*models.User
}

func (m *mockAuthRepo) Count(ctx context.Context) (int, error) {
	if m.user != nil {
		return 1, nil
	}
	return len(m.created), nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	m.created = append(m.created, user)
	return nil
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.Username != username {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func newAuthFixture(t *testing.T, active bool) (*AuthService, *mockAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("climb-on"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{user: &models.User{
		ID:           "u1",
		Username:     "setter",
		PasswordHash: string(hash),
		DisplayName:  "Head Setter",
		Role:         models.RoleAdmin,
		Active:       active,
	}}
	svc := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "wallsetting-api"})
	return svc, repo
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	svc, repo := newAuthFixture(t, true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "setter", Password: "climb-on"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "setter", claims.Username)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "setter", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "climb-on"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "setter"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	svc, _ := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "setter", Password: "climb-on"})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestAuthServiceLoginStoreFailure(t *testing.T) {
	svc, repo := newAuthFixture(t, true)
	repo.findErr = errors.New("db down")

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "setter", Password: "climb-on"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestAuthServiceValidateTokenRejectsExpired(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "setter", Password: "climb-on"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceValidateTokenRejectsOtherSigningMethod(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{Issuer: "wallsetting-api"}})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceValidateTokenRejectsForeignIssuer(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	other := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "someone-else"})
	signed, err := other.generateAccessToken(&models.User{ID: "u1"}, time.Now())
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceMe(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	info, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Head Setter", info.DisplayName)

	_, err = svc.Me(context.Background(), "u2")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("climb-on")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("climb-on")))
}

func TestAuthServiceEnsureBootstrapAdmin(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "secret"})

	created, err := svc.EnsureBootstrapAdmin(context.Background(), "root", "pw")
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, repo.created, 1)
	assert.Equal(t, models.RoleSuperAdmin, repo.created[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created[0].PasswordHash), []byte("pw")))

	created, err = svc.EnsureBootstrapAdmin(context.Background(), "root", "pw")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureBootstrapAdmin(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, created)
}
