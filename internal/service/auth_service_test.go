package service

import (
	"context"
	"testing"

	"mixshare/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*fakeUserRepo, AuthService) {
	users := newFakeUserRepo()
	return users, NewAuthService(users, nil, testConfig())
}

func registerTestUser(t *testing.T, svc AuthService) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "maria@example.com",
		Username: "maria",
		Name:     "Maria",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterIssuesTokens(t *testing.T) {
	_, svc := newAuthFixture()
	resp := registerTestUser(t, svc)

	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.False(t, resp.User.IsAdmin)

	claims, err := util.ValidateToken(resp.Tokens.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, util.TokenTypeAccess, claims.Type)
	assert.Equal(t, resp.User.ID.Hex(), claims.UserID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	_, svc := newAuthFixture()
	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "maria@example.com",
		Username: "other",
		Name:     "Other",
		Password: "some-password-123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Email:    "other@example.com",
		Username: "maria",
		Name:     "Other",
		Password: "some-password-123",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	_, svc := newAuthFixture()
	registerTestUser(t, svc)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "maria@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "maria@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email reads the same as a bad password
	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "anything",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBannedUser(t *testing.T) {
	users, svc := newAuthFixture()
	resp := registerTestUser(t, svc)

	require.NoError(t, users.SetBanned(context.Background(), resp.User.ID, true))

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "maria@example.com",
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, ErrAccountBanned)
}

func TestRefreshRotatesTokens(t *testing.T) {
	_, svc := newAuthFixture()
	resp := registerTestUser(t, svc)

	tokens, err := svc.Refresh(context.Background(), RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	_, svc := newAuthFixture()
	resp := registerTestUser(t, svc)

	// An access token is not a refresh token
	_, err := svc.Refresh(context.Background(), RefreshRequest{RefreshToken: resp.Tokens.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(context.Background(), RefreshRequest{RefreshToken: "garbage"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsBannedUser(t *testing.T) {
	users, svc := newAuthFixture()
	resp := registerTestUser(t, svc)

	require.NoError(t, users.SetBanned(context.Background(), resp.User.ID, true))

	_, err := svc.Refresh(context.Background(), RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrAccountBanned)
}
