package handler

import (
	"net/http"
	"testing"

	"socialnet/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func (a *testAPI) setPassword(u models.User, password string) {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(a.t, err)
	require.NoError(a.t, a.db.Model(&u).Update("password_hash", string(hash)).Error)
}

func (a *testAPI) login(name, password string) int {
	a.t.Helper()
	return a.do(http.MethodPost, "/auth/login", "", LoginInput{Login: name, Password: password}).Code
}

func TestChangePassword(t *testing.T) {
	api := newTestAPI(t)
	alice := api.user("alice")
	api.setPassword(alice, "password123")
	tok := api.token(alice)

	w := api.do(http.MethodPut, "/users/me/password", tok, ChangePasswordInput{OldPassword: "wrong-password", NewPassword: "password456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodPut, "/users/me/password", tok, ChangePasswordInput{OldPassword: "password123", NewPassword: "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodPut, "/users/me/password", "", ChangePasswordInput{OldPassword: "password123", NewPassword: "password456"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusOK, api.login("alice", "password123"))

	w = api.do(http.MethodPut, "/users/me/password", tok, ChangePasswordInput{OldPassword: "password123", NewPassword: "password456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, api.login("alice", "password123"))
	assert.Equal(t, http.StatusOK, api.login("alice", "password456"))
}

func TestPasswordReset(t *testing.T) {
	api := newTestAPI(t)
	alice := api.user("alice")
	api.setPassword(alice, "password123")

	// Unknown addresses get the same answer without a token.
	w := api.do(http.MethodPost, "/auth/password-reset", "", PasswordResetInput{Email: "nobody@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[PasswordResetResponse](t, w).ResetToken)

	w = api.do(http.MethodPost, "/auth/password-reset", "", PasswordResetInput{Email: alice.Email})
	require.Equal(t, http.StatusOK, w.Code)
	reset := decode[PasswordResetResponse](t, w).ResetToken
	require.NotEmpty(t, reset)

	// A reset token is not a session.
	w = api.do(http.MethodGet, "/users/me", reset, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/auth/password-reset/confirm", "", PasswordResetConfirmInput{Token: "garbage", NewPassword: "password456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodPost, "/auth/password-reset/confirm", "", PasswordResetConfirmInput{Token: api.token(alice), NewPassword: "password456"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "session tokens cannot reset passwords")

	w = api.do(http.MethodPost, "/auth/password-reset/confirm", "", PasswordResetConfirmInput{Token: reset, NewPassword: "password456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusOK, api.login("alice", "password456"))
	assert.Equal(t, http.StatusUnauthorized, api.login("alice", "password123"))

	// The token is spent once the password changed.
	w = api.do(http.MethodPost, "/auth/password-reset/confirm", "", PasswordResetConfirmInput{Token: reset, NewPassword: "password789"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusOK, api.login("alice", "password456"))
}

func TestEmailChange(t *testing.T) {
	api := newTestAPI(t)
	alice, bob := api.user("alice"), api.user("bob")
	tok := api.token(alice)

	w := api.do(http.MethodPut, "/users/me/email", tok, EmailChangeInput{Email: bob.Email})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = api.do(http.MethodPut, "/users/me/email", tok, EmailChangeInput{Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A registration that was never activated holds the address.
	pending := models.User{Email: "alice@new.example.com", AccountName: "squatter", ImageKey: models.DefaultImageKey, PasswordHash: "x"}
	require.NoError(t, api.db.Create(&pending).Error)

	w = api.do(http.MethodPut, "/users/me/email", tok, EmailChangeInput{Email: "alice@new.example.com"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	confirm := decode[EmailChangeResponse](t, w).ConfirmToken
	require.NotEmpty(t, confirm)

	// Nothing changes until the token is used, and only by its owner.
	var stored models.User
	require.NoError(t, api.db.First(&stored, alice.ID).Error)
	assert.Equal(t, alice.Email, stored.Email)
	w = api.do(http.MethodGet, "/users/me/email/confirm/"+confirm, api.token(bob), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodGet, "/users/me/email/confirm/garbage", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/users/me/email/confirm/"+confirm, tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "alice@new.example.com", decode[PrivateUserResponse](t, w).Email)

	require.NoError(t, api.db.First(&stored, alice.ID).Error)
	assert.Equal(t, "alice@new.example.com", stored.Email)
	var left int64
	api.db.Unscoped().Model(&models.User{}).Where("id = ?", pending.ID).Count(&left)
	assert.Zero(t, left)
}
