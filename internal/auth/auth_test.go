package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialnet/backend/internal/config"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/database/dbtest"
	"socialnet/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	prev := config.AppConfig
	config.AppConfig = &config.Config{JWTSecret: "test", ActivationTTL: time.Hour}
	t.Cleanup(func() { config.AppConfig = prev })
}

func serve(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func echoUser(c *gin.Context) {
	id, ok := c.Get("userID")
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id})
}

func TestAuthMiddleware(t *testing.T) {
	setup(t)
	r := gin.New()
	r.GET("/", AuthMiddleware(), echoUser)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "nope").Code)

	activation, err := jwt.GenerateActivationToken(3)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(r, activation).Code)

	session, err := jwt.GenerateToken(3)
	require.NoError(t, err)
	w := serve(r, session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":3}`, w.Body.String())
}

func TestOptionalAuthMiddleware(t *testing.T) {
	setup(t)
	r := gin.New()
	r.GET("/", OptionalAuthMiddleware(), echoUser)

	w := serve(r, "nope")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":null}`, w.Body.String())

	session, err := jwt.GenerateToken(5)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":5}`, serve(r, session).Body.String())
}

func TestStaffMiddleware(t *testing.T) {
	setup(t)
	db := dbtest.New(t)
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	member := dbtest.CreateUser(t, db, "member")
	staff := dbtest.CreateUser(t, db, "staff")
	require.NoError(t, db.Model(&staff).Update("is_staff", true).Error)

	r := gin.New()
	r.GET("/", AuthMiddleware(), StaffMiddleware(), echoUser)

	tok, err := jwt.GenerateToken(member.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(r, tok).Code)

	tok, err = jwt.GenerateToken(staff.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(r, tok).Code)

	// Without AuthMiddleware in front it checks the token on its own.
	alone := gin.New()
	alone.GET("/", StaffMiddleware(), echoUser)
	assert.Equal(t, http.StatusUnauthorized, serve(alone, "").Code)
	activation, err := jwt.GenerateActivationToken(staff.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(alone, activation).Code)
	w := serve(alone, tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"user":%d}`, staff.ID), w.Body.String())

	gone, err := jwt.GenerateToken(999)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(alone, gone).Code)
}
