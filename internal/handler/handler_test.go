package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialnet/backend/internal/config"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/database/dbtest"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/intimate"
	"socialnet/backend/internal/models"
	"socialnet/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	hub    *hub.Hub
	mgr    *intimate.Manager
}

// newTestAPI serves every route against a fresh sqlite database. opts can
// adjust the dependencies before the routes are mounted.
func newTestAPI(t *testing.T, opts ...func(*Deps)) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prevCfg, prevDB := config.AppConfig, database.DB
	config.AppConfig = &config.Config{JWTSecret: "test-secret", ActivationTTL: time.Hour}
	database.DB = dbtest.New(t)
	t.Cleanup(func() {
		config.AppConfig = prevCfg
		database.DB = prevDB
	})

	h := hub.NewHub()
	mgr := intimate.NewManager(intimate.NewRepository(database.DB), intimate.WithPublisher(h))
	deps := Deps{Intimates: mgr, Hub: h}
	for _, opt := range opts {
		opt(&deps)
	}

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), deps)

	return &testAPI{t: t, db: database.DB, router: r, hub: h, mgr: mgr}
}

func (a *testAPI) user(name string) models.User {
	return dbtest.CreateUser(a.t, a.db, name)
}

func (a *testAPI) token(u models.User) string {
	a.t.Helper()
	tok, err := jwt.GenerateToken(u.ID)
	require.NoError(a.t, err)
	return tok
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, token)
}

func (a *testAPI) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func pathf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
