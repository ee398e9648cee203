package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"socialnet/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	removed []string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStore) Put(_ context.Context, key, contentType string, r io.Reader, _ int64) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}

func (s *memStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

func (s *memStore) PresignGet(_ context.Context, key string, _ time.Duration) (*url.URL, error) {
	return url.Parse("http://minio.test/socialnet/" + key + "?X-Amz-Signature=abc")
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/me/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProfileImage(t *testing.T) {
	store := newMemStore()
	api := newTestAPI(t, func(d *Deps) { d.Images = store })
	alice := api.user("alice")
	tok := api.token(alice)

	w := api.send(uploadRequest(t, "me.gif", []byte("GIF89a")), tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.objects)

	w = api.send(uploadRequest(t, "me.PNG", []byte("png-bytes")), tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decode[PrivateUserResponse](t, w)
	assert.True(t, strings.HasPrefix(me.ImageKey, pathf("profile_pics/%d_", alice.ID)), me.ImageKey)
	assert.True(t, strings.HasSuffix(me.ImageKey, ".png"), me.ImageKey)
	assert.Equal(t, []byte("png-bytes"), store.objects[me.ImageKey])
	assert.Equal(t, "image/png", store.types[me.ImageKey])
	assert.Empty(t, store.removed, "the default picture is never removed")
	firstKey := me.ImageKey

	w = api.do(http.MethodGet, pathf("/users/%d/image", alice.ID), "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), firstKey)

	w = api.send(uploadRequest(t, "again.jpg", []byte("jpg-bytes")), tok)
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[PrivateUserResponse](t, w).ImageKey
	assert.NotEqual(t, firstKey, second)
	assert.Equal(t, []string{firstKey}, store.removed)

	w = api.do(http.MethodDelete, "/users/me/image", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DefaultImageKey, decode[PrivateUserResponse](t, w).ImageKey)
	assert.Equal(t, []string{firstKey, second}, store.removed)

	var stored models.User
	require.NoError(t, api.db.First(&stored, alice.ID).Error)
	assert.Equal(t, models.DefaultImageKey, stored.ImageKey)
}

func TestProfileImageWithoutStore(t *testing.T) {
	api := newTestAPI(t)
	alice := api.user("alice")

	w := api.send(uploadRequest(t, "me.png", []byte("png")), api.token(alice))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = api.do(http.MethodGet, pathf("/users/%d/image", alice.ID), "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
