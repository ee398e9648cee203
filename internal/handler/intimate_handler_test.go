package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"socialnet/backend/internal/models"
	"socialnet/backend/internal/ratelimit"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntimateRequestLifecycle(t *testing.T) {
	api := newTestAPI(t)
	alice, bob := api.user("alice"), api.user("bob")
	aliceTok, bobTok := api.token(alice), api.token(bob)

	w := api.do(http.MethodPost, pathf("/intimates/%d/request", bob.ID), aliceTok, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Resending, or asking back, does not create anything new.
	w = api.do(http.MethodPost, pathf("/intimates/%d/request", bob.ID), aliceTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodPost, pathf("/intimates/%d/request", alice.ID), bobTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var n int64
	api.db.Model(&models.Intimate{}).Count(&n)
	assert.EqualValues(t, 1, n)

	w = api.do(http.MethodGet, "/intimates/me", bobTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	overview := decode[IntimatesOverviewResponse](t, w)
	require.Len(t, overview.PendingForMe, 1)
	assert.Equal(t, alice.ID, overview.PendingForMe[0].User.ID)
	assert.Empty(t, overview.PendingFromMe)
	assert.Empty(t, overview.Intimates)

	w = api.do(http.MethodGet, "/intimates/me", aliceTok, nil)
	overview = decode[IntimatesOverviewResponse](t, w)
	require.Len(t, overview.PendingFromMe, 1)
	assert.Equal(t, bob.ID, overview.PendingFromMe[0].User.ID)

	// Only the receiver can approve, so alice approving "bob's request" finds nothing.
	w = api.do(http.MethodPost, pathf("/intimates/%d/approve", bob.ID), aliceTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, pathf("/intimates/%d/approve", alice.ID), bobTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, tok := range []string{aliceTok, bobTok} {
		w = api.do(http.MethodGet, "/intimates/me", tok, nil)
		overview = decode[IntimatesOverviewResponse](t, w)
		require.Len(t, overview.Intimates, 1)
		assert.Empty(t, overview.PendingForMe)
		assert.Empty(t, overview.PendingFromMe)
	}

	w = api.do(http.MethodPost, pathf("/intimates/%d/cancel", bob.ID), aliceTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/intimates/me", bobTok, nil)
	overview = decode[IntimatesOverviewResponse](t, w)
	assert.Empty(t, overview.Intimates)

	// A cancelled pair keeps its record; asking again from either side changes nothing.
	for _, tc := range []struct {
		to  uint
		tok string
	}{{alice.ID, bobTok}, {bob.ID, aliceTok}} {
		w = api.do(http.MethodPost, pathf("/intimates/%d/request", tc.to), tc.tok, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	var rec models.Intimate
	require.NoError(t, api.db.First(&rec).Error)
	assert.Equal(t, alice.ID, rec.SenderID)
	assert.False(t, rec.Request)
	assert.True(t, rec.Approval)
	w = api.do(http.MethodGet, "/intimates/me", aliceTok, nil)
	overview = decode[IntimatesOverviewResponse](t, w)
	assert.Empty(t, overview.PendingForMe)
	assert.Empty(t, overview.PendingFromMe)
}

func TestIntimateReject(t *testing.T) {
	api := newTestAPI(t)
	alice, bob := api.user("alice"), api.user("bob")

	w := api.do(http.MethodPost, pathf("/intimates/%d/request", bob.ID), api.token(alice), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = api.do(http.MethodPost, pathf("/intimates/%d/reject", alice.ID), api.token(bob), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/intimates/me", api.token(bob), nil)
	overview := decode[IntimatesOverviewResponse](t, w)
	assert.Empty(t, overview.PendingForMe)
	require.Len(t, overview.RejectedByMe, 1)
	assert.Equal(t, alice.ID, overview.RejectedByMe[0].User.ID)
	assert.True(t, overview.RejectedByMe[0].Rejected)

	// The sender still sees the request as not approved.
	w = api.do(http.MethodGet, "/intimates/me", api.token(alice), nil)
	overview = decode[IntimatesOverviewResponse](t, w)
	require.Len(t, overview.PendingFromMe, 1)
	assert.True(t, overview.PendingFromMe[0].Rejected)
}

func TestIntimateErrors(t *testing.T) {
	api := newTestAPI(t)
	alice, bob := api.user("alice"), api.user("bob")
	tok := api.token(alice)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"self request", pathf("/intimates/%d/request", alice.ID), http.StatusBadRequest},
		{"unknown user", "/intimates/999/request", http.StatusNotFound},
		{"bad id", "/intimates/abc/request", http.StatusBadRequest},
		{"approve missing", pathf("/intimates/%d/approve", bob.ID), http.StatusNotFound},
		{"reject missing", pathf("/intimates/%d/reject", bob.ID), http.StatusNotFound},
		{"cancel missing", pathf("/intimates/%d/cancel", bob.ID), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(http.MethodPost, tt.path, tok, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := api.do(http.MethodPost, pathf("/intimates/%d/request", bob.ID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIntimateAmbiguousState(t *testing.T) {
	api := newTestAPI(t)
	alice, bob := api.user("alice"), api.user("bob")

	// Rows written before pair keys were unique.
	for _, key := range []string{"legacy-1", "legacy-2"} {
		require.NoError(t, api.db.Create(&models.Intimate{
			SenderID: alice.ID, ReceiverID: bob.ID, PairKey: key, Request: true,
		}).Error)
	}

	w := api.do(http.MethodPost, pathf("/intimates/%d/approve", alice.ID), api.token(bob), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = api.do(http.MethodPost, pathf("/intimates/%d/cancel", bob.ID), api.token(alice), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProfileShowsIntimateStatus(t *testing.T) {
	api := newTestAPI(t)
	alice, bob := api.user("alice"), api.user("bob")

	w := api.do(http.MethodPost, pathf("/intimates/%d/request", bob.ID), api.token(alice), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodGet, pathf("/users/%d", bob.ID), api.token(alice), nil)
	status := decode[PublicUserResponse](t, w).Intimate
	require.NotNil(t, status)
	assert.Equal(t, IntimateStatusResponse{RequestDone: true}, *status)

	w = api.do(http.MethodGet, pathf("/users/%d", alice.ID), api.token(bob), nil)
	status = decode[PublicUserResponse](t, w).Intimate
	require.NotNil(t, status)
	assert.Equal(t, IntimateStatusResponse{Incoming: true}, *status)

	require.NoError(t, api.mgr.Approve(context.Background(), alice.ID, bob.ID))
	w = api.do(http.MethodGet, pathf("/users/%d", alice.ID), api.token(bob), nil)
	status = decode[PublicUserResponse](t, w).Intimate
	require.NotNil(t, status)
	assert.True(t, status.Accepted)
}

func TestIntimateRequestRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter := ratelimit.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	api := newTestAPI(t, func(d *Deps) {
		d.Limiter = limiter
		d.RequestLimit = 2
		d.RequestWindow = time.Minute
	})
	alice := api.user("alice")
	others := []models.User{api.user("bob"), api.user("carol"), api.user("dave")}

	var codes []int
	for _, u := range others {
		w := api.do(http.MethodPost, pathf("/intimates/%d/request", u.ID), api.token(alice), nil)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	// Approving is not limited.
	w := api.do(http.MethodPost, pathf("/intimates/%d/approve", alice.ID), api.token(others[0]), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStreamEvents(t *testing.T) {
	api := newTestAPI(t)
	alice, bob := api.user("alice"), api.user("bob")

	srv := httptest.NewServer(api.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/users/me/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+api.token(bob))

	// Headers are only flushed with the first event, so the request is sent
	// from a goroutine and the event is produced once bob is subscribed.
	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := http.DefaultClient.Do(req)
		done <- result{resp, err}
	}()

	require.Eventually(t, func() bool { return api.hub.Connected(bob.ID) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, api.mgr.SendRequest(context.Background(), alice.ID, bob.ID))

	res := <-done
	require.NoError(t, res.err)
	defer res.resp.Body.Close()
	// gin appends a charset to the event-stream content type.
	assert.True(t, strings.HasPrefix(res.resp.Header.Get("Content-Type"), "text/event-stream"), res.resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(res.resp.Body)
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	require.Len(t, lines, 2, lines)
	assert.Equal(t, "event:intimate", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "data:"))
	assert.Contains(t, lines[1], `"intimate.requested"`)

	cancel()
	require.Eventually(t, func() bool { return api.hub.Connected(bob.ID) == 0 }, 2*time.Second, 10*time.Millisecond)
}
