package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/legalhub/internal/database"
	"github.com/jask/legalhub/internal/database/repository"
	"github.com/jask/legalhub/internal/registry"
)

var fixedNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("c%d", n)
	}
}

func startServer(t *testing.T, store Store, perMinute int) *registry.Client {
	t.Helper()
	srv := New(store, nil, Options{RatePerMinute: perMinute, Now: func() time.Time { return fixedNow }, NewID: sequentialIDs()})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return registry.NewClient(ts.URL, 2*time.Second, nil)
}

func sqliteStore(t *testing.T) Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db))
	return repository.NewClientRepo(db)
}

func TestRegistryRoundTrip(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": sqliteStore,
	}
	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := startServer(t, mk(t), 0)
			caller := registry.Caller{UserID: "lawyer-A-42"}

			empty, err := c.List(ctx, caller)
			require.NoError(t, err)
			require.Empty(t, empty)

			jane, err := c.Create(ctx, caller, registry.Draft{FullName: "Jane Doe", Email: "jane@x.com", Phone: "555-0100"})
			require.NoError(t, err)
			require.Equal(t, registry.RecordID("c1"), jane.ID)
			require.Equal(t, "Jane Doe", jane.FullName)
			require.True(t, jane.CreatedAt.Equal(fixedNow))

			_, err = c.Create(ctx, caller, registry.Draft{FullName: "John Roe", Email: "john@x.com", Phone: "555-0101"})
			require.NoError(t, err)

			_, err = c.Create(ctx, caller, registry.Draft{FullName: "Jane Again", Email: "jane@x.com", Phone: "555-0102"})
			var cf *registry.CreateFailure
			require.True(t, errors.As(err, &cf))
			require.Equal(t, http.StatusBadRequest, cf.StatusCode)
			require.Equal(t, "email already exists", err.Error())

			all, err := c.List(ctx, caller)
			require.NoError(t, err)
			require.Len(t, all, 2)
			require.Equal(t, "Jane Doe", all[0].FullName)
			require.Equal(t, "John Roe", all[1].FullName)
		})
	}
}

func TestCreateValidation(t *testing.T) {
	c := startServer(t, NewMemoryStore(), 0)
	caller := registry.Caller{UserID: "lawyer-A-42"}
	cases := map[string]registry.Draft{
		"full_name is required":        {Email: "a@x.com", Phone: "1"},
		"email is required":            {FullName: "A", Phone: "1"},
		"email is not a valid address": {FullName: "A", Email: "not-an-email", Phone: "1"},
		"phone is required":            {FullName: "A", Email: "a@x.com"},
	}
	for want, draft := range cases {
		_, err := c.Create(context.Background(), caller, draft)
		require.EqualError(t, err, want)
	}
}

func TestRequestsNeedUserHeader(t *testing.T) {
	srv := New(NewMemoryStore(), nil, Options{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/clients/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.JSONEq(t, `{"detail":"missing X-User-ID header"}`, string(body))
}

func TestUnroutedRequestsAndPreflight(t *testing.T) {
	srv := New(NewMemoryStore(), nil, Options{})
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodDelete, "/clients/", nil)
	req.Header.Set(registry.HeaderUserID, "u")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Allow"))
	require.JSONEq(t, `{"detail":"method not allowed"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/contracts/", nil)
	req.Header.Set(registry.HeaderUserID, "u")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"detail":"not found"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodOptions, "/clients/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), registry.HeaderUserID))
}

func TestRateLimitPerUser(t *testing.T) {
	srv := New(NewMemoryStore(), nil, Options{RatePerMinute: 2})
	h := srv.Handler()

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/clients/", nil)
		req.Header.Set(registry.HeaderUserID, user)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	require.Equal(t, http.StatusOK, do("a"))
	require.Equal(t, http.StatusOK, do("a"))
	require.Equal(t, http.StatusTooManyRequests, do("a"))
	require.Equal(t, http.StatusOK, do("b"))
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := New(NewMemoryStore(), nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
