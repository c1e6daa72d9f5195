package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jask/legalhub/internal/server"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LEGALHUB_CONFIG", filepath.Join(home, "config.toml"))
	return home
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestClientsAddAndList(t *testing.T) {
	setupEnv(t)
	ts := httptest.NewServer(server.New(server.NewMemoryStore(), nil, server.Options{}).Handler())
	defer ts.Close()

	out, err := run(t, "--base-url", ts.URL, "clients", "list")
	require.NoError(t, err)
	require.Contains(t, out, "No clients yet.")

	out, err = run(t, "--base-url", ts.URL, "clients", "add", "--name", "Jane Doe", "--email", "jane@x.com", "--phone", "555-0100")
	require.NoError(t, err)
	require.Contains(t, out, "(Jane Doe)")

	_, err = run(t, "--base-url", ts.URL, "clients", "add", "--name", "Jane Two", "--email", "jane@x.com", "--phone", "555-0101")
	require.EqualError(t, err, "email already exists")

	out, err = run(t, "--base-url", ts.URL, "clients", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Jane Doe")
	require.Contains(t, out, "jane@x.com")
	require.NotContains(t, out, "Jane Two")

	out, err = run(t, "--base-url", ts.URL, "clients", "list", "--json")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "["))
	require.Contains(t, out, `"full_name": "Jane Doe"`)
}

func TestClientsAddRequiresAllFields(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "--base-url", "http://127.0.0.1:1", "clients", "add", "--name", "Jane")
	require.EqualError(t, err, "required: email, phone")
}

func TestListFailureIsGeneric(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "--base-url", "http://127.0.0.1:1", "clients", "list")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to fetch client list")
}

func TestConfigInitAndShow(t *testing.T) {
	home := setupEnv(t)

	out, err := run(t, "--user", "lawyer-B-7", "config", "init")
	require.NoError(t, err)
	require.Contains(t, out, "config written")
	data, err := os.ReadFile(filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "lawyer-B-7")

	out, err = run(t, "config", "show")
	require.NoError(t, err)
	require.Contains(t, out, "user id:       lawyer-B-7")
	require.Contains(t, out, "http://localhost:8000")
}

func TestOpenStoreSeedsSqlite(t *testing.T) {
	home := setupEnv(t)
	a := &app{}
	a.cfg.Server.DatabasePath = filepath.Join(home, "data", "registry.db")
	store, closeStore, err := openStore(context.Background(), a.cfg.Server, true, zap.NewNop())
	require.NoError(t, err)
	defer closeStore()

	got, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestLoadLocation(t *testing.T) {
	loc, err := loadLocation("Local")
	require.NoError(t, err)
	require.NotNil(t, loc)
	utc, err := loadLocation("UTC")
	require.NoError(t, err)
	require.Equal(t, "UTC", utc.String())
	_, err = loadLocation("Mars/Olympus")
	require.Error(t, err)
}
