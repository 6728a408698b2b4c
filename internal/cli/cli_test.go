package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/performance-dashboard/internal/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func setBaseEnv(t *testing.T, upstream string) {
	t.Helper()
	t.Setenv("UPSTREAM_URL", upstream)
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DASHBOARD_LOOKUP_BACKEND", "rpc")
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "snapshot", "token"})
}

func TestTokenCommand(t *testing.T) {
	setBaseEnv(t, "http://backend.local")

	out, err := run(t, "token", "--user", "7", "--login", "admin")
	require.NoError(t, err)

	tm := auth.NewTokenManager("cli-test-secret", 0, "perfdash")
	claims, err := tm.ValidateToken(string(bytes.TrimSpace([]byte(out))))
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	assert.Equal(t, "admin", claims.Login)
}

func TestTokenCommand_RequiresUser(t *testing.T) {
	setBaseEnv(t, "http://backend.local")

	_, err := run(t, "token")
	assert.Error(t, err)
}

func TestSnapshotCommand(t *testing.T) {
	var gotFilters map[string]any
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Params map[string]any `json:"params"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		if r.URL.Path != "/performance/dashboard/data" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotFilters, _ = req.Params["filters"].(map[string]any)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]any{
				"summary":      map[string]any{"total_kpis": 42, "avg_performance": 71.5},
				"distribution": map[string]any{"excellent": 10, "good": 20, "fair": 8, "poor": 4},
			},
		})
	}))
	t.Cleanup(backend.Close)
	setBaseEnv(t, backend.URL)

	out, err := run(t, "snapshot", "--scope", "directorate", "--entity", "3")
	require.NoError(t, err)

	var snap struct {
		Placeholder bool `json:"placeholder"`
		Summary     struct {
			TotalKPIs float64 `json:"total_kpis"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.False(t, snap.Placeholder)
	assert.Equal(t, 42.0, snap.Summary.TotalKPIs)
	assert.NotEmpty(t, gotFilters, "filters are forwarded to the backend")
}

func TestSnapshotCommand_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(backend.Close)
	setBaseEnv(t, backend.URL)

	out, err := run(t, "snapshot", "--charts")
	require.NoError(t, err)

	var result struct {
		Snapshot struct {
			Placeholder bool `json:"placeholder"`
		} `json:"snapshot"`
		Charts map[string]any `json:"charts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Snapshot.Placeholder)
	assert.NotEmpty(t, result.Charts)
}

func TestSnapshotCommand_RejectsInvalidFilters(t *testing.T) {
	setBaseEnv(t, "http://backend.local")

	_, err := run(t, "snapshot", "--scope", "galaxy")
	assert.Error(t, err)
}

func TestMigrateCommand_RequiresDatabase(t *testing.T) {
	setBaseEnv(t, "http://backend.local")
	t.Setenv("DATABASE_URL", "")

	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
