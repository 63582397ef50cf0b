package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

func TestRunSeedsPermissionSpecificationSet(t *testing.T) {
	var seen model.Resource
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.TargetURL = server.URL + "/r1/rolesAndPermissionsManagement/v5"
	cfg.RetryDelay = 10 * time.Millisecond

	err := NewInitializer(cfg, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/r1/rolesAndPermissionsManagement/v5/permissionSpecificationSet", path)
	assert.Equal(t, "Admin", seen["name"])
	assert.Equal(t, "PermissionSpecificationSet", seen["@type"])
}

func TestRunSeedsPartyRole(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.UsePermissionSpec = false
	cfg.TargetURL = server.URL + "/r1/partyRoleManagement/v5"

	require.NoError(t, NewInitializer(cfg, nil).Run(context.Background()))
	assert.Equal(t, "/r1/partyRoleManagement/v5/partyRole", path)
}

func TestRunRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.TargetURL = server.URL + "/r1/rolesAndPermissionsManagement/v5"
	cfg.RetryDelay = 5 * time.Millisecond

	require.NoError(t, NewInitializer(cfg, nil).Run(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.TargetURL = server.URL + "/r1/rolesAndPermissionsManagement/v5"
	cfg.RetryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewInitializer(cfg, nil).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("ROLE_TARGET_URL", "http://example.test/api/v5")
	t.Setenv("USE_PERMISSION_SPEC", "false")
	t.Setenv("BOOTSTRAP_ROLE", "Operator")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://example.test/api/v5", cfg.TargetURL)
	assert.False(t, cfg.UsePermissionSpec)
	assert.Equal(t, "Operator", cfg.RoleName)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())

	cfg.TargetURL = "http://example.test"
	assert.NoError(t, cfg.Validate())
}
