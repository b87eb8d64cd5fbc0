// A shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/blackhole-app/blackhole-go/internal/api"
	"github.com/blackhole-app/blackhole-go/internal/config"
	"github.com/blackhole-app/blackhole-go/internal/core"
)

// TestAdminPassphrase is the shared console passphrase wired into test servers.
const TestAdminPassphrase = "test-passphrase"

// SetupTestApp builds a core.App backed by an in-memory database.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	database := SetupTestDB(t)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTLHours = 1
	cfg.Admin.Passphrase = TestAdminPassphrase

	return &core.App{
		Config: cfg,
		DB:     database,
	}
}

// SetupTestServer initializes a full core.App and api.Server for
// integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	return api.NewServer(app), app.DB
}
