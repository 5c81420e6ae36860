package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/nfrund/sparx/internal/config"
	"github.com/nfrund/sparx/internal/logging"
	"github.com/stretchr/testify/require"
)

// ProjectRoot walks up from the working directory to the directory holding go.mod.
func ProjectRoot(t *testing.T) string {
	t.Helper()

	path, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path
		}
		if path == filepath.Dir(path) {
			t.Fatalf("could not find project root with go.mod")
		}
		path = filepath.Dir(path)
	}
}

// ConfigForTests loads the .env.test file and returns a valid config.
// Integration tests are skipped when the file is absent.
func ConfigForTests(t *testing.T) *config.Config {
	t.Helper()

	env, err := godotenv.Read(filepath.Join(ProjectRoot(t), ".env.test"))
	if err != nil {
		t.Skipf("skipping integration test, .env.test not available: %v", err)
	}

	for key, value := range env {
		t.Setenv(key, value)
	}

	logging.New()

	cfg, err := config.FromEnv()
	require.NoError(t, err, "invalid .env.test")
	return cfg
}

// SetTestEnv sets the minimum environment required by config.FromEnv.
func SetTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SURREAL_URL", "ws://localhost:8000/rpc")
	t.Setenv("SURREAL_NS", "sparx")
	t.Setenv("SURREAL_DB", "test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("EMAIL_PROVIDER", "log")
	t.Setenv("STORAGE_BACKEND", "local")
}
