// Package config loads application configuration from the environment.
// A .env file in the working directory is honored when present, the
// same way the original Vite frontend read VITE_* variables.  Every
// value has a default suitable for local development, so the client
// runs with zero setup against a mock backend on localhost.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	ServerURL string // backend origin, without the /api prefix
	TokenFile string // where the session token is persisted
	MockPort  string // port for the dev mock backend
	JWTSecret string // secret the mock backend signs tokens with
}

// Load reads configuration from the environment, after loading .env if
// one exists.  Missing variables fall back to development defaults.
func Load() Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	return Config{
		Env:       getEnv("APP_ENV", "development"),
		ServerURL: getEnv("SERVER_URL", "http://localhost:8080"),
		TokenFile: getEnv("TOKEN_FILE", defaultTokenFile()),
		MockPort:  getEnv("MOCK_PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret"),
	}
}

// APIBaseURL returns the base for every API request.  The backend
// mounts all endpoints under /api.
func (c Config) APIBaseURL() string {
	return c.ServerURL + "/api"
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// defaultTokenFile places the session file next to the user's other
// config; falls back to the working directory when no home is known.
func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".savemypodo-session.json"
	}
	return filepath.Join(home, ".savemypodo-session.json")
}
