package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	portEnvVar          = "PORT"
	appNameVar          = "APP_NAME"
	folderEnvVar        = "DATA_FOLDER"
	apiURLVar           = "API_URL"
	dashboardURLVar     = "DASHBOARD_URL"
	apiTimeoutVar       = "API_TIMEOUT"
	localStoreKeyEnvVar = "LOCAL_STORE_KEY"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// LoadDotEnv reads a .env file into the process environment when one exists.
// Variables that are already set win over the file.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Warn().Err(err).Str("file", p).Msg("Failed to load env file")
		}
	}
}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "TripSync Admin")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetAPIURL returns the base URL of the remote REST API (auth and collections).
func (EnvVars) GetAPIURL() string {
	return strings.TrimRight(GetEnv(apiURLVar, "http://localhost:3001"), "/")
}

// GetDashboardURL returns the public origin of the dashboard server. Cookies written
// by the terminal client are scoped to this origin.
func (EnvVars) GetDashboardURL() string {
	return strings.TrimRight(GetEnv(dashboardURLVar, "http://localhost:8080"), "/")
}

func (EnvVars) GetAPITimeout() time.Duration {
	raw := GetEnv(apiTimeoutVar, "10s")
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// GetLocalStoreKey returns the passphrase used to encrypt the local store at rest.
// Empty means the store is written in clear text.
func (EnvVars) GetLocalStoreKey() string {
	return GetEnv(localStoreKeyEnvVar, "")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// LocalStorePath is where the terminal client keeps its persistent key/value store.
func LocalStorePath(c EnvConfig) string {
	return filepath.Join(c.GetDataFolder(), "local-storage.json")
}

// CookieJarPath is where the terminal client keeps its cookies between runs.
func CookieJarPath(c EnvConfig) string {
	return filepath.Join(c.GetDataFolder(), "cookies.json")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
