package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Stub    StubConfig
}

type AppConfig struct {
	Environment   string
	LogFilePath   string
	CookieJarPath string
}

// BackendConfig points the identity client at an Appwrite-compatible backend.
// Endpoint and ProjectID are both required; there is no usable default.
type BackendConfig struct {
	Endpoint  string
	ProjectID string
}

type StubConfig struct {
	Port          string
	SessionSecret string
	SessionTTLMin int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Environment:   getEnv("GO_ENV", "development"),
			LogFilePath:   getEnv("LOG_FILE_PATH", "authgate.log"),
			CookieJarPath: getEnv("COOKIE_JAR_PATH", ".authgate_session.json"),
		},
		Backend: BackendConfig{
			Endpoint:  getEnv("APPWRITE_ENDPOINT", ""),
			ProjectID: getEnv("APPWRITE_PROJECT_ID", ""),
		},
		Stub: StubConfig{
			Port:          getEnv("STUB_PORT", "4280"),
			SessionSecret: getEnv("STUB_SESSION_SECRET", "stub_dev_secret"),
			SessionTTLMin: getEnvAsInt("STUB_SESSION_TTL_MINUTES", 60),
		},
	}

	if cfg.Backend.Endpoint == "" {
		return nil, fmt.Errorf("APPWRITE_ENDPOINT is required")
	}
	if cfg.Backend.ProjectID == "" {
		return nil, fmt.Errorf("APPWRITE_PROJECT_ID is required")
	}

	return cfg, nil
}

// LoadStub reads only the stub backend settings, so the stub server can run
// without the client-side backend variables being set.
func LoadStub() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "stubid.log"),
		},
		Stub: StubConfig{
			Port:          getEnv("STUB_PORT", "4280"),
			SessionSecret: getEnv("STUB_SESSION_SECRET", "stub_dev_secret"),
			SessionTTLMin: getEnvAsInt("STUB_SESSION_TTL_MINUTES", 60),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
