package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const defaultAPIBaseURL = "http://localhost:8000"

type Config struct {
	// APIBaseURL is the room directory's base URL (http or https).
	APIBaseURL string
	// Token is the bearer credential issued by the auth collaborator.
	Token string
}

// Load reads configuration from the environment, honoring a .env file when
// one exists. A missing .env is not an error.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL: os.Getenv("SHOVELS_API_URL"),
		Token:      os.Getenv("SHOVELS_TOKEN"),
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg
}

// WSBaseURL derives the websocket base from the API base, http -> ws and
// https -> wss.
func (c Config) WSBaseURL() string {
	if strings.HasPrefix(c.APIBaseURL, "https") {
		return "wss" + strings.TrimPrefix(c.APIBaseURL, "https")
	}
	return "ws" + strings.TrimPrefix(c.APIBaseURL, "http")
}
