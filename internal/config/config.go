package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// FirebaseConfig is the remote-store configuration blob. Absence of the
// blob, or a blob without a project id, means the process runs in demo
// mode.
type FirebaseConfig struct {
	ProjectID      string          `json:"projectId"`
	ServiceAccount json.RawMessage `json:"serviceAccount,omitempty"`
}

// ParseFirebaseConfig decodes the env-supplied blob. A structurally
// invalid blob (bad JSON or no project id) is an error; the mode
// controller treats it as the demo-mode trigger.
func ParseFirebaseConfig(blob string) (*FirebaseConfig, error) {
	var cfg FirebaseConfig
	if err := json.Unmarshal([]byte(blob), &cfg); err != nil {
		return nil, fmt.Errorf("decoding firebase config: %w", err)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firebase config missing projectId")
	}
	return &cfg, nil
}

type Config struct {
	Port string

	// Firebase is nil when the blob is absent or invalid (demo mode).
	Firebase  *FirebaseConfig
	AuthToken string

	GeminiAPIKey string
	ModelName    string

	// Namespace scopes the store path per deployment.
	Namespace string

	DocsResource     string
	ExampleResources []string

	UseMockLLM  bool
	TurnTimeout time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads all env vars and builds the config.
func Load(log *slog.Logger) *Config {
	cfg := &Config{
		Port: getEnv("SCRIPTCHAT_PORT", "8080"),

		AuthToken: getEnv("SCRIPTCHAT_AUTH_TOKEN", ""),

		GeminiAPIKey: getEnv("SCRIPTCHAT_GEMINI_API_KEY", ""),
		ModelName:    getEnv("SCRIPTCHAT_MODEL_NAME", "gemini-2.0-flash"),

		Namespace: getEnv("SCRIPTCHAT_NAMESPACE", "scriptchat"),

		DocsResource: getEnv("SCRIPTCHAT_DOCS_URL", ""),

		UseMockLLM:  getBoolEnv("SCRIPTCHAT_USE_MOCK_LLM", false),
		TurnTimeout: getDurationEnv("SCRIPTCHAT_TURN_TIMEOUT", 60*time.Second),
	}

	if raw := getEnv("SCRIPTCHAT_EXAMPLES", ""); raw != "" {
		for _, r := range strings.Split(raw, ",") {
			if r = strings.TrimSpace(r); r != "" {
				cfg.ExampleResources = append(cfg.ExampleResources, r)
			}
		}
	}

	if blob := getEnv("SCRIPTCHAT_FIREBASE_CONFIG", ""); blob != "" {
		fb, err := ParseFirebaseConfig(blob)
		if err != nil {
			log.Warn("ignoring invalid firebase config", "error", err)
		} else {
			cfg.Firebase = fb
		}
	}

	return cfg
}
