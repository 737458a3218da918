package config

import (
	"os"
	"time"
)

type Environment struct {
	IsDevelopment bool
	Domain        string
	CookieSecure  bool

	// AI question-generation gateway
	AIBaseURL string
	AIAPIKey  string
	AIModel   string

	// Study session pacing
	SessionTTL   time.Duration
	AdvanceDelay time.Duration
}

var Env Environment

func init() {
	// Get domain from environment variable
	domain := os.Getenv("COOKIE_DOMAIN")

	// If no domain is set, we're in development
	isDev := domain == ""
	if isDev {
		domain = "localhost"
	}

	aiBaseURL := os.Getenv("AI_BASE_URL")
	if aiBaseURL == "" {
		aiBaseURL = "https://api.deepseek.com"
	}
	aiModel := os.Getenv("AI_MODEL")
	if aiModel == "" {
		aiModel = "deepseek-chat"
	}

	Env = Environment{
		IsDevelopment: isDev,
		Domain:        domain,
		CookieSecure:  !isDev,
		AIBaseURL:     aiBaseURL,
		AIAPIKey:      os.Getenv("AI_API_KEY"),
		AIModel:       aiModel,
		SessionTTL:    durationEnv("STUDY_SESSION_TTL", 2*time.Hour),
		AdvanceDelay:  durationEnv("STUDY_ADVANCE_DELAY", time.Second),
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
