package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken string
	RunBot   bool

	DatabaseURL string
	RedisURL    string

	WebappURL     string
	PublicBaseURL string
	CORSOrigins   []string
	Port          string

	// Profile lookup: "mock" (default) or "remote".
	ProfileMode   string
	ProfileAPIURL string
	ProfileCacheS int64
	SimFailurePct int64
	ActionCost    int64
	DefaultRegion string
	StartingCoins int64
	HistoryLimit  int64
	MaxBodyBytes  int64
	RatePerMinute int64
}

func Load() Config {
	// Local dev convenience; in production everything comes from the process env.
	if err := godotenv.Load(); err == nil {
		log.Printf("loaded .env")
	}

	cfg := Config{
		BotToken: strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		RunBot:   envBool("RUN_BOT", true),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),

		WebappURL:     strings.TrimSpace(os.Getenv("WEBAPP_URL")),
		PublicBaseURL: strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")),
		CORSOrigins:   splitCSV(os.Getenv("CORS_ORIGINS")),
		Port:          envStr("PORT", "3000"),

		ProfileMode:   strings.ToLower(envStr("PROFILE_MODE", "mock")),
		ProfileAPIURL: strings.TrimSpace(os.Getenv("PROFILE_API_URL")),
		ProfileCacheS: envInt("PROFILE_CACHE_SECONDS", 300),
		SimFailurePct: envInt("SIM_FAILURE_PCT", 5),
		ActionCost:    envInt("ACTION_COST", 5),
		DefaultRegion: envStr("DEFAULT_REGION", "ETHIOPIA"),
		StartingCoins: envInt("STARTING_COINS", 50),
		HistoryLimit:  envInt("HISTORY_LIMIT", 50),
		MaxBodyBytes:  envInt("MAX_BODY_BYTES", 64*1024),
		RatePerMinute: envInt("RATE_PER_MINUTE", 120),
	}

	if cfg.BotToken == "" {
		cfg.RunBot = false
	}
	if cfg.ProfileMode == "remote" && cfg.ProfileAPIURL == "" {
		log.Printf("PROFILE_MODE=remote but PROFILE_API_URL empty, falling back to mock")
		cfg.ProfileMode = "mock"
	}
	return cfg
}

func envStr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
