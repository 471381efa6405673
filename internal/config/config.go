package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	APIBaseURL              string
	APITimeout              time.Duration
	ServiceToken            string
	KioskToken              string
	KioskPollInterval       time.Duration
	DemoFallback            bool
	Location                *time.Location
	DatabaseURL             string
	RedisURL                string
	RedisChannel            string
	RollupSchedule          string
	RateLimitPerMinute      int
	RateLimitBurst          int
	TokenRateLimitPerMinute int
	TokenRateLimitBurst     int
	SessionPath             string
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set take precedence.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	return Config{
		Port:                    readString("PORT", "8080"),
		APIBaseURL:              strings.TrimRight(readString("TURNON_API_URL", "http://localhost:3000"), "/"),
		APITimeout:              readDurationSeconds("TURNON_API_TIMEOUT_SECONDS", 15),
		ServiceToken:            os.Getenv("TURNON_SERVICE_TOKEN"),
		KioskToken:              os.Getenv("KIOSK_TOKEN"),
		KioskPollInterval:       readDurationSeconds("KIOSK_POLL_SECONDS", 30),
		DemoFallback:            readBool("DEMO_FALLBACK", false),
		Location:                readLocation("TURNON_TIMEZONE"),
		DatabaseURL:             os.Getenv("DB_DSN"),
		RedisURL:                os.Getenv("REDIS_URL"),
		RedisChannel:            readString("REDIS_CHANNEL", "turnos-updates"),
		RollupSchedule:          readString("ROLLUP_CRON", "55 23 * * *"),
		RateLimitPerMinute:      readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:          readInt("RATE_LIMIT_BURST", 30),
		TokenRateLimitPerMinute: readInt("TOKEN_RATE_LIMIT_PER_MIN", 60),
		TokenRateLimitBurst:     readInt("TOKEN_RATE_LIMIT_BURST", 20),
		SessionPath:             os.Getenv("TURNON_SESSION_PATH"),
	}
}

func readString(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readLocation(key string) *time.Location {
	name := strings.TrimSpace(os.Getenv(key))
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("unknown time zone %s=%q, using local: %v", key, name, err)
		return time.Local
	}
	return loc
}
