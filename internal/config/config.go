package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	APIURL     string

	// StatePath is the sqlite file backing persisted client state. When
	// DatabaseURL is set it takes precedence and state lives in postgres.
	StatePath   string
	DatabaseURL string

	KafkaBrokers []string
	LogLevel     string
	Env          string
}

func (c *Config) Production() bool {
	return c.Env == "production"
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found, using system environment")
	}

	cfg := &Config{
		ListenAddr:   getenv("ADDR", ":3000"),
		APIURL:       must(os.Getenv("API_URL"), "API_URL"),
		StatePath:    getenv("STATE_PATH", "webfront.db"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		KafkaBrokers: csv(os.Getenv("KAFKA_BROKERS")),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		Env:          getenv("APP_ENV", "development"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(v string, name string) string {
	if v == "" {
		log.Fatalf("missing required env %s", name)
	}
	return v
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
