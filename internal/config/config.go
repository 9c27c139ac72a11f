package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevJWTSecret is only accepted outside prod. Anything deployed must set JWT_SECRET.
const DevJWTSecret = "dev-only-insecure-jwt-secret"

type Config struct {
	Env   string
	Port  int
	Store string
	DBURL string

	JWTSecret   string
	BcryptCost  int
	CookieName  string
	Protected   []string
	CORSOrigins []string
	TimeZone    *time.Location

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint string

	ManagerEmail    string
	ManagerPassword string
	ManagerName     string
	ManagerRole     string
}

// Load reads an optional .env file and then the process environment.
// It fails when the configuration cannot be used to start the server safely.
func Load() (Config, error) {
	// a missing .env is the normal case outside local dev
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")

	cfg := Config{
		Env:             env,
		Port:            getEnvInt("PORT", 8080),
		Store:           strings.ToLower(getEnv("STORE", "postgres")),
		DBURL:           getEnv("DB_URL", buildDBURL()),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		BcryptCost:      getEnvInt("BCRYPT_COST", 10),
		CookieName:      getEnv("SESSION_COOKIE", "token"),
		Protected:       getEnvList("PROTECTED_PREFIXES", []string{"/hives", "/activities", "/comments"}),
		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ManagerEmail:    getEnv("MANAGER_EMAIL", ""),
		ManagerPassword: getEnv("MANAGER_PASSWORD", ""),
		ManagerName:     getEnv("MANAGER_NAME", "Menadzer"),
		ManagerRole:     getEnv("MANAGER_ROLE", "MENADZER"),
	}

	loc, err := loadLocation(getEnv("TZ_NAME", "Local"))
	if err != nil {
		return Config{}, err
	}
	cfg.TimeZone = loc

	if cfg.JWTSecret == "" {
		if cfg.IsProd() {
			return Config{}, errors.New("JWT_SECRET must be set in prod")
		}
		slog.Warn("JWT_SECRET not set, using the development fallback secret")
		cfg.JWTSecret = DevJWTSecret
	}

	if cfg.IsProd() && cfg.JWTSecret == DevJWTSecret {
		return Config{}, errors.New("JWT_SECRET must not be the development fallback in prod")
	}

	if cfg.Store != "postgres" && cfg.Store != "memory" {
		return Config{}, fmt.Errorf("unknown STORE %q (want postgres or memory)", cfg.Store)
	}

	return cfg, nil
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "hivelog")
	pass := getEnv("DB_PASSWORD", "hivelog")
	name := getEnv("DB_NAME", "hivelog")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load TZ_NAME %q: %w", name, err)
	}

	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env value, using fallback", "key", key, "value", v, "fallback", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}

	if len(out) == 0 {
		return fallback
	}
	return out
}
