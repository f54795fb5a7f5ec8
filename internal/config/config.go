package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// Token signing. Secret has no default on purpose.
	JWTSecret           string
	JWTAlgorithm        string
	AccessTokenLifetime time.Duration

	// Used as the token issuer (iss claim).
	ServiceName string

	// Default administrator seeded at startup.
	AdminName     string
	AdminEmail    string
	AdminPassword string

	OTLPEndpoint string
	CORSOrigins  []string
}

func Load() (Config, error) {
	secret := os.Getenv("AUTH_JWT_SECRET")

	if secret == "" {
		return Config{}, errors.New("AUTH_JWT_SECRET is required")
	}

	lifetimeMinutes := getEnvInt("AUTH_JWT_ACCESS_TOKEN_LIFETIME", 60)

	cfg := Config{
		Env:   getEnv("AUTH_ENV", "dev"),
		Port:  getEnvInt("AUTH_PORT", 8080),
		DBURL: buildDBURL(),

		JWTSecret:           secret,
		JWTAlgorithm:        getEnv("AUTH_JWT_ALGORITHM", "HS512"),
		AccessTokenLifetime: time.Duration(lifetimeMinutes) * time.Minute,

		ServiceName: getEnv("AUTH_SERVICE_NAME", "ilps-service-auth"),

		AdminName:     getEnv("AUTH_DEFAULT_ADMIN_NAME", "admin"),
		AdminEmail:    getEnv("AUTH_DEFAULT_ADMIN_EMAIL", "admin@ilpsadmin.com"),
		AdminPassword: getEnv("AUTH_DEFAULT_ADMIN_PASSWORD", "password123"),

		OTLPEndpoint: getEnv("AUTH_OTLP_ENDPOINT", ""),
		CORSOrigins:  splitList(getEnv("AUTH_CORS_ORIGINS", "")),
	}

	return cfg, nil
}

func buildDBURL() string {
	host := getEnv("AUTH_DB_HOST", "127.0.0.1")
	port := getEnv("AUTH_DB_PORT", "5432")
	user := getEnv("AUTH_DB_USER", "auth")
	pass := getEnv("AUTH_DB_PASSWORD", "auth")
	name := getEnv("AUTH_DB_NAME", "auth")
	ssl := getEnv("AUTH_DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
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
			return fallback
		}

		return num
	}
	return fallback
}

func splitList(v string) []string {
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
