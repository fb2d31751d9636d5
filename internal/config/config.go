package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr              string
	MongoURI          string
	MongoDatabase     string
	UserCollection    string
	SurveyCollection  string
	PaymentCollection string
	Timeout           time.Duration
	ServerLog         *log.Logger
	JWTConfigs        []JWTConfig
	JWTAudience       string
	TokenTTL          time.Duration
	StripeSecretKey   string
	AllowedOrigins    []string
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	timeout := 10 * time.Second
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			timeout = parsed
		}
	}

	tokenTTL := time.Hour
	if raw := strings.TrimSpace(os.Getenv("AUTH_TOKEN_TTL")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			tokenTTL = parsed
		}
	}

	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "surveynest-auth"),
			Secret: []byte(secret),
		})
	}
	if secret := strings.TrimSpace(os.Getenv("AUTH_LEGACY_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_LEGACY_JWT_ISSUER", "surveynest-auth"),
			Secret: []byte(secret),
		})
	}
	if len(jwtConfigs) == 0 {
		log.Fatal("JWT secret not configured. Set AUTH_JWT_SECRET.")
	}

	stripeKey := strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	if stripeKey == "" {
		log.Fatal("STRIPE_SECRET_KEY must be configured")
	}

	cfg := Config{
		Addr:              envOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:          envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:     envOrDefault("MONGO_DB", "surveynest"),
		UserCollection:    envOrDefault("USER_COLLECTION", "users"),
		SurveyCollection:  envOrDefault("SURVEY_COLLECTION", "surveys"),
		PaymentCollection: envOrDefault("PAYMENT_COLLECTION", "payments"),
		Timeout:           timeout,
		ServerLog:         log.New(os.Stdout, "[surveynest-api] ", log.LstdFlags|log.Lshortfile),
		JWTConfigs:        jwtConfigs,
		JWTAudience:       strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		TokenTTL:          tokenTTL,
		StripeSecretKey:   stripeKey,
		AllowedOrigins:    parseList("API_ALLOWED_ORIGINS", []string{"*"}),
	}

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
