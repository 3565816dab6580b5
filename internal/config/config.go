package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	SessionCookieName      string
	SessionTTL             time.Duration
	BcryptCost             int
	RoomTimeLimit          time.Duration
	RoomSessionTTL         time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production hardening,
// which controls the Secure attribute on the session cookie.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TALENTTUNE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "TalentTune API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.cookie", "auth-token")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("bcrypt.cost", 10)
	v.SetDefault("room.time_limit", "60s")
	v.SetDefault("room.session_ttl", "4h")
	v.SetDefault("cloudinary.folder", "talenttune/materials")

	sessionTTL, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	roomLimit, err := time.ParseDuration(v.GetString("room.time_limit"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid room time limit: %w", err)
	}

	roomSessionTTL, err := time.ParseDuration(v.GetString("room.session_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid room session ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		SessionCookieName:      v.GetString("session.cookie"),
		SessionTTL:             sessionTTL,
		BcryptCost:             v.GetInt("bcrypt.cost"),
		RoomTimeLimit:          roomLimit,
		RoomSessionTTL:         roomSessionTTL,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = 10
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	if cfg.RoomTimeLimit <= 0 {
		cfg.RoomTimeLimit = time.Minute
	}

	return cfg, nil
}
