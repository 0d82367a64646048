package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort                 = "3000"
	DefaultEnv                  = "development"
	DefaultUploadsDir           = "uploads"
	DefaultMaxImageBytes  int64 = 10 * 1024 * 1024
	DefaultMaxVideoBytes  int64 = 500 * 1024 * 1024
	DefaultTokenTTL             = 24 * time.Hour
	DefaultPublishTimeout       = 10 * time.Minute
	DefaultAdminUsername        = "admin"
	DefaultAdminPassword        = "admin123"
	DefaultYouTubeRedirectURI   = "http://localhost:3000/api/youtube/callback"
	APIPrefix                   = "/api"

	developmentJWTSecret = "showroom-development-secret-change-me"
)

var DefaultCORSAllowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"https://*.onrender.com",
	"https://*.vercel.app",
}

type YouTube struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	RedirectURI  string
}

// Configured reports whether every credential needed for an upload is present.
func (y YouTube) Configured() bool {
	return y.ClientID != "" && y.ClientSecret != "" && y.RefreshToken != ""
}

type Config struct {
	Env                string
	Bind               string
	Database           Database
	JWTSecret          string
	TokenTTL           time.Duration
	AdminUsername      string
	AdminPassword      string
	UploadsDir         string
	MaxImageBytes      int64
	MaxVideoBytes      int64
	YouTube            YouTube
	PublishTimeout     time.Duration
	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
	SwaggerUIPath      string
	OpenAPIPath        string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getenv("APP_ENV", getenv("NODE_ENV", DefaultEnv))
	cfg := &Config{
		Env:                env,
		Bind:               getenv("SHOWROOM_BIND", ":"+strings.TrimPrefix(getenv("PORT", DefaultPort), ":")),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTL:           getDuration("TOKEN_TTL", DefaultTokenTTL),
		AdminUsername:      getenv("ADMIN_USERNAME", DefaultAdminUsername),
		AdminPassword:      getenv("ADMIN_PASSWORD", DefaultAdminPassword),
		UploadsDir:         getenv("UPLOADS_DIR", DefaultUploadsDir),
		MaxImageBytes:      getInt64("MAX_IMAGE_BYTES", DefaultMaxImageBytes),
		MaxVideoBytes:      getInt64("MAX_VIDEO_BYTES", DefaultMaxVideoBytes),
		PublishTimeout:     getDuration("PUBLISH_TIMEOUT", DefaultPublishTimeout),
		CORSAllowedOrigins: splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFormat:          getenv("LOG_FORMAT", "text"),
		SwaggerUIPath:      APIPrefix + "/docs",
		OpenAPIPath:        APIPrefix + "/openapi.yaml",
		YouTube: YouTube{
			ClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
			ClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
			RefreshToken: os.Getenv("YOUTUBE_REFRESH_TOKEN"),
			RedirectURI:  getenv("YOUTUBE_REDIRECT_URI", DefaultYouTubeRedirectURI),
		},
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = append([]string(nil), DefaultCORSAllowedOrigins...)
	}

	db, err := ResolveDatabase(os.Getenv, cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	cfg.Database = db

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = developmentJWTSecret
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %s", cfg.TokenTTL)
	}
	if cfg.MaxImageBytes <= 0 || cfg.MaxVideoBytes <= 0 {
		return nil, fmt.Errorf("upload limits must be positive")
	}
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must not be empty")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
