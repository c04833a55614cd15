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
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	JWTSecret         string
	JWTRefreshSecret  string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	UploadDir         string
	OpenAIAPIKey      string
	GradingModel      string
	ChatModel         string
	GradingQueueSize  int
	DashboardCacheTTL time.Duration
	StudentCourseCap  int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADIENT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GRADiEnt API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("access_token_ttl", "30m")
	v.SetDefault("refresh_token_ttl", "168h")
	v.SetDefault("grading.model", "gpt-4o-mini")
	v.SetDefault("chat.model", "gpt-4o-mini")
	v.SetDefault("grading.queue_size", 64)
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("student.course_cap", 3)

	accessTTL, err := time.ParseDuration(v.GetString("access_token_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid access token ttl: %w", err)
	}

	refreshTTL, err := time.ParseDuration(v.GetString("refresh_token_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid refresh token ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("dashboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		JWTRefreshSecret:  v.GetString("jwt.refresh_secret"),
		AccessTokenTTL:    accessTTL,
		RefreshTokenTTL:   refreshTTL,
		UploadDir:         v.GetString("upload.dir"),
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		GradingModel:      v.GetString("grading.model"),
		ChatModel:         v.GetString("chat.model"),
		GradingQueueSize:  v.GetInt("grading.queue_size"),
		DashboardCacheTTL: cacheTTL,
		StudentCourseCap:  v.GetInt("student.course_cap"),
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	if cfg.GradingQueueSize <= 0 {
		cfg.GradingQueueSize = 64
	}

	if cfg.StudentCourseCap <= 0 {
		cfg.StudentCourseCap = 3
	}

	return cfg, nil
}
