// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SCORING_PASSING_SCORE
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, e.g. config.production.yaml
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root,
// so binaries and tests behave the same regardless of where they run.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "hiring-coordinator"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Scoring.PassingScore == 0 {
		cfg.Scoring.PassingScore = 60
	}
	if cfg.Scoring.HighWatermark == 0 {
		cfg.Scoring.HighWatermark = 85
	}
	if cfg.Scoring.TimeoutMS == 0 {
		cfg.Scoring.TimeoutMS = 60000
	}

	if cfg.Scheduling.SearchDaysAhead == 0 {
		cfg.Scheduling.SearchDaysAhead = 14
	}
	if cfg.Scheduling.DurationMinutes == 0 {
		cfg.Scheduling.DurationMinutes = 45
	}
	if cfg.Scheduling.WorkdayStart == "" {
		cfg.Scheduling.WorkdayStart = "10:00"
	}
	if cfg.Scheduling.WorkdayEnd == "" {
		cfg.Scheduling.WorkdayEnd = "18:00"
	}
	if cfg.Scheduling.DefaultTimezone == "" {
		cfg.Scheduling.DefaultTimezone = "UTC"
	}
	if cfg.Scheduling.BusyCacheTTLSecs == 0 {
		cfg.Scheduling.BusyCacheTTLSecs = 120
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialDelayMS == 0 {
		cfg.Retry.InitialDelayMS = 500
	}
	if cfg.Retry.BackoffFactor == 0 {
		cfg.Retry.BackoffFactor = 2
	}

	if cfg.Notifications.Provider == "" {
		cfg.Notifications.Provider = "smtp"
	}

	if cfg.APIs.GenAI.Model == "" {
		cfg.APIs.GenAI.Model = "gemini-2.5-flash"
	}
	if cfg.APIs.GenAI.Timeout == 0 {
		cfg.APIs.GenAI.Timeout = 60000
	}
	if cfg.APIs.CalendarTool.Timeout == 0 {
		cfg.APIs.CalendarTool.Timeout = 15000
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Scoring.PassingScore < 0 || cfg.Scoring.PassingScore > 100 {
		return fmt.Errorf("scoring.passing_score must be within [0,100], got %v", cfg.Scoring.PassingScore)
	}
	if cfg.Scoring.HighWatermark < cfg.Scoring.PassingScore {
		return fmt.Errorf("scoring.high_watermark must be >= passing_score")
	}
	if cfg.Scheduling.DurationMinutes <= 0 {
		return fmt.Errorf("scheduling.duration_minutes must be positive")
	}
	if cfg.Scheduling.BufferMinutes < 0 {
		return fmt.Errorf("scheduling.buffer_minutes must not be negative")
	}
	if cfg.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	switch cfg.Notifications.Provider {
	case "smtp", "ses":
	default:
		return fmt.Errorf("notifications.provider must be smtp or ses, got %q", cfg.Notifications.Provider)
	}
	return nil
}
