// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	HTTP          HTTPConfig         `mapstructure:"http"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Scoring       ScoringConfig      `mapstructure:"scoring"`
	Scheduling    SchedulingConfig   `mapstructure:"scheduling"`
	Retry         RetryConfig        `mapstructure:"retry"`
	Integrations  IntegrationConfig  `mapstructure:"integrations"`
	APIs          APIsConfig         `mapstructure:"apis"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Pipeline Configuration ---

// ScoringConfig drives the qualification verdict.
type ScoringConfig struct {
	PassingScore  float64 `mapstructure:"passing_score"`  // verdict = score >= passing_score
	HighWatermark float64 `mapstructure:"high_watermark"` // >= this is treated as highly recommended
	TimeoutMS     int     `mapstructure:"timeout_ms"`
}

// SchedulingConfig holds defaults for slot searches.
type SchedulingConfig struct {
	SearchDaysAhead  int    `mapstructure:"search_days_ahead"`
	DurationMinutes  int    `mapstructure:"duration_minutes"`
	BufferMinutes    int    `mapstructure:"buffer_minutes"`
	MaxSlotsPerDay   int    `mapstructure:"max_slots_per_day"` // 0 = unlimited
	WorkdayStart     string `mapstructure:"workday_start"`     // "10:00"
	WorkdayEnd       string `mapstructure:"workday_end"`       // "18:00"
	LunchStart       string `mapstructure:"lunch_start"`       // "" disables the closed window
	LunchEnd         string `mapstructure:"lunch_end"`
	DefaultTimezone  string `mapstructure:"default_timezone"`
	BusyCacheTTLSecs int    `mapstructure:"busy_cache_ttl_seconds"`
}

// RetryConfig bounds external-call retries across all stages.
type RetryConfig struct {
	MaxAttempts    int     `mapstructure:"max_attempts"`
	InitialDelayMS int     `mapstructure:"initial_delay_ms"`
	BackoffFactor  float64 `mapstructure:"backoff_factor"`
}

// IntegrationConfig holds settings for mail and alert delivery.
type IntegrationConfig struct {
	AWS  AWSConfig  `mapstructure:"aws"`
	SMTP SMTPConfig `mapstructure:"smtp"`
}

type AWSConfig struct {
	Region string    `mapstructure:"region"`
	SES    SESConfig `mapstructure:"ses"`
	SNS    SNSConfig `mapstructure:"sns"`
}

type SESConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	FromEmail string `mapstructure:"from_email"`
}

type SNSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	TopicARN string `mapstructure:"topic_arn"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	UseTLS      bool   `mapstructure:"use_tls"`
	DefaultFrom string `mapstructure:"default_from"`
}

// APIsConfig holds settings for external capability endpoints.
type APIsConfig struct {
	GenAI        GenAIConfig        `mapstructure:"genai"`
	CalendarTool CalendarToolConfig `mapstructure:"calendar_tool"`
}

type GenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type CalendarToolConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// NotificationConfig selects the delivery channel for candidate email.
type NotificationConfig struct {
	Provider  string `mapstructure:"provider"` // "smtp" or "ses"
	FromEmail string `mapstructure:"from_email"`
	ReplyTo   string `mapstructure:"reply_to"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
