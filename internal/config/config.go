package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Study    StudyConfig    `mapstructure:"study" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Events   EventsConfig   `mapstructure:"events"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=1,lte=44640"`
}

// StudyConfig holds the engine thresholds shared by every learner.
type StudyConfig struct {
	// MinAttempts is the minimum sample before an item can become well known.
	MinAttempts int `mapstructure:"min_attempts" validate:"gte=1"`

	// WellKnownThreshold is the accuracy required for graduation.
	WellKnownThreshold float64 `mapstructure:"well_known_threshold" validate:"gt=0,lte=1"`

	// AllowDemotion lets learners move a well-known item back into rotation.
	AllowDemotion bool `mapstructure:"allow_demotion"`
}

// LLMConfig contains settings for the translation back-fill.
// An empty API key disables the back-fill.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name" validate:"required_with=GeminiAPIKey"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=5"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	Workers           int    `mapstructure:"workers" validate:"gte=1,lte=16"`
	QueueSize         int    `mapstructure:"queue_size" validate:"gte=1"`
}

// Enabled reports whether a translator should be wired.
func (c LLMConfig) Enabled() bool {
	return c.GeminiAPIKey != ""
}

// EventsConfig configures where engine events are published.
// An empty NATS URL keeps events in process.
type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url" validate:"omitempty,url"`
	SubjectPrefix string `mapstructure:"subject_prefix" validate:"required"`
}
