package models

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	WhatsApp WhatsAppConfig `json:"whatsapp"`
	Store    StoreConfig    `json:"store"`
	Tracing  TracingConfig  `json:"tracing"`
	LogLevel string         `json:"log_level"`
	SeedDemo *bool          `json:"seed_demo,omitempty"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port           int   `json:"port"`
	BodyLimitBytes int64 `json:"body_limit_bytes"`
}

// WhatsAppConfig holds WhatsApp Cloud API settings. PhoneNumberID and
// AccessToken are only needed by the reply path.
type WhatsAppConfig struct {
	VerifyToken   string `json:"verify_token"`
	PhoneNumberID string `json:"phone_number_id"`
	AccessToken   string `json:"access_token"`
	APIBaseURL    string `json:"api_base_url"`
	APIVersion    string `json:"api_version"`
	TimeoutSec    int    `json:"timeout_sec"`
}

// HasCredentials reports whether outbound sends can be attempted.
func (c WhatsAppConfig) HasCredentials() bool {
	return c.PhoneNumberID != "" && c.AccessToken != ""
}

// StoreConfig selects the inbox store backend
type StoreConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// TracingConfig mirrors tracing.TracingConfig for the JSON config file
type TracingConfig struct {
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	Enabled        bool    `json:"enabled"`
	UseStdout      bool    `json:"use_stdout"`
}

// ShouldSeedDemo reports whether the static demo records are loaded at start-up.
func (c *Config) ShouldSeedDemo() bool {
	return c.SeedDemo == nil || *c.SeedDemo
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
