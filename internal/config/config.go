package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"unifiedinbox/internal/constants"
	apperrors "unifiedinbox/internal/errors"
	"unifiedinbox/internal/models"
	"unifiedinbox/internal/security"
	"unifiedinbox/internal/validation"
)

var (
	ErrInvalidPort      = models.ConfigError{Message: "server port must be between 1 and 65535"}
	ErrInvalidBodyLimit = models.ConfigError{Message: "body limit must be positive"}
	ErrEmptyVerifyToken = models.ConfigError{Message: "webhook verify token cannot be empty"}
)

// LoadConfig builds the configuration from an optional JSON file followed by
// environment overrides. An empty path skips the file entirely.
func LoadConfig(path string) (*models.Config, error) {
	var config models.Config

	if path != "" {
		if err := security.ValidateFilePath(path); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}

		file, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - path validated above
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(file, &config); err != nil {
			return nil, err
		}
	}

	if err := applyEnvironmentOverrides(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyEnvironmentOverrides(c *models.Config) error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid PORT %q: %v", port, err)}
		}
		c.Server.Port = p
	}

	if token := os.Getenv("WHATSAPP_VERIFY_TOKEN"); token != "" {
		c.WhatsApp.VerifyToken = token
	}
	if id := os.Getenv("WHATSAPP_PHONE_NUMBER_ID"); id != "" {
		c.WhatsApp.PhoneNumberID = id
	}
	// SECURITY: access tokens belong in the environment, not in the config file
	if token := os.Getenv("WHATSAPP_ACCESS_TOKEN"); token != "" {
		c.WhatsApp.AccessToken = token
	}
	if url := os.Getenv("WHATSAPP_API_URL"); url != "" {
		c.WhatsApp.APIBaseURL = url
	}
	if version := os.Getenv("WHATSAPP_API_VERSION"); version != "" {
		c.WhatsApp.APIVersion = version
	}

	if backend := os.Getenv("INBOX_STORE"); backend != "" {
		c.Store.Backend = backend
	}
	if path := os.Getenv("INBOX_DB_PATH"); path != "" {
		c.Store.Path = path
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	return nil
}

func applyDefaults(c *models.Config) {
	if c.Server.Port == 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.BodyLimitBytes == 0 {
		c.Server.BodyLimitBytes = constants.DefaultBodyLimitBytes
	}

	if c.WhatsApp.VerifyToken == "" {
		c.WhatsApp.VerifyToken = constants.DefaultVerifyToken
	}
	if c.WhatsApp.APIBaseURL == "" {
		c.WhatsApp.APIBaseURL = constants.DefaultGraphAPIBaseURL
	}
	c.WhatsApp.APIBaseURL = strings.TrimRight(c.WhatsApp.APIBaseURL, "/")
	if c.WhatsApp.APIVersion == "" {
		c.WhatsApp.APIVersion = constants.DefaultGraphAPIVersion
	}
	if c.WhatsApp.TimeoutSec <= 0 {
		c.WhatsApp.TimeoutSec = constants.DefaultHTTPTimeoutSec
	}

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = constants.StoreBackendMemory
	}
	if c.Store.Backend == constants.StoreBackendSQLite && c.Store.Path == "" {
		c.Store.Path = constants.DefaultSQLiteDSN
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "unifiedinbox"
	}
}

func validate(c *models.Config) error {
	if err := validation.ValidateNumericRange(c.Server.Port, "server port", 1, 65535); err != nil {
		return ErrInvalidPort
	}
	if c.Server.BodyLimitBytes < 0 {
		return ErrInvalidBodyLimit
	}
	if strings.TrimSpace(c.WhatsApp.VerifyToken) == "" {
		return ErrEmptyVerifyToken
	}
	if err := validation.ValidateBaseURL(c.WhatsApp.APIBaseURL, "whatsapp api_base_url"); err != nil {
		return configErrorFrom(err)
	}
	if err := validation.ValidateTimeout(c.WhatsApp.TimeoutSec, "whatsapp timeout_sec"); err != nil {
		return configErrorFrom(err)
	}

	switch c.Store.Backend {
	case constants.StoreBackendMemory, constants.StoreBackendSQLite:
	default:
		return models.ConfigError{Message: fmt.Sprintf("unknown store backend: %s", c.Store.Backend)}
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return models.ConfigError{Message: "tracing sample rate must be between 0 and 1"}
	}
	return nil
}

func configErrorFrom(err error) models.ConfigError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return models.ConfigError{Message: appErr.Message}
	}
	return models.ConfigError{Message: err.Error()}
}
