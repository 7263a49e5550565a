package config

import (
	"os"
	"path/filepath"
	"testing"

	"unifiedinbox/internal/constants"
	"unifiedinbox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"PORT",
	"WHATSAPP_VERIFY_TOKEN",
	"WHATSAPP_PHONE_NUMBER_ID",
	"WHATSAPP_ACCESS_TOKEN",
	"WHATSAPP_API_URL",
	"WHATSAPP_API_VERSION",
	"INBOX_STORE",
	"INBOX_DB_PATH",
	"LOG_LEVEL",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, int64(constants.DefaultBodyLimitBytes), cfg.Server.BodyLimitBytes)
	assert.Equal(t, "unifiedinboxtest", cfg.WhatsApp.VerifyToken)
	assert.Equal(t, "https://graph.facebook.com", cfg.WhatsApp.APIBaseURL)
	assert.Equal(t, "v20.0", cfg.WhatsApp.APIVersion)
	assert.Equal(t, constants.DefaultHTTPTimeoutSec, cfg.WhatsApp.TimeoutSec)
	assert.Equal(t, constants.StoreBackendMemory, cfg.Store.Backend)
	assert.Empty(t, cfg.Store.Path)
	assert.False(t, cfg.WhatsApp.HasCredentials())
	assert.True(t, cfg.ShouldSeedDemo())
}

func TestLoadConfig_File(t *testing.T) {
	clearConfigEnv(t)

	path := writeConfig(t, `{
		"server": {"port": 8080, "body_limit_bytes": 1024},
		"whatsapp": {
			"verify_token": "file-token",
			"phone_number_id": "1234",
			"api_base_url": "http://localhost:9999/",
			"api_version": "v21.0",
			"timeout_sec": 5
		},
		"store": {"backend": "SQLite"},
		"log_level": "debug",
		"seed_demo": false
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(1024), cfg.Server.BodyLimitBytes)
	assert.Equal(t, "file-token", cfg.WhatsApp.VerifyToken)
	assert.Equal(t, "1234", cfg.WhatsApp.PhoneNumberID)
	assert.Equal(t, "http://localhost:9999", cfg.WhatsApp.APIBaseURL)
	assert.Equal(t, "v21.0", cfg.WhatsApp.APIVersion)
	assert.Equal(t, 5, cfg.WhatsApp.TimeoutSec)
	assert.Equal(t, constants.StoreBackendSQLite, cfg.Store.Backend)
	assert.Equal(t, constants.DefaultSQLiteDSN, cfg.Store.Path)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.ShouldSeedDemo())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, `{"server": {"port": 8080}, "whatsapp": {"access_token": "from-file"}}`)

	t.Setenv("PORT", "4000")
	t.Setenv("WHATSAPP_VERIFY_TOKEN", "env-token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "5555")
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "env-access")
	t.Setenv("WHATSAPP_API_VERSION", "v22.0")
	t.Setenv("INBOX_STORE", "sqlite")
	t.Setenv("INBOX_DB_PATH", "inbox.db")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "env-token", cfg.WhatsApp.VerifyToken)
	assert.Equal(t, "5555", cfg.WhatsApp.PhoneNumberID)
	assert.Equal(t, "env-access", cfg.WhatsApp.AccessToken)
	assert.Equal(t, "v22.0", cfg.WhatsApp.APIVersion)
	assert.Equal(t, constants.StoreBackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "inbox.db", cfg.Store.Path)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.WhatsApp.HasCredentials())
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		env      map[string]string
		path     string
		errorMsg string
	}{
		{
			name:     "invalid port env",
			env:      map[string]string{"PORT": "abc"},
			errorMsg: "invalid PORT",
		},
		{
			name:     "port out of range",
			content:  `{"server": {"port": 70000}}`,
			errorMsg: ErrInvalidPort.Message,
		},
		{
			name:     "api base url without scheme",
			content:  `{"whatsapp": {"api_base_url": "graph.facebook.com"}}`,
			errorMsg: "must use http or https",
		},
		{
			name:     "timeout too large",
			content:  `{"whatsapp": {"timeout_sec": 7200}}`,
			errorMsg: "whatsapp timeout_sec too large",
		},
		{
			name:     "negative body limit",
			content:  `{"server": {"body_limit_bytes": -1}}`,
			errorMsg: ErrInvalidBodyLimit.Message,
		},
		{
			name:     "unknown store backend",
			content:  `{"store": {"backend": "redis"}}`,
			errorMsg: "unknown store backend: redis",
		},
		{
			name:     "bad sample rate",
			content:  `{"tracing": {"sample_rate": 2}}`,
			errorMsg: "sample rate",
		},
		{
			name:     "malformed json",
			content:  `{"server": `,
			errorMsg: "unexpected end of JSON input",
		},
		{
			name:     "missing file",
			path:     filepath.Join(os.TempDir(), "unifiedinbox-does-not-exist.json"),
			errorMsg: "no such file",
		},
		{
			name:     "traversal",
			path:     "../../etc/passwd",
			errorMsg: "directory traversal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := tt.path
			if tt.content != "" {
				path = writeConfig(t, tt.content)
			}

			cfg, err := LoadConfig(path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestConfigError(t *testing.T) {
	var err error = models.ConfigError{Message: "boom"}
	assert.Equal(t, "boom", err.Error())
}
