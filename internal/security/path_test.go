package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid relative path",
			path: "config/test.json",
		},
		{
			name: "valid absolute path",
			path: "/etc/unifiedinbox/config.json",
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
			errMsg:  "path cannot be empty",
		},
		{
			name:    "path with directory traversal",
			path:    "../../../etc/passwd",
			wantErr: true,
			errMsg:  "path contains directory traversal",
		},
		{
			name:    "path with embedded traversal",
			path:    "config/../../../etc/passwd",
			wantErr: true,
			errMsg:  "path contains directory traversal",
		},
		{
			name: "path with dot in filename",
			path: "config/test.config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsMemoryDSN(t *testing.T) {
	tests := []struct {
		dsn      string
		expected bool
	}{
		{"file::memory:?cache=shared", true},
		{":memory:", true},
		{"file:inbox?mode=memory&cache=shared", true},
		{"inbox.db", false},
		{"file:inbox.db?_busy_timeout=5000", false},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsMemoryDSN(tt.dsn))
		})
	}
}

func TestValidateSQLiteDSN(t *testing.T) {
	assert.NoError(t, ValidateSQLiteDSN("file::memory:?cache=shared"))
	assert.NoError(t, ValidateSQLiteDSN("data/inbox.db"))
	assert.NoError(t, ValidateSQLiteDSN("file:data/inbox.db?_busy_timeout=5000"))
	assert.Error(t, ValidateSQLiteDSN(""))
	assert.Error(t, ValidateSQLiteDSN("file:../../inbox.db"))
}
