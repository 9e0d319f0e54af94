package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seqship.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
server:
  url: http://seq:5341
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://seq:5341", cfg.Server.URL)
	assert.Equal(t, DefaultBatchPostingLimit, cfg.Batch.PostingLimit)
	assert.Equal(t, 2*time.Second, cfg.FlushPeriod())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 0, cfg.Server.EventBodyLimitBytes)
	assert.False(t, cfg.Server.Gzip)
	assert.Equal(t, 2, cfg.Daemon.MinWorkers)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
server:
  url: https://logs.example.com/
  api_key: abc123
  event_body_limit_bytes: 262144
  gzip: true
batch:
  posting_limit: 500
  flush_period_seconds: 5
daemon:
  log_root_path: /srv/logs
  min_workers: 1
  max_workers: 4
logging:
  level: debug
  pretty: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://logs.example.com/", cfg.Server.URL)
	assert.Equal(t, "abc123", cfg.Server.APIKey)
	assert.Equal(t, 262144, cfg.Server.EventBodyLimitBytes)
	assert.True(t, cfg.Server.Gzip)
	assert.Equal(t, 500, cfg.Batch.PostingLimit)
	assert.Equal(t, 5*time.Second, cfg.FlushPeriod())
	assert.Equal(t, "/srv/logs", cfg.Daemon.LogRootPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/seqship.yml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing URL",
			content: `batch: {posting_limit: 10}`,
		},
		{
			name: "bad scheme",
			content: `
server:
  url: ftp://seq:5341
`,
		},
		{
			name: "no host",
			content: `
server:
  url: http://
`,
		},
		{
			name: "non-positive posting limit",
			content: `
server:
  url: http://seq:5341
batch:
  posting_limit: -1
`,
		},
		{
			name: "workers inverted",
			content: `
server:
  url: http://seq:5341
daemon:
  min_workers: 8
  max_workers: 2
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  url: http://seq:5341
`)

	t.Setenv("SEQSHIP_SERVER_URL", "http://other:5341")
	t.Setenv("SEQSHIP_API_KEY", "env-key")
	t.Setenv("SEQSHIP_BATCH_LIMIT", "250")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://other:5341", cfg.Server.URL)
	assert.Equal(t, "env-key", cfg.Server.APIKey)
	assert.Equal(t, 250, cfg.Batch.PostingLimit)
}

func TestLoad_NoFileUsesEnv(t *testing.T) {
	t.Setenv("SEQSHIP_SERVER_URL", "http://env-only:5341")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env-only:5341", cfg.Server.URL)
}
