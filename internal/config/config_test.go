package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigs(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))
	return dir
}

const validPublic = `
jwt_ttl: 24h
min_password_len: 8
waitlist_page_size: 50
revocation_refresh_interval: 1m
audit_retention_days: 90
audit_sweep_interval: 1h
secure_cookies: false
log_level: debug
`

const validPrivate = `
jwt_key: 'secret'
pg:
  host: localhost
  port: 5432
  user: unigate
  password: unigate
  dbname: unigate
`

func TestMustLoad(t *testing.T) {
	dir := writeConfigs(t, validPublic, validPrivate)

	cfg := MustLoad(dir)

	assert.Equal(t, 24*time.Hour, cfg.JwtTTL())
	assert.Equal(t, "secret", cfg.JwtKey())
	assert.Equal(t, 8, cfg.Public.MinPasswordLen)
	assert.Equal(t, 90, cfg.Public.AuditRetentionDays)
	assert.Equal(t, 5432, cfg.Private.Pg.Port)
}

func TestMustLoad_MissingRequiredField(t *testing.T) {
	// jwt_key intentionally missing
	dir := writeConfigs(t, validPublic, "pg:\n  host: localhost\n  port: 5432\n  user: u\n  dbname: d\n")

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic due to missing required field, got none")
		}
	}()

	_ = MustLoad(dir)
}

func TestMustLoad_MissingFile(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic due to missing config file, got none")
		}
	}()

	_ = MustLoad(t.TempDir())
}
