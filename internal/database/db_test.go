package database

import (
	"crypto/tls"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePostgres(t *testing.T, dsn string) *pgx.ConnConfig {
	t.Helper()
	cfg, err := pgx.ParseConfig(dsn)
	require.NoError(t, err)
	return cfg
}

func TestRelaxPostgresTLS_KeepsServerName(t *testing.T) {
	cfg := parsePostgres(t, "postgres://u:p@db.example.com:5432/app?sslmode=verify-full")
	require.NotNil(t, cfg.TLSConfig)
	original := cfg.TLSConfig
	require.Equal(t, "db.example.com", original.ServerName)

	relaxPostgresTLS(cfg)

	require.NotNil(t, cfg.TLSConfig)
	assert.True(t, cfg.TLSConfig.InsecureSkipVerify)
	assert.Equal(t, "db.example.com", cfg.TLSConfig.ServerName)
	assert.False(t, original.InsecureSkipVerify, "parsed config must not be mutated")
}

func TestRelaxPostgresTLS_PlaintextStaysPlaintext(t *testing.T) {
	cfg := parsePostgres(t, "postgres://u:p@db.example.com:5432/app?sslmode=disable")
	relaxPostgresTLS(cfg)
	assert.Nil(t, cfg.TLSConfig)
	for _, fb := range cfg.Fallbacks {
		assert.Nil(t, fb.TLSConfig)
	}
}

func TestRelaxPostgresTLS_Fallbacks(t *testing.T) {
	// prefer: TLS first, then a plaintext fallback.
	cfg := parsePostgres(t, "postgres://u:p@db.example.com:5432/app?sslmode=prefer")
	relaxPostgresTLS(cfg)

	require.NotNil(t, cfg.TLSConfig)
	assert.True(t, cfg.TLSConfig.InsecureSkipVerify)
	assert.Equal(t, "db.example.com", cfg.TLSConfig.ServerName)
	require.NotEmpty(t, cfg.Fallbacks)
	assert.Nil(t, cfg.Fallbacks[len(cfg.Fallbacks)-1].TLSConfig)
}

func TestSkipVerify(t *testing.T) {
	assert.Nil(t, skipVerify(nil))

	in := &tls.Config{ServerName: "mysql.example.com", MinVersion: tls.VersionTLS12}
	out := skipVerify(in)
	assert.True(t, out.InsecureSkipVerify)
	assert.Equal(t, "mysql.example.com", out.ServerName)
	assert.Equal(t, uint16(tls.VersionTLS12), out.MinVersion)
	assert.False(t, in.InsecureSkipVerify)
}
