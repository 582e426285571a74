package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Parser.SkipPages)
	assert.Equal(t, int64(200000), cfg.Limits.ContributionLimitCents)
	assert.Equal(t, "pdftotext", cfg.Ingest.PdfToText)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, "./data", cfg.Storage.BasePath)
	assert.Empty(t, cfg.Alerts.WebhookURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("PARSER_BOILERPLATE_PHRASES", "no activity, , page left blank")
	t.Setenv("COMMITTEE_MATCH_THRESHOLD", "0.8")
	t.Setenv("INGEST_VERIFY_PAGES", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"no activity", "page left blank"}, cfg.Parser.BoilerplatePhrases)
	assert.InDelta(t, 0.8, cfg.Committees.MatchThreshold, 1e-9)
	assert.False(t, cfg.Ingest.VerifyPages)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"no workers", "INGEST_WORKERS", "0"},
		{"negative skip", "PARSER_SKIP_PAGES", "-1"},
		{"zero limit", "CONTRIBUTION_LIMIT_CENTS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", c.DSN())
}
