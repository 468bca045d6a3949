package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskroseSouthAfrica/sheetdash/internal/engine"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SHEETDASH_ADDR", "SHEETDASH_MAX_FILE_SIZE", "SHEETDASH_MAX_ROWS",
		"SHEETDASH_SESSION_TTL", "SHEETDASH_MAX_SESSIONS", "SHEETDASH_RULES_FILE",
		"SHEETDASH_STRICT_PERIODS", "SHEETDASH_SKIP_COLUMNS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, int64(10<<20), cfg.MaxFileSize)
	assert.Equal(t, 10000, cfg.MaxRows)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 256, cfg.MaxSessions)
	assert.False(t, cfg.StrictPeriods)
	assert.Equal(t, 1, cfg.SkipColumns)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SHEETDASH_ADDR", "127.0.0.1:9090")
	t.Setenv("SHEETDASH_MAX_ROWS", "50")
	t.Setenv("SHEETDASH_SESSION_TTL", "2h")
	t.Setenv("SHEETDASH_STRICT_PERIODS", "true")
	t.Setenv("SHEETDASH_SKIP_COLUMNS", "0")
	t.Setenv("SHEETDASH_MAX_SESSIONS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr)
	assert.Equal(t, 50, cfg.MaxRows)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.StrictPeriods)
	assert.Equal(t, 0, cfg.SelectionOptions().SkipColumns)
	assert.Equal(t, 256, cfg.MaxSessions, "invalid values fall back to the default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty_addr", mutate: func(c *Config) { c.Addr = "" }, wantErr: "listen address"},
		{name: "no_port", mutate: func(c *Config) { c.Addr = "localhost" }, wantErr: "host:port"},
		{name: "bad_port", mutate: func(c *Config) { c.Addr = ":99999" }, wantErr: "invalid port"},
		{name: "file_size", mutate: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "max file size"},
		{name: "rows", mutate: func(c *Config) { c.MaxRows = -1 }, wantErr: "max rows"},
		{name: "ttl", mutate: func(c *Config) { c.SessionTTL = time.Second }, wantErr: "session TTL"},
		{name: "sessions", mutate: func(c *Config) { c.MaxSessions = 0 }, wantErr: "max sessions"},
		{name: "skip", mutate: func(c *Config) { c.SkipColumns = -2 }, wantErr: "skip columns"},
		{name: "rules_missing", mutate: func(c *Config) { c.RulesFile = "/nonexistent/rules.yaml" }, wantErr: "rules file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Addr: ":8080", MaxFileSize: 1024, MaxRows: 10,
				SessionTTL: time.Hour, MaxSessions: 4, SkipColumns: 1,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{Addr: "", MaxFileSize: 0, MaxRows: 0, SessionTTL: 0, MaxSessions: 0}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, 5, strings.Count(err.Error(), "\n- "))
}

func TestParseRules(t *testing.T) {
	data := []byte(`
rules:
  - role: entity
    match: [vendor, supplier]
  - role: Measure
    match: [total]
  - role: period
    match: [posted]
`)
	rules, err := ParseRules(data)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, engine.Rule{Role: engine.Entity, Match: []string{"vendor", "supplier"}}, rules[0])
	assert.Equal(t, engine.Measure, rules[1].Role)

	roles, _ := engine.InferRoles([]string{"Supplier", "Posted On", "Total"}, rules)
	assert.Equal(t, "Supplier", roles.Entity)
	assert.Equal(t, "Total", roles.PrimaryMeasure())
	assert.Equal(t, []string{"Posted On"}, roles.PeriodSources)
}

func TestParseRules_Errors(t *testing.T) {
	tests := map[string]string{
		"not_yaml":     "rules: [",
		"empty":        "rules: []",
		"unknown_role": "rules:\n  - role: colour\n    match: [red]\n",
		"no_match":     "rules:\n  - role: entity\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRules([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestRules_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - role: category\n    match: [cost centre]\n"), 0o600))

	cfg := &Config{RulesFile: path}
	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Equal(t, engine.Rules{{Role: engine.Category, Match: []string{"cost centre"}}}, rules)

	defaults, err := (&Config{}).Rules()
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultRules(), defaults)
}
