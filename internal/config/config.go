// Package config loads sheetdash settings from the environment and an
// optional YAML rules file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/duskroseSouthAfrica/sheetdash/internal/engine"
)

type Config struct {
	// HTTP server
	Addr string

	// Upload limits
	MaxFileSize int64
	MaxRows     int

	// Sessions
	SessionTTL  time.Duration
	MaxSessions int

	// Engine
	RulesFile     string
	StrictPeriods bool
	SkipColumns   int
}

// Load reads SHEETDASH_* variables, falling back to defaults.
func Load() *Config {
	return &Config{
		Addr: getEnv("SHEETDASH_ADDR", ":8080"),

		MaxFileSize: int64(getEnvInt("SHEETDASH_MAX_FILE_SIZE", 10<<20)),
		MaxRows:     getEnvInt("SHEETDASH_MAX_ROWS", 10000),

		SessionTTL:  getEnvDuration("SHEETDASH_SESSION_TTL", 30*time.Minute),
		MaxSessions: getEnvInt("SHEETDASH_MAX_SESSIONS", 256),

		RulesFile:     getEnv("SHEETDASH_RULES_FILE", ""),
		StrictPeriods: getEnvBool("SHEETDASH_STRICT_PERIODS", false),
		SkipColumns:   getEnvInt("SHEETDASH_SKIP_COLUMNS", 1),
	}
}

// Validate returns every problem with the configuration in one error.
func (c *Config) Validate() error {
	var errors []string

	if c.Addr == "" {
		errors = append(errors, "listen address cannot be empty")
	} else if i := strings.LastIndex(c.Addr, ":"); i < 0 {
		errors = append(errors, fmt.Sprintf("invalid listen address '%s': want host:port", c.Addr))
	} else if port, err := strconv.Atoi(c.Addr[i+1:]); err != nil || port < 0 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port in '%s': must be between 0 and 65535", c.Addr))
	}

	if c.MaxFileSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid max file size %d: must be positive", c.MaxFileSize))
	}
	if c.MaxRows < 1 {
		errors = append(errors, fmt.Sprintf("invalid max rows %d: must be positive", c.MaxRows))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.MaxSessions < 1 {
		errors = append(errors, fmt.Sprintf("invalid max sessions %d: must be at least 1", c.MaxSessions))
	}

	if c.SkipColumns < 0 {
		errors = append(errors, fmt.Sprintf("invalid skip columns %d: cannot be negative", c.SkipColumns))
	}

	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); err != nil {
			errors = append(errors, fmt.Sprintf("rules file '%s' is not readable: %v", c.RulesFile, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Rules returns the role rules from RulesFile, or the built-in rules when
// no file is configured.
func (c *Config) Rules() (engine.Rules, error) {
	if c.RulesFile == "" {
		return engine.DefaultRules(), nil
	}
	data, err := os.ReadFile(c.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// SelectionOptions returns the row-selection column layout.
func (c *Config) SelectionOptions() engine.SelectionOptions {
	opts := engine.DefaultSelectionOptions()
	opts.SkipColumns = c.SkipColumns
	return opts
}

// RulesFile is the on-disk shape of a rules file:
//
//	rules:
//	  - role: entity
//	    match: [name, client, employee, vendor]
//	  - role: measure
//	    match: [amount, total]
type RulesFile struct {
	Rules []RuleEntry `yaml:"rules"`
}

// RuleEntry is one role and its header substrings.
type RuleEntry struct {
	Role  string   `yaml:"role"`
	Match []string `yaml:"match"`
}

// ParseRules decodes a YAML rules file. An empty rule list is rejected.
func ParseRules(data []byte) (engine.Rules, error) {
	var f RulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("parse rules: no rules defined")
	}

	rules := make(engine.Rules, 0, len(f.Rules))
	for i, entry := range f.Rules {
		role, err := engine.ParseRole(entry.Role)
		if err != nil {
			return nil, fmt.Errorf("parse rules: entry %d: %w", i, err)
		}
		if len(entry.Match) == 0 {
			return nil, fmt.Errorf("parse rules: entry %d (%s): match list is empty", i, entry.Role)
		}
		rules = append(rules, engine.Rule{Role: role, Match: entry.Match})
	}
	return rules, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
