package config

import (
	"fmt"
	"time"

	"github.com/channelops/taskhealth/internal/analyzer"
)

// Config holds the complete application configuration.
type Config struct {
	Version    string           `yaml:"version" json:"version"`
	Policy     PolicyConfig     `yaml:"policy" json:"policy"`
	Escalation EscalationConfig `yaml:"escalation" json:"escalation"`
	Categories CategoryConfig   `yaml:"categories" json:"categories"`
	AI         AIConfig         `yaml:"ai" json:"ai"`
	History    HistoryConfig    `yaml:"history" json:"history"`
	Output     OutputConfig     `yaml:"output" json:"output"`
}

// PolicyConfig configures the severity classification rules. Every
// threshold and category-set membership lives here; the classifier has
// no constants of its own.
type PolicyConfig struct {
	StalenessDays  int      `yaml:"staleness_days" json:"staleness_days" env:"TASKHEALTH_POLICY_STALENESS_DAYS"`
	HighVolume     int      `yaml:"high_volume" json:"high_volume" env:"TASKHEALTH_POLICY_HIGH_VOLUME"`
	CriticalVolume int      `yaml:"critical_volume" json:"critical_volume" env:"TASKHEALTH_POLICY_CRITICAL_VOLUME"`
	CoreCritical   []string `yaml:"core_critical" json:"core_critical" env:"TASKHEALTH_POLICY_CORE_CRITICAL" envSeparator:","`
	Elevated       []string `yaml:"elevated" json:"elevated" env:"TASKHEALTH_POLICY_ELEVATED" envSeparator:","`
}

// EscalationConfig configures the optional post-classification
// escalation window.
type EscalationConfig struct {
	Enabled bool      `yaml:"enabled" json:"enabled" env:"TASKHEALTH_ESCALATION_ENABLED"`
	Start   time.Time `yaml:"start" json:"start"`
	End     time.Time `yaml:"end" json:"end"`
}

// CategoryConfig configures the monitored category registry.
type CategoryConfig struct {
	File           string `yaml:"file" json:"file" env:"TASKHEALTH_CATEGORIES_FILE"`
	EnableDefaults bool   `yaml:"enable_defaults" json:"enable_defaults"`
}

// AIConfig configures the AI analysis collaborator.
type AIConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled" env:"TASKHEALTH_AI_ENABLED"`
	Model       string        `yaml:"model" json:"model" env:"TASKHEALTH_AI_MODEL"`
	Endpoint    string        `yaml:"endpoint" json:"endpoint" env:"TASKHEALTH_AI_ENDPOINT"`
	APIKey      string        `yaml:"api_key" json:"api_key" env:"TASKHEALTH_AI_API_KEY"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" env:"TASKHEALTH_AI_TIMEOUT"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens" env:"TASKHEALTH_AI_MAX_TOKENS"`
	Temperature float64       `yaml:"temperature" json:"temperature"`
}

// HistoryConfig configures the run archive.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" env:"TASKHEALTH_HISTORY_ENABLED"`
	Path    string `yaml:"path" json:"path" env:"TASKHEALTH_HISTORY_PATH"`
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	DefaultFormat  string `yaml:"default_format" json:"default_format" env:"TASKHEALTH_OUTPUT_DEFAULT_FORMAT"`
	ColorMode      string `yaml:"color_mode" json:"color_mode" env:"TASKHEALTH_OUTPUT_COLOR_MODE"`
	Verbose        bool   `yaml:"verbose" json:"verbose" env:"TASKHEALTH_OUTPUT_VERBOSE"`
	IncludeOK      bool   `yaml:"include_ok" json:"include_ok" env:"TASKHEALTH_OUTPUT_INCLUDE_OK"`
	MaxGroupsShown int    `yaml:"max_groups_shown" json:"max_groups_shown" env:"TASKHEALTH_OUTPUT_MAX_GROUPS_SHOWN"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Policy: PolicyConfig{
			StalenessDays:  15,
			HighVolume:     10,
			CriticalVolume: 5,
			CoreCritical:   []string{"POLLING", "CREATION", "WMS", "LIVERPOOL_CONFIRM", "TOKEN"},
			Elevated:       []string{"LIVERPOOL_CONFIRM", "WMS", "ODOO"},
		},
		Escalation: EscalationConfig{
			Enabled: false,
		},
		Categories: CategoryConfig{
			File:           "",
			EnableDefaults: true,
		},
		AI: AIConfig{
			Enabled:     false,
			Model:       "gpt-4o-mini",
			Endpoint:    "https://api.openai.com",
			APIKey:      "",
			Timeout:     60 * time.Second,
			MaxTokens:   1500,
			Temperature: 0.3,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "~/.local/share/taskhealth/history.db",
		},
		Output: OutputConfig{
			DefaultFormat:  "text",
			ColorMode:      "auto",
			Verbose:        false,
			IncludeOK:      false,
			MaxGroupsShown: 5,
		},
	}
}

// AnalyzerPolicy converts the configured thresholds into the classifier
// policy.
func (c *Config) AnalyzerPolicy() analyzer.Policy {
	return analyzer.Policy{
		Staleness:      time.Duration(c.Policy.StalenessDays) * 24 * time.Hour,
		HighVolume:     c.Policy.HighVolume,
		CriticalVolume: c.Policy.CriticalVolume,
		CoreCritical:   c.Policy.CoreCritical,
		Elevated:       c.Policy.Elevated,
	}
}

// EscalationWindow converts the escalation settings into the composable
// analyzer transform; disabled settings yield an inactive window.
func (c *Config) EscalationWindow() analyzer.EscalationWindow {
	if !c.Escalation.Enabled {
		return analyzer.EscalationWindow{}
	}
	return analyzer.EscalationWindow{Start: c.Escalation.Start, End: c.Escalation.End}
}

// Validate validates the configuration. Invalid configuration is the
// one fatal condition: it must be rejected before any record is
// processed.
func (c *Config) Validate() error {
	if err := c.AnalyzerPolicy().Validate(); err != nil {
		return err
	}
	if err := c.validateEscalation(); err != nil {
		return err
	}
	if err := c.validateAI(); err != nil {
		return err
	}
	return c.validateOutput()
}

func (c *Config) validateEscalation() error {
	if !c.Escalation.Enabled {
		return nil
	}
	if c.Escalation.Start.IsZero() || c.Escalation.End.IsZero() {
		return fmt.Errorf("escalation window requires both start and end")
	}
	if !c.Escalation.Start.Before(c.Escalation.End) {
		return fmt.Errorf("escalation window start must precede end")
	}
	return nil
}

func (c *Config) validateAI() error {
	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai timeout must be non-negative")
	}
	if c.AI.MaxTokens < 0 {
		return fmt.Errorf("ai max_tokens must be non-negative")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"html":     true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, html)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.MaxGroupsShown < 1 {
		return fmt.Errorf("max_groups_shown must be greater than 0")
	}
	return nil
}
