package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestAnalyzerPolicyConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy.StalenessDays = 7
	cfg.Policy.HighVolume = 20
	cfg.Policy.CriticalVolume = 8

	policy := cfg.AnalyzerPolicy()
	if policy.Staleness != 7*24*time.Hour {
		t.Errorf("staleness = %s, want 168h", policy.Staleness)
	}
	if policy.HighVolume != 20 || policy.CriticalVolume != 8 {
		t.Errorf("volumes = %d/%d, want 20/8", policy.HighVolume, policy.CriticalVolume)
	}
}

func TestEscalationWindowConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Escalation.Enabled = true
	cfg.Escalation.Start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.Escalation.End = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	window := cfg.EscalationWindow()
	if !window.Active(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("window should be active inside the configured range")
	}

	cfg.Escalation.Enabled = false
	if cfg.EscalationWindow().Active(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("disabled escalation must yield an inactive window")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "negative staleness",
			mutate:  func(c *Config) { c.Policy.StalenessDays = -1 },
			wantErr: true,
		},
		{
			name:    "critical volume above high volume",
			mutate:  func(c *Config) { c.Policy.CriticalVolume = 50 },
			wantErr: true,
		},
		{
			name:    "zero high volume",
			mutate:  func(c *Config) { c.Policy.HighVolume = 0 },
			wantErr: true,
		},
		{
			name: "escalation enabled without bounds",
			mutate: func(c *Config) {
				c.Escalation.Enabled = true
			},
			wantErr: true,
		},
		{
			name: "escalation start after end",
			mutate: func(c *Config) {
				c.Escalation.Enabled = true
				c.Escalation.Start = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
				c.Escalation.End = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			},
			wantErr: true,
		},
		{
			name:    "invalid output format",
			mutate:  func(c *Config) { c.Output.DefaultFormat = "xml" },
			wantErr: true,
		},
		{
			name:    "invalid color mode",
			mutate:  func(c *Config) { c.Output.ColorMode = "rainbow" },
			wantErr: true,
		},
		{
			name:    "zero max groups",
			mutate:  func(c *Config) { c.Output.MaxGroupsShown = 0 },
			wantErr: true,
		},
		{
			name:    "negative ai timeout",
			mutate:  func(c *Config) { c.AI.Timeout = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
