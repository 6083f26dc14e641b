package cliconfig

import (
	"testing"
	"time"

	"github.com/bft-labs/tickfeed/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != DefaultHost {
		t.Errorf("Host = %v, want %v", cfg.Host, DefaultHost)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %v, want %v", cfg.Port, DefaultPort)
	}
	if cfg.ReconnectInterval != 2*time.Second {
		t.Errorf("ReconnectInterval = %v, want 2s", cfg.ReconnectInterval)
	}
	if cfg.ResetAfter != 30*time.Minute {
		t.Errorf("ResetAfter = %v, want 30m", cfg.ResetAfter)
	}
	if cfg.MaxMessageSize != 16<<20 {
		t.Errorf("MaxMessageSize = %v, want 16MB", cfg.MaxMessageSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func(mut func(*Config)) Config {
		cfg := DefaultConfig()
		mut(&cfg)
		return cfg
	}

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "defaults",
			config: DefaultConfig(),
		},
		{
			name:    "missing host",
			config:  valid(func(c *Config) { c.Host = "" }),
			wantErr: true,
		},
		{
			name:    "port out of range",
			config:  valid(func(c *Config) { c.Port = 70000 }),
			wantErr: true,
		},
		{
			name:    "zero reconnect interval",
			config:  valid(func(c *Config) { c.ReconnectInterval = 0 }),
			wantErr: true,
		},
		{
			name:    "zero idle interval",
			config:  valid(func(c *Config) { c.IdleInterval = 0 }),
			wantErr: true,
		},
		{
			name:   "zero reset disables resets",
			config: valid(func(c *Config) { c.ResetAfter = 0 }),
		},
		{
			name:    "negative reset",
			config:  valid(func(c *Config) { c.ResetAfter = -time.Second }),
			wantErr: true,
		},
		{
			name:    "unknown log level",
			config:  valid(func(c *Config) { c.LogLevel = "loud" }),
			wantErr: true,
		},
		{
			name:    "bad publisher",
			config:  valid(func(c *Config) { c.Publishers = []domain.Target{{Host: "rdb"}} }),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateFillsDerivedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SubscribeFunction = ""
	cfg.UpdateFunctions = nil
	cfg.PublishFunction = ""
	cfg.LogLevel = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.SubscribeFunction != ".u.sub" {
		t.Errorf("SubscribeFunction = %q, want .u.sub", cfg.SubscribeFunction)
	}
	if len(cfg.UpdateFunctions) != 2 {
		t.Errorf("UpdateFunctions = %v, want defaults", cfg.UpdateFunctions)
	}
	if cfg.PublishFunction != ".u.upd" {
		t.Errorf("PublishFunction = %q, want .u.upd", cfg.PublishFunction)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestConfig_Masked(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Password = "secret"
	cfg.Publishers = []domain.Target{{Host: "rdb", Port: 1, Username: "u", Password: "p"}}

	masked := cfg.Masked()
	if masked.Password != "*****" || masked.Publishers[0].Password != "*****" {
		t.Errorf("Masked() leaked a password: %+v", masked)
	}
	if cfg.Password != "secret" || cfg.Publishers[0].Password != "p" {
		t.Error("Masked() modified the original config")
	}
}

func TestParseTargets(t *testing.T) {
	got, err := ParseTargets([]string{"a:1", "u@b:2"})
	if err != nil {
		t.Fatalf("ParseTargets() error = %v", err)
	}
	if len(got) != 2 || got[1].Username != "u" {
		t.Errorf("ParseTargets() = %v", got)
	}
	if _, err := ParseTargets([]string{"nope"}); err == nil {
		t.Error("ParseTargets() expected error for missing port")
	}
}
