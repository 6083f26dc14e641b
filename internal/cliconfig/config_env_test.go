package cliconfig

import (
	"reflect"
	"testing"
	"time"

	"github.com/bft-labs/tickfeed/internal/domain"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"TICKFEED_HOST":               "tp.example",
				"TICKFEED_PORT":               "6010",
				"TICKFEED_TABLES":             "trade, quote",
				"TICKFEED_RECONNECT_INTERVAL": "5s",
				"TICKFEED_PRINT":              "true",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Host:              "tp.example",
				Port:              6010,
				Tables:            []string{"trade", "quote"},
				ReconnectInterval: 5 * time.Second,
				Print:             true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"TICKFEED_HOST":     "env-host",
				"TICKFEED_USERNAME": "env-user",
			},
			changed: map[string]bool{"host": true},
			initial: Config{Host: "flag-host"},
			expected: Config{
				Host:     "flag-host",
				Username: "env-user",
			},
		},
		{
			name: "parses publisher targets",
			envVars: map[string]string{
				"TICKFEED_PUBLISHERS": "tp1:5010,u:p@tp2:5011",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Publishers: []domain.Target{
					{Host: "tp1", Port: 5010},
					{Host: "tp2", Port: 5011, Username: "u", Password: "p"},
				},
			},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"TICKFEED_RESET_AFTER": "not-a-duration",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"TICKFEED_PORT": "not-a-number",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid publisher",
			envVars: map[string]string{
				"TICKFEED_PUBLISHERS": "tp1",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "handles bool '1' as true",
			envVars: map[string]string{
				"TICKFEED_PRINT": "1",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{Print: true},
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"TICKFEED_PRINT": "false",
			},
			changed:  map[string]bool{},
			initial:  Config{Print: true},
			expected: Config{Print: false},
		},
		{
			name: "handles all field types correctly",
			envVars: map[string]string{
				"TICKFEED_HOST":               "tp",
				"TICKFEED_PORT":               "5012",
				"TICKFEED_USERNAME":           "user",
				"TICKFEED_PASSWORD":           "secret",
				"TICKFEED_TABLES":             "trade",
				"TICKFEED_SUBSCRIBE_FUNCTION": ".u.subx",
				"TICKFEED_UPDATE_FUNCTIONS":   "upd",
				"TICKFEED_PUBLISH_FUNCTION":   ".u.pub",
				"TICKFEED_RECONNECT_INTERVAL": "1s",
				"TICKFEED_RESET_AFTER":        "1h",
				"TICKFEED_IDLE_INTERVAL":      "20ms",
				"TICKFEED_DIAL_TIMEOUT":       "3s",
				"TICKFEED_MAX_MESSAGE_SIZE":   "1024",
				"TICKFEED_LOG_LEVEL":          "debug",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Host:              "tp",
				Port:              5012,
				Username:          "user",
				Password:          "secret",
				Tables:            []string{"trade"},
				SubscribeFunction: ".u.subx",
				UpdateFunctions:   []string{"upd"},
				PublishFunction:   ".u.pub",
				ReconnectInterval: time.Second,
				ResetAfter:        time.Hour,
				IdleInterval:      20 * time.Millisecond,
				DialTimeout:       3 * time.Second,
				MaxMessageSize:    1024,
				LogLevel:          "debug",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	trueVal := true

	fileConf := FileConfig{
		Host:     "file-host",
		Username: "file-user",
		Tables:   []string{"file"},
		Print:    &trueVal,
	}

	t.Setenv("TICKFEED_HOST", "env-host")
	t.Setenv("TICKFEED_USERNAME", "env-user")
	t.Setenv("TICKFEED_PORT", "7010")

	// Simulate CLI flags
	changed := map[string]bool{
		"host": true,
	}

	cfg := Config{
		Host: "cli-host",
	}

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.Host != "cli-host" {
		t.Errorf("Host = %v, want cli-host (CLI should win)", cfg.Host)
	}
	if cfg.Username != "env-user" {
		t.Errorf("Username = %v, want env-user (env should override file)", cfg.Username)
	}
	if cfg.Port != 7010 {
		t.Errorf("Port = %v, want 7010 (env should set)", cfg.Port)
	}
	if !reflect.DeepEqual(cfg.Tables, []string{"file"}) {
		t.Errorf("Tables = %v, want [file] (file should set)", cfg.Tables)
	}
	if !cfg.Print {
		t.Errorf("Print = %v, want true (file should set)", cfg.Print)
	}
}
