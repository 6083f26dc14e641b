package cliconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/tickfeed/internal/domain"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Host:              "tp",
				Port:              5011,
				Tables:            []string{"trade"},
				ReconnectInterval: "3s",
				Print:             &trueVal,
				Publishers: []FileTarget{
					{Host: "pub1", Port: 6010},
					{Host: "pub2", Port: 6011, Username: "u", Password: "p"},
				},
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Host:              "tp",
				Port:              5011,
				Tables:            []string{"trade"},
				ReconnectInterval: 3 * time.Second,
				Print:             true,
				Publishers: []domain.Target{
					{Host: "pub1", Port: 6010},
					{Host: "pub2", Port: 6011, Username: "u", Password: "p"},
				},
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Host:       "config-host",
				Port:       5011,
				Publishers: []FileTarget{{Host: "pub1", Port: 6010}},
			},
			changed: map[string]bool{"host": true, "publisher": true},
			initial: Config{
				Host:       "flag-host",
				Publishers: []domain.Target{{Host: "flag-pub", Port: 1}},
			},
			expected: Config{
				Host:       "flag-host", // unchanged because flag was set
				Port:       5011,
				Publishers: []domain.Target{{Host: "flag-pub", Port: 1}},
			},
		},
		{
			name: "zero values leave defaults",
			fileConfig: FileConfig{
				Port: 0,
			},
			changed:  map[string]bool{},
			initial:  Config{Port: DefaultPort, LogLevel: "info"},
			expected: Config{Port: DefaultPort, LogLevel: "info"},
		},
		{
			name: "returns error for invalid duration",
			fileConfig: FileConfig{
				IdleInterval: "soon",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

const sampleConfig = `
host = "tp.example"
port = 5010
username = "feed"
tables = ["trade", "quote"]
reconnect_interval = "5s"
reset_after = "30m"
print = true

[[publishers]]
host = "rdb1"
port = 6010

[[publishers]]
host = "rdb2"
port = 6011
username = "svc"
password = "secret"
`

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	if err := os.WriteFile(configPath, []byte(sampleConfig), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Host != "tp.example" {
		t.Errorf("Host = %v, want tp.example", fc.Host)
	}
	if fc.Port != 5010 {
		t.Errorf("Port = %v, want 5010", fc.Port)
	}
	if !reflect.DeepEqual(fc.Tables, []string{"trade", "quote"}) {
		t.Errorf("Tables = %v, want [trade quote]", fc.Tables)
	}
	if fc.ReconnectInterval != "5s" {
		t.Errorf("ReconnectInterval = %v, want 5s", fc.ReconnectInterval)
	}
	if fc.Print == nil || !*fc.Print {
		t.Errorf("Print = %v, want true", fc.Print)
	}
	if len(fc.Publishers) != 2 {
		t.Fatalf("Publishers = %v, want 2 entries", fc.Publishers)
	}
	if fc.Publishers[1].Username != "svc" || fc.Publishers[1].Password != "secret" {
		t.Errorf("Publishers[1] = %+v, want svc credentials", fc.Publishers[1])
	}
}

func TestPublisherTargets(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte(sampleConfig), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	targets, err := PublisherTargets(configPath)
	if err != nil {
		t.Fatalf("PublisherTargets() error = %v", err)
	}
	want := []domain.Target{
		{Host: "rdb1", Port: 6010},
		{Host: "rdb2", Port: 6011, Username: "svc", Password: "secret"},
	}
	if !reflect.DeepEqual(targets, want) {
		t.Errorf("PublisherTargets() = %v, want %v", targets, want)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
host = "tp"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".tickfeed") {
		t.Errorf("DefaultConfigPath() = %v, should contain .tickfeed", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
