package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/tickfeed/internal/domain"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Host              string       `toml:"host"`
	Port              int          `toml:"port"`
	Username          string       `toml:"username"`
	Password          string       `toml:"password"`
	Tables            []string     `toml:"tables"`
	SubscribeFunction string       `toml:"subscribe_function"`
	UpdateFunctions   []string     `toml:"update_functions"`
	PublishFunction   string       `toml:"publish_function"`
	ReconnectInterval string       `toml:"reconnect_interval"`
	ResetAfter        string       `toml:"reset_after"`
	IdleInterval      string       `toml:"idle_interval"`
	DialTimeout       string       `toml:"dial_timeout"`
	MaxMessageSize    int          `toml:"max_message_size"`
	LogLevel          string       `toml:"log_level"`
	Print             *bool        `toml:"print"`
	Publishers        []FileTarget `toml:"publishers"`
}

// FileTarget is one [[publishers]] entry.
type FileTarget struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

func (t FileTarget) target() domain.Target {
	return domain.Target{Host: t.Host, Port: t.Port, Username: t.Username, Password: t.Password}
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.tickfeed/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".tickfeed", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setString("username", fc.Username, &cfg.Username)
	s.setString("password", fc.Password, &cfg.Password)
	s.setString("sub-func", fc.SubscribeFunction, &cfg.SubscribeFunction)
	s.setString("pub-func", fc.PublishFunction, &cfg.PublishFunction)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setStrings("tables", fc.Tables, &cfg.Tables)
	s.setStrings("update-funcs", fc.UpdateFunctions, &cfg.UpdateFunctions)

	if err := s.setDuration("reconnect-interval", fc.ReconnectInterval, &cfg.ReconnectInterval); err != nil {
		return err
	}
	if err := s.setDuration("reset-after", fc.ResetAfter, &cfg.ResetAfter); err != nil {
		return err
	}
	if err := s.setDuration("idle-interval", fc.IdleInterval, &cfg.IdleInterval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", fc.DialTimeout, &cfg.DialTimeout); err != nil {
		return err
	}

	s.setInt("port", fc.Port, &cfg.Port)
	s.setInt("max-message-size", fc.MaxMessageSize, &cfg.MaxMessageSize)

	s.setBool("print", fc.Print, &cfg.Print)

	targets := make([]domain.Target, 0, len(fc.Publishers))
	for _, p := range fc.Publishers {
		targets = append(targets, p.target())
	}
	s.setTargets("publisher", targets, &cfg.Publishers)

	return nil
}

// PublisherTargets loads only the publisher list from a config file. The
// hot reload path uses it to follow edits to [[publishers]].
func PublisherTargets(path string) ([]domain.Target, error) {
	fc, err := LoadFileConfig(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := ApplyFileConfig(&cfg, fc, nil); err != nil {
		return nil, err
	}
	return cfg.Publishers, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
