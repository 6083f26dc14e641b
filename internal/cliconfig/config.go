package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/pkg/connection"
	"github.com/bft-labs/tickfeed/pkg/publisher"
	"github.com/bft-labs/tickfeed/pkg/subscriber"
)

// Defaults for the subscriber target.
const (
	DefaultHost = "localhost"
	DefaultPort = 5010
)

// Config holds CLI configuration for tickfeed.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	Tables            []string
	SubscribeFunction string
	UpdateFunctions   []string
	PublishFunction   string

	Publishers []domain.Target

	ReconnectInterval time.Duration
	ResetAfter        time.Duration
	IdleInterval      time.Duration
	DialTimeout       time.Duration
	MaxMessageSize    int

	LogLevel string
	Print    bool
	Input    string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Host:              DefaultHost,
		Port:              DefaultPort,
		SubscribeFunction: subscriber.DefaultSubscribeFunction,
		UpdateFunctions:   append([]string(nil), subscriber.DefaultUpdateFunctions...),
		PublishFunction:   publisher.DefaultUpdateFunction,
		ReconnectInterval: connection.DefaultReconnectInterval,
		ResetAfter:        publisher.DefaultResetAfter,
		IdleInterval:      publisher.DefaultIdleInterval,
		DialTimeout:       10 * time.Second,
		MaxMessageSize:    16 << 20, // 16MB
		LogLevel:          "info",
	}
}

// Target returns the subscriber target.
func (c Config) Target() domain.Target {
	return domain.Target{Host: c.Host, Port: c.Port, Username: c.Username, Password: c.Password}
}

// Masked returns a copy safe to log.
func (c Config) Masked() Config {
	out := c
	if out.Password != "" {
		out.Password = "*****"
	}
	out.Publishers = make([]domain.Target, len(c.Publishers))
	for i, t := range c.Publishers {
		if t.Password != "" {
			t.Password = "*****"
		}
		out.Publishers[i] = t
	}
	return out
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}

	if c.SubscribeFunction == "" {
		c.SubscribeFunction = subscriber.DefaultSubscribeFunction
	}
	if len(c.UpdateFunctions) == 0 {
		c.UpdateFunctions = append([]string(nil), subscriber.DefaultUpdateFunctions...)
	}
	if c.PublishFunction == "" {
		c.PublishFunction = publisher.DefaultUpdateFunction
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	if c.ReconnectInterval <= 0 {
		return fmt.Errorf("reconnect interval must be positive")
	}
	if c.IdleInterval <= 0 {
		return fmt.Errorf("idle interval must be positive")
	}
	if c.ResetAfter < 0 {
		return fmt.Errorf("reset interval must not be negative")
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("max message size must be positive")
	}

	for _, t := range c.Publishers {
		if t.Host == "" || t.Port <= 0 || t.Port > 65535 {
			return fmt.Errorf("invalid publisher target %s", t)
		}
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a list if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setTargets sets the publisher targets if any and flag not changed.
func (s *configSetter) setTargets(flag string, value []domain.Target, dst *[]domain.Target) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]domain.Target(nil), value...)
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// splitList splits a comma separated list, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseTargets parses each entry with domain.ParseTarget.
func ParseTargets(values []string) ([]domain.Target, error) {
	out := make([]domain.Target, 0, len(values))
	for _, v := range values {
		t, err := domain.ParseTarget(v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
