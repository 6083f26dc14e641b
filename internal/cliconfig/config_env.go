package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (TICKFEED_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv("TICKFEED_HOST"), &cfg.Host)
	s.setString("username", os.Getenv("TICKFEED_USERNAME"), &cfg.Username)
	s.setString("password", os.Getenv("TICKFEED_PASSWORD"), &cfg.Password)
	s.setString("sub-func", os.Getenv("TICKFEED_SUBSCRIBE_FUNCTION"), &cfg.SubscribeFunction)
	s.setString("pub-func", os.Getenv("TICKFEED_PUBLISH_FUNCTION"), &cfg.PublishFunction)
	s.setString("log-level", os.Getenv("TICKFEED_LOG_LEVEL"), &cfg.LogLevel)

	s.setStrings("tables", splitList(os.Getenv("TICKFEED_TABLES")), &cfg.Tables)
	s.setStrings("update-funcs", splitList(os.Getenv("TICKFEED_UPDATE_FUNCTIONS")), &cfg.UpdateFunctions)

	if err := s.setDuration("reconnect-interval", os.Getenv("TICKFEED_RECONNECT_INTERVAL"), &cfg.ReconnectInterval); err != nil {
		return err
	}
	if err := s.setDuration("reset-after", os.Getenv("TICKFEED_RESET_AFTER"), &cfg.ResetAfter); err != nil {
		return err
	}
	if err := s.setDuration("idle-interval", os.Getenv("TICKFEED_IDLE_INTERVAL"), &cfg.IdleInterval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", os.Getenv("TICKFEED_DIAL_TIMEOUT"), &cfg.DialTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("port", os.Getenv("TICKFEED_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("max-message-size", os.Getenv("TICKFEED_MAX_MESSAGE_SIZE"), &cfg.MaxMessageSize); err != nil {
		return err
	}

	s.setBoolFromString("print", os.Getenv("TICKFEED_PRINT"), &cfg.Print)

	if v := splitList(os.Getenv("TICKFEED_PUBLISHERS")); len(v) > 0 {
		targets, err := ParseTargets(v)
		if err != nil {
			return err
		}
		s.setTargets("publisher", targets, &cfg.Publishers)
	}

	return nil
}
