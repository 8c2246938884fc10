package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	defaultFrontAddr             = ":5173"
	defaultRelayAddr             = ":5174"
	defaultRedirectPath          = "/oauth/callback"
	defaultAuthorizationEndpoint = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenEndpoint         = "https://oauth2.googleapis.com/token"
	defaultFetchLimit            = 10
)

// Load loads and processes the config with immediate env var resolution.
// Any error here is fatal to startup; there is no partial configuration.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return Config{}, fmt.Errorf("parsing config JSON: %w", err)
	}

	version, ok := rawConfig["version"].(string)
	if !ok {
		return Config{}, fmt.Errorf("config version is required")
	}
	if version != "v1" {
		return Config{}, fmt.Errorf("unsupported config version: %s", version)
	}

	if err := validateRawConfig(rawConfig); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	// Parse into the typed Config struct. Secret's UnmarshalJSON resolves
	// env vars immediately.
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validateRawConfig validates the config structure before environment resolution
func validateRawConfig(rawConfig map[string]any) error {
	relay, ok := rawConfig["relay"].(map[string]any)
	if !ok {
		return nil
	}

	value, exists := relay["clientSecret"]
	if !exists {
		return nil
	}

	if _, isString := value.(string); isString {
		return fmt.Errorf("relay.clientSecret must use environment variable reference for security")
	}
	if refMap, isMap := value.(map[string]any); isMap {
		if _, hasEnv := refMap["$env"]; !hasEnv {
			return fmt.Errorf(`relay.clientSecret must use {"$env": "VAR_NAME"} format`)
		}
	}
	return nil
}

func applyDefaults(config *Config) {
	if config.Front.Addr == "" {
		config.Front.Addr = defaultFrontAddr
	}
	if config.Front.RedirectPath == "" {
		config.Front.RedirectPath = defaultRedirectPath
	}
	if config.Front.AuthorizationEndpoint == "" {
		config.Front.AuthorizationEndpoint = defaultAuthorizationEndpoint
	}
	if config.Calendar.PastLimit <= 0 {
		config.Calendar.PastLimit = defaultFetchLimit
	}
	if config.Calendar.UpcomingLimit <= 0 {
		config.Calendar.UpcomingLimit = defaultFetchLimit
	}
	if config.Relay != nil {
		if config.Relay.Addr == "" {
			config.Relay.Addr = defaultRelayAddr
		}
		if config.Relay.TokenEndpoint == "" {
			config.Relay.TokenEndpoint = defaultTokenEndpoint
		}
	}
}

// ValidateConfig validates the resolved configuration
func ValidateConfig(config *Config) error {
	if config.Front.BaseURL == "" {
		return fmt.Errorf("front.baseURL is required")
	}
	if config.Front.ClientID == "" {
		return fmt.Errorf("front.clientId is required")
	}
	if len(config.Front.Scopes) == 0 {
		return fmt.Errorf("front.scopes is required")
	}
	if _, err := config.Front.RedirectURI(); err != nil {
		return fmt.Errorf("front.baseURL is not a valid URL: %w", err)
	}

	if config.Calendar.Name == "" {
		return fmt.Errorf("calendar.name is required")
	}
	if config.Calendar.EventTitle == "" {
		return fmt.Errorf("calendar.eventTitle is required")
	}

	return nil
}
