package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/calfront/calfront/internal/urlutil"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// UnmarshalJSON resolves {"$env": "VAR_NAME"} references immediately; a plain
// string is accepted as-is (tests, dev).
func (s *Secret) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Secret(str)
		return nil
	}

	var ref struct {
		Env string `json:"$env"`
	}
	if err := json.Unmarshal(data, &ref); err != nil || ref.Env == "" {
		return fmt.Errorf(`secret must be a string or {"$env": "VAR_NAME"}`)
	}
	*s = Secret(os.Getenv(ref.Env))
	return nil
}

// Config is the full configuration file
type Config struct {
	Version  string         `json:"version"`
	Front    FrontConfig    `json:"front"`
	Calendar CalendarConfig `json:"calendar"`
	Relay    *RelayConfig   `json:"relay,omitempty"`
}

// FrontConfig configures the front server and the outbound authorization URL
type FrontConfig struct {
	Addr    string `json:"addr"`
	BaseURL string `json:"baseURL"`

	ClientID              string   `json:"clientId"`
	RedirectPath          string   `json:"redirectPath"`
	AuthorizationEndpoint string   `json:"authorizationEndpoint"`
	Scopes                []string `json:"scopes"`
}

// RedirectURI combines the site's own origin with the configured callback
// path to form the exact redirect URI sent to the provider.
func (f FrontConfig) RedirectURI() (string, error) {
	return urlutil.JoinPath(f.BaseURL, f.RedirectPath)
}

// CalendarConfig names the calendar and the event title the page presents
type CalendarConfig struct {
	Name       string `json:"name"`
	EventTitle string `json:"eventTitle"`

	// Fetch caps for the underlying provider queries, before the
	// presentation filter re-caps the lists.
	PastLimit     int64 `json:"pastLimit,omitempty"`
	UpcomingLimit int64 `json:"upcomingLimit,omitempty"`
}

// RelayConfig configures the edge-parity relay binary. Only the relay reads
// it; the front never sees the client secret.
type RelayConfig struct {
	Addr          string `json:"addr"`
	TokenEndpoint string `json:"tokenEndpoint"`
	ClientSecret  Secret `json:"clientSecret"`
}
