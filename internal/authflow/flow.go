// Package authflow orchestrates the authorization round-trip: building the
// outbound authorize URL with fresh PKCE and CSRF parameters, and classifying
// the page load that follows the redirect back.
package authflow

import (
	"net/http"

	"golang.org/x/oauth2"

	"github.com/calfront/calfront/internal/config"
	"github.com/calfront/calfront/internal/log"
	"github.com/calfront/calfront/internal/pkce"
	"github.com/calfront/calfront/internal/session"
	"github.com/calfront/calfront/internal/statecodec"
)

// Controller drives the flow for one configured provider. It holds no mutable
// state; every attempt draws fresh parameters.
type Controller struct {
	cfg config.FrontConfig
}

// New creates a flow controller for the given front configuration.
func New(cfg config.FrontConfig) *Controller {
	return &Controller{cfg: cfg}
}

// Attempt is everything one authorization attempt produced. The CSRF token
// must be stored as the attempt marker before navigating to AuthURL; the
// verifier exists only inside the encoded state.
type Attempt struct {
	AuthURL string
	CSRF    string
}

// BeginAttempt generates PKCE parameters and a CSRF token, encodes the state
// payload, and builds the authorization URL with the exact query parameters
// the provider contract requires.
func (c *Controller) BeginAttempt() (Attempt, error) {
	params, err := pkce.Generate()
	if err != nil {
		return Attempt{}, err
	}
	csrf, err := pkce.NewCSRFToken()
	if err != nil {
		return Attempt{}, err
	}

	state, err := statecodec.Encode(csrf, params.Verifier)
	if err != nil {
		return Attempt{}, err
	}

	redirectURI, err := c.cfg.RedirectURI()
	if err != nil {
		return Attempt{}, err
	}

	oauthConfig := oauth2.Config{
		ClientID:    c.cfg.ClientID,
		RedirectURL: redirectURI,
		Scopes:      c.cfg.Scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: c.cfg.AuthorizationEndpoint},
	}

	authURL := oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("code_challenge", params.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.Method),
	)

	return Attempt{AuthURL: authURL, CSRF: csrf}, nil
}

// Initiate begins an authorization attempt and redirects to the provider.
// Terminal for the current page context: nothing after the redirect runs
// until the browser returns through the edge component.
func (c *Controller) Initiate(w http.ResponseWriter, r *http.Request) error {
	attempt, err := c.BeginAttempt()
	if err != nil {
		return err
	}

	session.MarkAttempt(w, attempt.CSRF)

	log.LogInfoWithFields("authflow", "Redirecting to authorization endpoint", map[string]any{
		"endpoint": c.cfg.AuthorizationEndpoint,
	})

	http.Redirect(w, r, attempt.AuthURL, http.StatusFound)
	return nil
}

// HandleReturn classifies the current request and performs the flow's side
// effects: any completed callback, successful or not, consumes the attempt
// marker so a replayed callback cannot classify as a success later. URL
// scrubbing is left to the HTTP layer.
func (c *Controller) HandleReturn(w http.ResponseWriter, r *http.Request) Outcome {
	outcome := Classify(r.URL.Query(), session.HasToken(r), session.AttemptMarker(r))

	switch outcome.Status {
	case CallbackError:
		log.LogWarnWithFields("authflow", "Callback reported an error", map[string]any{
			"code":   outcome.Code,
			"reason": string(outcome.Reason),
		})
		session.ClearAttempt(w)
	case CallbackSuccess:
		log.LogInfoWithFields("authflow", "Callback completed successfully", nil)
		session.ClearAttempt(w)
	}

	return outcome
}
