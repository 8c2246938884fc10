// Package relay is the edge component for local and self-hosted deployments:
// it intercepts the OAuth callback, exchanges the authorization code plus the
// PKCE verifier smuggled inside state for an access token, sets the session
// cookie, and bounces the browser back to the front. Production deployments
// run the same contract at the CDN edge; the front never talks to this
// component directly, only through browser redirects and cookie side effects.
package relay

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/calfront/calfront/internal/config"
	"github.com/calfront/calfront/internal/jsonutil"
	"github.com/calfront/calfront/internal/log"
	"github.com/calfront/calfront/internal/session"
	"github.com/calfront/calfront/internal/statecodec"
)

// Callback error codes reported to the front via the oauth_error query
// parameter. The front recognizes a subset and maps the rest to a generic
// failure; the full set is part of the redirect contract regardless.
const (
	errNoCode        = "no_code"
	errNoState       = "no_state"
	errInvalidState  = "invalid_state"
	errNoVerifier    = "no_verifier"
	errServerConfig  = "server_config"
	errTokenExchange = "token_exchange_failed"
	errNetwork       = "network_error"
	errNoToken       = "no_token"
)

// Handler implements the callback exchange
type Handler struct {
	cfg config.Config

	// exchange is swappable for tests; defaults to the real OAuth2 exchange
	exchange func(ctx context.Context, code, verifier string) (*oauth2.Token, error)
}

// New creates a relay handler. The config must carry a relay section.
func New(cfg config.Config) *Handler {
	h := &Handler{cfg: cfg}
	h.exchange = h.exchangeCode
	return h
}

// Routes builds the relay's route table
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+h.cfg.Front.RedirectPath, h.CallbackHandler)
	mux.HandleFunc("GET /health", h.HealthHandler)
	return mux
}

// CallbackHandler handles the provider's redirect back: validate the query,
// recover the verifier from state, exchange the code, set the cookie, and
// redirect to the front. Every failure becomes an oauth_error redirect so the
// browser always lands back on the front page.
func (h *Handler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		log.LogWarnWithFields("relay", "Provider reported an authorization error", map[string]any{
			"error":       providerErr,
			"description": query.Get("error_description"),
		})
		h.redirectError(w, r, providerErr)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.redirectError(w, r, errNoCode)
		return
	}

	state := query.Get("state")
	if state == "" {
		h.redirectError(w, r, errNoState)
		return
	}

	payload, err := statecodec.Decode(state)
	if err != nil {
		log.LogWarnWithFields("relay", "Failed to decode state parameter", map[string]any{
			"error": err.Error(),
		})
		h.redirectError(w, r, errInvalidState)
		return
	}
	if payload.Verifier == "" {
		h.redirectError(w, r, errNoVerifier)
		return
	}

	if h.cfg.Relay == nil || h.cfg.Front.ClientID == "" || h.cfg.Relay.ClientSecret == "" {
		log.LogError("Relay is missing OAuth client configuration")
		h.redirectError(w, r, errServerConfig)
		return
	}

	token, err := h.exchange(r.Context(), code, payload.Verifier)
	if err != nil {
		h.redirectError(w, r, exchangeErrorCode(err))
		return
	}
	if token.AccessToken == "" {
		h.redirectError(w, r, errNoToken)
		return
	}

	log.LogInfoWithFields("relay", "Token exchange completed", nil)
	session.SetToken(w, token.AccessToken, session.DefaultTokenTTL)
	http.Redirect(w, r, h.cfg.Front.BaseURL, http.StatusFound)
}

// HealthHandler reports whether the OAuth client is configured, without
// revealing the secret.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	secretConfigured := h.cfg.Relay != nil && h.cfg.Relay.ClientSecret != ""
	_ = jsonutil.Write(w, map[string]any{
		"status":                   "ok",
		"client_id_configured":     h.cfg.Front.ClientID != "",
		"client_secret_configured": secretConfigured,
	})
}

func (h *Handler) exchangeCode(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	redirectURI, err := h.cfg.Front.RedirectURI()
	if err != nil {
		return nil, err
	}

	oauthConfig := oauth2.Config{
		ClientID:     h.cfg.Front.ClientID,
		ClientSecret: string(h.cfg.Relay.ClientSecret),
		RedirectURL:  redirectURI,
		Endpoint:     oauth2.Endpoint{TokenURL: h.cfg.Relay.TokenEndpoint},
	}

	return oauthConfig.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", verifier),
	)
}

// exchangeErrorCode maps an exchange failure to the callback error contract:
// the provider's own error code when it sent one, token_exchange_failed for
// other provider rejections, network_error when the endpoint was unreachable.
func exchangeErrorCode(err error) string {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		log.LogWarnWithFields("relay", "Token exchange rejected", map[string]any{
			"status":     retrieveErr.Response.StatusCode,
			"error_code": retrieveErr.ErrorCode,
		})
		if retrieveErr.ErrorCode != "" {
			return retrieveErr.ErrorCode
		}
		return errTokenExchange
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		log.LogWarnWithFields("relay", "Token endpoint unreachable", map[string]any{
			"error": urlErr.Error(),
		})
		return errNetwork
	}

	log.LogErrorWithFields("relay", "Token exchange failed", map[string]any{
		"error": err.Error(),
	})
	return errTokenExchange
}

func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	target := h.cfg.Front.BaseURL + "/?oauth_error=" + url.QueryEscape(code)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	http.Redirect(w, r, target, http.StatusFound)
}
