package relay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/calfront/calfront/internal/config"
	"github.com/calfront/calfront/internal/session"
	"github.com/calfront/calfront/internal/statecodec"
)

func testConfig(tokenEndpoint string) config.Config {
	return config.Config{
		Version: "v1",
		Front: config.FrontConfig{
			BaseURL:      "http://localhost:5173",
			ClientID:     "test-client",
			RedirectPath: "/oauth/callback",
		},
		Relay: &config.RelayConfig{
			Addr:          ":5174",
			TokenEndpoint: tokenEndpoint,
			ClientSecret:  config.Secret("test-secret"),
		},
	}
}

func callbackRequest(t *testing.T, query url.Values) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodGet, "/oauth/callback?"+query.Encode(), nil)
}

func validState(t *testing.T) string {
	t.Helper()
	state, err := statecodec.Encode("csrf-token", "verifier-value")
	require.NoError(t, err)
	return state
}

func assertErrorRedirect(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/", location.Scheme+"://"+location.Host+location.Path)
	assert.Equal(t, code, location.Query().Get("oauth_error"))
}

func TestCallbackPassesThroughProviderError(t *testing.T) {
	h := New(testConfig("http://unused"))

	rec := httptest.NewRecorder()
	h.CallbackHandler(rec, callbackRequest(t, url.Values{
		"error":             {"access_denied"},
		"error_description": {"User declined"},
	}))

	assertErrorRedirect(t, rec, "access_denied")
}

func TestCallbackRejectsMissingParameters(t *testing.T) {
	state := validState(t)

	tests := []struct {
		name  string
		query url.Values
		code  string
	}{
		{"missing code", url.Values{"state": {state}}, "no_code"},
		{"missing state", url.Values{"code": {"auth-code"}}, "no_state"},
		{"undecodable state", url.Values{"code": {"auth-code"}, "state": {"not-base64!"}}, "invalid_state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(testConfig("http://unused"))
			rec := httptest.NewRecorder()
			h.CallbackHandler(rec, callbackRequest(t, tt.query))
			assertErrorRedirect(t, rec, tt.code)
		})
	}
}

func TestCallbackRejectsStateWithoutVerifier(t *testing.T) {
	state, err := statecodec.Encode("csrf-token", "")
	require.NoError(t, err)

	h := New(testConfig("http://unused"))
	rec := httptest.NewRecorder()
	h.CallbackHandler(rec, callbackRequest(t, url.Values{
		"code":  {"auth-code"},
		"state": {state},
	}))

	assertErrorRedirect(t, rec, "no_verifier")
}

func TestCallbackRejectsIncompleteClientConfig(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.Relay.ClientSecret = ""

	h := New(cfg)
	rec := httptest.NewRecorder()
	h.CallbackHandler(rec, callbackRequest(t, url.Values{
		"code":  {"auth-code"},
		"state": {validState(t)},
	}))

	assertErrorRedirect(t, rec, "server_config")
}

func TestCallbackExchangesCodeAndSetsCookie(t *testing.T) {
	var tokenRequest url.Values
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		tokenRequest = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	h := New(testConfig(tokenServer.URL))
	rec := httptest.NewRecorder()
	h.CallbackHandler(rec, callbackRequest(t, url.Values{
		"code":  {"auth-code"},
		"state": {validState(t)},
	}))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Location"))

	assert.Equal(t, "auth-code", tokenRequest.Get("code"))
	assert.Equal(t, "verifier-value", tokenRequest.Get("code_verifier"))
	assert.Equal(t, "http://localhost:5173/oauth/callback", tokenRequest.Get("redirect_uri"))

	cookie := findCookie(t, rec, session.TokenCookie)
	assert.Equal(t, "provider-token", cookie.Value)
	assert.Positive(t, cookie.MaxAge)
}

func TestCallbackReportsProviderRejection(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer tokenServer.Close()

	h := New(testConfig(tokenServer.URL))
	rec := httptest.NewRecorder()
	h.CallbackHandler(rec, callbackRequest(t, url.Values{
		"code":  {"expired-code"},
		"state": {validState(t)},
	}))

	assertErrorRedirect(t, rec, "invalid_grant")
}

func TestCallbackReportsNetworkFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	tokenServer.Close()

	h := New(testConfig(tokenServer.URL))
	rec := httptest.NewRecorder()
	h.CallbackHandler(rec, callbackRequest(t, url.Values{
		"code":  {"auth-code"},
		"state": {validState(t)},
	}))

	assertErrorRedirect(t, rec, "network_error")
}

func TestCallbackReportsMissingAccessToken(t *testing.T) {
	h := New(testConfig("http://unused"))
	h.exchange = func(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
		return &oauth2.Token{}, nil
	}

	rec := httptest.NewRecorder()
	h.CallbackHandler(rec, callbackRequest(t, url.Values{
		"code":  {"auth-code"},
		"state": {validState(t)},
	}))

	assertErrorRedirect(t, rec, "no_token")
}

func TestExchangeErrorCodeFallsBackWithoutProviderCode(t *testing.T) {
	retrieveErr := &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusInternalServerError}}
	assert.Equal(t, "token_exchange_failed", exchangeErrorCode(retrieveErr))
	assert.Equal(t, "token_exchange_failed", exchangeErrorCode(errors.New("unexpected")))
}

func TestHealthReportsClientConfiguration(t *testing.T) {
	h := New(testConfig("http://unused"))

	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","client_id_configured":true,"client_secret_configured":true}`, rec.Body.String())
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}
