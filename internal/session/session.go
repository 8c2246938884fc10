// Package session owns the two cookies that make up the client-side session:
// the bearer-token cookie written by the edge component and the transient
// attempt marker that correlates an outbound authorization attempt with its
// callback. HasToken is the authoritative authentication predicate.
package session

import (
	"net/http"
	"time"

	"github.com/calfront/calfront/internal/envutil"
	"github.com/calfront/calfront/internal/log"
)

const (
	// TokenCookie is the bearer-token cookie. The name is a wire contract
	// with the edge component, which sets it after a successful exchange.
	TokenCookie = "google_oauth_access_token"

	// AttemptCookie holds the CSRF token of an in-flight authorization
	// attempt. Session-lived; cleared at the end of the flow or on error.
	AttemptCookie = "oauth_attempt"
)

// DefaultTokenTTL bounds the token cookie lifetime.
const DefaultTokenTTL = 7 * 24 * time.Hour

// HasToken reports whether a session token is present.
func HasToken(r *http.Request) bool {
	return Token(r) != ""
}

// Token returns the opaque bearer token, or "" when unauthenticated.
func Token(r *http.Request) string {
	c, err := r.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetToken materializes the bearer token as a cookie. The edge component is
// the usual writer; the front only sets it in tests and dev tooling. Not
// HttpOnly: the original page script read it, and the contract is preserved.
func SetToken(w http.ResponseWriter, value string, ttl time.Duration) {
	secure := !envutil.IsDev()
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    value,
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})

	log.LogTraceWithFields("session", "Token cookie set", map[string]any{
		"maxAge":   ttl.String(),
		"secure":   secure,
		"sameSite": "Lax",
	})
}

// DeleteToken signs the user out by expiring the token cookie.
func DeleteToken(w http.ResponseWriter) {
	expire(w, TokenCookie)
	log.LogTraceWithFields("session", "Token cookie cleared", nil)
}

// MarkAttempt stores the CSRF token for the attempt being initiated. No
// Max-Age: the marker lives for the browser session only, like the
// sessionStorage slot it replaces.
func MarkAttempt(w http.ResponseWriter, csrf string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AttemptCookie,
		Value:    csrf,
		Path:     "/",
		HttpOnly: true,
		Secure:   !envutil.IsDev(),
		SameSite: http.SameSiteLaxMode,
	})
}

// AttemptMarker returns the live attempt's CSRF token, or "" when no attempt
// is in flight. A callback arriving after ClearAttempt sees "" and must be
// treated as not an OAuth callback; the marker cannot be reused.
func AttemptMarker(r *http.Request) string {
	c, err := r.Cookie(AttemptCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// ClearAttempt removes the attempt marker.
func ClearAttempt(w http.ResponseWriter) {
	expire(w, AttemptCookie)
}

func expire(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
