package authflow

import "net/url"

// ErrorParam is the query parameter the edge component uses to report a
// failed callback.
const ErrorParam = "oauth_error"

// Status is the result of classifying a page load against the callback
// decision procedure.
type Status int

const (
	// NotACallback: an ordinary page load; no flow state was touched.
	NotACallback Status = iota
	// CallbackSuccess: the edge component completed the exchange and set
	// the token cookie for an attempt this client initiated.
	CallbackSuccess
	// CallbackError: the edge component reported a failure.
	CallbackError
)

// Reason identifies why a callback failed.
type Reason string

const (
	ReasonNoCode        Reason = "no_code"
	ReasonNoVerifier    Reason = "no_verifier"
	ReasonServerConfig  Reason = "server_config"
	ReasonTokenExchange Reason = "token_exchange_failed"
	ReasonInternal      Reason = "internal_error"
	// ReasonUnknown covers every code outside the fixed set.
	ReasonUnknown Reason = "unknown"
)

var reasonMessages = map[Reason]string{
	ReasonNoCode:        "The provider did not return an authorization code.",
	ReasonNoVerifier:    "The sign-in attempt was missing its verification key.",
	ReasonServerConfig:  "The server is not configured for sign-in. Contact the site operator.",
	ReasonTokenExchange: "The authorization code could not be exchanged for an access token.",
	ReasonInternal:      "An internal error interrupted the sign-in.",
	ReasonUnknown:       "Sign-in failed. Please try again.",
}

// Message returns the user-facing description for the reason.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return reasonMessages[ReasonUnknown]
}

// Outcome is the classified result of a return from the redirect boundary.
type Outcome struct {
	Status Status
	Reason Reason
	// Code is the raw error code from the query string, kept for logging.
	// Reason is what the user sees.
	Code string
}

func reasonFor(code string) Reason {
	switch Reason(code) {
	case ReasonNoCode, ReasonNoVerifier, ReasonServerConfig, ReasonTokenExchange, ReasonInternal:
		return Reason(code)
	default:
		return ReasonUnknown
	}
}

// Classify applies the callback decision procedure to the current URL's query
// parameters and the cookie state. An explicit error signal wins; otherwise
// success is inferred from the conjunction of "token now present" and "a live
// attempt marker exists" — a pre-existing cookie without a marker is not
// evidence of a fresh round-trip. Pure; callers own the side effects.
func Classify(query url.Values, hasToken bool, marker string) Outcome {
	if code := query.Get(ErrorParam); code != "" {
		return Outcome{Status: CallbackError, Reason: reasonFor(code), Code: code}
	}
	if hasToken && marker != "" {
		return Outcome{Status: CallbackSuccess}
	}
	return Outcome{Status: NotACallback}
}
