// Package statecodec encodes the composite payload carried through the OAuth
// state parameter. The front encodes before redirecting out; the edge
// component decodes on the callback. The mapping is a bit-exact wire contract
// between the two sides, not an internal convenience: JSON with the keys
// "csrf" and "verifier", then base64 with the standard alphabet, because the
// value travels as a single query-parameter token both sides must agree on.
package statecodec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Payload is the state parameter's round-trip-only structure. It is never
// parsed for meaning beyond its two fields.
type Payload struct {
	CSRF     string `json:"csrf"`
	Verifier string `json:"verifier"`
}

// ErrDecode signals a state value that is not valid base64 or does not
// contain the expected inner structure.
var ErrDecode = errors.New("malformed state parameter")

// Encode serializes the payload to its canonical text form and wraps it in
// standard base64.
func Encode(csrf, verifier string) (string, error) {
	data, err := json.Marshal(Payload{CSRF: csrf, Verifier: verifier})
	if err != nil {
		return "", fmt.Errorf("marshaling state payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode is the inverse of Encode.
func Decode(state string) (Payload, error) {
	data, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return p, nil
}
