package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Metadata is the small routing record handed to the bridge target through a
// URL query parameter. It is a routing hint only: the bridge must never
// treat decoded content as authorization.
type Metadata struct {
	OpeningScript string `json:"opening_script"`
	Stage         string `json:"stage"`
}

// ErrDecode is returned for tokens that are not base64url or do not decode
// to the expected JSON record.
var ErrDecode = errors.New("session: token decode failed")

// Encode serializes metadata to a transport-safe opaque token
// (base64url over canonical JSON). Obfuscation for transport, not a
// security boundary.
func Encode(m Metadata) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("session: encode failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode. Truncated or non-JSON input yields ErrDecode.
func Decode(token string) (Metadata, error) {
	if token == "" {
		return Metadata{}, ErrDecode
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return m, nil
}
