package telephony

import "errors"

// Boundary error kinds. Handlers convert these to HTTP outcomes; nothing
// else may leak to the provider, because it parses our responses to decide
// its own retry behavior.
var (
	// ErrMalformedPayload: the webhook body matched no known event shape or
	// was missing required fields for its shape. Client-caused, HTTP 400.
	ErrMalformedPayload = errors.New("telephony: malformed payload")

	// ErrMissingParameter: a required request parameter was absent.
	// Client-caused, HTTP 400, no vendor call attempted.
	ErrMissingParameter = errors.New("telephony: missing parameter")

	// ErrUpstreamCall: vendor call initiation failed or timed out.
	// HTTP 500 with Fallback markup on voice endpoints.
	ErrUpstreamCall = errors.New("telephony: vendor call failed")
)
