package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CallInitiator is the provider-agnostic contract for submitting a call leg
// at the vendor. It is the only fallible external call on the voice-forward
// path; no vendor SDK types appear outside this file.
type CallInitiator interface {
	CreateCall(ctx context.Context, req CreateCallRequest) (CreateCallResult, error)
}

type CreateCallRequest struct {
	// To is the destination number (E.164).
	To string
	// From is the presented caller ID; the vendor rejects numbers the
	// account does not own.
	From string
	// CallbackURL is where the vendor fetches call instructions for the
	// created leg.
	CallbackURL string
}

type CreateCallResult struct {
	// SID is the vendor's identifier for the created call.
	SID string
}

// TwilioClient submits calls through the vendor REST API
// (POST /2010-04-01/Accounts/{sid}/Calls.json, basic auth, form body).
type TwilioClient struct {
	accountSID string
	authToken  string

	baseURL    string
	httpClient *http.Client
}

const (
	twilioAPIBase = "https://api.twilio.com"

	// defaultCallTimeout bounds the submission round trip. A hung vendor
	// call must surface as ErrUpstreamCall, not hang the webhook response.
	defaultCallTimeout = 10 * time.Second
)

func NewTwilioClient(accountSID, authToken string, timeout time.Duration) *TwilioClient {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &TwilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		baseURL:    twilioAPIBase,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *TwilioClient) CreateCall(ctx context.Context, req CreateCallRequest) (CreateCallResult, error) {
	if c.accountSID == "" || c.authToken == "" {
		return CreateCallResult{}, fmt.Errorf("%w: vendor credentials not configured", ErrUpstreamCall)
	}
	if strings.TrimSpace(req.To) == "" {
		return CreateCallResult{}, fmt.Errorf("%w: destination number", ErrMissingParameter)
	}

	form := url.Values{}
	form.Set("To", req.To)
	if req.From != "" {
		form.Set("From", req.From)
	}
	if req.CallbackURL != "" {
		form.Set("Url", req.CallbackURL)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.baseURL, c.accountSID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return CreateCallResult{}, fmt.Errorf("%w: %v", ErrUpstreamCall, err)
	}
	httpReq.SetBasicAuth(c.accountSID, c.authToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Covers timeouts and context cancellation.
		return CreateCallResult{}, fmt.Errorf("%w: %v", ErrUpstreamCall, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a little of the body for the log line; never return it to the caller.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return CreateCallResult{}, fmt.Errorf("%w: vendor returned %d: %s", ErrUpstreamCall, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CreateCallResult{}, fmt.Errorf("%w: bad vendor response: %v", ErrUpstreamCall, err)
	}
	return CreateCallResult{SID: out.SID}, nil
}
