package telephony

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"
)

// InboundEvent is the typed form of a provider webhook payload.
// Immutable once parsed; it lives for one request.
//
// The provider sends application/x-www-form-urlencoded by default but can be
// configured for JSON; both carry the same field names.

type EventKind string

const (
	EventCallInitiated  EventKind = "call_initiated"
	EventSmsInbound     EventKind = "sms_inbound"
	EventStatusCallback EventKind = "status_callback"
)

type InboundEvent struct {
	Kind EventKind

	// SID is the provider identifier: CallSid for calls, MessageSid for messages.
	SID string

	From string
	To   string

	// Body is the message text (SMS only).
	Body string

	// Status is the call/message status token (status callbacks only).
	Status    string
	ErrorCode string

	// OccurredAt is the provider event time when the payload carried one;
	// zero otherwise.
	OccurredAt time.Time
}

// payload is the flat field set both encodings share.
type payload struct {
	CallSid       string `json:"CallSid"`
	MessageSid    string `json:"MessageSid"`
	SmsSid        string `json:"SmsSid"`
	AccountSid    string `json:"AccountSid"`
	From          string `json:"From"`
	To            string `json:"To"`
	Body          string `json:"Body"`
	CallStatus    string `json:"CallStatus"`
	MessageStatus string `json:"MessageStatus"`
	SmsStatus     string `json:"SmsStatus"`
	ErrorCode     string `json:"ErrorCode"`
	Timestamp     string `json:"Timestamp"`
}

// ParseInboundEvent normalizes a webhook request into an InboundEvent.
// Pure parsing: no I/O beyond reading the request body.
func ParseInboundEvent(r *http.Request) (InboundEvent, error) {
	p, err := readPayload(r)
	if err != nil {
		return InboundEvent{}, err
	}
	return classify(p)
}

func readPayload(r *http.Request) (payload, error) {
	ct := r.Header.Get("Content-Type")
	if ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			ct = mt
		}
	}

	if ct == "application/json" {
		var p payload
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&p); err != nil {
			return payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return p, nil
	}

	if err := r.ParseForm(); err != nil {
		return payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	get := func(key string) string { return strings.TrimSpace(r.Form.Get(key)) }
	return payload{
		CallSid:       get("CallSid"),
		MessageSid:    get("MessageSid"),
		SmsSid:        get("SmsSid"),
		AccountSid:    get("AccountSid"),
		From:          get("From"),
		To:            get("To"),
		Body:          r.Form.Get("Body"),
		CallStatus:    get("CallStatus"),
		MessageStatus: get("MessageStatus"),
		SmsStatus:     get("SmsStatus"),
		ErrorCode:     get("ErrorCode"),
		Timestamp:     get("Timestamp"),
	}, nil
}

// classify decides the event shape. The match is exhaustive over the three
// shapes the gateway handles; anything matching none is rejected rather than
// guessed at.
func classify(p payload) (InboundEvent, error) {
	statusToken := p.MessageStatus
	if statusToken == "" {
		statusToken = p.SmsStatus
	}

	switch {
	case statusToken != "":
		sid := p.MessageSid
		if sid == "" {
			sid = p.SmsSid
		}
		if sid == "" {
			return InboundEvent{}, fmt.Errorf("%w: status callback without MessageSid", ErrMalformedPayload)
		}
		return InboundEvent{
			Kind:       EventStatusCallback,
			SID:        sid,
			From:       p.From,
			To:         p.To,
			Status:     statusToken,
			ErrorCode:  p.ErrorCode,
			OccurredAt: parseProviderTime(p.Timestamp),
		}, nil

	case p.Body != "" && p.From != "":
		sid := p.MessageSid
		if sid == "" {
			sid = p.SmsSid
		}
		return InboundEvent{
			Kind:       EventSmsInbound,
			SID:        sid,
			From:       p.From,
			To:         p.To,
			Body:       p.Body,
			OccurredAt: parseProviderTime(p.Timestamp),
		}, nil

	case p.CallSid != "":
		if p.From == "" {
			return InboundEvent{}, fmt.Errorf("%w: call event without From", ErrMalformedPayload)
		}
		return InboundEvent{
			Kind:       EventCallInitiated,
			SID:        p.CallSid,
			From:       p.From,
			To:         p.To,
			Status:     p.CallStatus,
			OccurredAt: parseProviderTime(p.Timestamp),
		}, nil

	default:
		return InboundEvent{}, fmt.Errorf("%w: payload matches no known event shape", ErrMalformedPayload)
	}
}

// parseProviderTime accepts the provider's RFC1123Z timestamps plus RFC3339
// for JSON payloads. Unparseable input means "no timestamp", never an error:
// ordering falls back to arrival order.
func parseProviderTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
