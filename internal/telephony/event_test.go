package telephony

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func formRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/webhooks/sms/status", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParseInboundEvent_StatusCallback(t *testing.T) {
	r := formRequest(t, "MessageSid=SM123&MessageStatus=delivered&To=%2B15551234567&From=%2B15557654321&ErrorCode=30004")
	ev, err := ParseInboundEvent(r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ev.Kind != EventStatusCallback {
		t.Fatalf("expected status callback, got %q", ev.Kind)
	}
	if ev.SID != "SM123" || ev.Status != "delivered" || ev.ErrorCode != "30004" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.To != "+15551234567" || ev.From != "+15557654321" {
		t.Fatalf("unexpected endpoints: %+v", ev)
	}
}

func TestParseInboundEvent_StatusCallbackTimestamp(t *testing.T) {
	r := formRequest(t, "MessageSid=SM123&MessageStatus=sent&Timestamp=Mon%2C+02+Jan+2006+15%3A04%3A05+%2B0000")
	ev, err := ParseInboundEvent(r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	if !ev.OccurredAt.Equal(want) {
		t.Fatalf("expected provider timestamp %v, got %v", want, ev.OccurredAt)
	}
}

func TestParseInboundEvent_SmsInbound(t *testing.T) {
	r := formRequest(t, "MessageSid=SM9&From=%2B15557654321&To=%2B15551234567&Body=hello+there")
	ev, err := ParseInboundEvent(r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ev.Kind != EventSmsInbound {
		t.Fatalf("expected sms inbound, got %q", ev.Kind)
	}
	if ev.Body != "hello there" {
		t.Fatalf("unexpected body: %q", ev.Body)
	}
}

func TestParseInboundEvent_CallInitiated(t *testing.T) {
	r := formRequest(t, "CallSid=CA7&From=%2B15557654321&To=%2B15551234567&CallStatus=ringing")
	ev, err := ParseInboundEvent(r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ev.Kind != EventCallInitiated || ev.SID != "CA7" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestParseInboundEvent_JSONBody(t *testing.T) {
	body := `{"MessageSid":"SM123","MessageStatus":"failed","From":"+15557654321","To":"+15551234567"}`
	r := httptest.NewRequest(http.MethodPost, "/webhooks/sms/status", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	ev, err := ParseInboundEvent(r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ev.Kind != EventStatusCallback || ev.Status != "failed" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestParseInboundEvent_RejectsUnknownShapes(t *testing.T) {
	cases := []string{
		"",                        // nothing at all
		"AccountSid=AC1",          // fields matching no shape
		"MessageStatus=delivered", // status callback without a SID
		"CallSid=CA7",             // call without From
	}
	for _, body := range cases {
		if _, err := ParseInboundEvent(formRequest(t, body)); !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("expected ErrMalformedPayload for %q, got %v", body, err)
		}
	}
}

func TestParseInboundEvent_RejectsBadJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/webhooks/sms/status", strings.NewReader("{not json"))
	r.Header.Set("Content-Type", "application/json")
	if _, err := ParseInboundEvent(r); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}
