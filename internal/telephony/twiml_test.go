package telephony

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderFallback(t *testing.T) {
	xml := RenderFallback()
	if !strings.Contains(xml, "<Say>") || !strings.Contains(xml, "<Hangup>") {
		t.Fatalf("expected Say and Hangup in fallback: %s", xml)
	}
	if !strings.Contains(xml, "<Response>") {
		t.Fatalf("expected Response root: %s", xml)
	}
}

func TestRenderVoiceForward(t *testing.T) {
	xml, err := RenderVoiceForward("+15551234567", "+15550001111")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(xml, "<Dial") || !strings.Contains(xml, "+15551234567") {
		t.Fatalf("expected dial to destination: %s", xml)
	}
	if !strings.Contains(xml, `callerId="+15550001111"`) {
		t.Fatalf("expected callerId attribute: %s", xml)
	}
}

func TestRenderVoiceForward_NoCallerID(t *testing.T) {
	xml, err := RenderVoiceForward("+15551234567", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if strings.Contains(xml, "callerId") {
		t.Fatalf("expected no callerId attribute: %s", xml)
	}
}

func TestRenderVoiceForward_RequiresDestination(t *testing.T) {
	if _, err := RenderVoiceForward("  ", ""); !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestBridgeTargetURL_StripsTrailingSlash(t *testing.T) {
	got, err := BridgeTargetURL("https://example.test/", "tok")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.HasPrefix(got, "https://example.test/bridge?") {
		t.Fatalf("expected single separator before /bridge, got %q", got)
	}
	if strings.Contains(got, "//bridge") {
		t.Fatalf("doubled separator in %q", got)
	}
	if !strings.Contains(got, "session=tok") {
		t.Fatalf("expected session parameter in %q", got)
	}
}

func TestRenderStreamBridge(t *testing.T) {
	xml, err := RenderStreamBridge("wss://bridge.example.test", "abc123")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(xml, "<Connect>") || !strings.Contains(xml, "<Stream") {
		t.Fatalf("expected Connect/Stream: %s", xml)
	}
	if !strings.Contains(xml, "session=abc123") {
		t.Fatalf("expected session token in stream url: %s", xml)
	}
	if !strings.Contains(xml, "<Say>") {
		t.Fatalf("expected confirmation line before bridge: %s", xml)
	}
}

func TestRenderStreamBridge_RequiresBase(t *testing.T) {
	if _, err := RenderStreamBridge("", "tok"); !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestRenderSmsAck(t *testing.T) {
	xml := RenderSmsAck()
	if !strings.Contains(xml, "<Message>") {
		t.Fatalf("expected Message verb: %s", xml)
	}
}
