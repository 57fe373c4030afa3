package telephony

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
)

// Minimal TwiML response builder, built directly on encoding/xml.
// It intentionally avoids any provider SDK dependency.
//
// Only the verbs the gateway emits are modeled: Say, Hangup, Dial,
// Connect/Stream, Message.

// ContentTypeXML is what the provider expects on markup responses.
const ContentTypeXML = "text/xml; charset=utf-8"

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlDial struct {
	XMLName  xml.Name `xml:"Dial"`
	CallerID string   `xml:"callerId,attr,omitempty"`
	Number   string   `xml:",chardata"`
}

type twimlConnect struct {
	XMLName xml.Name    `xml:"Connect"`
	Stream  twimlStream `xml:"Stream"`
}

type twimlStream struct {
	URL string `xml:"url,attr"`
}

type twimlMessage struct {
	XMLName xml.Name `xml:"Message"`
	Text    string   `xml:",chardata"`
}

const (
	fallbackLine = "We are sorry, we are unable to take your call right now. Please try again later."
	bridgeLine   = "Please hold while we connect you."
	smsAckLine   = "Thanks for reaching out. A member of our team will get back to you shortly."
)

// fallbackStatic is the precomputed fallback document. RenderFallback must
// never fail, so the encoder path has a literal to fall back to.
const fallbackStatic = xml.Header +
	"<Response>\n" +
	"  <Say>" + fallbackLine + "</Say>\n" +
	"  <Hangup></Hangup>\n" +
	"</Response>"

// RenderFallback produces the spoken-apology-plus-hangup response used
// whenever any downstream step fails. It takes no dynamic input and always
// returns a well-formed document.
func RenderFallback() string {
	s, err := render(twimlSay{Text: fallbackLine}, twimlHangup{})
	if err != nil {
		return fallbackStatic
	}
	return s
}

// RenderVoiceForward produces a Dial response establishing a call leg to the
// destination, presenting callerID when non-empty.
func RenderVoiceForward(to, callerID string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", fmt.Errorf("%w: destination number", ErrMissingParameter)
	}
	return render(twimlDial{CallerID: callerID, Number: to})
}

// RenderStreamBridge produces a short confirmation line followed by a
// Connect/Stream handing the call to the bridge target. The session token is
// carried as the single "session" query parameter.
func RenderStreamBridge(bridgeBaseURL, sessionToken string) (string, error) {
	target, err := BridgeTargetURL(bridgeBaseURL, sessionToken)
	if err != nil {
		return "", err
	}
	return render(twimlSay{Text: bridgeLine}, twimlConnect{Stream: twimlStream{URL: target}})
}

// BridgeTargetURL builds the bridge callback URL: base with any trailing
// slash stripped, the /bridge path appended, and the session parameter set.
// Stripping the slash first prevents a doubled separator in the path.
func BridgeTargetURL(bridgeBaseURL, sessionToken string) (string, error) {
	base := strings.TrimSpace(bridgeBaseURL)
	if base == "" {
		return "", fmt.Errorf("%w: bridge base url", ErrMissingParameter)
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + "/bridge")
	if err != nil {
		return "", fmt.Errorf("telephony: bad bridge base url: %w", err)
	}
	q := u.Query()
	q.Set("session", sessionToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RenderSmsAck produces the fixed acknowledgment reply for inbound SMS.
func RenderSmsAck() string {
	s, err := render(twimlMessage{Text: smsAckLine})
	if err != nil {
		// Same shape as the encoder output; kept literal so this path
		// cannot fail either.
		return xml.Header + "<Response>\n  <Message>" + smsAckLine + "</Message>\n</Response>"
	}
	return s
}

func render(verbs ...any) (string, error) {
	r := twimlResponse{Verbs: verbs}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
