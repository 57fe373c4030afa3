package telephony

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"crm-gateway/pkg/logger"
)

const headerSignature = "X-Twilio-Signature"

// RequireValidSignature validates the provider's webhook signature:
// base64(HMAC-SHA1(authToken, publicURL + sorted POST params)).
//
// publicBaseURL must be the externally visible base URL the provider was
// configured with; the signature covers the full public URL, not whatever
// host the request reached after proxying. With an empty authToken the
// middleware passes everything through (local/dev; production config
// requires the token).
func RequireValidSignature(authToken, publicBaseURL string) gin.HandlerFunc {
	base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")

	return func(c *gin.Context) {
		if authToken == "" || base == "" {
			c.Next()
			return
		}

		// ParseForm is idempotent; handlers re-reading the form later get
		// the cached values.
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
			return
		}

		fullURL := base + c.Request.URL.RequestURI()
		want := ComputeSignature(authToken, fullURL, c.Request.PostForm)
		got := c.GetHeader(headerSignature)

		if got == "" || !hmac.Equal([]byte(want), []byte(got)) {
			logger.FromGin(c).Warn("webhook signature rejected", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}

// ComputeSignature implements the provider's signing scheme: the full URL
// concatenated with each POST parameter name and value, names sorted
// lexicographically, HMAC-SHA1 under the account auth token, base64.
func ComputeSignature(authToken, fullURL string, postParams url.Values) string {
	keys := make([]string, 0, len(postParams))
	for k := range postParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(postParams.Get(k))
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
