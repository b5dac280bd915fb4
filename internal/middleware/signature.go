package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"sort"
	"strings"
)

const signatureHeader = "X-Twilio-Signature"

// VerifySignature returns middleware that rejects webhook requests whose
// provider signature does not match. The signature covers the public URL
// the provider was given plus the sorted POST parameters, HMAC-SHA1 signed
// with the account auth token.
//
// publicURL is the externally visible base URL of this service. With an
// empty authToken the middleware is a no-op, for local development without
// provider credentials.
func VerifySignature(publicURL, authToken string) func(http.Handler) http.Handler {
	base := strings.TrimRight(publicURL, "/")
	return func(next http.Handler) http.Handler {
		if authToken == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "malformed form body", http.StatusBadRequest)
				return
			}

			url := base + r.URL.RequestURI()
			want := computeSignature(authToken, url, r.PostForm)
			got := r.Header.Get(signatureHeader)
			if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
				slog.Warn("Rejecting webhook with bad signature",
					"path", r.URL.Path, "remote", r.RemoteAddr)
				http.Error(w, "invalid signature", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// computeSignature implements the provider's scheme: the full URL followed
// by each POST parameter name and value, names byte-sorted, signed with
// HMAC-SHA1 and base64 encoded.
func computeSignature(authToken, url string, form map[string][]string) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		for _, v := range form[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
