package redirect

// Package redirect turns deep-link URLs into session decode results and
// distributes incoming deep links to interested listeners.

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
)

// PayloadParam is the query parameter carrying the encoded session.
const PayloadParam = "user"

// Decoder extracts a session from a deep link.
type Decoder struct {
	// TrustedPrefix is the scheme/host prefix a deep link must start with, e.g. "app-scheme://auth".
	TrustedPrefix string
	// RequireTrustedPrefix enables the origin check.
	RequireTrustedPrefix bool
}

// Decode applies the redirect decode pipeline to rawURL. It never panics; every
// failure is reported as session.Invalid.
func (d Decoder) Decode(rawURL string) domainsession.DecodeResult {
	if d.RequireTrustedPrefix && !HasTrustedPrefix(rawURL, d.TrustedPrefix) {
		return domainsession.Invalid{Reason: domainsession.ReasonUntrustedOrigin}
	}

	raw, ok := payloadParam(rawURL)
	if !ok {
		return domainsession.Invalid{Reason: domainsession.ReasonMissingPayload}
	}

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return domainsession.Invalid{
			Reason: domainsession.ReasonMalformedEncoding,
			Err:    apperrors.Wrap(err, apperrors.ErrCodeMalformedRedirect, "unescape user parameter"),
		}
	}
	if decoded == "" {
		return domainsession.Invalid{Reason: domainsession.ReasonMissingPayload}
	}

	sess, err := domainsession.ParseRecord([]byte(decoded))
	if err != nil {
		return domainsession.Invalid{
			Reason: domainsession.ReasonMalformedJSON,
			Err:    apperrors.Wrap(err, apperrors.ErrCodeMalformedRedirect, "parse user parameter"),
		}
	}

	return domainsession.Valid{Session: sess}
}

// Encode builds a deep link under prefix carrying sess as its payload.
func Encode(prefix string, sess domainsession.Session) (string, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return prefix + "?" + PayloadParam + "=" + url.QueryEscape(string(data)), nil
}

// HasTrustedPrefix reports whether rawURL starts with prefix and the prefix ends
// at a URL boundary, so "app-scheme://auth.evil" does not pass for "app-scheme://auth".
func HasTrustedPrefix(rawURL, prefix string) bool {
	if prefix == "" || !strings.HasPrefix(rawURL, prefix) {
		return false
	}
	rest := rawURL[len(prefix):]
	if rest == "" || strings.HasSuffix(prefix, "/") {
		return true
	}
	switch rest[0] {
	case '?', '/', '#':
		return true
	default:
		return false
	}
}

// payloadParam returns the still-encoded value of the first "user" parameter
// in the query string of rawURL. An empty value counts as absent.
func payloadParam(rawURL string) (string, bool) {
	_, query, found := strings.Cut(rawURL, "?")
	if !found {
		return "", false
	}
	query, _, _ = strings.Cut(query, "#")

	for pair := range strings.SplitSeq(query, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err != nil || k != PayloadParam {
			continue
		}
		if value == "" {
			return "", false
		}
		return value, true
	}
	return "", false
}
