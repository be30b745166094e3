package redirect

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
)

const testPrefix = "app-scheme://auth"

func trustedDecoder() Decoder {
	return Decoder{TrustedPrefix: testPrefix, RequireTrustedPrefix: true}
}

func requireValid(t *testing.T, res domainsession.DecodeResult) domainsession.Session {
	t.Helper()
	valid, ok := res.(domainsession.Valid)
	require.Truef(t, ok, "expected Valid, got %#v", res)
	return valid.Session
}

func requireInvalid(t *testing.T, res domainsession.DecodeResult, reason domainsession.InvalidReason) domainsession.Invalid {
	t.Helper()
	invalid, ok := res.(domainsession.Invalid)
	require.Truef(t, ok, "expected Invalid, got %#v", res)
	assert.Equal(t, reason, invalid.Reason)
	return invalid
}

func TestDecoder_Decode_AliceScenario(t *testing.T) {
	res := trustedDecoder().Decode("app-scheme://auth?user=%7B%22display_name%22%3A%22Alice%22%7D")

	sess := requireValid(t, res)
	assert.Equal(t, "Alice", sess.DisplayName)
	assert.Nil(t, sess.Extra)
}

func TestDecoder_Decode_UntrustedOrigin(t *testing.T) {
	tests := []string{
		"https://evil.example/?user=%7B%22display_name%22%3A%22Eve%22%7D",
		"app-scheme://auth.evil.example?user=%7B%7D",
		"app-scheme://authx?user=%7B%7D",
		"other-scheme://auth?user=%7B%7D",
		"",
	}

	for _, rawURL := range tests {
		t.Run(rawURL, func(t *testing.T) {
			inv := requireInvalid(t, trustedDecoder().Decode(rawURL), domainsession.ReasonUntrustedOrigin)
			assert.True(t, inv.Benign())
			assert.NoError(t, inv.Err)
		})
	}
}

func TestDecoder_Decode_CheckDisabledAcceptsAnyOrigin(t *testing.T) {
	d := Decoder{TrustedPrefix: testPrefix, RequireTrustedPrefix: false}
	sess := requireValid(t, d.Decode("https://evil.example/?user=%7B%22display_name%22%3A%22Eve%22%7D"))
	assert.Equal(t, "Eve", sess.DisplayName)
}

func TestDecoder_Decode_MissingPayload(t *testing.T) {
	tests := map[string]string{
		"no query":         "app-scheme://auth",
		"other params":     "app-scheme://auth?token=abc",
		"empty value":      "app-scheme://auth?user=",
		"only in fragment": "app-scheme://auth#user=%7B%7D",
		"bare key":         "app-scheme://auth?user",
	}

	for name, rawURL := range tests {
		t.Run(name, func(t *testing.T) {
			inv := requireInvalid(t, trustedDecoder().Decode(rawURL), domainsession.ReasonMissingPayload)
			assert.NoError(t, inv.Err)
		})
	}
}

func TestDecoder_Decode_MalformedJSON(t *testing.T) {
	payloads := []string{
		"not-json",
		"%7B%22display_name%22%3A",
		"%5B1%2C2%5D",
		"null",
		"%22Alice%22",
		"42",
		"%7B%27display_name%27%3A%27x%27%7D",
	}

	for _, payload := range payloads {
		t.Run(payload, func(t *testing.T) {
			var res domainsession.DecodeResult
			require.NotPanics(t, func() {
				res = trustedDecoder().Decode(testPrefix + "?user=" + payload)
			})
			inv := requireInvalid(t, res, domainsession.ReasonMalformedJSON)
			assert.True(t, apperrors.IsMalformedRedirect(inv.Err))
			assert.False(t, inv.Benign())
		})
	}
}

func TestDecoder_Decode_MalformedEncoding(t *testing.T) {
	inv := requireInvalid(t, trustedDecoder().Decode(testPrefix+"?user=%7B%ZZ%7D"), domainsession.ReasonMalformedEncoding)
	assert.True(t, apperrors.IsMalformedRedirect(inv.Err))
}

func TestDecoder_Decode_QueryDetails(t *testing.T) {
	t.Run("first user parameter wins", func(t *testing.T) {
		sess := requireValid(t, trustedDecoder().Decode(
			testPrefix+"?user=%7B%22display_name%22%3A%22First%22%7D&user=%7B%22display_name%22%3A%22Second%22%7D"))
		assert.Equal(t, "First", sess.DisplayName)
	})

	t.Run("fragment is ignored", func(t *testing.T) {
		sess := requireValid(t, trustedDecoder().Decode(
			testPrefix+"?state=1&user=%7B%22display_name%22%3A%22Frag%22%7D#section"))
		assert.Equal(t, "Frag", sess.DisplayName)
	})

	t.Run("plus decodes to space", func(t *testing.T) {
		sess := requireValid(t, trustedDecoder().Decode(
			testPrefix+"?user=%7B%22display_name%22%3A%22Ada+Lovelace%22%7D"))
		assert.Equal(t, "Ada Lovelace", sess.DisplayName)
	})

	t.Run("path after prefix", func(t *testing.T) {
		sess := requireValid(t, trustedDecoder().Decode(
			testPrefix+"/callback?user=%7B%22display_name%22%3A%22Path%22%7D"))
		assert.Equal(t, "Path", sess.DisplayName)
	})
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	sessions := []domainsession.Session{
		{DisplayName: "Alice"},
		{DisplayName: "100% Bob & co?", Extra: map[string]any{"email": "bob@example.com"}},
		{DisplayName: "Zoë 日本", Extra: map[string]any{"age": float64(31), "admin": false, "note": "a+b=c"}},
		{Extra: map[string]any{"id": "anon"}},
		{},
	}

	for _, want := range sessions {
		t.Run(want.DisplayName, func(t *testing.T) {
			link, err := Encode(testPrefix, want)
			require.NoError(t, err)

			got := requireValid(t, trustedDecoder().Decode(link))
			assert.True(t, want.Equal(got), "want %#v, got %#v", want, got)
		})
	}
}

func TestHasTrustedPrefix(t *testing.T) {
	assert.True(t, HasTrustedPrefix("app-scheme://auth", testPrefix))
	assert.True(t, HasTrustedPrefix("app-scheme://auth?user=1", testPrefix))
	assert.True(t, HasTrustedPrefix("app-scheme://auth/x", testPrefix))
	assert.True(t, HasTrustedPrefix("app-scheme://auth#x", testPrefix))
	assert.True(t, HasTrustedPrefix("app-scheme://auth/anything", "app-scheme://auth/"))
	assert.False(t, HasTrustedPrefix("app-scheme://authority", testPrefix))
	assert.False(t, HasTrustedPrefix("app-scheme://auth", ""))
}

func TestDecode_KeepsRecordVerbatim(t *testing.T) {
	link := testPrefix + "?user=" + url.QueryEscape(`{"display_name":"","google_id":117234567890123456789}`)

	sess := requireValid(t, trustedDecoder().Decode(link))
	assert.Empty(t, sess.DisplayName)

	data, err := json.Marshal(sess)
	require.NoError(t, err)
	assert.Equal(t, `{"display_name":"","google_id":117234567890123456789}`, string(data))
}
