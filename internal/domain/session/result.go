package session

// InvalidReason classifies why a redirect payload was not usable.
type InvalidReason string

const (
	ReasonUntrustedOrigin   InvalidReason = "untrusted_origin"
	ReasonMissingPayload    InvalidReason = "missing_payload"
	ReasonMalformedEncoding InvalidReason = "malformed_encoding"
	ReasonMalformedJSON     InvalidReason = "malformed_json"
)

// DecodeResult is the outcome of decoding a redirect payload.
// It is either Valid or Invalid; callers switch on the concrete type.
type DecodeResult interface {
	decodeResult()
}

// Valid carries a successfully decoded session.
type Valid struct {
	Session Session
}

// Invalid carries the reason a payload was rejected.
// Err is set for malformed payloads and nil for the benign cases.
type Invalid struct {
	Reason InvalidReason
	Err    error
}

func (Valid) decodeResult()   {}
func (Invalid) decodeResult() {}

// Benign reports whether the rejection is expected traffic rather than a broken payload.
func (i Invalid) Benign() bool {
	return i.Reason == ReasonUntrustedOrigin || i.Reason == ReasonMissingPayload
}
