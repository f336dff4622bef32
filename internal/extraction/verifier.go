package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const BodySignatureHeader = "X-Extraction-Body-Signature"

var (
	ErrValidation      = errors.New("invalid callback")
	ErrUnauthenticated = errors.New("callback not authenticated")
)

// Verifier decides whether an inbound callback can be trusted. It never
// looks at result contents.
type Verifier struct {
	secret  []byte
	maxAge  time.Duration
	maxSkew time.Duration
	now     func() time.Time
}

func NewVerifier(secret string, maxAge, maxSkew time.Duration) *Verifier {
	return &Verifier{
		secret:  []byte(secret),
		maxAge:  maxAge,
		maxSkew: maxSkew,
		now:     time.Now,
	}
}

// Verify checks required fields, the signature and the timestamp window, in
// that order. bodySignature is the optional whole-body HMAC header; empty
// means the sender did not provide one.
//
// Errors wrap ErrValidation or ErrUnauthenticated. The wrapped detail is for
// logs only and must not reach the caller.
func (v *Verifier) Verify(body []byte, bodySignature string) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed body: %v", ErrValidation, err)
	}

	if err := env.checkRequired(); err != nil {
		return nil, err
	}

	if !VerifySignature(v.secret, env.RequestID, env.Timestamp, env.Signature) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrUnauthenticated)
	}
	if bodySignature != "" && !VerifyBodySignature(v.secret, body, bodySignature) {
		return nil, fmt.Errorf("%w: body signature mismatch", ErrUnauthenticated)
	}

	sentAt, err := parseTimestamp(env.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable timestamp", ErrUnauthenticated)
	}
	age := v.now().Sub(sentAt)
	if age > v.maxAge {
		return nil, fmt.Errorf("%w: timestamp expired (age %s)", ErrUnauthenticated, age.Truncate(time.Second))
	}
	if -age > v.maxSkew {
		return nil, fmt.Errorf("%w: timestamp in the future", ErrUnauthenticated)
	}

	switch env.Status {
	case "", CallbackStatusSuccess, CallbackStatusPartial, CallbackStatusFailed:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, env.Status)
	}

	log.Debug().Str("requestID", env.RequestID).Msg("Callback verified")
	return &env, nil
}

func (e *Envelope) checkRequired() error {
	var missing []string
	if e.RequestID == "" {
		missing = append(missing, "request_id")
	}
	if e.Signature == "" {
		missing = append(missing, "signature")
	}
	if e.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	// A whole-batch failure may carry only an error message.
	if !e.hasResults() && !(e.Status == CallbackStatusFailed && e.Error != "") {
		missing = append(missing, "result")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrValidation, missing)
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	// Some senders omit the zone; treat those as UTC.
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC)
}
