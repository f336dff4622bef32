package extraction

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// CanonicalString is the exact text both sides sign.
func CanonicalString(requestID, timestamp string) string {
	return requestID + ":" + timestamp
}

// Sign returns the base64 HMAC-SHA256 of the canonical string.
func Sign(secret []byte, requestID, timestamp string) string {
	return SignBody(secret, []byte(CanonicalString(requestID, timestamp)))
}

func SignBody(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func VerifySignature(secret []byte, requestID, timestamp, signature string) bool {
	return equal(Sign(secret, requestID, timestamp), signature)
}

func VerifyBodySignature(secret, body []byte, signature string) bool {
	return equal(SignBody(secret, body), signature)
}

func equal(expected, got string) bool {
	return hmac.Equal([]byte(expected), []byte(got))
}
