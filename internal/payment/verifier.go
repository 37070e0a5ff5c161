package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks payment-processor signatures so fulfillment never runs on a
// forged "payment succeeded" claim.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier { return &Verifier{secret: secret} }

// Verify recomputes the HMAC-SHA256 of "orderID|paymentID" with the processor
// secret and compares it against the supplied hex signature in constant time.
func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
