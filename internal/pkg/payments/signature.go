package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyCheckoutSignature checks the signature Razorpay hands to the
// browser after checkout. The signed payload is the exact string
// "{order_id}|{payment_id}" and the signature is its hex HMAC-SHA256
// under the key secret.
func VerifyCheckoutSignature(orderID, paymentID, signature, secret string) bool {
	return verifyHexHMAC([]byte(orderID+"|"+paymentID), signature, secret)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against
// the raw request body. The body must be the verbatim bytes as
// received; any re-serialization breaks the digest.
func VerifyWebhookSignature(rawBody []byte, signature, secret string) bool {
	return verifyHexHMAC(rawBody, signature, secret)
}

func verifyHexHMAC(payload []byte, signature, secret string) bool {
	sig := strings.TrimSpace(signature)
	key := strings.TrimSpace(secret)
	if sig == "" || key == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}
