package orders

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"fournil/globals"
)

func init() {
	globals.JwtSecret = []byte("test-secret")
}

func TestPickupQRRoundTrip(t *testing.T) {
	payload := GenerateQRPayload("o1b2c3d4e5f6g", "ABCD1234")

	orderID, pickupCode, err := VerifyPickupQR(payload)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if orderID != "o1b2c3d4e5f6g" || pickupCode != "ABCD1234" {
		t.Errorf("got %q %q", orderID, pickupCode)
	}
}

func TestPickupQRTamperedPayload(t *testing.T) {
	payload := GenerateQRPayload("o1b2c3d4e5f6g", "ABCD1234")

	// Swap the order id, keep the signature.
	parts := strings.Split(payload, "|")
	parts[0] = "oxxxxxxxxxxxx"
	if _, _, err := VerifyPickupQR(strings.Join(parts, "|")); err == nil {
		t.Error("tampered order id should fail verification")
	}

	parts = strings.Split(payload, "|")
	parts[1] = "ZZZZ9999"
	if _, _, err := VerifyPickupQR(strings.Join(parts, "|")); err == nil {
		t.Error("tampered pickup code should fail verification")
	}
}

func TestPickupQRBadFormat(t *testing.T) {
	for _, payload := range []string{"", "a|b", "a|b|c|d|e", "no-pipes-at-all"} {
		if _, _, err := VerifyPickupQR(payload); err == nil {
			t.Errorf("payload %q should be rejected", payload)
		}
	}
}

func TestPickupQRStaleTimestamp(t *testing.T) {
	// Correctly signed but outside the drift window.
	stale := time.Now().Unix() - allowedDrift - 60
	data := fmt.Sprintf("o1b2c3d4e5f6g|ABCD1234|%d", stale)
	if _, _, err := VerifyPickupQR(data + "|" + sign(data)); err == nil {
		t.Error("stale payload should be rejected")
	}
}
