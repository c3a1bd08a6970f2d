package utils

import (
	"github.com/google/uuid"
)

// QRIDFormatError is the message surfaced whenever a candidate identifier
// fails validation.
const QRIDFormatError = "Invalid QR ID format. Must be 8 hexadecimal characters (e.g., 0b66003c)"

// IsValidQRID reports whether candidate is exactly 8 lowercase hexadecimal
// characters. Uppercase input is rejected, not case-folded.
func IsValidQRID(candidate string) bool {
	if len(candidate) != 8 {
		return false
	}
	for _, c := range []byte(candidate) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// GenerateQRID returns a fresh 8-character identifier. Collisions are not
// checked; uniqueness holds in practice for the entity volumes involved.
func GenerateQRID() string {
	return uuid.NewString()[:8]
}
