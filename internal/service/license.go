package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// newLicenseKey draws an unguessable credential. Uniqueness is enforced by
// the license store's unique index, not here. Only the approval transaction
// may call this.
func newLicenseKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
