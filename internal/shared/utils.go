// Package shared provides random token helpers.
package shared

import (
	"crypto/rand"
	"encoding/hex"
)

// DeviceIDPrefix marks tokens produced by NewDeviceID.
const DeviceIDPrefix = "u_"

// MakeRandHexString returns size random bytes encoded as hex, so the
// result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewDeviceID returns a fresh device token of the form "u_<18 hex chars>".
func NewDeviceID() (string, error) {
	s, err := MakeRandHexString(9)
	if err != nil {
		return "", err
	}
	return DeviceIDPrefix + s, nil
}
