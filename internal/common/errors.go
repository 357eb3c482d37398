// Package common defines shared constants and sentinel errors used across
// the treehole client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Remote access errors.
	ErrRemoteUnavailable     = errors.New("remote backend unavailable")
	ErrRemoteOperationFailed = errors.New("remote operation failed")
	ErrTimeout               = errors.New("remote backend timed out")

	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Gate errors.
	ErrUpgradeRequired = errors.New("vip membership required")

	// Input and decoding errors.
	ErrValidation = errors.New("validation error")
	ErrDecode     = errors.New("decode error")

	ErrAvatarStorageDisabled = errors.New("avatar storage is not configured")

	// Controller lifecycle errors.
	ErrNotReady       = errors.New("wall is still loading")
	ErrAlreadyStarted = errors.New("controller already started")
)
