package remote

import (
	"context"
	"fmt"
)

// Backend is the row-level contract implemented by each transport.
//
// GetProfile returns an error wrapping common.ErrNotFound when the device
// has no profile row. DeleteMessage is idempotent. actorID is the device
// issuing a privileged write; transports that can enforce the VIP check
// server-side use it.
type Backend interface {
	ListMessages(ctx context.Context) ([]MessageRow, error)
	InsertMessages(ctx context.Context, rows []MessageRow) error
	DeleteMessage(ctx context.Context, actorID, id string) error
	SetPinned(ctx context.Context, actorID, id string, pinned bool) error
	GetProfile(ctx context.Context, deviceID string) (*ProfileRow, error)
	UpsertProfile(ctx context.Context, row ProfileRow) error
	Close() error
}

// APIError is an error payload returned by the PostgREST endpoint.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("status %d", e.Status)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// codeNoRows is the PostgREST code for a single-object read matching no rows.
const codeNoRows = "PGRST116"
