// Package remote is the persistence adapter between the treehole client and
// the hosted relational backend.
//
// # Layers
//
// A Backend moves wire rows (snake_case, nullable columns) to and from one
// of two transports:
//
//   - RESTBackend speaks the PostgREST dialect exposed by Supabase
//     (/rest/v1/messages, /rest/v1/profiles).
//   - PostgresBackend talks to the same tables directly through pgx and
//     owns their goose migrations.
//
// Adapter sits on top of either one. It converts rows into models values
// (decoding is fallible, see decodeMessageRow), maps "row not found" on
// profile lookups to an absent result, checks the VIP gate before
// privileged writes, and wraps every failure so callers can match:
//
//   - common.ErrRemoteUnavailable: no backend configured
//   - common.ErrRemoteOperationFailed: the backend returned an error
//   - common.ErrTimeout: the call ran past its deadline
//   - common.ErrUpgradeRequired: the actor is not VIP
//
// Backend-specific detail stays reachable with errors.As (*APIError for the
// REST transport).
package remote
