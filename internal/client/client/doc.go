// Package client bootstraps the client's connections.
//
// InitDatabase and RunMigrations open the local SQLite file and apply the
// embedded goose migrations. OpenBackend chooses the remote backend from
// configuration: a Postgres DSN, a PostgREST endpoint, or none.
package client
