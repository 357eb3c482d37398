// Package cli provides the interactive treehole command-line client.
//
// NewApp wires configuration, the local SQLite snapshot, the remote
// backend and the sync controller. App.Run loads the wall (cloud first,
// local on failure or timeout) and then serves a REPL for reading,
// posting, searching and, for VIP members, pinning and deleting messages.
package cli
