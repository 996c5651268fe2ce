// Package cli provides the two interactive keydesk front ends.
//
// AdminApp is a REPL over the admin API: login restores or creates a
// session, after which keys can be listed, created, toggled, re-tiered,
// described and deleted, and usage statistics inspected. A background
// watcher pings the backend and shows online/offline in the prompt.
//
// PortalApp is a three step wizard for self-service: request a code for a
// company email, submit the code, receive the key.
//
// Both read from a *bufio.Reader and write to an io.Writer so tests can
// script them.
package cli
