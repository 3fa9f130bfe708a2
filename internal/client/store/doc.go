// Package store is the backend-agnostic record store: one collection of user
// records keyed by lower-cased username plus a singleton session record.
//
// Backends implement Conn. Callers talk to a *Store, which owns exactly one
// lazily opened Conn, shares that open between concurrent first callers and
// drops the handle when the backend reports a conflict so the next call opens
// a fresh one.
package store
