// Package sessionkit manages the client-side authentication session for
// CampusPulse dashboard clients: login, logout, refresh, optimistic
// restore across restarts, timer-driven expiry enforcement, and
// role-based routing.
//
// The package is designed around a single shared [Manager] per process,
// constructed once through [Builder.Build] and disposed with
// [Manager.Close]. Manager methods are safe to call from multiple
// goroutines after construction.
//
// # Architecture boundaries
//
// sessionkit is the public surface. It exposes [Manager], [Builder],
// [Config], and value types (Session, Snapshot, RouteTarget, etc.). The
// credential store implementations live in credstore/, the Auth API
// client in authapi/, and internal coordination — audit dispatch, metric
// storage — under internal/.
//
// # What this package must NOT do
//
//   - Render anything, or know about views. Consumers subscribe to
//     [Snapshot] changes and poll the expiry predicates; sessionkit never
//     calls into UI code except through registered subscribers.
//   - Write to the credential store from anywhere but the Manager. The
//     store is the only shared mutable resource and has exactly one
//     writer.
//   - Keep a session alive it cannot account for: expiry at zero and a
//     failed extend-session refresh both force logout (fail-closed).
package sessionkit
