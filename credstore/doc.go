// Package credstore persists the authenticated-session record and the
// remember-me login preferences across process restarts.
//
// # Key layout
//
// Every implementation maps the same four logical keys:
//
//	user            serialized session record (JSON)
//	authToken       raw token string, duplicated for quick access
//	rememberMe      boolean preference flag
//	rememberedEmail last email the user asked to remember
//
// Clear removes only user and authToken; the remember-me keys are
// login-form conveniences that survive logout.
//
// # Fail-soft loading
//
// Load never surfaces a decode error. A malformed or inconsistent record
// is discarded, best-effort cleared from the backend, and reported as
// [ErrCorruptRecord] with a nil record — callers treat it exactly like an
// absent record. A corrupt record must never block application startup.
// Backend I/O errors are still returned so callers can tell an
// unreachable store from an empty one.
//
// # Implementations
//
//   - [Memory] — mutex-guarded map, for tests and ephemeral processes.
//   - [File] — one file per key under a private directory.
//   - [Redis] — go-redis backed, for kiosk fleets sharing a backend.
package credstore
