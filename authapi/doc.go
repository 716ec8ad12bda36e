// Package authapi is the boundary to the remote CampusPulse Auth API.
//
// The wire contract is fixed:
//
//	POST /login            {email, password} → {access_token, user}
//	POST /logout           Authorization: Bearer <token>, best effort
//	GET  /users/me         Authorization: Bearer <token> → user
//	GET  /test-credentials → demo account credentials (demo/test UI only)
//
// Results are normalized: the user payload becomes a [User] with the role
// string mapped into the caller's closed role set, remote failures become
// [*APIError] carrying the server's human-readable detail message, and
// LoginTime is stamped with the client clock at decode time — never the
// server's.
//
// # What this package must NOT do
//
//   - Persist anything. Storage belongs to credstore.
//   - Retry. Login and refresh failures are surfaced once; resubmission is
//     a caller decision.
//   - Trust token contents. [TokenExpiry] parses a JWT without verifying
//     its signature and is advisory only.
package authapi
