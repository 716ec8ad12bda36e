package sessionkit

import (
	"time"

	"github.com/campuspulse/sessionkit/credstore"
)

// Role is the closed set of dashboard roles. Unknown wire strings are
// normalized to RoleUnknown at the boundary and routed like any
// non-privileged role.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleInstructor     Role = "instructor"
	RoleDepartmentHead Role = "department_head"
	RoleStudent        Role = "student"
	RoleUnknown        Role = "unknown"
)

// ParseRole normalizes a raw role string from the wire or from persisted
// state. Matching is exact; anything unrecognized becomes RoleUnknown.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleAdmin, RoleInstructor, RoleDepartmentHead, RoleStudent:
		return Role(raw)
	default:
		return RoleUnknown
	}
}

// State is the session lifecycle state.
type State uint8

const (
	// StateUnauthenticated means no session exists. The absence of a
	// session is the sole authoritative signal of "not authenticated".
	StateUnauthenticated State = iota

	// StateAuthenticating means a login call is in flight. Transient,
	// never persisted.
	StateAuthenticating

	// StateAuthenticated means a session exists and the expiry monitor
	// is running.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// Session is the authoritative record of the current authenticated
// identity. It exists if and only if the user is authenticated. Token is
// never empty on a live Session; LoginTime is immutable after creation
// (only ExtendSession re-stamps it, deliberately).
type Session struct {
	ID         string
	Email      string
	Name       string
	Role       Role
	Department string
	Campus     string
	Username   string
	Token      string
	LoginTime  time.Time
	Students   []string
}

// clone returns a deep copy so callers can never mutate Manager state
// through a returned Session.
func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Students != nil {
		cp.Students = append([]string(nil), s.Students...)
	}
	return &cp
}

func (s *Session) toRecord() credstore.Record {
	return credstore.Record{
		ID:         s.ID,
		Email:      s.Email,
		Name:       s.Name,
		Role:       string(s.Role),
		Department: s.Department,
		Campus:     s.Campus,
		Username:   s.Username,
		Token:      s.Token,
		LoginTime:  s.LoginTime,
		Students:   append([]string(nil), s.Students...),
	}
}

func sessionFromRecord(rec *credstore.Record) *Session {
	if rec == nil {
		return nil
	}
	return &Session{
		ID:         rec.ID,
		Email:      rec.Email,
		Name:       rec.Name,
		Role:       ParseRole(rec.Role),
		Department: rec.Department,
		Campus:     rec.Campus,
		Username:   rec.Username,
		Token:      rec.Token,
		LoginTime:  rec.LoginTime,
		Students:   append([]string(nil), rec.Students...),
	}
}

// UserUpdate is a partial merge into the current Session. Nil fields are
// left untouched; Token may be replaced only by setting it explicitly.
// LoginTime is not part of the update surface at all.
type UserUpdate struct {
	Email      *string
	Name       *string
	Role       *Role
	Department *string
	Campus     *string
	Username   *string
	Token      *string
	Students   *[]string
}

// Snapshot is the read surface handed to subscribers and returned by
// [Manager.Snapshot]. Session is a private copy.
type Snapshot struct {
	State     State
	Session   *Session
	IsLoading bool
}

// IsAuthenticated reports whether the snapshot carries a live session.
func (s Snapshot) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.Session != nil
}
