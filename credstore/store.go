package credstore

import (
	"context"
	"errors"
	"time"
)

// Logical key names shared by every implementation.
const (
	KeyUser            = "user"
	KeyAuthToken       = "authToken"
	KeyRememberMe      = "rememberMe"
	KeyRememberedEmail = "rememberedEmail"
)

// ErrStoreUnavailable is returned when the backing store cannot be reached.
var ErrStoreUnavailable = errors.New("credential store unavailable")

// ErrCorruptRecord is returned by Load when the persisted record could
// not be decoded. By the time it is returned the record has already been
// cleared from the backend; callers treat it exactly like an absent
// record and may count it.
var ErrCorruptRecord = errors.New("corrupt persisted record")

// Record is the persisted mirror of a session. Role is carried as the raw
// wire string; normalization into the closed role set happens at the
// sessionkit boundary when the record is restored.
type Record struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
	Campus     string    `json:"campus,omitempty"`
	Username   string    `json:"username,omitempty"`
	Token      string    `json:"token"`
	LoginTime  time.Time `json:"loginTime"`
	Students   []string  `json:"students,omitempty"`
}

// valid reports whether a decoded record is usable. A session record
// without a token or login time is treated the same as a corrupt blob.
func (r *Record) valid() bool {
	return r != nil && r.Token != "" && !r.LoginTime.IsZero()
}

// Store is the persistence contract for session records and remember-me
// preferences. Implementations are safe for concurrent use; in practice
// the sessionkit Manager is the only writer.
type Store interface {
	// Load returns the persisted session record, (nil, nil) when no
	// record exists, or (nil, ErrCorruptRecord) when the stored record
	// could not be decoded and was cleared as a side effect. Load never
	// returns a raw decode error.
	Load(ctx context.Context) (*Record, error)

	// Save persists the record under the user key and duplicates its
	// token under the authToken key. Idempotent.
	Save(ctx context.Context, rec Record) error

	// Clear removes the user and authToken keys. Idempotent; clearing an
	// empty store is not an error. Remember-me keys are untouched.
	Clear(ctx context.Context) error

	// Token returns the duplicated raw token, or "" when absent.
	Token(ctx context.Context) (string, error)

	// RememberMe reports the remember-me flag and the remembered email.
	RememberMe(ctx context.Context) (bool, string, error)

	// SetRememberMe enables the flag and stores the email to prefill.
	SetRememberMe(ctx context.Context, email string) error

	// ClearRememberMe removes both remember-me keys.
	ClearRememberMe(ctx context.Context) error
}
