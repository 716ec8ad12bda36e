package sessionkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campuspulse/sessionkit/authapi"
	"github.com/campuspulse/sessionkit/credstore"
	internalaudit "github.com/campuspulse/sessionkit/internal/audit"
)

// Manager is the single source of truth for the current Session. It owns
// the credential store (no other writer exists), drives the Auth API
// client, runs the expiry monitor while a session is live, and notifies
// subscribers on every state change.
//
// Construct through [Builder.Build]; dispose with [Manager.Close].
// All methods are safe for concurrent use.
type Manager struct {
	cfg        Config
	store      credstore.Store
	client     authapi.Client
	logger     *slog.Logger
	clock      func() time.Time
	metrics    *Metrics
	audit      *internalaudit.Dispatcher
	instanceID string

	// loginMu serializes Login calls so two concurrent logins cannot
	// interleave their persisted-state writes.
	loginMu sync.Mutex

	mu            sync.Mutex
	state         State
	session       *Session
	gen           uint64
	warned        bool
	warningAcked  bool
	closed        bool
	monitorCancel context.CancelFunc
	monitorDone   chan struct{}

	subMu   sync.Mutex
	subs    map[uint64]func(Snapshot)
	nextSub uint64
}

// Snapshot returns the current state and a private copy of the session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		State:     m.state,
		Session:   m.session.clone(),
		IsLoading: m.state == StateAuthenticating,
	}
}

// IsAuthenticated reports whether a session currently exists.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated && m.session != nil
}

// Subscribe registers fn to be called with a fresh [Snapshot] after every
// state change. The returned id cancels the subscription via
// [Manager.Unsubscribe]. fn must not block.
func (m *Manager) Subscribe(fn func(Snapshot)) uint64 {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.nextSub++
	id := m.nextSub
	m.subs[id] = fn
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (m *Manager) Unsubscribe(id uint64) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	delete(m.subs, id)
}

// notify delivers the current snapshot to every subscriber. Called only
// after mu has been released and both the in-memory and persisted state
// are consistent, so no subscriber observes a half-applied transition.
func (m *Manager) notify() {
	snap := m.Snapshot()

	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Login authenticates against the Auth API and, on success, persists the
// new Session and transitions to StateAuthenticated. On failure the state
// returns to StateUnauthenticated and the error wraps either
// [ErrInvalidCredentials] (server rejected the pair; the wrapped APIError
// carries the user-visible message) or [ErrLoginFailed] (transport or
// server fault). Concurrent calls are serialized.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	m.loginMu.Lock()
	defer m.loginMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	// A login over a live session supersedes it: tear the old one down
	// locally before authenticating as someone else.
	if m.state == StateAuthenticated {
		m.teardownLocked(ctx)
	}
	gen := m.gen
	m.state = StateAuthenticating
	m.mu.Unlock()
	m.notify()

	start := time.Now()
	reply, err := m.client.Login(ctx, email, password)
	m.metrics.Observe(MetricLoginLatency, time.Since(start))

	if err != nil {
		m.mu.Lock()
		if m.gen == gen && m.state == StateAuthenticating {
			m.state = StateUnauthenticated
		}
		m.mu.Unlock()
		m.notify()

		m.metrics.Inc(MetricLoginFailure)
		m.emitAudit(ctx, AuditLoginFailure, &Session{Email: email}, false, err)
		m.logger.Info("login failed", "email", email, "error", err)

		if authapi.IsAuthFailure(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	sess := &Session{
		ID:         reply.User.ID,
		Email:      reply.User.Email,
		Name:       reply.User.Name,
		Role:       ParseRole(reply.User.Role),
		Department: reply.User.Department,
		Campus:     reply.User.Campus,
		Username:   reply.User.Username,
		Token:      reply.Token,
		LoginTime:  reply.LoginTime,
		Students:   reply.User.Students,
	}

	m.mu.Lock()
	if m.closed || m.gen != gen || m.state != StateAuthenticating {
		m.mu.Unlock()
		return nil, ErrStaleOperation
	}
	if err := m.store.Save(ctx, sess.toRecord()); err != nil {
		// The in-memory session is still valid; it just won't survive a
		// restart. Surfacing this as a login failure would be worse.
		m.logger.Warn("persisting session failed", "error", err)
	}
	m.session = sess
	m.state = StateAuthenticated
	m.gen++
	m.warned = false
	m.warningAcked = false
	m.startMonitorLocked()
	m.mu.Unlock()
	m.notify()

	m.metrics.Inc(MetricLoginSuccess)
	m.emitAudit(ctx, AuditLoginSuccess, sess, true, nil)
	m.logger.Info("login succeeded", "user_id", sess.ID, "role", string(sess.Role))

	return sess.clone(), nil
}

// Logout tears down the session. Local teardown — in-memory state, the
// persisted record, the monitor — is unconditional; the remote logout
// call is best effort and its failure is observed but never surfaced.
// Idempotent: logging out while unauthenticated is a no-op, not an error.
func (m *Manager) Logout(ctx context.Context) error {
	return m.logout(ctx, false)
}

func (m *Manager) logout(ctx context.Context, forced bool) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	prior := m.session
	token := ""
	if prior != nil {
		token = prior.Token
	}
	m.teardownLocked(ctx)
	m.mu.Unlock()
	m.notify()

	if prior == nil {
		return nil
	}

	if forced {
		m.metrics.Inc(MetricLogoutForced)
		m.emitAudit(ctx, AuditLogoutForced, prior, true, nil)
		m.logger.Info("session logout forced", "user_id", prior.ID)
	} else {
		m.metrics.Inc(MetricLogout)
		m.emitAudit(ctx, AuditLogout, prior, true, nil)
	}

	if token != "" {
		if err := m.client.Logout(ctx, token); err != nil {
			// Swallowed: remote failure never blocks local teardown.
			m.metrics.Inc(MetricLogoutRemoteFailed)
			m.logger.Warn("remote logout failed", "error", err)
		}
	}
	return nil
}

// teardownLocked clears in-memory state, the persisted record, and the
// monitor, and advances the generation so in-flight responses captured
// against the old session are discarded on arrival. Caller holds mu.
func (m *Manager) teardownLocked(ctx context.Context) {
	m.session = nil
	m.state = StateUnauthenticated
	m.gen++
	m.warned = false
	m.warningAcked = false
	m.stopMonitorLocked()
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clearing credential store failed", "error", err)
	}
}

// RefreshUser replaces the session with the server's current view of the
// account. The original LoginTime and token are preserved; the session
// window does not move. On failure the existing session is untouched and
// the error wraps [ErrRefreshFailed] — the caller is NOT logged out. A
// response that arrives after the session was torn down is discarded.
func (m *Manager) RefreshUser(ctx context.Context) (*Session, error) {
	return m.refresh(ctx, false)
}

func (m *Manager) refresh(ctx context.Context, restamp bool) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	if m.state != StateAuthenticated || m.session == nil {
		m.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	token := m.session.Token
	gen := m.gen
	m.mu.Unlock()

	user, err := m.client.RefreshUser(ctx, token)
	if err != nil {
		m.metrics.Inc(MetricRefreshFailure)
		m.emitAudit(ctx, AuditRefreshFailure, nil, false, err)
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	m.mu.Lock()
	if m.closed || m.gen != gen || m.state != StateAuthenticated || m.session == nil {
		// The session this response was fetched for no longer exists.
		// Applying it would resurrect a logged-out session.
		m.mu.Unlock()
		m.metrics.Inc(MetricRefreshDiscarded)
		m.emitAudit(ctx, AuditRefreshStale, nil, false, nil)
		return nil, ErrStaleOperation
	}

	sess := &Session{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       ParseRole(user.Role),
		Department: user.Department,
		Campus:     user.Campus,
		Username:   user.Username,
		Token:      m.session.Token,
		LoginTime:  m.session.LoginTime,
		Students:   user.Students,
	}
	if restamp {
		sess.LoginTime = m.clock()
		m.warned = false
		m.warningAcked = false
	}
	if err := m.store.Save(ctx, sess.toRecord()); err != nil {
		m.logger.Warn("persisting refreshed session failed", "error", err)
	}
	m.session = sess
	m.mu.Unlock()
	m.notify()

	m.metrics.Inc(MetricRefreshSuccess)
	m.emitAudit(ctx, AuditRefreshSuccess, sess, true, nil)

	return sess.clone(), nil
}

// ExtendSession re-authenticates the session against the server and
// re-stamps its window from now. Fail-closed: if the server cannot
// confirm the account, the session is not allowed to continue and the
// user is logged out.
func (m *Manager) ExtendSession(ctx context.Context) error {
	sess, err := m.refresh(ctx, true)
	switch {
	case err == nil:
		m.metrics.Inc(MetricExtendSuccess)
		m.emitAudit(ctx, AuditSessionExtend, sess, true, nil)
		return nil
	case errors.Is(err, ErrStaleOperation), errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrManagerClosed):
		// Nothing left to extend or to tear down.
		return err
	default:
		m.metrics.Inc(MetricExtendFailure)
		m.logger.Warn("extend session failed, forcing logout", "error", err)
		_ = m.logout(ctx, true)
		return err
	}
}

// UpdateUser merges the non-nil fields of upd into the current Session
// and persists the result. LoginTime is never touched; Token changes only
// when explicitly provided and non-empty.
func (m *Manager) UpdateUser(ctx context.Context, upd UserUpdate) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	if m.state != StateAuthenticated || m.session == nil {
		m.mu.Unlock()
		return nil, ErrNotAuthenticated
	}

	sess := m.session.clone()
	if upd.Email != nil {
		sess.Email = *upd.Email
	}
	if upd.Name != nil {
		sess.Name = *upd.Name
	}
	if upd.Role != nil {
		sess.Role = ParseRole(string(*upd.Role))
	}
	if upd.Department != nil {
		sess.Department = *upd.Department
	}
	if upd.Campus != nil {
		sess.Campus = *upd.Campus
	}
	if upd.Username != nil {
		sess.Username = *upd.Username
	}
	if upd.Token != nil && *upd.Token != "" {
		sess.Token = *upd.Token
	}
	if upd.Students != nil {
		sess.Students = append([]string(nil), (*upd.Students)...)
	}

	if err := m.store.Save(ctx, sess.toRecord()); err != nil {
		m.logger.Warn("persisting updated session failed", "error", err)
	}
	m.session = sess
	m.mu.Unlock()
	m.notify()

	m.metrics.Inc(MetricUpdateApplied)
	m.emitAudit(ctx, AuditUserUpdated, sess, true, nil)

	return sess.clone(), nil
}

// TestCredentials fetches the demo account listing from the Auth API.
// Only meaningful against demo deployments with seeded data.
func (m *Manager) TestCredentials(ctx context.Context) (*authapi.DemoCredentials, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return nil, ErrManagerClosed
	}
	return m.client.TestCredentials(ctx)
}

// RememberMe reads the remember-me preference and the remembered email.
func (m *Manager) RememberMe(ctx context.Context) (bool, string, error) {
	return m.store.RememberMe(ctx)
}

// SetRememberMe stores the remember-me preference. It survives logout.
func (m *Manager) SetRememberMe(ctx context.Context, email string) error {
	return m.store.SetRememberMe(ctx, email)
}

// ClearRememberMe removes the remember-me preference.
func (m *Manager) ClearRememberMe(ctx context.Context) error {
	return m.store.ClearRememberMe(ctx)
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.TakeSnapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// InstanceID is the per-process client identifier stamped on audit
// events.
func (m *Manager) InstanceID() string {
	return m.instanceID
}

// Close stops the expiry monitor and drains the audit dispatcher. The
// persisted record is left in place so the next process can restore the
// session. Further operations return ErrManagerClosed.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.gen++
	m.stopMonitorLocked()
	m.mu.Unlock()

	if m.audit != nil {
		m.audit.Close()
	}
}

// restore performs the optimistic startup restore: a persisted record
// becomes an authenticated session without contacting the network. The
// expiry monitor's first evaluation invalidates anything stale.
func (m *Manager) restore(ctx context.Context) {
	rec, err := m.store.Load(ctx)
	switch {
	case errors.Is(err, credstore.ErrCorruptRecord):
		m.metrics.Inc(MetricRestoreCorrupt)
		m.emitAudit(ctx, AuditRestoreCorrupt, nil, false, err)
		m.logger.Warn("discarded corrupt persisted session")
		return
	case err != nil:
		m.logger.Warn("credential store unavailable at startup", "error", err)
		return
	case rec == nil:
		return
	}

	sess := sessionFromRecord(rec)

	m.mu.Lock()
	m.session = sess
	m.state = StateAuthenticated
	m.startMonitorLocked()
	m.mu.Unlock()

	m.metrics.Inc(MetricRestoreSuccess)
	m.emitAudit(ctx, AuditSessionRestore, sess, true, nil)
	m.logger.Info("session restored", "user_id", sess.ID, "role", string(sess.Role))
}

func (m *Manager) emitAudit(ctx context.Context, eventType string, sess *Session, success bool, opErr error) {
	if m.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: m.clock(),
		EventType: eventType,
		ClientID:  m.instanceID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if sess != nil {
		event.UserID = sess.ID
		event.Email = sess.Email
		event.Role = string(sess.Role)
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		event.Metadata = map[string]string{"user_agent": ua}
	}

	m.audit.Emit(ctx, event)
}
