package sessionkit

import (
	"context"
	"time"
)

// The expiry monitor is owned by the Manager, not by views: it starts
// when a session becomes authenticated, stops on any transition away,
// and is the sole automatic-logout trigger in the system.

func (m *Manager) startMonitorLocked() {
	if m.monitorCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.monitorCancel = cancel
	m.monitorDone = done
	go m.runMonitor(ctx, done)
}

func (m *Manager) stopMonitorLocked() {
	if m.monitorCancel == nil {
		return
	}
	m.monitorCancel()
	m.monitorCancel = nil
	m.monitorDone = nil
}

func (m *Manager) runMonitor(ctx context.Context, done chan struct{}) {
	defer close(done)

	// Evaluate immediately on activation so a stale restored session is
	// invalidated before the first tick.
	m.evaluateExpiry(ctx)

	ticker := time.NewTicker(m.cfg.Session.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.evaluateExpiry(ctx)
		}
	}
}

// evaluateExpiry performs one monitor pass: compute remaining lifetime,
// record the first entry into the warning window, and force logout at or
// past zero.
func (m *Manager) evaluateExpiry(ctx context.Context) {
	m.mu.Lock()
	if m.closed || m.state != StateAuthenticated || m.session == nil {
		m.mu.Unlock()
		return
	}
	remaining := m.remainingLocked()
	expired := remaining <= 0
	warnNow := !expired && remaining <= m.cfg.Session.WarningThreshold && !m.warned
	if warnNow {
		m.warned = true
	}
	sess := m.session
	m.mu.Unlock()

	if warnNow {
		m.metrics.Inc(MetricExpiryWarning)
		m.logger.Info("session expiring soon",
			"user_id", sess.ID,
			"remaining", remaining.Round(time.Second).String(),
		)
	}

	if expired {
		m.metrics.Inc(MetricSessionExpired)
		m.emitAudit(ctx, AuditSessionExpired, sess, false, nil)
		m.logger.Info("session expired, forcing logout", "user_id", sess.ID)
		_ = m.logout(ctx, true)
	}
}

// remainingLocked computes expiryTime - now for the current session.
// Caller holds mu and has checked that a session exists.
func (m *Manager) remainingLocked() time.Duration {
	expiry := m.session.LoginTime.Add(m.cfg.Session.Lifetime)
	return expiry.Sub(m.clock())
}

// ExpiryTime returns when the current session's window closes. ok is
// false when no session exists; the window is derived, never persisted.
func (m *Manager) ExpiryTime() (expiry time.Time, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated || m.session == nil {
		return time.Time{}, false
	}
	return m.session.LoginTime.Add(m.cfg.Session.Lifetime), true
}

// RemainingMinutes reports the session lifetime left, rounded to the
// nearest minute and clamped at zero. Returns 0 with no session.
func (m *Manager) RemainingMinutes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated || m.session == nil {
		return 0
	}
	remaining := m.remainingLocked()
	if remaining < 0 {
		return 0
	}
	return int(remaining.Round(time.Minute) / time.Minute)
}

// IsSessionExpiringSoon reports whether the remaining lifetime is within
// the warning threshold. This is the raw predicate; it ignores warning
// acknowledgement.
func (m *Manager) IsSessionExpiringSoon() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated || m.session == nil {
		return false
	}
	remaining := m.remainingLocked()
	return remaining > 0 && remaining <= m.cfg.Session.WarningThreshold
}

// ShouldShowExpiryWarning is the UI-facing predicate: true once the
// session enters the warning window, until the user dismisses the
// warning. Dismissal never affects forced logout at zero.
func (m *Manager) ShouldShowExpiryWarning() bool {
	m.mu.Lock()
	acked := m.warningAcked
	m.mu.Unlock()
	return !acked && m.IsSessionExpiringSoon()
}

// AcknowledgeExpiryWarning records that the user dismissed the expiry
// warning for the current session. Reset on login and extend.
func (m *Manager) AcknowledgeExpiryWarning() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warningAcked = true
}
