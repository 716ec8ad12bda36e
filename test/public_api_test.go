package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sessionkit "github.com/campuspulse/sessionkit"
)

// authServer is a minimal stand-in for the CampusPulse Auth API.
type authServer struct {
	*httptest.Server

	mu          sync.Mutex
	validTokens map[string]bool
	logoutCalls int
}

func newAuthServer(t *testing.T) *authServer {
	t.Helper()

	s := &authServer{validTokens: make(map[string]bool)}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid email or password"})
			return
		}

		role := "instructor"
		if req.Email == "admin@example.com" {
			role = "admin"
		}
		token := "token-" + req.Email

		s.mu.Lock()
		s.validTokens[token] = true
		s.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": token,
			"user": map[string]any{
				"id":    1,
				"email": req.Email,
				"name":  "Test User",
				"role":  role,
			},
		})
	})

	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.logoutCalls++
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		s.mu.Lock()
		ok := s.validTokens[trimBearer(token)]
		s.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    1,
			"email": "admin@example.com",
			"name":  "Test User",
			"role":  "admin",
		})
	})

	mux.HandleFunc("GET /test-credentials", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sample_instructor": map[string]string{"email": "instructor@example.com", "password": "password123"},
			"sample_admin":      map[string]string{"email": "admin@example.com", "password": "password123"},
		})
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func trimBearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return header
}

func buildManager(t *testing.T, baseURL, storageDir string) *sessionkit.Manager {
	t.Helper()

	cfg := sessionkit.DefaultConfig()
	cfg.Client.BaseURL = baseURL
	cfg.Storage.Backend = "file"
	cfg.Storage.Dir = storageDir

	m, err := sessionkit.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestFullLifecycleOverHTTP(t *testing.T) {
	srv := newAuthServer(t)
	dir := t.TempDir()

	m := buildManager(t, srv.URL, dir)
	ctx := context.Background()

	if got := sessionkit.RouteSnapshot(m.Snapshot()); got != sessionkit.RouteLogin {
		t.Fatalf("signed-out route = %s, want %s", got, sessionkit.RouteLogin)
	}

	sess, err := m.Login(ctx, "admin@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if sess.Role != sessionkit.RoleAdmin {
		t.Fatalf("role = %s, want admin", sess.Role)
	}
	if got := sessionkit.RouteSnapshot(m.Snapshot()); got != sessionkit.RouteAdminDashboard {
		t.Fatalf("route = %s, want %s", got, sessionkit.RouteAdminDashboard)
	}

	// A second manager over the same storage directory restores the
	// session without contacting the server, the way an app restart does.
	restarted := buildManager(t, srv.URL, dir)
	snap := restarted.Snapshot()
	if !snap.IsAuthenticated() {
		t.Fatal("expected restored session after restart")
	}
	if snap.Session.Email != "admin@example.com" || snap.Session.Token != sess.Token {
		t.Fatalf("restored session mismatch: %+v", snap.Session)
	}

	if _, err := restarted.RefreshUser(ctx); err != nil {
		t.Fatalf("RefreshUser after restore failed: %v", err)
	}

	if err := restarted.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if got := sessionkit.RouteSnapshot(restarted.Snapshot()); got != sessionkit.RouteLogin {
		t.Fatalf("post-logout route = %s, want %s", got, sessionkit.RouteLogin)
	}

	// Nothing left to restore.
	third := buildManager(t, srv.URL, dir)
	if third.IsAuthenticated() {
		t.Fatal("expected no session after logout cleared the store")
	}
}

func TestLoginWithDemoCredentials(t *testing.T) {
	srv := newAuthServer(t)
	m := buildManager(t, srv.URL, t.TempDir())
	ctx := context.Background()

	creds, err := m.TestCredentials(ctx)
	if err != nil {
		t.Fatalf("TestCredentials failed: %v", err)
	}

	sess, err := m.Login(ctx, creds.SampleInstructor.Email, creds.SampleInstructor.Password)
	if err != nil {
		t.Fatalf("Login with demo credentials failed: %v", err)
	}
	if sess.Role != sessionkit.RoleInstructor {
		t.Fatalf("role = %s, want instructor", sess.Role)
	}
	if got := sessionkit.RouteSnapshot(m.Snapshot()); got != sessionkit.RouteDashboard {
		t.Fatalf("route = %s, want %s", got, sessionkit.RouteDashboard)
	}
}

func TestInvalidCredentialsOverHTTP(t *testing.T) {
	srv := newAuthServer(t)
	m := buildManager(t, srv.URL, t.TempDir())

	_, err := m.Login(context.Background(), "admin@example.com", "wrong")
	if err == nil {
		t.Fatal("expected login rejection")
	}
	if m.IsAuthenticated() {
		t.Fatal("expected unauthenticated after rejection")
	}
}

func TestExpiryWindowAccessors(t *testing.T) {
	srv := newAuthServer(t)
	m := buildManager(t, srv.URL, t.TempDir())
	ctx := context.Background()

	before := time.Now()
	if _, err := m.Login(ctx, "admin@example.com", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	expiry, ok := m.ExpiryTime()
	if !ok {
		t.Fatal("expected expiry time for live session")
	}
	if expiry.Before(before.Add(23 * time.Hour)) {
		t.Fatalf("expiry %v implausibly early", expiry)
	}
	if m.IsSessionExpiringSoon() {
		t.Fatal("fresh session must not be expiring soon")
	}
	if got := m.RemainingMinutes(); got < 23*60 {
		t.Fatalf("remaining minutes = %d, want close to a full day", got)
	}
}
