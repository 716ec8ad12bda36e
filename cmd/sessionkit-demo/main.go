// Command sessionkit-demo exercises the full session lifecycle against a
// CampusPulse Auth API: fetch the demo credentials, log in, print the
// routing decision and expiry window, then log out.
//
// With no -base-url (and no SESSIONKIT_BASE_URL), it starts an embedded
// stub Auth API so the demo runs self-contained:
//
//	go run ./cmd/sessionkit-demo
//	go run ./cmd/sessionkit-demo -base-url https://auth.campuspulse.example/api -account admin
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	sessionkit "github.com/campuspulse/sessionkit"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a sessionkit TOML config file")
		baseURL    = flag.String("base-url", "", "Auth API base URL; overrides config and SESSIONKIT_BASE_URL")
		account    = flag.String("account", "instructor", "demo account to use: instructor or admin")
		storageDir = flag.String("storage-dir", "", "persist the session under this directory instead of memory")
		audit      = flag.Bool("audit", false, "print audit events as JSON lines on stderr")
	)
	flag.Parse()

	if *account != "instructor" && *account != "admin" {
		fmt.Fprintln(os.Stderr, "account must be instructor or admin")
		os.Exit(2)
	}

	cfg, err := sessionkit.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}
	if *storageDir != "" {
		cfg.Storage.Backend = "file"
		cfg.Storage.Dir = *storageDir
	}

	var cleanup func()
	if cfg.Client.BaseURL == "" {
		addr, stop, err := startStubAuthAPI()
		if err != nil {
			fmt.Fprintf(os.Stderr, "stub auth api: %v\n", err)
			os.Exit(1)
		}
		cleanup = stop
		cfg.Client.BaseURL = "http://" + addr
		fmt.Printf("using embedded stub auth api at %s\n", cfg.Client.BaseURL)
	}
	if cleanup != nil {
		defer cleanup()
	}

	if *audit {
		cfg.Audit.Enabled = true
	}
	builder := sessionkit.New().
		WithConfig(cfg).
		WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if *audit {
		builder = builder.WithAuditSink(sessionkit.NewJSONWriterSink(os.Stderr))
	}

	m, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	ctx := context.Background()

	if snap := m.Snapshot(); snap.IsAuthenticated() {
		fmt.Printf("restored session for %s (%s)\n", snap.Session.Email, snap.Session.Role)
	}

	creds, err := m.TestCredentials(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "test credentials: %v\n", err)
		os.Exit(1)
	}
	pair := creds.SampleInstructor
	if *account == "admin" {
		pair = creds.SampleAdmin
	}

	fmt.Printf("logging in as %s...\n", pair.Email)
	sess, err := m.Login(ctx, pair.Email, pair.Password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("authenticated: %s role=%s\n", sess.Email, sess.Role)
	fmt.Printf("route: %s\n", sessionkit.RouteSnapshot(m.Snapshot()))
	if expiry, ok := m.ExpiryTime(); ok {
		fmt.Printf("session window closes %s (%d minutes remaining)\n",
			expiry.Format(time.RFC3339), m.RemainingMinutes())
	}

	if _, err := m.RefreshUser(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "refresh: %v\n", err)
	} else {
		fmt.Println("refreshed user from server")
	}

	if err := m.Logout(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logout: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("logged out; route: %s\n", sessionkit.RouteSnapshot(m.Snapshot()))
}

// startStubAuthAPI serves just enough of the Auth API contract for the
// demo: fixed demo accounts, bearer-token refresh, logout.
func startStubAuthAPI() (addr string, stop func(), err error) {
	accounts := map[string]struct {
		password string
		name     string
		role     string
	}{
		"instructor@example.com": {"password123", "Ivy Instructor", "instructor"},
		"admin@example.com":      {"password123", "Ada Admin", "admin"},
	}
	tokens := map[string]string{}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		acct, ok := accounts[req.Email]
		if !ok || acct.password != req.Password {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid email or password"})
			return
		}
		token := "demo-token-" + req.Email
		tokens[token] = req.Email
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": token,
			"user": map[string]any{
				"id":    1,
				"email": req.Email,
				"name":  acct.name,
				"role":  acct.role,
			},
		})
	})

	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(token) > len(prefix) {
			token = token[len(prefix):]
		}
		email, ok := tokens[token]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
			return
		}
		acct := accounts[email]
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    1,
			"email": email,
			"name":  acct.name,
			"role":  acct.role,
		})
	})

	mux.HandleFunc("GET /test-credentials", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sample_instructor": map[string]string{"email": "instructor@example.com", "password": "password123"},
			"sample_admin":      map[string]string{"email": "admin@example.com", "password": "password123"},
		})
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()

	return ln.Addr().String(), func() { _ = srv.Close() }, nil
}
