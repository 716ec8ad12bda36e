package sessionkit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/campuspulse/sessionkit/authapi"
	"github.com/campuspulse/sessionkit/credstore"
	internalaudit "github.com/campuspulse/sessionkit/internal/audit"
)

// Builder assembles a [Manager]. Construction is allocation-only until
// Build, which validates the configuration, wires defaults for anything
// not injected, and performs the optimistic startup restore.
type Builder struct {
	config Config

	client    authapi.Client
	store     credstore.Store
	logger    *slog.Logger
	auditSink AuditSink
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithAuthClient injects the Auth API client. When omitted, Build
// constructs an [authapi.HTTPClient] from Config.Client.
func (b *Builder) WithAuthClient(client authapi.Client) *Builder {
	b.client = client
	return b
}

// WithCredentialStore injects the credential store. When omitted, Build
// constructs the store named by Config.Storage.Backend.
func (b *Builder) WithCredentialStore(store credstore.Store) *Builder {
	b.store = store
	return b
}

// WithLogger sets the operational logger. Defaults to [slog.Default].
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithAuditSink sets the destination for session lifecycle audit events.
// Events are only dispatched when Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the time source. Used by tests to drive the expiry
// window deterministically.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	if clock != nil {
		b.clock = clock
	}
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the login latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, constructs the Manager, and restores
// any persisted session. A Builder can be used once.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, ErrBuilderReused
	}
	b.built = true

	cfg := cloneConfig(b.config)
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := b.client
	if client == nil {
		if cfg.Client.BaseURL == "" {
			return nil, ErrNoAuthClient
		}
		httpClient, err := authapi.NewHTTPClient(authapi.Options{
			BaseURL:   cfg.Client.BaseURL,
			Timeout:   cfg.Client.Timeout,
			UserAgent: cfg.Client.UserAgent,
		})
		if err != nil {
			return nil, err
		}
		client = httpClient
	}

	store := b.store
	if store == nil {
		var err error
		store, err = defaultStore(cfg.Storage)
		if err != nil {
			return nil, err
		}
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	m := &Manager{
		cfg:        cfg,
		store:      store,
		client:     client,
		logger:     logger,
		clock:      clock,
		metrics:    NewMetrics(cfg.Metrics),
		instanceID: uuid.NewString(),
		state:      StateUnauthenticated,
		subs:       make(map[uint64]func(Snapshot)),
	}
	m.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	m.restore(context.Background())

	return m, nil
}

func defaultStore(cfg StorageConfig) (credstore.Store, error) {
	switch cfg.Backend {
	case "file":
		dir := cfg.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolve home directory: %w", err)
			}
			dir = filepath.Join(home, ".campuspulse")
		}
		return credstore.NewFile(dir)
	default:
		return credstore.NewMemory(), nil
	}
}
