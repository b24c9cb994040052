// Package runtime wires the component registry, rate limiter, model and
// dispatch bridge into a cohesive execution environment.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/genesis-core/go-genesis/pkg/bridge"
	"github.com/genesis-core/go-genesis/pkg/component"
	"github.com/genesis-core/go-genesis/pkg/models"
	"github.com/genesis-core/go-genesis/pkg/ratelimit"
	"github.com/genesis-core/go-genesis/pkg/registry"
)

const (
	// DefaultRequestsPerWindow caps model submissions per rate window.
	DefaultRequestsPerWindow = 15
	// DefaultRateWindow is the span the request cap applies to.
	DefaultRateWindow = time.Minute
)

// ModelLoader constructs the language model instance used by the bridge.
type ModelLoader func(ctx context.Context) (models.ChatModel, error)

// Option configures runtime construction.
type Option func(*config)

type config struct {
	modelLoader    ModelLoader
	manifest       []component.Factory
	systemPrompt   string
	rateLimit      int
	rateWindow     time.Duration
	acquireTimeout time.Duration
	maxToolRounds  int
	retryAttempts  int
	retryBase      time.Duration
	retryMax       time.Duration
	logger         *slog.Logger
}

func defaultConfig() *config {
	return &config{
		rateLimit:  DefaultRequestsPerWindow,
		rateWindow: DefaultRateWindow,
		logger:     slog.Default(),
	}
}

func (c *config) validate() error {
	if c.modelLoader == nil {
		return errors.New("runtime requires a model loader")
	}
	return nil
}

// WithModelLoader sets the loader responsible for constructing the model.
func WithModelLoader(loader ModelLoader) Option {
	return func(c *config) {
		c.modelLoader = loader
	}
}

// WithComponents appends component factories to the registration manifest.
func WithComponents(factories ...component.Factory) Option {
	return func(c *config) {
		for _, factory := range factories {
			if factory == nil {
				continue
			}
			c.manifest = append(c.manifest, factory)
		}
	}
}

// WithSystemPrompt sets the system instruction delivered to the model.
func WithSystemPrompt(prompt string) Option {
	return func(c *config) {
		c.systemPrompt = strings.TrimSpace(prompt)
	}
}

// WithRateLimit overrides how many model submissions are admitted per window.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(c *config) {
		if limit > 0 {
			c.rateLimit = limit
		}
		if window > 0 {
			c.rateWindow = window
		}
	}
}

// WithAcquireTimeout bounds how long a submission may wait on the limiter.
// Zero means wait indefinitely.
func WithAcquireTimeout(d time.Duration) Option {
	return func(c *config) {
		c.acquireTimeout = d
	}
}

// WithMaxToolRounds overrides the per-turn tool round ceiling.
func WithMaxToolRounds(n int) Option {
	return func(c *config) {
		c.maxToolRounds = n
	}
}

// WithRetryPolicy overrides the transient-failure retry policy for model
// calls.
func WithRetryPolicy(attempts int, base, max time.Duration) Option {
	return func(c *config) {
		c.retryAttempts = attempts
		c.retryBase = base
		c.retryMax = max
	}
}

// WithLogger sets the structured logger shared by the runtime's parts.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Runtime owns the registry, the rate limiter, the model and the bridge.
type Runtime struct {
	registry *registry.Registry
	limiter  *ratelimit.Limiter
	model    models.ChatModel
	bridge   *bridge.Bridge
	logger   *slog.Logger

	sessions *sessionManager
}

// New builds a runtime: it discovers the manifest's components, loads the
// model and assembles the dispatch bridge. Component failures are isolated
// during discovery; a failing model loader aborts construction.
func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	reg := registry.New(cfg.logger)
	descs := reg.Discover(ctx, cfg.manifest)
	cfg.logger.Info("components registered", "count", len(descs))

	model, err := cfg.modelLoader(ctx)
	if err != nil {
		teardownErr := reg.Teardown(ctx)
		return nil, errors.Join(fmt.Errorf("load model: %w", err), teardownErr)
	}

	limiter := ratelimit.New(cfg.rateLimit, cfg.rateWindow)

	bridgeOpts := []bridge.Option{
		bridge.WithRateLimiter(limiter),
		bridge.WithLogger(cfg.logger),
	}
	if cfg.acquireTimeout > 0 {
		bridgeOpts = append(bridgeOpts, bridge.WithAcquireTimeout(cfg.acquireTimeout))
	}
	if cfg.maxToolRounds > 0 {
		bridgeOpts = append(bridgeOpts, bridge.WithMaxRounds(cfg.maxToolRounds))
	}
	if cfg.retryAttempts > 0 || cfg.retryBase > 0 || cfg.retryMax > 0 {
		bridgeOpts = append(bridgeOpts, bridge.WithRetry(cfg.retryAttempts, cfg.retryBase, cfg.retryMax))
	}

	br, err := bridge.New(reg, model, bridgeOpts...)
	if err != nil {
		teardownErr := reg.Teardown(ctx)
		return nil, errors.Join(err, teardownErr)
	}

	rt := &Runtime{
		registry: reg,
		limiter:  limiter,
		model:    model,
		bridge:   br,
		logger:   cfg.logger,
	}
	rt.sessions = newSessionManager(rt)
	return rt, nil
}

// Registry exposes the component registry.
func (rt *Runtime) Registry() *registry.Registry {
	return rt.registry
}

// Descriptors lists the registered components in registration order.
func (rt *Runtime) Descriptors() []component.Descriptor {
	return rt.registry.Descriptors()
}

// NewSession provisions an interactive session. If id is empty a unique
// identifier is generated.
func (rt *Runtime) NewSession(id string) *Session {
	return rt.sessions.newSession(id)
}

// GetSession retrieves an active session by its ID.
func (rt *Runtime) GetSession(id string) (*Session, error) {
	return rt.sessions.getSession(strings.TrimSpace(id))
}

// RemoveSession removes a session from the active sessions map.
func (rt *Runtime) RemoveSession(id string) {
	rt.sessions.removeSession(strings.TrimSpace(id))
}

// ActiveSessions returns the sorted IDs of all active sessions.
func (rt *Runtime) ActiveSessions() []string {
	return rt.sessions.activeIDs()
}

// Generate runs one user turn in the named session. An unknown session ID is
// provisioned on first use.
func (rt *Runtime) Generate(ctx context.Context, sessionID, userInput string) (string, error) {
	session, err := rt.GetSession(sessionID)
	if err != nil {
		session = rt.NewSession(sessionID)
	}
	return rt.bridge.Generate(ctx, session.conversation, userInput)
}

// Shutdown terminates every registered component and releases the model
// client. It continues past individual failures and reports them joined.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	err := rt.registry.Teardown(ctx)
	if closer, ok := rt.model.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}
