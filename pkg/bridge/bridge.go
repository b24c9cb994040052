// Package bridge drives the conversation loop between the language model and
// the component registry: it submits history, executes the tool calls the
// model issues, and feeds the results back until the model produces a final
// answer.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/genesis-core/go-genesis/pkg/models"
	"github.com/genesis-core/go-genesis/pkg/ratelimit"
	"github.com/genesis-core/go-genesis/pkg/registry"
	"github.com/genesis-core/go-genesis/pkg/schema"
)

const (
	// DefaultMaxRounds bounds how many tool rounds one turn may take.
	DefaultMaxRounds = 4

	defaultRetryAttempts = 3
	defaultRetryBase     = time.Second
	defaultRetryMax      = 30 * time.Second
)

// dispatchState tracks where a turn is in the send/execute loop.
type dispatchState int

const (
	stateSending dispatchState = iota
	stateExecuting
	stateDone
)

// Bridge dispatches user turns to the model and tool calls to the registry.
type Bridge struct {
	registry *registry.Registry
	model    models.ChatModel
	toolset  []*genai.Tool
	logger   *slog.Logger

	limiter        *ratelimit.Limiter
	acquireTimeout time.Duration

	maxRounds     int
	retryAttempts int
	retryBase     time.Duration
	retryMax      time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithRateLimiter gates every model submission through l.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(b *Bridge) { b.limiter = l }
}

// WithAcquireTimeout bounds how long a submission may wait on the rate
// limiter before failing with ratelimit.ErrWaitTimeout.
func WithAcquireTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.acquireTimeout = d }
}

// WithMaxRounds overrides the tool-round ceiling per turn.
func WithMaxRounds(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.maxRounds = n
		}
	}
}

// WithRetry overrides the transient-failure retry policy.
func WithRetry(attempts int, base, max time.Duration) Option {
	return func(b *Bridge) {
		if attempts > 0 {
			b.retryAttempts = attempts
		}
		if base > 0 {
			b.retryBase = base
		}
		if max > 0 {
			b.retryMax = max
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New builds a Bridge over the given registry and model. The advertised
// toolset is fixed at construction from the registry's descriptors.
func New(reg *registry.Registry, model models.ChatModel, opts ...Option) (*Bridge, error) {
	if reg == nil {
		return nil, errors.New("bridge: nil registry")
	}
	if model == nil {
		return nil, errors.New("bridge: nil model")
	}

	b := &Bridge{
		registry:      reg,
		model:         model,
		logger:        slog.Default(),
		maxRounds:     DefaultMaxRounds,
		retryAttempts: defaultRetryAttempts,
		retryBase:     defaultRetryBase,
		retryMax:      defaultRetryMax,
		sleep:         sleepCtx,
	}
	for _, opt := range opts {
		opt(b)
	}

	toolset, err := schema.Toolset(reg.Descriptors())
	if err != nil {
		return nil, fmt.Errorf("bridge: build toolset: %w", err)
	}
	b.toolset = toolset
	return b, nil
}

// Generate runs one user turn to completion: it appends the user message,
// loops through model submissions and tool rounds, and returns the model's
// final text. On any failure the conversation is rolled back to its state
// before the turn, so the caller can retry cleanly.
func (b *Bridge) Generate(ctx context.Context, conv *Conversation, text string) (string, error) {
	if conv == nil {
		return "", errors.New("bridge: nil conversation")
	}

	mark := conv.Len()
	conv.append(models.Message{Role: models.RoleUser, Text: text})

	var reply models.Reply
	rounds := 0
	state := stateSending

	for state != stateDone {
		switch state {
		case stateSending:
			r, err := b.send(ctx, conv.snapshot())
			if err != nil {
				conv.truncate(mark)
				return "", err
			}
			reply = r
			conv.append(models.Message{Role: models.RoleModel, Text: reply.Text, Calls: reply.Calls})
			if len(reply.Calls) == 0 {
				state = stateDone
			} else {
				state = stateExecuting
			}

		case stateExecuting:
			rounds++
			if rounds > b.maxRounds {
				conv.truncate(mark)
				return "", &ToolLoopError{Rounds: b.maxRounds}
			}
			results := b.execute(ctx, reply.Calls)
			conv.append(models.Message{Role: models.RoleTool, Results: results})
			state = stateSending
		}
	}
	return reply.Text, nil
}

// send submits the history, retrying transient provider failures with
// exponential backoff. Rate-limit waiting counts against every attempt.
func (b *Bridge) send(ctx context.Context, history []models.Message) (models.Reply, error) {
	var lastErr error
	for attempt := 0; attempt < b.retryAttempts; attempt++ {
		if attempt > 0 {
			wait := b.backoff(attempt - 1)
			b.logger.Warn("retrying model call", "attempt", attempt+1, "wait", wait, "error", lastErr)
			if err := b.sleep(ctx, wait); err != nil {
				return models.Reply{}, err
			}
		}
		if err := b.acquire(ctx); err != nil {
			return models.Reply{}, err
		}
		reply, err := b.model.Chat(ctx, history, b.toolset)
		if err == nil {
			return reply, nil
		}
		if !transient(err) {
			return models.Reply{}, err
		}
		lastErr = err
	}
	return models.Reply{}, &ModelUnavailableError{Attempts: b.retryAttempts, Err: lastErr}
}

func (b *Bridge) acquire(ctx context.Context) error {
	if b.limiter == nil {
		return nil
	}
	if b.acquireTimeout > 0 {
		return b.limiter.AcquireWithin(ctx, b.acquireTimeout)
	}
	return b.limiter.Acquire(ctx)
}

// execute runs the model's tool calls in request order. Lookup and component
// failures become error-flagged results rather than aborting the turn.
func (b *Bridge) execute(ctx context.Context, calls []models.ToolCall) []models.ToolResult {
	results := make([]models.ToolResult, 0, len(calls))
	for _, call := range calls {
		managed, err := b.registry.Lookup(call.Name)
		if err != nil {
			b.logger.Warn("model requested unknown tool", "tool", call.Name)
			results = append(results, models.ToolResult{
				Name:    call.Name,
				Content: fmt.Sprintf("unknown tool %q", call.Name),
				IsError: true,
			})
			continue
		}
		res, err := managed.Invoke(ctx, call.Args)
		if err != nil {
			b.logger.Warn("tool call failed", "tool", call.Name, "error", err)
			results = append(results, models.ToolResult{Name: call.Name, Content: err.Error(), IsError: true})
			continue
		}
		results = append(results, models.ToolResult{Name: call.Name, Content: res.Content})
	}
	return results
}

func (b *Bridge) backoff(attempt int) time.Duration {
	wait := b.retryBase * (1 << attempt)
	if wait > b.retryMax {
		return b.retryMax
	}
	return wait
}

// transient reports whether a provider error is worth retrying. Context
// cancellation never is.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
