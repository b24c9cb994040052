package components

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/genesis-core/go-genesis/pkg/component"
)

// ActivityLog lets the model record notable events. Entries are kept in
// memory for the session and mirrored to the structured logger.
type ActivityLog struct {
	mu      sync.Mutex
	logger  *slog.Logger
	entries []string
}

func NewActivityLog(logger *slog.Logger) component.Component {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityLog{logger: logger}
}

func (a *ActivityLog) Descriptor() component.Descriptor {
	return component.Descriptor{
		Name:        "log_activity",
		Description: "Logs a message with a specified level.",
		Params: []component.Param{
			{
				Name:        "message",
				Type:        component.TypeString,
				Description: "The message string to log.",
				Required:    true,
			},
			{
				Name:        "level",
				Type:        component.TypeString,
				Description: "The logging level, e.g. INFO, WARNING or ERROR. Defaults to INFO.",
			},
		},
	}
}

func (a *ActivityLog) Init(context.Context) error { return nil }

func (a *ActivityLog) Shutdown(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logger.Info("activity log closing", "entries", len(a.entries))
	a.entries = nil
	return nil
}

func (a *ActivityLog) Invoke(_ context.Context, args map[string]any) (component.Result, error) {
	message := fmt.Sprint(args["message"])
	level := "INFO"
	if raw, ok := args["level"]; ok {
		if l := strings.ToUpper(strings.TrimSpace(fmt.Sprint(raw))); l != "" {
			level = l
		}
	}

	entry := fmt.Sprintf("[%s] %s", level, message)
	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()

	switch level {
	case "ERROR":
		a.logger.Error(message, "source", "log_activity")
	case "WARNING", "WARN":
		a.logger.Warn(message, "source", "log_activity")
	default:
		a.logger.Info(message, "source", "log_activity")
	}
	return component.Result{Content: "Successfully logged: " + entry}, nil
}

// Entries returns a copy of the recorded entries.
func (a *ActivityLog) Entries() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	copy(out, a.entries)
	return out
}
