package components

import (
	"log/slog"
	"time"

	"github.com/genesis-core/go-genesis/pkg/component"
)

// Config carries the settings shared by the built-in components.
type Config struct {
	// WorkspaceRoot confines the file tools. Empty means unrestricted.
	WorkspaceRoot string

	// KnowledgePath persists the knowledge base across runs. Empty keeps
	// it in memory only.
	KnowledgePath     string
	KnowledgeCapacity int
	KnowledgeTTL      time.Duration

	ShellTimeout time.Duration

	Logger *slog.Logger
}

// Manifest returns the factories for every built-in component. The runtime
// registers exactly what this list names.
func Manifest(cfg Config) []component.Factory {
	return []component.Factory{
		func() component.Component { return NewClock() },
		func() component.Component { return NewCalculator() },
		func() component.Component { return NewWeather() },
		func() component.Component { return NewActivityLog(cfg.Logger) },
		func() component.Component { return NewFileReader(cfg.WorkspaceRoot) },
		func() component.Component { return NewFileWriter(cfg.WorkspaceRoot) },
		func() component.Component { return NewExplorer(cfg.WorkspaceRoot) },
		func() component.Component {
			return NewKnowledge(cfg.KnowledgeCapacity, cfg.KnowledgeTTL, cfg.KnowledgePath)
		},
		func() component.Component { return NewShell(cfg.WorkspaceRoot, cfg.ShellTimeout) },
	}
}
