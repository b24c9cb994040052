package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/genesis-core/go-genesis/pkg/component"
	"github.com/genesis-core/go-genesis/pkg/components"
	"github.com/genesis-core/go-genesis/pkg/models"
)

func scriptedLoader(model *models.ScriptedLLM) ModelLoader {
	return func(context.Context) (models.ChatModel, error) {
		return model, nil
	}
}

func TestNewRequiresModelLoader(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected construction without a model loader to fail")
	}
}

func TestNewFailingModelLoaderTearsDownComponents(t *testing.T) {
	boom := errors.New("no credentials")
	_, err := New(context.Background(),
		WithComponents(components.Manifest(components.Config{WorkspaceRoot: t.TempDir()})...),
		WithModelLoader(func(context.Context) (models.ChatModel, error) {
			return nil, boom
		}),
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	model := models.NewScriptedLLM().
		Reply(models.Reply{Calls: []models.ToolCall{{Name: "calculator", Args: map[string]any{"expression": "6 * 7"}}}}).
		Reply(models.Reply{Text: "The answer is 42."})

	rt, err := New(context.Background(),
		WithComponents(components.Manifest(components.Config{WorkspaceRoot: t.TempDir()})...),
		WithModelLoader(scriptedLoader(model)),
		WithRateLimit(100, time.Second),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	defer rt.Shutdown(context.Background())

	got, err := rt.Generate(context.Background(), "tester", "what is 6 times 7?")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "The answer is 42." {
		t.Fatalf("unexpected reply: %q", got)
	}

	// The tool round must be visible in the session transcript.
	session, err := rt.GetSession("tester")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	history := session.History()
	if len(history) != 4 {
		t.Fatalf("expected 4 messages (user, model, tool, model), got %d", len(history))
	}
	if history[2].Role != models.RoleTool || history[2].Results[0].Content != "42" {
		t.Fatalf("unexpected tool message: %+v", history[2])
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	model := models.NewScriptedLLM().
		Reply(models.Reply{Text: "hello alice"}).
		Reply(models.Reply{Text: "hello bob"})

	rt, err := New(context.Background(), WithModelLoader(scriptedLoader(model)))
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	defer rt.Shutdown(context.Background())

	if _, err := rt.Generate(context.Background(), "alice", "hi"); err != nil {
		t.Fatalf("alice: %v", err)
	}
	if _, err := rt.Generate(context.Background(), "bob", "hi"); err != nil {
		t.Fatalf("bob: %v", err)
	}

	ids := rt.ActiveSessions()
	if len(ids) != 2 || ids[0] != "alice" || ids[1] != "bob" {
		t.Fatalf("unexpected sessions: %v", ids)
	}

	alice, _ := rt.GetSession("alice")
	if len(alice.History()) != 2 {
		t.Fatalf("alice history polluted: %+v", alice.History())
	}
}

func TestNewSessionGeneratesID(t *testing.T) {
	model := models.NewScriptedLLM()
	rt, err := New(context.Background(), WithModelLoader(scriptedLoader(model)))
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	defer rt.Shutdown(context.Background())

	session := rt.NewSession("")
	if session.ID() == "" {
		t.Fatal("expected a generated session ID")
	}
	if _, err := rt.GetSession(session.ID()); err != nil {
		t.Fatalf("generated session should be retrievable: %v", err)
	}

	rt.RemoveSession(session.ID())
	if _, err := rt.GetSession(session.ID()); err == nil {
		t.Fatal("removed session should not be retrievable")
	}
}

func TestDescriptorsExposeManifestOrder(t *testing.T) {
	model := models.NewScriptedLLM()
	rt, err := New(context.Background(),
		WithComponents(components.Manifest(components.Config{WorkspaceRoot: t.TempDir()})...),
		WithModelLoader(scriptedLoader(model)),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	defer rt.Shutdown(context.Background())

	descs := rt.Descriptors()
	if len(descs) == 0 || descs[0].Name != "clock" {
		t.Fatalf("unexpected descriptors: %+v", descs)
	}
	var _ component.Descriptor = descs[0]
}

func TestShutdownIsIdempotent(t *testing.T) {
	model := models.NewScriptedLLM()
	rt, err := New(context.Background(),
		WithComponents(components.Manifest(components.Config{WorkspaceRoot: t.TempDir()})...),
		WithModelLoader(scriptedLoader(model)),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}

	if err := rt.Shutdown(context.Background()); err != nil {
		t.Fatalf("first shutdown: %v", err)
	}
	if err := rt.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}
