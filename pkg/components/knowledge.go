package components

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	json "github.com/alpkeskin/gotoon"

	"github.com/genesis-core/go-genesis/pkg/cache"
	"github.com/genesis-core/go-genesis/pkg/component"
)

// Knowledge is a key/value store the model can read and write across a
// session. When a persist path is configured, contents are loaded on init
// and flushed on shutdown.
type Knowledge struct {
	store       *cache.Store
	persistPath string
}

// NewKnowledge builds a knowledge base bounded to capacity entries with the
// given TTL. persistPath may be empty for a purely in-memory store.
func NewKnowledge(capacity int, ttl time.Duration, persistPath string) component.Component {
	return &Knowledge{
		store:       cache.NewStore(capacity, ttl),
		persistPath: persistPath,
	}
}

func (k *Knowledge) Descriptor() component.Descriptor {
	return component.Descriptor{
		Name:        "knowledge",
		Description: "Stores and retrieves facts. Actions: add, get, update, delete, list.",
		Params: []component.Param{
			{
				Name:        "action",
				Type:        component.TypeString,
				Description: "The action to perform: 'add', 'get', 'update', 'delete' or 'list'.",
				Required:    true,
			},
			{
				Name:        "key",
				Type:        component.TypeString,
				Description: "The key for accessing data. Required for 'add', 'get', 'update' and 'delete'.",
			},
			{
				Name:        "value",
				Type:        component.TypeString,
				Description: "The value to store. Required for 'add' and 'update'.",
			},
		},
	}
}

func (k *Knowledge) Init(context.Context) error {
	if k.persistPath == "" {
		return nil
	}
	raw, err := os.ReadFile(k.persistPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}
	var dump map[string]cache.Entry
	if err := json.Unmarshal(raw, &dump); err != nil {
		return fmt.Errorf("decode knowledge base: %w", err)
	}
	k.store.Restore(dump)
	return nil
}

func (k *Knowledge) Shutdown(context.Context) error {
	if k.persistPath == "" {
		return nil
	}
	raw, err := json.Marshal(k.store.Snapshot())
	if err != nil {
		return fmt.Errorf("encode knowledge base: %w", err)
	}
	if err := os.WriteFile(k.persistPath, raw, 0o644); err != nil {
		return fmt.Errorf("persist knowledge base: %w", err)
	}
	return nil
}

func (k *Knowledge) Invoke(_ context.Context, args map[string]any) (component.Result, error) {
	action := strings.ToLower(strings.TrimSpace(fmt.Sprint(args["action"])))
	key, _ := args["key"].(string)
	value, _ := args["value"].(string)

	switch action {
	case "add", "update":
		if key == "" || value == "" {
			return component.Result{}, fmt.Errorf("%q requires both 'key' and 'value'", action)
		}
		k.store.Set(key, value)
		return component.Result{Content: fmt.Sprintf("Stored %q", key)}, nil

	case "get":
		if key == "" {
			return component.Result{}, errors.New("'get' requires a 'key'")
		}
		stored, ok := k.store.Get(key)
		if !ok {
			return component.Result{Content: fmt.Sprintf("No entry for %q", key)}, nil
		}
		return component.Result{Content: stored}, nil

	case "delete":
		if key == "" {
			return component.Result{}, errors.New("'delete' requires a 'key'")
		}
		if !k.store.Delete(key) {
			return component.Result{Content: fmt.Sprintf("No entry for %q", key)}, nil
		}
		return component.Result{Content: fmt.Sprintf("Deleted %q", key)}, nil

	case "list":
		keys := k.store.Keys()
		if len(keys) == 0 {
			return component.Result{Content: "The knowledge base is empty."}, nil
		}
		return component.Result{
			Content:  strings.Join(keys, "\n"),
			Metadata: map[string]string{"count": fmt.Sprint(len(keys))},
		}, nil

	default:
		return component.Result{}, fmt.Errorf("invalid action %q: use 'add', 'get', 'update', 'delete' or 'list'", action)
	}
}
