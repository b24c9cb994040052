// Command genesis runs an interactive chat session against the Gemini API
// with the built-in component toolset. Configuration comes from flags and the
// environment; a .env file in the working directory is honored.
//
// Examples:
//
//	export GEMINI_API_KEY=...
//	go run ./cmd/genesis
//
//	go run ./cmd/genesis -model gemini-2.5-pro -workspace ./sandbox
//
//	go run ./cmd/genesis -mcp "npx -y @modelcontextprotocol/server-filesystem ."
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/genesis-core/go-genesis/pkg/component"
	"github.com/genesis-core/go-genesis/pkg/components"
	"github.com/genesis-core/go-genesis/pkg/mcp"
	"github.com/genesis-core/go-genesis/pkg/models"
	"github.com/genesis-core/go-genesis/pkg/runtime"
)

var (
	flagModel     = flag.String("model", "gemini-2.0-flash", "Gemini model ID")
	flagSystem    = flag.String("system", "You are Genesis, a helpful assistant with access to tools.", "System prompt")
	flagSession   = flag.String("session", "default", "Session ID for conversation continuity")
	flagWorkspace = flag.String("workspace", ".", "Directory the file tools are confined to")
	flagKnowledge = flag.String("knowledge", "", "Path for persisting the knowledge base (empty keeps it in memory)")
	flagRPM       = flag.Int("rpm", 0, "Model requests per window (overrides GENESIS_RPM)")
	flagWindow    = flag.Duration("window", runtime.DefaultRateWindow, "Rate limit window")
	flagMaxRounds = flag.Int("max-rounds", 0, "Tool rounds per turn (overrides GENESIS_MAX_TOOL_ROUNDS)")
	flagMaxWait   = flag.Duration("max-wait", 0, "Give up on a rate-limited turn after this long (0 waits forever)")
	flagMCP       = flag.String("mcp", "", "Command line of an MCP server to attach over stdio")
	flagVerbose   = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	// Optional; missing .env files are fine.
	_ = godotenv.Load()

	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		log.Fatal("GEMINI_API_KEY (or GOOGLE_API_KEY) must be set")
	}

	level := slog.LevelInfo
	if *flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rpm := intFromEnv("GENESIS_RPM", runtime.DefaultRequestsPerWindow)
	if *flagRPM > 0 {
		rpm = *flagRPM
	}
	maxRounds := intFromEnv("GENESIS_MAX_TOOL_ROUNDS", 0)
	if *flagMaxRounds > 0 {
		maxRounds = *flagMaxRounds
	}

	manifest := components.Manifest(components.Config{
		WorkspaceRoot: *flagWorkspace,
		KnowledgePath: *flagKnowledge,
		Logger:        logger,
	})

	var mcpClient *mcp.Client
	if strings.TrimSpace(*flagMCP) != "" {
		fields := strings.Fields(*flagMCP)
		client, err := mcp.Spawn(ctx, mcp.StdioConfig{
			Command:    fields[0],
			Args:       fields[1:],
			ClientName: "genesis",
		})
		if err != nil {
			log.Fatalf("attach MCP server: %v", err)
		}
		mcpClient = client
		remote, err := mcp.Components(ctx, client)
		if err != nil {
			log.Fatalf("list MCP tools: %v", err)
		}
		logger.Info("MCP server attached", "server", client.Server().Name, "tools", len(remote))
		manifest = append(manifest, remote...)
	}

	opts := []runtime.Option{
		runtime.WithComponents(manifest...),
		runtime.WithModelLoader(func(ctx context.Context) (models.ChatModel, error) {
			return models.NewGeminiLLM(ctx, *flagModel, *flagSystem)
		}),
		runtime.WithRateLimit(rpm, *flagWindow),
		runtime.WithLogger(logger),
	}
	if maxRounds > 0 {
		opts = append(opts, runtime.WithMaxToolRounds(maxRounds))
	}
	if *flagMaxWait > 0 {
		opts = append(opts, runtime.WithAcquireTimeout(*flagMaxWait))
	}

	rt, err := runtime.New(ctx, opts...)
	if err != nil {
		log.Fatalf("start runtime: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rt.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
		if mcpClient != nil {
			_ = mcpClient.Close()
		}
	}()

	printBanner(rt.Descriptors())
	repl(ctx, rt, *flagSession)
}

func repl(ctx context.Context, rt *runtime.Runtime, sessionID string) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return
		}

		reply, err := rt.Generate(ctx, sessionID, input)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Printf("genesis> %s\n", reply)
	}
}

func printBanner(descs []component.Descriptor) {
	fmt.Println("--- Genesis ---")
	fmt.Printf("%d tools available:\n", len(descs))
	for _, desc := range descs {
		fmt.Printf("  %-14s %s\n", desc.Name, desc.Description)
	}
	fmt.Println("type 'exit' to leave")
}

func intFromEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		log.Fatalf("%s must be a positive integer, got %q", key, raw)
	}
	return value
}
