// Package cli wires configuration, storage and the pipeline behind the
// manager's commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"quotereel/manager-go/internal/config"
	"quotereel/manager-go/internal/credstore"
	"quotereel/manager-go/internal/history"
	"quotereel/manager-go/internal/queue"
	"quotereel/manager-go/internal/utils"
)

// AppContext carries the shared dependencies into command handlers. History
// and Queue stay nil unless configured.
type AppContext struct {
	Config  config.Config
	Creds   *credstore.Store
	History *history.Store
	Queue   *queue.Client
}

func Run(args []string) int {
	// Support a global --verbose flag anywhere in the argv (before or after
	// the command); the stdlib flag parser stops at the first non-flag.
	args, globalVerbose := extractGlobalVerbose(args)
	utils.ConfigureLogging(globalVerbose)

	if len(args) < 2 {
		printUsage()
		return 1
	}
	if args[1] == "-h" || args[1] == "--help" || args[1] == "help" {
		printUsage()
		return 0
	}

	// Local overrides; absence is fine.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}
	utils.Logf("manager: config loaded env=%s hostname=%s", cfg.AppEnv, cfg.Hostname)

	actx := AppContext{
		Config: cfg,
		Creds:  credstore.New(cfg.TokenFile),
	}

	if cfg.HistoryEnabled() {
		store, err := history.NewStore(ctx, cfg.DBConnString())
		if err != nil {
			fmt.Fprintf(os.Stderr, "db error: %v\n", err)
			return 1
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "db schema error: %v\n", err)
			return 1
		}
		actx.History = store
		utils.Logf("manager: upload history enabled")
	}

	if cfg.QueueEnabled() {
		queueClient, err := queue.New(cfg.RabbitMQURL())
		if err != nil {
			fmt.Fprintf(os.Stderr, "queue error: %v\n", err)
			return 1
		}
		defer queueClient.Close()
		actx.Queue = queueClient
	}

	cmd := args[1]
	cmdArgs := args[2:]
	utils.Logf("manager: cmd=%s args=%v", cmd, cmdArgs)

	var runErr error
	switch cmd {
	case "serve":
		runErr = runServe(ctx, actx, cmdArgs)
	case "job:UploadAll":
		runErr = runUploadAll(ctx, actx, cmdArgs)
	case "queue:RequestUpload":
		runErr = runRequestUpload(ctx, actx, cmdArgs)
	case "auth:List":
		runErr = runAuthList(ctx, actx, cmdArgs)
	case "history:Recent":
		runErr = runHistoryRecent(ctx, actx, cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		return 1
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		return 1
	}
	return 0
}

func extractGlobalVerbose(args []string) ([]string, bool) {
	filtered := make([]string, 0, len(args))
	verbose := false
	for _, arg := range args {
		if arg == "--verbose" || arg == "-verbose" {
			verbose = true
			continue
		}
		filtered = append(filtered, arg)
	}
	return filtered, verbose
}

func printUsage() {
	fmt.Println("Usage: manager <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  serve [--listen=ADDR] [--public-url=URL] [--verbose]")
	fmt.Println("  job:UploadAll [email] [--queue] [--sleep=N] [--verbose]")
	fmt.Println("  queue:RequestUpload <email|--all>")
	fmt.Println("  auth:List")
	fmt.Println("  history:Recent [--limit=N]")
}
