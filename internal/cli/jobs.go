package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"sort"
	"time"

	"quotereel/manager-go/internal/pipeline"
	"quotereel/manager-go/internal/queue"
	"quotereel/manager-go/internal/utils"
)

// uploadRequest is the queue message asking for a pipeline run. An empty
// account means "all stored accounts".
type uploadRequest struct {
	Account  string `json:"account"`
	Hostname string `json:"hostname"`
}

func runUploadAll(ctx context.Context, actx AppContext, args []string) error {
	fs := flag.NewFlagSet("job:UploadAll", flag.ContinueOnError)
	queueFlag := fs.Bool("queue", false, "Consume upload requests from the queue")
	queueOnce := fs.Bool("queue-once", false, "Stop when the queue is empty")
	sleep := fs.Int("sleep", 30, "Sleep time in seconds between empty queue polls")
	verbose := fs.Bool("verbose", utils.Verbose, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)

	orch := pipeline.New(actx.Config, actx.Creds)
	orch.History = actx.History

	if *queueFlag {
		return consumeUploadRequests(ctx, actx, orch, *sleep, *queueOnce)
	}

	if email := firstArg(fs.Args()); email != "" {
		outcome, err := orch.RunOne(ctx, email)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", email, outcome)
		return nil
	}

	results, err := orch.Run(ctx)
	if err != nil {
		return err
	}
	printResults(results)
	return nil
}

func consumeUploadRequests(ctx context.Context, actx AppContext, orch *pipeline.Orchestrator, sleep int, once bool) error {
	if actx.Queue == nil {
		return errors.New("queue is not configured (set rabbitmq.host)")
	}
	if sleep <= 0 {
		sleep = 30
	}

	for {
		msg, err := actx.Queue.Pop(queue.UploadRequests)
		if err != nil {
			return err
		}
		if msg == nil {
			utils.Debug("queue empty", "queue", queue.UploadRequests, "sleep_s", sleep)
			if once {
				return nil
			}
			time.Sleep(time.Duration(sleep) * time.Second)
			continue
		}

		var req uploadRequest
		if err := json.Unmarshal(msg.Body, &req); err != nil {
			utils.Warn("queue payload json decode failed", "queue", queue.UploadRequests, "err", err)
			_ = msg.Ack()
			continue
		}

		if req.Account == "" || req.Account == "*" {
			results, err := orch.Run(ctx)
			if err != nil {
				utils.Error("queue handler error", "queue", queue.UploadRequests, "err", err)
				_ = msg.Nack(true)
				continue
			}
			printResults(results)
		} else {
			outcome, err := orch.RunOne(ctx, req.Account)
			if err != nil {
				utils.Error("queue handler error", "queue", queue.UploadRequests, "account", req.Account, "err", err)
				_ = msg.Nack(true)
				continue
			}
			fmt.Printf("%s: %s\n", req.Account, outcome)
		}
		_ = msg.Ack()
	}
}

func runRequestUpload(ctx context.Context, actx AppContext, args []string) error {
	fs := flag.NewFlagSet("queue:RequestUpload", flag.ContinueOnError)
	all := fs.Bool("all", false, "Request a run for every stored account")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if actx.Queue == nil {
		return errors.New("queue is not configured (set rabbitmq.host)")
	}

	account := firstArg(fs.Args())
	if account == "" && !*all {
		return errors.New("pass an account email or --all")
	}
	if *all {
		account = ""
	}

	payload, _ := json.Marshal(uploadRequest{Account: account, Hostname: actx.Config.Hostname})
	return actx.Queue.Publish(ctx, queue.UploadRequests, payload)
}

func runAuthList(ctx context.Context, actx AppContext, args []string) error {
	bundles, err := actx.Creds.Load()
	if err != nil {
		return err
	}
	if len(bundles) == 0 {
		fmt.Println("no accounts authorized")
		return nil
	}

	emails := make([]string, 0, len(bundles))
	for email := range bundles {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	now := time.Now()
	for _, email := range emails {
		bundle := bundles[email]
		status := "valid"
		if err := bundle.Validate(); err != nil {
			status = "invalid"
		} else if bundle.Expired(now) {
			status = "expired"
		}
		expiry := "-"
		if !bundle.Expiry.IsZero() {
			expiry = bundle.Expiry.Format(time.RFC3339)
		}
		fmt.Printf("%s\t%s\texpiry=%s\n", email, status, expiry)
	}
	return nil
}

func runHistoryRecent(ctx context.Context, actx AppContext, args []string) error {
	fs := flag.NewFlagSet("history:Recent", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "Number of rows to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if actx.History == nil {
		return errors.New("upload history is not configured (set db.url)")
	}

	uploads, err := actx.History.ListRecent(ctx, *limit)
	if err != nil {
		return err
	}
	for _, u := range uploads {
		videoID := "-"
		if u.VideoID != nil {
			videoID = *u.VideoID
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", u.CreatedAt.Format(time.RFC3339), u.Account, videoID, u.Outcome)
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func printResults(results map[string]pipeline.Outcome) {
	emails := make([]string, 0, len(results))
	for email := range results {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	for _, email := range emails {
		fmt.Printf("%s: %s\n", email, results[email])
	}
}
