// Command waitlist subscribes an address to the Party Games waitlist or
// prints the current subscribers.
//
// Usage:
//
//	waitlist [flags] subscribe <email>
//	waitlist [flags] list
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/partygames/waitlist/internal/client"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("waitlist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		baseURL = fs.String("url", envOr("WAITLIST_URL", "http://localhost:8080"), "Base URL of the waitlist service")
		token   = fs.String("token", os.Getenv("ADMIN_TOKEN"), "Bearer token for listing subscribers")
		format  = fs.String("format", "plain", "Output format for list: plain or json")
		timeout = fs.Duration("timeout", 10*time.Second, "Request timeout")
		verbose = fs.Bool("v", false, "Log analytics events to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	api := client.New(*baseURL, client.WithAdminToken(*token))

	switch fs.Arg(0) {
	case "subscribe":
		if fs.NArg() != 2 {
			fmt.Fprintln(stderr, "usage: waitlist subscribe <email>")
			return 2
		}
		return subscribe(ctx, api, fs.Arg(1), stdout, stderr, *verbose)
	case "list":
		return list(ctx, api, *format, stdout, stderr)
	default:
		fmt.Fprintln(stderr, "usage: waitlist [flags] subscribe <email> | list")
		fs.PrintDefaults()
		return 2
	}
}

func subscribe(ctx context.Context, api *client.API, email string, stdout, stderr io.Writer, verbose bool) int {
	opts := []client.FormOption{client.WithNotifier(client.WriterNotifier{W: stdout})}
	if verbose {
		logger := slog.New(slog.NewTextHandler(stderr, nil))
		opts = append(opts, client.WithTracker(client.LogTracker{Logger: logger}))
	}

	form := client.NewForm(api, opts...)
	defer form.Close()

	form.SetEmail(email)
	if err := form.Submit(ctx); err != nil {
		return 1
	}
	return 0
}

func list(ctx context.Context, api *client.API, format string, stdout, stderr io.Writer) int {
	result, err := api.List(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "list subscribers:", err)
		return 1
	}

	switch format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(stderr, "encode output:", err)
			return 1
		}
	default:
		for _, s := range result.Subscribers {
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", s.SubscribedAt.UTC().Format(time.RFC3339), s.ID, s.Email)
		}
		fmt.Fprintf(stdout, "%d subscriber(s)\n", result.Count)
	}
	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
