/*
Package main is the entry point of the GraphQL explorer CLI.

Usage:

	explorer [command]

Available Commands:

	explore       Chat with the GraphQL APIs you discover
	chat          Chat with the model, with optional image analysis
	discover      Introspect and summarize one endpoint
	serve         Serve the explorer over HTTP
	mock-graphql  Run a local countries GraphQL endpoint
*/
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccastromar/aos-graphql-explorer/internal/app"
	"github.com/ccastromar/aos-graphql-explorer/internal/repl"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

// application is what the commands need from internal/app.
type application interface {
	Run(ctx context.Context) error
	Explore(ctx context.Context, r repl.LineReader, out io.Writer) error
	Chat(ctx context.Context, r repl.LineReader, out io.Writer) error
	Discover(ctx context.Context, url string, out io.Writer) error
}

// appCtor is a constructor indirection to enable testing without launching the real app.
var appCtor = func() (application, error) { return app.New() }

// fatalf indirection allows testing fatal paths without exiting the test process.
var fatalf = log.Fatalf

// run starts the HTTP surface and blocks until ctx is done.
func run(ctx context.Context) {
	a, err := appCtor()
	if err != nil {
		fatalf("error initializing app: %v", err)
		return
	}
	if err := a.Run(ctx); err != nil {
		fatalf("error running app: %v", err)
		return
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "explorer",
		Short: "Explore GraphQL APIs in plain language",
		Long: `explorer introspects GraphQL endpoints, summarizes what they offer with a
language model and answers questions by drafting and running read-only
queries against the most relevant one.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newExploreCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newDiscoverCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newMockGraphQLCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
