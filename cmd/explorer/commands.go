package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ccastromar/aos-graphql-explorer/internal/app"
	"github.com/ccastromar/aos-graphql-explorer/internal/logx"
	"github.com/ccastromar/aos-graphql-explorer/internal/mocks/countries"
	"github.com/ccastromar/aos-graphql-explorer/internal/repl"
)

var listenAndServe = http.ListenAndServe

// lineReader uses line editing on an interactive terminal and plain
// scanning otherwise (pipes, tests).
func lineReader(cmd *cobra.Command) repl.LineReader {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) && repl.TerminalSupported() {
		return repl.NewTerminal()
	}
	return repl.NewScanner(in, io.Discard)
}

func newExploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Chat with the GraphQL APIs you discover",
		Long: `Start an interactive session. Paste a GraphQL endpoint URL to discover it,
ask which APIs are known, or ask any question. Type quit to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appCtor()
			if err != nil {
				return fmt.Errorf("error initializing app: %w", err)
			}
			return a.Explore(cmd.Context(), lineReader(cmd), cmd.OutOrStdout())
		},
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the model, with optional image analysis",
		Long: `Start an interactive chat. A line of the form "--image <path>" sends that
image for analysis; later messages carry every analysis as context.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appCtor()
			if err != nil {
				return fmt.Errorf("error initializing app: %w", err)
			}
			return a.Chat(cmd.Context(), lineReader(cmd), cmd.OutOrStdout())
		},
	}
}

func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "discover <url>",
		Short:   "Introspect and summarize one endpoint",
		Example: "  explorer discover https://countries.trevorblades.com/graphql",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appCtor()
			if err != nil {
				return fmt.Errorf("error initializing app: %w", err)
			}
			return a.Discover(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the explorer over HTTP",
		Long: `Serve POST /ask, GET /turn, GET /turns, /health/live, /health/ready and
/metrics. API_KEY and RATE_LIMIT_PER_MIN protect /ask.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if port > 0 {
				app.SetHTTPPort(strconv.Itoa(port))
			}
			run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 9090, "HTTP port to listen on")
	return cmd
}

func newMockGraphQLCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mock-graphql",
		Short: "Run a local countries GraphQL endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mux := buildMockMux()
			logx.Info("Mock", "countries GraphQL endpoint on http://localhost%s/graphql", addr)
			return listenAndServe(addr, mux)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9000", "address to listen on")
	return cmd
}

func buildMockMux() *http.ServeMux {
	mux := http.NewServeMux()
	countries.RegisterHandlers(mux)
	return mux
}
