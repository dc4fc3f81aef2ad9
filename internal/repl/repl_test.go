package repl

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ccastromar/aos-graphql-explorer/internal/registry"
	"github.com/ccastromar/aos-graphql-explorer/internal/schema"
)

func echoLoop(in string, out *bytes.Buffer) (*Loop, *[]string) {
	seen := []string{}
	l := &Loop{
		Reader: NewScanner(strings.NewReader(in), nil),
		Out:    out,
		Handle: func(_ context.Context, line string) string {
			seen = append(seen, line)
			return "echo: " + line
		},
	}
	return l, &seen
}

func TestLoopStopsOnQuit(t *testing.T) {
	var out bytes.Buffer
	l, seen := echoLoop("hello\n\n  world  \nquit\nnever\n", &out)

	require.NoError(t, l.Run(context.Background()))
	require.Equal(t, []string{"hello", "world"}, *seen)
	require.Contains(t, out.String(), "echo: world")
	require.Contains(t, out.String(), "Goodbye!")
	require.NotContains(t, out.String(), "never")
}

func TestLoopEndsOnEOF(t *testing.T) {
	var out bytes.Buffer
	l, seen := echoLoop("one", &out)

	require.NoError(t, l.Run(context.Background()))
	require.Equal(t, []string{"one"}, *seen)
}

func TestLoopPrintsWelcome(t *testing.T) {
	var out bytes.Buffer
	l, _ := echoLoop("", &out)
	l.Welcome = "Welcome!"

	require.NoError(t, l.Run(context.Background()))
	require.True(t, strings.HasPrefix(out.String(), "Welcome!\n"))
}

func TestLoopDispatchesCommands(t *testing.T) {
	var out bytes.Buffer
	l, seen := echoLoop(":apis\n:image cat.png\n:nope\n", &out)
	var gotArgs string
	l.Commands = map[string]Command{
		"apis":  func(context.Context, string) string { return "table" },
		"image": func(_ context.Context, args string) string { gotArgs = args; return "analyzed" },
	}

	require.NoError(t, l.Run(context.Background()))
	require.Empty(t, *seen)
	require.Equal(t, "cat.png", gotArgs)
	require.Contains(t, out.String(), "table")
	require.Contains(t, out.String(), "Unknown command :nope. Available: :apis, :image")
}

type failingReader struct{}

func (failingReader) Prompt(string) (string, error) { return "", errors.New("tty gone") }
func (failingReader) Close() error                  { return nil }

func TestLoopReturnsReadErrors(t *testing.T) {
	l := &Loop{Reader: failingReader{}, Out: &bytes.Buffer{}}
	err := l.Run(context.Background())
	require.ErrorContains(t, err, "tty gone")
}

func TestLoopHonoursCancelledContext(t *testing.T) {
	var out bytes.Buffer
	l, seen := echoLoop("hello\n", &out)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, l.Run(ctx))
	require.Empty(t, *seen)
}

func TestIsQuit(t *testing.T) {
	require.True(t, IsQuit("quit"))
	require.True(t, IsQuit(" QUIT "))
	require.True(t, IsQuit("exit"))
	require.False(t, IsQuit("quit now"))
}

func TestAPITable(t *testing.T) {
	require.Contains(t, APITable(nil), "No APIs discovered yet")

	reg := registry.New(registry.WithClock(func() time.Time {
		return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	}))
	reg.Add("https://countries.trevorblades.com/", nil, schema.Semantics{Domain: "Geography"})
	reg.RecordQuery("https://countries.trevorblades.com/")

	table := APITable(reg.List())
	require.Contains(t, table, "countries.trevorblades.com")
	require.Contains(t, table, "Geography")
	require.Contains(t, table, "10:30:00")
	require.Contains(t, strings.ToUpper(table), "QUERIES")
}
