package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ccastromar/aos-graphql-explorer/internal/config"
	"github.com/ccastromar/aos-graphql-explorer/internal/llm"
	"github.com/ccastromar/aos-graphql-explorer/internal/logx"
	"github.com/ccastromar/aos-graphql-explorer/internal/repl"
	"github.com/ccastromar/aos-graphql-explorer/internal/trace"
	"github.com/ccastromar/aos-graphql-explorer/internal/vision"
)

const imageFlag = "--image"

// maxImageBytes bounds the files the chat will read and send.
const maxImageBytes = 20 << 20

func welcomeMessage(suggestions []config.Suggestion) string {
	var b strings.Builder
	b.WriteString("Welcome to the GraphQL explorer!\n")
	b.WriteString("Paste a GraphQL endpoint URL to discover it, ask what APIs I know, or ask a question.\n")
	b.WriteString("Type :apis for a table of discovered APIs and quit to leave.")
	if len(suggestions) > 0 {
		b.WriteString("\n\nTry some of these endpoints:")
		for _, s := range suggestions {
			fmt.Fprintf(&b, "\n• %s (%s)", s.URL, s.Description)
		}
	}
	return b.String()
}

// Explore runs the explorer conversation on r until quit or EOF.
func (a *App) Explore(ctx context.Context, r repl.LineReader, out io.Writer) error {
	loop := &repl.Loop{
		Reader:  r,
		Out:     out,
		Prompt:  "You: ",
		Welcome: welcomeMessage(a.defs.Suggestions),
		Handle: func(ctx context.Context, line string) string {
			ctx = trace.WithTurn(ctx, a.traces, trace.NewTurnID())
			return "Assistant: " + a.explorer.Handle(ctx, line)
		},
		Commands: map[string]repl.Command{
			"apis": func(context.Context, string) string {
				return repl.APITable(a.explorer.Registry().List())
			},
		},
	}
	return loop.Run(ctx)
}

// Discover registers a single endpoint and prints its summary.
func (a *App) Discover(ctx context.Context, url string, out io.Writer) error {
	e, err := a.explorer.Discover(ctx, strings.TrimSpace(url))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\nDomain: %s\n", e.DisplayName, e.Summary.Domain)
	if len(e.Summary.Capabilities) > 0 {
		fmt.Fprintf(out, "Capabilities: %s\n", strings.Join(e.Summary.Capabilities, ", "))
	}
	if len(e.Summary.Relationships) > 0 {
		fmt.Fprintf(out, "Relationships: %s\n", strings.Join(e.Summary.Relationships, ", "))
	}
	fmt.Fprintln(out)
	repl.WriteAPITable(out, a.explorer.Registry().List())
	return nil
}

// Chat runs the image-aware conversation. Lines of the form
// "--image <path>" (or ":image <path>") are analyzed instead of sent as text.
func (a *App) Chat(ctx context.Context, r repl.LineReader, out io.Writer) error {
	sess, err := vision.NewSession(a.llm, 0)
	if err != nil {
		return err
	}
	analyze := func(ctx context.Context, path string) string {
		return "Assistant: " + chatImage(ctx, sess, path)
	}
	loop := &repl.Loop{
		Reader:  r,
		Out:     out,
		Prompt:  "You: ",
		Welcome: "Chat with the model. Use --image <path> to have an image analyzed. Type quit to leave.",
		Handle: func(ctx context.Context, line string) string {
			if line == imageFlag || strings.HasPrefix(line, imageFlag+" ") {
				return analyze(ctx, strings.TrimSpace(line[len(imageFlag):]))
			}
			reply, err := sess.Say(ctx, line)
			if err != nil {
				logx.Warn("Chat", "chat failed: %v", err)
				return "Assistant: " + chatFailure(err)
			}
			return "Assistant: " + reply
		},
		Commands: map[string]repl.Command{"image": analyze},
	}
	return loop.Run(ctx)
}

func chatImage(ctx context.Context, sess *vision.Session, path string) string {
	if path == "" {
		return "Please give the path of the image, e.g. --image ./photo.jpg"
	}
	data, err := readImage(path)
	if err != nil {
		return fmt.Sprintf("I couldn't read that image: %v", err)
	}
	analysis, err := sess.Analyze(ctx, data)
	if err != nil {
		logx.Warn("Chat", "image analysis failed: %v", err)
		return chatFailure(err)
	}
	return "Image analysis:\n" + analysis
}

func readImage(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxImageBytes {
		return nil, fmt.Errorf("%s is larger than %d MiB", path, maxImageBytes>>20)
	}
	return os.ReadFile(path)
}

func chatFailure(err error) string {
	switch {
	case errors.Is(err, vision.ErrEmptyImage):
		return "That image file is empty."
	case errors.Is(err, vision.ErrNoVision):
		return "The configured model provider cannot analyze images."
	case llm.IsTooLarge(err):
		return "That was too large for the model. Could you try something smaller?"
	}
	return "Sorry, I encountered an error talking to the model. Please try again."
}
