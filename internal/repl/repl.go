// Package repl runs the line-oriented conversations of the explore and chat
// commands.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/peterh/liner"
)

// LineReader yields one line of user input per call. io.EOF ends the loop.
type LineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// Command handles a ":name args" line.
type Command func(ctx context.Context, args string) string

// Loop reads lines until quit, EOF, Ctrl-C or context cancellation.
type Loop struct {
	Reader   LineReader
	Out      io.Writer
	Prompt   string
	Welcome  string
	Handle   func(ctx context.Context, line string) string
	Commands map[string]Command
}

// Run drives the loop. Handler output is printed followed by a blank line.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Reader.Close()

	if l.Welcome != "" {
		fmt.Fprintln(l.Out, l.Welcome)
		fmt.Fprintln(l.Out)
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := l.Reader.Prompt(l.Prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if IsQuit(line) {
			fmt.Fprintln(l.Out, "Goodbye!")
			return nil
		}
		if h, ok := l.Reader.(interface{ AppendHistory(string) }); ok {
			h.AppendHistory(line)
		}

		fmt.Fprintln(l.Out, l.dispatch(ctx, line))
		fmt.Fprintln(l.Out)
	}
}

func (l *Loop) dispatch(ctx context.Context, line string) string {
	if strings.HasPrefix(line, ":") {
		name, args, _ := strings.Cut(line[1:], " ")
		if cmd, ok := l.Commands[name]; ok {
			return cmd(ctx, strings.TrimSpace(args))
		}
		return fmt.Sprintf("Unknown command :%s. Available: %s", name, strings.Join(l.commandNames(), ", "))
	}
	return l.Handle(ctx, line)
}

func (l *Loop) commandNames() []string {
	names := make([]string, 0, len(l.Commands))
	for n := range l.Commands {
		names = append(names, ":"+n)
	}
	sort.Strings(names)
	return names
}

// IsQuit reports whether line asks to end the session.
func IsQuit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "quit", "exit", ":q":
		return true
	}
	return false
}

// NewTerminal returns a liner-backed reader with history and Ctrl-C abort.
func NewTerminal() LineReader {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	return st
}

// TerminalSupported reports whether line editing works on this terminal.
func TerminalSupported() bool { return liner.TerminalSupported() }

type scanReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

// NewScanner reads plain lines from r, echoing the prompt to out. Used when
// stdin is not a terminal and in tests.
func NewScanner(r io.Reader, out io.Writer) LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	return &scanReader{sc: sc, out: out}
}

func (s *scanReader) Prompt(p string) (string, error) {
	if s.out != nil && p != "" {
		fmt.Fprint(s.out, p)
	}
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.sc.Text(), nil
}

func (s *scanReader) Close() error { return nil }
