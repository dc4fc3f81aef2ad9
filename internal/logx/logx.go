package logx

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// colores por nivel
var levelColor = map[Level]*color.Color{
	LevelDebug: color.New(color.FgCyan),
	LevelInfo:  color.New(color.FgBlue),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

// colores por componente
var componentColor = map[string]*color.Color{
	"Explorer":  color.New(color.FgCyan),
	"Discovery": color.New(color.FgMagenta),
	"Scorer":    color.New(color.FgBlue),
	"GraphQL":   color.New(color.FgGreen),
	"LLM":       color.New(color.FgYellow),
	"Chat":      color.New(color.FgCyan),
	"HTTP":      color.New(color.FgBlue),
	"Config":    color.New(color.FgMagenta),
	"App":       color.New(color.FgGreen),
	"Mock":      color.New(color.FgCyan),
}

var minLevel atomic.Int32

func init() {
	minLevel.Store(int32(LevelInfo))
}

// SetLevel sets the minimum level from its name (debug, info, warn, error).
// Unknown names leave the level unchanged.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		minLevel.Store(int32(LevelDebug))
	case "info":
		minLevel.Store(int32(LevelInfo))
	case "warn", "warning":
		minLevel.Store(int32(LevelWarn))
	case "error":
		minLevel.Store(int32(LevelError))
	}
}

func Enabled(l Level) bool {
	return int32(l) >= minLevel.Load()
}

// detecta color mode
func useColor() bool {
	env := os.Getenv("ENV")
	if env != "local" && env != "dev" {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd())
}

// --- Public API ---

func Debug(component, msg string, args ...any) {
	logGeneric(LevelDebug, component, msg, args...)
}

func Info(component, msg string, args ...any) {
	logGeneric(LevelInfo, component, msg, args...)
}

func Warn(component, msg string, args ...any) {
	logGeneric(LevelWarn, component, msg, args...)
}

func Error(component, msg string, args ...any) {
	logGeneric(LevelError, component, msg, args...)
}

// L logs at info level with a turn id.
func L(id, component, msg string, args ...any) {
	logGeneric(LevelInfo, component, "["+id+"] "+msg, args...)
}

// --- Core ---

func logGeneric(level Level, component, msg string, args ...any) {
	if !Enabled(level) {
		return
	}
	full := fmt.Sprintf(msg, args...)
	name := levelNames[level]

	if useColor() {
		lc := levelColor[level]
		cc, ok := componentColor[component]
		if !ok {
			cc = color.New(color.Reset)
		}
		log.Printf("%s %s %s", lc.Sprintf("[%s]", name), cc.Sprintf("[%s]", component), full)
		return
	}
	log.Printf("[%s] [%s] %s", name, component, full)
}
