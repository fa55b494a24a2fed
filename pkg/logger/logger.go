package logger

import (
	"io"
	"log/slog"
	"os"
)

// New builds the text logger handed down to the gateway components. The
// logger is owned by the caller and passed explicitly; nothing in this
// project writes through the process-global default.
func New(debug bool, showSource bool) *slog.Logger {
	return NewWithOutput(os.Stdout, debug, showSource)
}

func NewWithOutput(out io.Writer, debug bool, showSource bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: showSource,
	}

	return slog.New(slog.NewTextHandler(out, opts))
}
