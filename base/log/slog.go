package log

import (
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/lmittmann/tint"
)

const timeFormat = "060102 15:04:05.000"

func setupSLog(level Severity) {
	handlerLogLevel := level.toSLogLevel()

	// Fall back to stdout if logging was not started yet.
	var (
		out     io.Writer = os.Stdout
		noColor           = true
	)
	if GlobalWriter != nil {
		out = GlobalWriter
		noColor = !GlobalWriter.IsStdout()
	}

	// Colors are only used on windows and linux terminals.
	if runtime.GOOS != "windows" && runtime.GOOS != "linux" {
		noColor = true
	}

	logHandler := tint.NewHandler(out, &tint.Options{
		AddSource:  true,
		Level:      handlerLogLevel,
		TimeFormat: timeFormat,
		NoColor:    noColor,
	})

	// Set as default logger.
	slog.SetDefault(slog.New(logHandler))
	slog.SetLogLoggerLevel(handlerLogLevel)
}

// NewLogger returns a logger that writes to w using the same format as the
// default logger. It is mainly used to capture log output in tests.
func NewLogger(w io.Writer, level Severity) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level.toSLogLevel(),
		TimeFormat: timeFormat,
		NoColor:    true,
	}))
}
