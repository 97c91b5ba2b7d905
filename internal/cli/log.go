package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a timestamped logger ("14:32:01.45") writing to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// openLogFile opens path for appending, creating it and its directory.
// The server logs there when stderr is not watched by anyone.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// logElapsed logs msg at info level with the time since start appended as
// the "elapsed" key.
func logElapsed(logger *log.Logger, start time.Time, msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(start).Round(time.Millisecond))
	logger.Info(msg, keyvals...)
}
