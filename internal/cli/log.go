package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Lines carry a wall-clock timestamp with
// centiseconds so render retries and the configured delay between requests
// can be told apart in --verbose output.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// step times one command that runs outside the pipeline runner (clean,
// report), which logs its own per-document timings.
type step struct {
	logger *log.Logger
	name   string
	start  time.Time
}

func startStep(l *log.Logger, name string, keyvals ...any) *step {
	l.Debug(name+" started", keyvals...)
	return &step{logger: l, name: name, start: time.Now()}
}

// finish logs e.g. `clean finished removed=12 elapsed=15ms`.
func (s *step) finish(keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(s.name+" finished", keyvals...)
}
