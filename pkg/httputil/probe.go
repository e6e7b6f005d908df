package httputil

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/matzehuels/docdiagrams/pkg/errors"
)

// Probe retry settings.
const (
	probeRetryMax     = 2
	probeRetryWaitMin = 200 * time.Millisecond
	probeRetryWaitMax = 2 * time.Second
	probeTimeout      = 10 * time.Second
)

// Probe issues a GET against baseURL and reports whether the service is
// reachable. Any HTTP response below 500 counts as reachable: the service
// root of a rendering server may legitimately answer 404. Failures are
// returned as NETWORK_ERROR or TIMEOUT.
func Probe(ctx context.Context, baseURL string, logger *log.Logger) error {
	client := retryablehttp.NewClient()
	client.RetryMax = probeRetryMax
	client.RetryWaitMin = probeRetryWaitMin
	client.RetryWaitMax = probeRetryWaitMax
	client.HTTPClient.Timeout = probeTimeout
	client.Logger = leveledLogger{logger}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "probe request for %s", baseURL)
	}

	resp, err := client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return TransportError(err, baseURL)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return errors.New(errors.ErrCodeNetwork, "rendering service %s answered %s", baseURL, resp.Status)
	}
	if logger != nil {
		logger.Debug("rendering service reachable", "url", baseURL, "status", resp.StatusCode)
	}
	return nil
}

// IsTimeout reports whether err is a client or network timeout.
func IsTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return stderrors.As(err, &te) && te.Timeout()
}

// TransportError maps a failed round trip against url to a NETWORK_ERROR or
// TIMEOUT coded error.
func TransportError(err error, url string) error {
	if IsTimeout(err) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "request to %s timed out", url)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "cannot reach %s", url)
}

// leveledLogger adapts a charm logger to retryablehttp.LeveledLogger.
// Retry chatter is demoted to debug.
type leveledLogger struct {
	l *log.Logger
}

func (a leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	a.log(log.DebugLevel, msg, keysAndValues)
}

func (a leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	a.log(log.DebugLevel, msg, keysAndValues)
}

func (a leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	a.log(log.DebugLevel, msg, keysAndValues)
}

func (a leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	a.log(log.WarnLevel, msg, keysAndValues)
}

func (a leveledLogger) log(level log.Level, msg string, kv []interface{}) {
	if a.l == nil {
		return
	}
	a.l.Log(level, fmt.Sprintf("probe: %s", msg), kv...)
}

var _ retryablehttp.LeveledLogger = leveledLogger{}
