package wink

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Fields are structured properties attached to a log entry.
type Fields map[string]any

// Logger receives the client's log entries. Each method takes a message and
// optional structured properties (props may be nil).
type Logger interface {
	Error(msg string, props Fields)
	Warning(msg string, props Fields)
	Notice(msg string, props Fields)
	Info(msg string, props Fields)
	Debug(msg string, props Fields)
}

// WithLogger configures the logger used by the client.
// A nil logger silences the client.
//
// Example:
//
//	log := logrus.New()
//	log.SetFormatter(&logrus.JSONFormatter{})
//	client, err := wink.NewClient(creds, wink.WithLogger(wink.NewLogrusLogger(log)))
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger == nil {
			logger = NopLogger{}
		}
		c.logger = logger
	}
}

// LogrusLogger adapts a logrus logger to Logger.
type LogrusLogger struct {
	entry logrus.FieldLogger
}

// NewLogrusLogger wraps l. A nil l uses the logrus standard logger.
func NewLogrusLogger(l logrus.FieldLogger) *LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusLogger{entry: l}
}

func (l *LogrusLogger) with(props Fields) logrus.FieldLogger {
	if len(props) == 0 {
		return l.entry
	}
	return l.entry.WithFields(logrus.Fields(props))
}

// Error logs at error level.
func (l *LogrusLogger) Error(msg string, props Fields) { l.with(props).Error(msg) }

// Warning logs at warn level.
func (l *LogrusLogger) Warning(msg string, props Fields) { l.with(props).Warn(msg) }

// Notice logs at info level tagged severity=notice; logrus has no notice level.
func (l *LogrusLogger) Notice(msg string, props Fields) {
	l.with(props).WithField("severity", "notice").Info(msg)
}

// Info logs at info level.
func (l *LogrusLogger) Info(msg string, props Fields) { l.with(props).Info(msg) }

// Debug logs at debug level.
func (l *LogrusLogger) Debug(msg string, props Fields) { l.with(props).Debug(msg) }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Error(string, Fields)   {}
func (NopLogger) Warning(string, Fields) {}
func (NopLogger) Notice(string, Fields)  {}
func (NopLogger) Info(string, Fields)    {}
func (NopLogger) Debug(string, Fields)   {}

// LoggingTransport wraps an http.RoundTripper and logs requests/responses
// at debug level. Authorization headers are never logged.
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger Logger
}

// RoundTrip implements http.RoundTripper with logging.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	start := time.Now()

	if t.Logger != nil {
		t.Logger.Debug("api_request", Fields{
			"method":     req.Method,
			"url":        req.URL.String(),
			"request_id": req.Header.Get(requestIDHeader),
		})
	}

	resp, err := base.RoundTrip(req)
	duration := time.Since(start)

	if t.Logger != nil {
		if err != nil {
			t.Logger.Debug("api_error", Fields{
				"method":   req.Method,
				"url":      req.URL.String(),
				"duration": duration,
				"error":    err.Error(),
			})
		} else {
			t.Logger.Debug("api_response", Fields{
				"method":   req.Method,
				"url":      req.URL.String(),
				"status":   resp.StatusCode,
				"duration": duration,
			})
		}
	}

	return resp, err
}

// NewLoggingClient creates a client whose transport logs every request.
//
// Example:
//
//	log := logrus.New()
//	log.SetLevel(logrus.DebugLevel)
//	client, err := wink.NewLoggingClient(creds, wink.NewLogrusLogger(log))
func NewLoggingClient(creds Credentials, logger Logger, opts ...Option) (*Client, error) {
	httpClient := &http.Client{
		Timeout: DefaultTimeout,
		Transport: &LoggingTransport{
			Base:   defaultTransport(),
			Logger: logger,
		},
	}

	allOpts := append([]Option{WithHTTPClient(httpClient), WithLogger(logger)}, opts...)
	return NewClient(creds, allOpts...)
}
