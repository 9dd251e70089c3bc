package restconsumer

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/peteraglen/restconsumer/retry"
)

type Option func(*Options)

type Options struct {
	maxAttempts    int
	retryDelay     time.Duration
	requestLogger  RequestLogger
	requestHeaders map[string]string
	jsonBody       bool
	statusRules    map[int]StatusRule
	retryConnErrs  bool
	timeout        time.Duration
	metrics        *Metrics
	httpClient     *http.Client
}

func newTransportOptions() *Options {
	return &Options{
		maxAttempts:   retry.DefaultMaxAttempts,
		retryDelay:    retry.DefaultDelay,
		requestLogger: &NoopLogger{},
		requestHeaders: map[string]string{
			"Accept": "application/json",
		},
		statusRules: DefaultStatusRules(),
	}
}

const (
	maxAttemptsLimit = 100
	maxRetryDelay    = time.Minute
)

// Validate reports the first inconsistent setting.
func (o *Options) Validate() error {
	if o.maxAttempts < 1 {
		return errors.New("maxAttempts must be at least 1")
	}

	if o.maxAttempts > maxAttemptsLimit {
		return fmt.Errorf("maxAttempts must not exceed %d", maxAttemptsLimit)
	}

	if o.retryDelay < 0 {
		return errors.New("retryDelay must be non-negative")
	}

	if o.retryDelay > maxRetryDelay {
		return fmt.Errorf("retryDelay must not exceed %s", maxRetryDelay)
	}

	if o.requestLogger == nil {
		return errors.New("requestLogger must not be nil")
	}

	for status, rule := range o.statusRules {
		switch rule.Outcome {
		case "", KindPassThrough, KindRecoverable, KindUnrecoverable, KindInvalidCredentials, KindInvalidOptions:
		default:
			return fmt.Errorf("status rule %d has unknown outcome %q", status, rule.Outcome)
		}
	}

	return nil
}

// WithMaxAttempts sets the total number of attempts per call. Values below 1
// are ignored.
func WithMaxAttempts(count int) Option {
	return func(o *Options) {
		if count >= 1 {
			o.maxAttempts = count
		}
	}
}

// WithRetryDelay sets the wait between attempts. Negative values are ignored.
func WithRetryDelay(delay time.Duration) Option {
	return func(o *Options) {
		if delay >= 0 {
			o.retryDelay = delay
		}
	}
}

func WithRequestLogger(logger RequestLogger) Option {
	return func(o *Options) {
		if logger != nil {
			o.requestLogger = logger
		}
	}
}

// WithRequestHeader adds a header to every request. Content-Type is owned by
// the transport and cannot be set here.
func WithRequestHeader(header, value string) Option {
	return func(o *Options) {
		header = strings.TrimSpace(header)

		if header == "" || strings.EqualFold(header, "Content-Type") {
			return
		}

		o.requestHeaders[http.CanonicalHeaderKey(header)] = value
	}
}

// WithJSONBody sends write-verb parameters as a JSON object instead of a
// URL-encoded form.
func WithJSONBody() Option {
	return func(o *Options) {
		o.jsonBody = true
	}
}

// WithStatusRule adds or replaces the rule for status.
func WithStatusRule(status int, rule StatusRule) Option {
	return func(o *Options) {
		if status >= 100 && status <= 599 {
			o.statusRules[status] = rule
		}
	}
}

// WithoutStatusRule removes the rule for status, so that it passes through
// without retry.
func WithoutStatusRule(status int) Option {
	return func(o *Options) {
		delete(o.statusRules, status)
	}
}

// WithStatusRules replaces the whole status table.
func WithStatusRules(rules map[int]StatusRule) Option {
	return func(o *Options) {
		if rules != nil {
			o.statusRules = maps.Clone(rules)
		}
	}
}

// WithRetryOnConnectionErrors also retries requests that failed before a
// response arrived, except for context errors and DNS failures.
func WithRetryOnConnectionErrors() Option {
	return func(o *Options) {
		o.retryConnErrs = true
	}
}

// WithTimeout caps every attempt. Values of zero or below are ignored.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(o *Options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithHTTPClient makes resty use client for the network I/O.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		if client != nil {
			o.httpClient = client
		}
	}
}
