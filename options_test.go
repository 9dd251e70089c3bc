package restconsumer

import (
	"net/http"
	"testing"
	"time"
)

func TestNewTransportOptions(t *testing.T) {
	t.Parallel()

	opts := newTransportOptions()

	if opts.maxAttempts != 3 {
		t.Errorf("expected maxAttempts=3, got %d", opts.maxAttempts)
	}

	if opts.retryDelay != 500*time.Millisecond {
		t.Errorf("expected retryDelay=500ms, got %v", opts.retryDelay)
	}

	if opts.requestLogger == nil {
		t.Error("expected requestLogger to be set")
	}

	if opts.jsonBody {
		t.Error("expected form bodies by default")
	}

	if opts.requestHeaders["Accept"] != "application/json" {
		t.Errorf("expected Accept=application/json, got %s", opts.requestHeaders["Accept"])
	}

	if len(opts.statusRules) != len(DefaultStatusRules()) {
		t.Errorf("expected default status rules, got %v", opts.statusRules)
	}
}

func TestWithMaxAttempts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"valid", 5, 5},
		{"minimum valid", 1, 1},
		{"zero ignored", 0, 3}, // default is 3
		{"negative ignored", -1, 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := newTransportOptions()
			WithMaxAttempts(tt.input)(opts)

			if opts.maxAttempts != tt.expected {
				t.Errorf("expected maxAttempts=%d, got %d", tt.expected, opts.maxAttempts)
			}
		})
	}
}

func TestWithRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    time.Duration
		expected time.Duration
	}{
		{"valid", 200 * time.Millisecond, 200 * time.Millisecond},
		{"zero valid", 0, 0},
		{"negative ignored", -time.Second, 500 * time.Millisecond}, // default is 500ms
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := newTransportOptions()
			WithRetryDelay(tt.input)(opts)

			if opts.retryDelay != tt.expected {
				t.Errorf("expected retryDelay=%v, got %v", tt.expected, opts.retryDelay)
			}
		})
	}
}

func TestWithRequestLogger(t *testing.T) {
	t.Parallel()

	t.Run("valid logger", func(t *testing.T) {
		t.Parallel()

		opts := newTransportOptions()
		logger := &NoopLogger{}
		WithRequestLogger(logger)(opts)

		if opts.requestLogger != logger {
			t.Error("expected requestLogger to be set")
		}
	})

	t.Run("nil ignored", func(t *testing.T) {
		t.Parallel()

		opts := newTransportOptions()
		originalLogger := opts.requestLogger
		WithRequestLogger(nil)(opts)

		if opts.requestLogger != originalLogger {
			t.Error("nil logger should be ignored")
		}
	})
}

func TestWithRequestHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		header        string
		value         string
		expectIgnored bool
	}{
		{"valid header", "X-Custom", "value", false},
		{"canonicalized", "x-trace", "abc", false},
		{"empty header ignored", "", "value", true},
		{"whitespace header ignored", "   ", "value", true},
		{"Content-Type protected", "Content-Type", "text/plain", true},
		{"content-type protected (case insensitive)", "content-type", "text/plain", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := newTransportOptions()
			originalLen := len(opts.requestHeaders)

			WithRequestHeader(tt.header, tt.value)(opts)

			if tt.expectIgnored {
				if _, ok := opts.requestHeaders["Content-Type"]; ok {
					t.Error("Content-Type should not be set")
				}
				if len(opts.requestHeaders) != originalLen {
					t.Error("ignored header should not add to headers")
				}
			} else if got := opts.requestHeaders[http.CanonicalHeaderKey(tt.header)]; got != tt.value {
				t.Errorf("expected header %s=%s, got %s", tt.header, tt.value, got)
			}
		})
	}
}

func TestWithStatusRule(t *testing.T) {
	t.Parallel()

	t.Run("adds rule", func(t *testing.T) {
		t.Parallel()

		opts := newTransportOptions()
		WithStatusRule(http.StatusTooManyRequests, StatusRule{Outcome: KindRecoverable})(opts)

		if opts.statusRules[429].Outcome != KindRecoverable {
			t.Errorf("expected 429 to be recoverable, got %v", opts.statusRules[429])
		}
	})

	t.Run("out of range ignored", func(t *testing.T) {
		t.Parallel()

		opts := newTransportOptions()
		WithStatusRule(42, StatusRule{Outcome: KindRecoverable})(opts)

		if _, ok := opts.statusRules[42]; ok {
			t.Error("status 42 should be ignored")
		}
	})

	t.Run("removes rule", func(t *testing.T) {
		t.Parallel()

		opts := newTransportOptions()
		WithoutStatusRule(http.StatusUnauthorized)(opts)

		if _, ok := opts.statusRules[401]; ok {
			t.Error("expected 401 rule to be removed")
		}
	})

	t.Run("replaces table without aliasing", func(t *testing.T) {
		t.Parallel()

		rules := map[int]StatusRule{}
		opts := newTransportOptions()
		WithStatusRules(rules)(opts)
		rules[500] = StatusRule{Retry: true}

		if len(opts.statusRules) != 0 {
			t.Errorf("expected empty table, got %v", opts.statusRules)
		}
	})
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	opts := newTransportOptions()
	WithTimeout(-time.Second)(opts)

	if opts.timeout != 0 {
		t.Errorf("negative timeout should be ignored, got %v", opts.timeout)
	}

	WithTimeout(2 * time.Second)(opts)

	if opts.timeout != 2*time.Second {
		t.Errorf("expected timeout=2s, got %v", opts.timeout)
	}
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(*Options)
		wantError string
	}{
		{
			name:      "valid defaults",
			modify:    func(_ *Options) {},
			wantError: "",
		},
		{
			name:      "zero maxAttempts",
			modify:    func(o *Options) { o.maxAttempts = 0 },
			wantError: "maxAttempts must be at least 1",
		},
		{
			name:      "maxAttempts exceeds max",
			modify:    func(o *Options) { o.maxAttempts = 101 },
			wantError: "maxAttempts must not exceed 100",
		},
		{
			name:      "negative retryDelay",
			modify:    func(o *Options) { o.retryDelay = -time.Millisecond },
			wantError: "retryDelay must be non-negative",
		},
		{
			name:      "retryDelay exceeds max",
			modify:    func(o *Options) { o.retryDelay = 2 * time.Minute },
			wantError: "retryDelay must not exceed 1m0s",
		},
		{
			name:      "nil requestLogger",
			modify:    func(o *Options) { o.requestLogger = nil },
			wantError: "requestLogger must not be nil",
		},
		{
			name:      "unknown outcome",
			modify:    func(o *Options) { o.statusRules[418] = StatusRule{Outcome: "TEAPOT"} },
			wantError: `status rule 418 has unknown outcome "TEAPOT"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := newTransportOptions()
			tt.modify(opts)

			err := opts.Validate()

			if tt.wantError == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.wantError)
				} else if err.Error() != tt.wantError {
					t.Errorf("expected error %q, got %q", tt.wantError, err.Error())
				}
			}
		})
	}
}
