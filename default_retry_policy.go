package restconsumer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sort"
	"strconv"

	"github.com/peteraglen/restconsumer/retry"
)

// StatusRule says what a [Transport] does with one HTTP status.
type StatusRule struct {
	// Outcome is the kind the *HTTPError is converted to. KindPassThrough (or
	// "") surfaces the *HTTPError unchanged.
	Outcome Kind

	// Retry marks a pass-through status as retryable. Recoverable outcomes
	// are always retried; other outcomes never are.
	Retry bool
}

// DefaultStatusRules returns the status table used by [NewTransport]:
// 401 and 403 become InvalidCredentials, 501 becomes a retried
// RecoverableFailure, and 500, 502, 503 and 504 are retried and then passed
// through. Every other non-2xx status is passed through on the first
// attempt.
//
// Override entries with [WithStatusRule] and [WithoutStatusRule].
func DefaultStatusRules() map[int]StatusRule {
	return map[int]StatusRule{
		http.StatusUnauthorized:        {Outcome: KindInvalidCredentials},
		http.StatusForbidden:           {Outcome: KindInvalidCredentials},
		http.StatusNotImplemented:      {Outcome: KindRecoverable},
		http.StatusInternalServerError: {Outcome: KindPassThrough, Retry: true},
		http.StatusBadGateway:          {Outcome: KindPassThrough, Retry: true},
		http.StatusServiceUnavailable:  {Outcome: KindPassThrough, Retry: true},
		http.StatusGatewayTimeout:      {Outcome: KindPassThrough, Retry: true},
	}
}

// classify applies rules to a non-2xx response.
func classify(rules map[int]StatusRule, httpErr *HTTPError) error {
	rule, ok := rules[httpErr.StatusCode]
	if !ok || rule.Outcome == "" || rule.Outcome == KindPassThrough {
		return httpErr
	}
	return WrapFailure(rule.Outcome, httpErr)
}

// retryRules builds the retry table for a status table. Recoverable failures
// are always retried; pass-through statuses only when their rule says so.
func retryRules(rules map[int]StatusRule, connErrors bool) []retry.Rule {
	out := []retry.Rule{{Name: "recoverable", Match: retry.Is(ErrRecoverable)}}

	statuses := make([]int, 0, len(rules))
	for status, rule := range rules {
		if rule.Retry && (rule.Outcome == "" || rule.Outcome == KindPassThrough) {
			statuses = append(statuses, status)
		}
	}
	sort.Ints(statuses)

	for _, status := range statuses {
		out = append(out, retry.Rule{
			Name:  "http-" + strconv.Itoa(status),
			Match: hasStatus(status),
		})
	}

	if connErrors {
		out = append(out, retry.Rule{Name: "connection", Match: isTransientConnError})
	}
	return out
}

func hasStatus(status int) retry.Classifier {
	return func(err error) bool {
		var httpErr *HTTPError
		return errors.As(err, &httpErr) && httpErr.StatusCode == status && KindOf(err) == KindPassThrough
	}
}

// isTransientConnError reports whether a request that never produced a
// response is worth another attempt. Context cancellation, deadline exceeded
// and DNS resolution errors are never retried.
func isTransientConnError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false
	}

	// Responses are classified by status, never here.
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return false
	}

	var failure *Failure
	return !errors.As(err, &failure)
}
