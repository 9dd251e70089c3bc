package restconsumer

import (
	"context"
	"maps"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/peteraglen/restconsumer/retry"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	requestIDHeader = "X-Request-Id"
)

// Fetcher performs one logical API call. [Transport] and [TokenTransport]
// implement it; consumers only depend on this interface.
type Fetcher interface {
	Fetch(ctx context.Context, url string, verb Verb, params Params, auth *Auth) (*Result, error)
}

// Transport executes calls through resty, parses responses and classifies
// failures. A Transport is immutable once built and safe for concurrent use.
type Transport struct {
	client  *resty.Client
	options *Options
	policy  retry.Policy
}

// NewTransport builds a Transport. Invalid option values are ignored and the
// default kept.
func NewTransport(opts ...Option) *Transport {
	options := newTransportOptions()
	for _, opt := range opts {
		opt(options)
	}

	var client *resty.Client
	if options.httpClient != nil {
		client = resty.NewWithClient(options.httpClient)
	} else {
		client = resty.New()
	}

	client.
		SetLogger(options.requestLogger).
		SetDisableWarn(true).
		SetRetryCount(0).
		SetHeaders(options.requestHeaders)

	if options.timeout > 0 {
		client.SetTimeout(options.timeout)
	}

	return &Transport{
		client:  client,
		options: options,
		policy: retry.Policy{
			MaxAttempts: options.maxAttempts,
			Delay:       options.retryDelay,
			Retryable:   retryRules(options.statusRules, options.retryConnErrs),
		},
	}
}

// Validate checks the options the transport was built with.
func (t *Transport) Validate() error {
	return t.options.Validate()
}

// RetryPolicy returns a copy of the policy every Fetch runs under.
func (t *Transport) RetryPolicy() retry.Policy {
	return t.policy
}

// StatusRules returns a copy of the status table.
func (t *Transport) StatusRules() map[int]StatusRule {
	return maps.Clone(t.options.statusRules)
}

// Fetch issues verb against url. Read verbs carry params in the query string,
// write verbs in the body. The whole call is retried according to
// [Transport.RetryPolicy]; the error of the last attempt is returned as is.
func (t *Transport) Fetch(ctx context.Context, url string, verb Verb, params Params, auth *Auth) (*Result, error) {
	if !verb.Supported() {
		return nil, NewFailure(KindInvalidOptions, "unsupported HTTP verb %q", verb)
	}

	logger := t.options.requestLogger
	requestID := uuid.NewString()

	policy := t.policy
	policy.OnRetry = func(attempt int, err error) {
		t.options.metrics.observeRetry(string(verb))
		logger.Warnf("%s %s failed on attempt %d/%d, retrying in %s: %v (request_id=%s)",
			verb, url, attempt, policy.MaxAttempts, policy.Delay, err, requestID)
	}

	attempt := 0
	result, err := retry.Do(ctx, policy, func(ctx context.Context) (*Result, error) {
		attempt++
		return t.fetchOnce(ctx, requestID, attempt, url, verb, params, auth)
	})
	if err != nil {
		t.options.metrics.observeFailure(string(verb), err)
		logger.Errorf("%s %s failed after %d attempt(s): %v (request_id=%s)", verb, url, attempt, err, requestID)
		return nil, err
	}

	return result, nil
}

func (t *Transport) fetchOnce(
	ctx context.Context,
	requestID string,
	attempt int,
	url string,
	verb Verb,
	params Params,
	auth *Auth,
) (*Result, error) {
	req := t.client.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, requestID)

	username := ""
	if auth != nil && auth.User != "" {
		username = auth.User
		req.SetBasicAuth(auth.User, auth.Pass)
	}

	target := url
	if verb.HasBody() {
		body, err := t.encodeBody(params)
		if err != nil {
			return nil, invalidOptions(err, "encode request body: %v", err)
		}
		req.SetHeader("Content-Type", t.contentType()).SetBody(body)
	} else {
		target = escapedURL(url, params)
	}

	t.options.requestLogger.Debugf("%s %s (attempt %d, user=%q, request_id=%s)",
		verb, url, attempt, username, requestID)

	start := time.Now()
	resp, err := req.Execute(string(verb), target)
	if err != nil {
		t.options.metrics.observeAttempt(string(verb), 0, time.Since(start))
		return nil, err
	}
	t.options.metrics.observeAttempt(string(verb), resp.StatusCode(), time.Since(start))

	if !resp.IsSuccess() {
		return nil, classify(t.options.statusRules, &HTTPError{
			StatusCode: resp.StatusCode(),
			Method:     string(verb),
			URL:        url,
			Body:       resp.Body(),
		})
	}

	return NewResult(resp.Body()), nil
}

func (t *Transport) contentType() string {
	if t.options.jsonBody {
		return contentTypeJSON
	}
	return contentTypeForm
}

func (t *Transport) encodeBody(params Params) ([]byte, error) {
	if t.options.jsonBody {
		return params.MarshalJSON()
	}
	return []byte(params.Encode()), nil
}
