// Package slackmanager sends alerts to a Slack Manager alerts API.
//
// The client is a thin declarative consumer: the API tree has a "ping"
// endpoint used by [Client.Connect] and an "alerts" endpoint that accepts a
// JSON batch.
//
//	client := slackmanager.New("https://alerts.example.com",
//		slackmanager.WithAuthScheme("Bearer"),
//		slackmanager.WithAuthToken(token),
//	)
//	if err := client.Connect(ctx); err != nil {
//		return err
//	}
//	err := client.Send(ctx, &common.Alert{Header: "Disk full"})
package slackmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	common "github.com/peteraglen/slack-manager-common"

	"github.com/peteraglen/restconsumer"
)

// Descriptor returns the API tree served by [Client].
func Descriptor() *restconsumer.Descriptor {
	return &restconsumer.Descriptor{
		Children: map[string]*restconsumer.Descriptor{
			"ping":   {Path: "/ping", Verbs: []restconsumer.Verb{restconsumer.VerbGet}},
			"alerts": {Path: "/alerts", Verbs: []restconsumer.Verb{restconsumer.VerbPost}},
		},
	}
}

type Client struct {
	baseURL   string
	options   *Options
	transport *restconsumer.Transport
	alerts    *restconsumer.Consumer

	mu        sync.Mutex
	connected bool
}

func New(baseURL string, opts ...Option) *Client {
	options := newClientOptions()
	for _, o := range opts {
		o(options)
	}

	return &Client{
		baseURL: baseURL,
		options: options,
	}
}

// Connect validates the options and pings the API. Calling Connect on a
// connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	if c.baseURL == "" {
		return errors.New("base URL must be set")
	}

	transport := restconsumer.NewTransport(c.options.transportOptions()...)
	if err := transport.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	descriptor := Descriptor()
	if c.options.basicAuth != nil {
		descriptor = restconsumer.WithAuth(descriptor, *c.options.basicAuth)
	}

	root, err := restconsumer.New(c.baseURL, descriptor, transport)
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	ping, err := root.Child("ping")
	if err != nil {
		return err
	}

	if _, err := ping.Get(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping alerts API: %w", err)
	}

	alerts, err := root.Child("alerts")
	if err != nil {
		return err
	}

	c.transport = transport
	c.alerts = alerts
	c.connected = true

	return nil
}

// Send posts alerts as one batch.
func (c *Client) Send(ctx context.Context, alerts ...*common.Alert) error {
	if c == nil {
		return errors.New("alert client is nil")
	}

	c.mu.Lock()
	connected, consumer := c.connected, c.alerts
	c.mu.Unlock()

	if !connected {
		return errors.New("client not connected - call Connect() first")
	}

	if len(alerts) == 0 {
		return errors.New("alerts list cannot be empty")
	}

	for i, alert := range alerts {
		if alert == nil {
			return fmt.Errorf("alert at index %d is nil", i)
		}
	}

	_, err := consumer.Post(ctx, restconsumer.Params{{Key: "alerts", Value: alerts}})
	if err != nil {
		return requestError(restconsumer.VerbPost, consumer.Path(), err)
	}

	return nil
}

// Close releases the client. A closed client must be connected again
// before the next Send.
func (c *Client) Close() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	c.alerts = nil
	c.transport = nil
}

// RequestError is a failed call to the alerts API. Detail holds the error
// message reported by the server, if any.
type RequestError struct {
	Method     restconsumer.Verb
	Path       string
	StatusCode int
	Detail     string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func requestError(method restconsumer.Verb, path string, err error) error {
	reqErr := &RequestError{Method: method, Path: path, Err: err}

	var httpErr *restconsumer.HTTPError
	if errors.As(err, &httpErr) {
		reqErr.StatusCode = httpErr.StatusCode
		reqErr.Detail = errorDetail(httpErr.Body)
	}

	return reqErr
}

// errorDetail prefers the "error" field of a JSON body and falls back to the
// raw body.
func errorDetail(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	return "(empty error body)"
}
