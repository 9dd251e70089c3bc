// Package slack is a minimal Slack Web API client built on restconsumer.
//
// It covers auth.test and chat.postMessage. Slack reports failures inside
// the response body rather than with status codes; [CheckResults] turns
// those into errors.
package slack

import (
	"context"
	"errors"
	"fmt"

	"github.com/peteraglen/restconsumer"
)

// Endpoint is the Slack Web API base URL.
const Endpoint = "https://api.slack.com"

// ErrRequestFailure is returned when a response cannot be interpreted.
var ErrRequestFailure = errors.New("unexpected Slack API response")

// APIError is a failure reported by Slack in the response body.
type APIError struct {
	Code string
}

func (e *APIError) Error() string {
	return "Slack API Error: " + e.Code
}

// Descriptor returns the API tree served by [Client].
func Descriptor() *restconsumer.Descriptor {
	post := []restconsumer.Verb{restconsumer.VerbPost}
	return &restconsumer.Descriptor{
		Children: map[string]*restconsumer.Descriptor{
			"auth_test":        {Path: "/api/auth.test", Verbs: post},
			"chat_postMessage": {Path: "/api/chat.postMessage", Verbs: post},
		},
	}
}

// Client calls the Slack Web API with a bot or user token.
type Client struct {
	root *restconsumer.Consumer
}

// New returns a client for the public Slack endpoint.
func New(token string, opts ...restconsumer.Option) (*Client, error) {
	return NewWithEndpoint(Endpoint, token, opts...)
}

// NewWithEndpoint returns a client for a Slack-compatible endpoint.
func NewWithEndpoint(endpoint, token string, opts ...restconsumer.Option) (*Client, error) {
	if token == "" {
		return nil, restconsumer.NewFailure(restconsumer.KindInvalidCredentials, "missing Slack token")
	}

	transport := restconsumer.NewTokenTransport(map[string]string{"token": token}, opts...)
	root, err := restconsumer.New(endpoint, Descriptor(), transport)
	if err != nil {
		return nil, err
	}
	return &Client{root: root}, nil
}

// AuthTest calls auth.test and checks the result.
func (c *Client) AuthTest(ctx context.Context) (map[string]any, error) {
	return c.post(ctx, "auth_test", nil)
}

// Message is a chat.postMessage request. Zero fields are omitted.
type Message struct {
	Channel     string
	Text        string
	Username    string
	AsUser      bool
	Parse       string
	LinkNames   bool
	UnfurlLinks bool
	UnfurlMedia bool
	IconURL     string
	IconEmoji   string
}

func (m Message) params() restconsumer.Params {
	p := restconsumer.Params{
		{Key: "channel", Value: m.Channel},
		{Key: "text", Value: m.Text},
	}
	optional := []restconsumer.Param{
		{Key: "username", Value: m.Username},
		{Key: "as_user", Value: m.AsUser},
		{Key: "parse", Value: m.Parse},
		{Key: "link_names", Value: m.LinkNames},
		{Key: "unfurl_links", Value: m.UnfurlLinks},
		{Key: "unfurl_media", Value: m.UnfurlMedia},
		{Key: "icon_url", Value: m.IconURL},
		{Key: "icon_emoji", Value: m.IconEmoji},
	}
	for _, param := range optional {
		switch v := param.Value.(type) {
		case string:
			if v == "" {
				continue
			}
		case bool:
			if !v {
				continue
			}
		}
		p = append(p, param)
	}
	return p
}

// PostMessage calls chat.postMessage and checks the result.
func (c *Client) PostMessage(ctx context.Context, msg Message) (map[string]any, error) {
	if msg.Channel == "" || msg.Text == "" {
		return nil, restconsumer.NewFailure(restconsumer.KindInvalidOptions, "channel and text are required")
	}
	return c.post(ctx, "chat_postMessage", msg.params())
}

func (c *Client) post(ctx context.Context, member string, params restconsumer.Params) (map[string]any, error) {
	consumer, err := c.root.Child(member)
	if err != nil {
		return nil, err
	}

	res, err := consumer.Post(ctx, params)
	if err != nil {
		return nil, err
	}

	if _, err := CheckResults(res); err != nil {
		return nil, err
	}

	body, _ := res.Value().(map[string]any)
	return body, nil
}

// CheckResults reports whether res is a successful Slack response. An
// "invalid_auth" error is returned as InvalidCredentials, other Slack errors
// as *APIError, and bodies without "ok" or "error" as ErrRequestFailure.
func CheckResults(res *restconsumer.Result) (bool, error) {
	body, ok := res.Value().(map[string]any)
	if !ok {
		return false, fmt.Errorf("%w: %v", ErrRequestFailure, res.Value())
	}

	if success, _ := body["ok"].(bool); success {
		return true, nil
	}

	code, ok := body["error"].(string)
	if !ok {
		return false, fmt.Errorf("%w: %v", ErrRequestFailure, body)
	}

	if code == "invalid_auth" {
		return false, restconsumer.NewFailure(restconsumer.KindInvalidCredentials, `Slack API Error: "invalid_auth"`)
	}

	return false, &APIError{Code: code}
}
