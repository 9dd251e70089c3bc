package slackmanager

import (
	"strings"

	"github.com/peteraglen/restconsumer"
)

type Option func(*Options)

type Options struct {
	transportOpts []restconsumer.Option
	basicAuth     *restconsumer.Auth
	authScheme    string
	authToken     string
}

func newClientOptions() *Options {
	return &Options{
		authScheme: "Bearer",
	}
}

// transportOptions returns the options for the underlying transport. Alert
// batches are always sent as JSON.
func (o *Options) transportOptions() []restconsumer.Option {
	opts := []restconsumer.Option{restconsumer.WithJSONBody()}
	opts = append(opts, o.transportOpts...)

	if o.authToken != "" {
		opts = append(opts, restconsumer.WithRequestHeader("Authorization", o.authScheme+" "+o.authToken))
	}

	return opts
}

// WithTransportOptions passes opts to the transport built by Connect.
func WithTransportOptions(opts ...restconsumer.Option) Option {
	return func(o *Options) {
		o.transportOpts = append(o.transportOpts, opts...)
	}
}

// WithRequestHeader sets a header sent with every request.
func WithRequestHeader(header, value string) Option {
	return WithTransportOptions(restconsumer.WithRequestHeader(header, value))
}

func WithBasicAuth(username, password string) Option {
	return func(o *Options) {
		if username != "" {
			o.basicAuth = &restconsumer.Auth{User: username, Pass: password}
		}
	}
}

func WithAuthScheme(scheme string) Option {
	return func(o *Options) {
		if scheme = strings.TrimSpace(scheme); scheme != "" {
			o.authScheme = scheme
		}
	}
}

func WithAuthToken(token string) Option {
	return func(o *Options) {
		o.authToken = strings.TrimSpace(token)
	}
}
