package restconsumer

import (
	"context"
	"sort"
)

// TokenTransport is a [Transport] for APIs authenticated by a static token
// passed as a request parameter. Every token is added to the parameters of
// each call under its registered name, unless the caller already set that
// parameter.
type TokenTransport struct {
	*Transport

	names  []string
	tokens map[string]string
}

// NewTokenTransport builds a TokenTransport holding tokens, keyed by
// parameter name.
func NewTokenTransport(tokens map[string]string, opts ...Option) *TokenTransport {
	names := make([]string, 0, len(tokens))
	copied := make(map[string]string, len(tokens))
	for name, value := range tokens {
		names = append(names, name)
		copied[name] = value
	}
	sort.Strings(names)

	return &TokenTransport{
		Transport: NewTransport(opts...),
		names:     names,
		tokens:    copied,
	}
}

// Fetch adds the tokens to params and delegates to [Transport.Fetch].
func (t *TokenTransport) Fetch(ctx context.Context, url string, verb Verb, params Params, auth *Auth) (*Result, error) {
	return t.Transport.Fetch(ctx, url, verb, t.withTokens(params), auth)
}

func (t *TokenTransport) withTokens(params Params) Params {
	for _, name := range t.names {
		params = params.WithDefault(name, t.tokens[name])
	}
	return params
}
