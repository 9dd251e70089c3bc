package restconsumer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

var (
	// ErrUnknownAttribute is returned when a name or verb is not declared on
	// a consumer. It is wrapped in an InvalidOptions failure.
	ErrUnknownAttribute = errors.New("no such attribute")

	// ErrMissingArgument is returned when a parameterized member is resolved
	// without a value. It is wrapped in an InvalidOptions failure.
	ErrMissingArgument = errors.New("missing required argument")

	// ErrUnexpectedArgument is returned for surplus positional arguments. It
	// is wrapped in an InvalidOptions failure.
	ErrUnexpectedArgument = errors.New("unexpected positional argument")
)

// node is a compiled descriptor. The tree of nodes is built once by New and
// shared by every consumer derived from it.
type node struct {
	path        string
	placeholder string
	verbs       map[Verb]bool
	auth        *Auth
	members     map[string]*node
}

func compile(d *Descriptor, inherited *Auth) *node {
	n := &node{
		path:    d.Path,
		verbs:   make(map[Verb]bool, len(d.Verbs)),
		auth:    inherited,
		members: make(map[string]*node, len(d.Children)),
	}
	if name, ok := d.Placeholder(); ok {
		n.placeholder = name
	}
	if d.Auth != nil {
		auth := *d.Auth
		n.auth = &auth
	}
	for _, verb := range d.Verbs {
		n.verbs[verb] = true
	}
	for name, child := range d.Children {
		n.members[name] = compile(child, n.auth)
	}
	return n
}

// Consumer is a resolved position in a descriptor tree, bound to one concrete
// path. It exposes the declared sub-resources as members and the declared
// verbs as methods. Consumers are immutable.
type Consumer struct {
	endpoint string
	path     string
	name     string
	node     *node
	fetcher  Fetcher

	// parent is only used to render Trail.
	parent *Consumer
}

// New compiles root and returns the consumer for it. Calls are issued against
// endpoint joined with each resolved path, through fetcher.
func New(endpoint string, root *Descriptor, fetcher Fetcher) (*Consumer, error) {
	if fetcher == nil {
		return nil, NewFailure(KindInvalidOptions, "fetcher must be set")
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	if root.Parameterized() {
		return nil, NewFailure(KindInvalidOptions, "root path %q cannot hold a placeholder", root.Path)
	}

	return &Consumer{
		endpoint: strings.TrimRight(endpoint, "/"),
		path:     root.Path,
		node:     compile(root, nil),
		fetcher:  fetcher,
	}, nil
}

// Path returns the resolved path.
func (c *Consumer) Path() string {
	return c.path
}

// URL returns the endpoint joined with the resolved path.
func (c *Consumer) URL() string {
	return c.endpoint + c.path
}

// String returns the resolved path, or "None" for an empty root.
func (c *Consumer) String() string {
	if c.path == "" {
		return "None"
	}
	return c.path
}

// GoString renders the consumer for debugging output.
func (c *Consumer) GoString() string {
	return "Consumer(" + c.String() + ")"
}

// Trail renders the chain of member names that led to c, e.g.
// "widget(7).parts".
func (c *Consumer) Trail() string {
	var names []string
	for cur := c; cur != nil && cur.name != ""; cur = cur.parent {
		names = append(names, cur.name)
	}
	if len(names) == 0 {
		return "root"
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, ".")
}

// Auth returns the credentials bound to c, inherited from the nearest
// declaring ancestor.
func (c *Consumer) Auth() *Auth {
	return c.node.auth
}

// Members returns the declared member names, sorted.
func (c *Consumer) Members() []string {
	names := make([]string, 0, len(c.node.members))
	for name := range c.node.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Verbs returns the declared verbs, sorted.
func (c *Consumer) Verbs() []Verb {
	verbs := make([]Verb, 0, len(c.node.verbs))
	for verb := range c.node.verbs {
		verbs = append(verbs, verb)
	}
	sort.Slice(verbs, func(i, j int) bool { return verbs[i] < verbs[j] })
	return verbs
}

// Supports reports whether verb is declared on c.
func (c *Consumer) Supports(verb Verb) bool {
	return c.node.verbs[verb]
}

// MemberKind tells how a member is reached.
type MemberKind int

const (
	// MemberProperty is reached directly.
	MemberProperty MemberKind = iota
	// MemberResolver needs a value for its placeholder.
	MemberResolver
)

func (k MemberKind) String() string {
	if k == MemberResolver {
		return "resolver"
	}
	return "property"
}

// Member is one named entry of a consumer's lookup table.
type Member struct {
	kind   MemberKind
	name   string
	owner  *Consumer
	target *node
}

// Kind returns how the member is reached.
func (m Member) Kind() MemberKind {
	return m.kind
}

// Name returns the member name.
func (m Member) Name() string {
	return m.name
}

// Placeholder returns the placeholder name of a resolver, or "".
func (m Member) Placeholder() string {
	return m.target.placeholder
}

// Consumer returns the child consumer of a property member. A resolver
// member fails with ErrMissingArgument.
func (m Member) Consumer() (*Consumer, error) {
	if m.kind == MemberResolver {
		return nil, invalidOptions(ErrMissingArgument,
			"%s requires a value for %q", m.name, m.target.placeholder)
	}
	return m.owner.child(m.name, m.target, m.target.path), nil
}

// Resolve returns the child consumer with the placeholder replaced by the
// single value in args. Properties accept no arguments.
func (m Member) Resolve(args ...any) (*Consumer, error) {
	if m.kind == MemberProperty {
		if len(args) > 0 {
			return nil, invalidOptions(ErrUnexpectedArgument,
				"%s takes no arguments, got %d", m.name, len(args))
		}
		return m.Consumer()
	}

	switch {
	case len(args) == 0:
		return nil, invalidOptions(ErrMissingArgument,
			"%s requires a value for %q", m.name, m.target.placeholder)
	case len(args) > 1:
		return nil, invalidOptions(ErrUnexpectedArgument,
			"%s takes exactly one argument, got %d", m.name, len(args))
	}

	value := formatValue(args[0])
	if value == "" {
		return nil, invalidOptions(ErrMissingArgument,
			"%s requires a non-empty value for %q", m.name, m.target.placeholder)
	}

	path := strings.Replace(m.target.path, "%"+m.target.placeholder+"%", url.PathEscape(value), 1)
	return m.owner.child(fmt.Sprintf("%s(%s)", m.name, value), m.target, path), nil
}

// Lookup returns the member called name.
func (c *Consumer) Lookup(name string) (Member, error) {
	target, ok := c.node.members[name]
	if !ok {
		return Member{}, invalidOptions(ErrUnknownAttribute, "%s has no member %q", c.GoString(), name)
	}

	kind := MemberProperty
	if target.placeholder != "" {
		kind = MemberResolver
	}
	return Member{kind: kind, name: name, owner: c, target: target}, nil
}

// Child navigates to the property member called name.
func (c *Consumer) Child(name string) (*Consumer, error) {
	m, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	return m.Consumer()
}

// Resolve navigates to the member called name, filling its placeholder with
// the single value in args.
func (c *Consumer) Resolve(name string, args ...any) (*Consumer, error) {
	m, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	return m.Resolve(args...)
}

func (c *Consumer) child(name string, target *node, path string) *Consumer {
	return &Consumer{
		endpoint: c.endpoint,
		path:     c.path + path,
		name:     name,
		node:     target,
		fetcher:  c.fetcher,
		parent:   c,
	}
}

// Call issues verb on c with params. Verbs not declared on c fail with
// ErrUnknownAttribute, and any positional args with ErrUnexpectedArgument,
// before anything is sent.
func (c *Consumer) Call(ctx context.Context, verb Verb, params Params, args ...any) (*Result, error) {
	if !c.node.verbs[verb] {
		return nil, invalidOptions(ErrUnknownAttribute, "%s does not support %s", c.GoString(), verb)
	}
	if len(args) > 0 {
		return nil, invalidOptions(ErrUnexpectedArgument,
			"%s %s accepts only named parameters, got %d positional", verb, c, len(args))
	}
	return c.fetcher.Fetch(ctx, c.URL(), verb, params, c.node.auth)
}

func (c *Consumer) Get(ctx context.Context, params Params) (*Result, error) {
	return c.Call(ctx, VerbGet, params)
}

func (c *Consumer) Head(ctx context.Context, params Params) (*Result, error) {
	return c.Call(ctx, VerbHead, params)
}

func (c *Consumer) Post(ctx context.Context, params Params) (*Result, error) {
	return c.Call(ctx, VerbPost, params)
}

func (c *Consumer) Put(ctx context.Context, params Params) (*Result, error) {
	return c.Call(ctx, VerbPut, params)
}

func (c *Consumer) Patch(ctx context.Context, params Params) (*Result, error) {
	return c.Call(ctx, VerbPatch, params)
}

func (c *Consumer) Delete(ctx context.Context, params Params) (*Result, error) {
	return c.Call(ctx, VerbDelete, params)
}

func (c *Consumer) Options(ctx context.Context, params Params) (*Result, error) {
	return c.Call(ctx, VerbOptions, params)
}
