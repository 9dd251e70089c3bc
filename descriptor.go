package restconsumer

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

// Verb is an HTTP method.
type Verb string

const (
	VerbGet     Verb = "GET"
	VerbHead    Verb = "HEAD"
	VerbPost    Verb = "POST"
	VerbPut     Verb = "PUT"
	VerbPatch   Verb = "PATCH"
	VerbDelete  Verb = "DELETE"
	VerbOptions Verb = "OPTIONS"
)

var supportedVerbs = map[Verb]bool{
	VerbGet:     true,
	VerbHead:    true,
	VerbPost:    true,
	VerbPut:     true,
	VerbPatch:   true,
	VerbDelete:  true,
	VerbOptions: true,
}

// ParseVerb normalises s to a supported Verb.
func ParseVerb(s string) (Verb, error) {
	v := Verb(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Supported() {
		return "", NewFailure(KindInvalidOptions, "unsupported HTTP verb %q", s)
	}
	return v, nil
}

// Supported reports whether the transport can issue v.
func (v Verb) Supported() bool {
	return supportedVerbs[v]
}

// HasBody reports whether parameters of v travel in the request body.
func (v Verb) HasBody() bool {
	return v == VerbPost || v == VerbPut || v == VerbPatch
}

// Auth holds basic-auth credentials declared on a descriptor node.
type Auth struct {
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
}

// String never reveals the password.
func (a *Auth) String() string {
	if a == nil {
		return "<none>"
	}
	return a.User + ":******"
}

// Descriptor declares one API path, the verbs it answers and its
// sub-resources. A Path may hold a single %name% placeholder; such a node is
// parameterized and needs a value before it can be called.
type Descriptor struct {
	Path     string                 `yaml:"path"`
	Verbs    []Verb                 `yaml:"verbs,omitempty"`
	Auth     *Auth                  `yaml:"auth,omitempty"`
	Children map[string]*Descriptor `yaml:"attrs,omitempty"`
}

var placeholderRE = regexp.MustCompile(`%(\w+)%`)

// Placeholder returns the name of the path placeholder, if any.
func (d *Descriptor) Placeholder() (string, bool) {
	m := placeholderRE.FindStringSubmatch(d.Path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Parameterized reports whether the path needs a caller-supplied value.
func (d *Descriptor) Parameterized() bool {
	_, ok := d.Placeholder()
	return ok
}

// Validate checks the whole tree: verbs must be supported and declared once,
// paths may hold at most one placeholder, children must not be nil.
func (d *Descriptor) Validate() error {
	return d.validate("root")
}

func (d *Descriptor) validate(at string) error {
	if d == nil {
		return NewFailure(KindInvalidOptions, "descriptor %s is nil", at)
	}

	if n := len(placeholderRE.FindAllString(d.Path, -1)); n > 1 {
		return NewFailure(KindInvalidOptions, "descriptor %s: path %q has %d placeholders, at most one allowed", at, d.Path, n)
	}

	seen := make(map[Verb]bool, len(d.Verbs))
	for _, verb := range d.Verbs {
		if !verb.Supported() {
			return NewFailure(KindInvalidOptions, "descriptor %s: unsupported verb %q", at, verb)
		}
		if seen[verb] {
			return NewFailure(KindInvalidOptions, "descriptor %s: verb %s declared twice", at, verb)
		}
		seen[verb] = true
	}

	for _, name := range d.childNames() {
		if name == "" {
			return NewFailure(KindInvalidOptions, "descriptor %s: empty child name", at)
		}
		if err := d.Children[name].validate(at + "." + name); err != nil {
			return err
		}
	}
	return nil
}

func (d *Descriptor) childNames() []string {
	names := make([]string, 0, len(d.Children))
	for name := range d.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of d.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	out := &Descriptor{Path: d.Path}
	if d.Verbs != nil {
		out.Verbs = append([]Verb(nil), d.Verbs...)
	}
	if d.Auth != nil {
		auth := *d.Auth
		out.Auth = &auth
	}
	if d.Children != nil {
		out.Children = make(map[string]*Descriptor, len(d.Children))
		for name, child := range d.Children {
			out.Children[name] = child.Clone()
		}
	}
	return out
}

// ParseDescriptor decodes a YAML descriptor tree and validates it.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadDescriptor reads a YAML descriptor tree from path.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file: %w", err)
	}
	return ParseDescriptor(data)
}

// UnmarshalYAML accepts verb names in any case.
func (v *Verb) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*v = Verb(strings.ToUpper(strings.TrimSpace(s)))
	return nil
}
