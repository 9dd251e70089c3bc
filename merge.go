package restconsumer

// Merge layers override on top of base and returns a new tree; neither input
// is modified. For every node present in override, a non-empty Path, a
// non-nil Verbs slice and a non-nil Auth replace the base values. Children
// are merged by name, recursively, and children only present on one side are
// copied.
func Merge(base, override *Descriptor) *Descriptor {
	if base == nil {
		return override.Clone()
	}
	if override == nil {
		return base.Clone()
	}

	out := base.Clone()
	if override.Path != "" {
		out.Path = override.Path
	}
	if override.Verbs != nil {
		out.Verbs = append([]Verb(nil), override.Verbs...)
	}
	if override.Auth != nil {
		auth := *override.Auth
		out.Auth = &auth
	}

	if len(override.Children) > 0 && out.Children == nil {
		out.Children = make(map[string]*Descriptor, len(override.Children))
	}
	for name, child := range override.Children {
		out.Children[name] = Merge(base.Children[name], child)
	}
	return out
}

// WithAuth returns a copy of d whose root declares auth. Nodes without their
// own Auth inherit it.
func WithAuth(d *Descriptor, auth Auth) *Descriptor {
	return Merge(d, &Descriptor{Auth: &auth})
}
