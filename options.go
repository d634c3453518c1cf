package jstok

// Option configures a Parser at construction time, in the functional
// options style used throughout hashicorp/consul (for example
// lib/hoststats.NewCollector's CollectorOption).
type Option func(*config)

type config struct {
	maxDepth    int
	parentLinks bool
	permissive  bool
}

func defaultConfig() config {
	return config{
		maxDepth:    DefaultMaxDepth,
		parentLinks: false,
		permissive:  false,
	}
}

// WithMaxDepth sets the frame stack's capacity: the deepest nesting of
// objects and arrays the Parser will accept before returning ErrDepth.
// The zero value from New's variadic opts keeps DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithParentLinks enables population of Token.Parent. Off by default,
// matching the reference implementation's opt-in JSTOK_PARENT_LINKS.
func WithParentLinks(enabled bool) Option {
	return func(c *config) { c.parentLinks = enabled }
}

// WithPermissive relaxes strict-mode grammar: leading zeros in numbers
// are tolerated, and more than one top-level value is accepted
// (separated by whitespace) instead of rejected. Strict mode is the
// default, matching spec section 6's "Strict mode (on)" default.
func WithPermissive(enabled bool) Option {
	return func(c *config) { c.permissive = enabled }
}
