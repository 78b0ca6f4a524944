package slash

import "github.com/spf13/cast"

// Args holds the decoded arguments of an invocation. A declared option the
// user left out is present with a nil value, unless the command declared a
// default for it; then it is absent and lookups fall back to the default.
type Args struct {
	values   map[string]any
	defaults map[string]any
}

// NewArgs builds Args from explicit values and defaults. It is mostly useful
// in tests of handlers.
func NewArgs(values, defaults map[string]any) Args {
	return Args{values: values, defaults: defaults}
}

// Has reports whether name is present, including present-but-nil.
func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Lookup returns the value for name, falling back to the declared default.
func (a Args) Lookup(name string) (any, bool) {
	if v, ok := a.values[name]; ok {
		return v, true
	}
	v, ok := a.defaults[name]
	return v, ok
}

// Value returns the value for name or nil.
func (a Args) Value(name string) any {
	v, _ := a.Lookup(name)
	return v
}

// Map returns a copy of the present values, without defaults.
func (a Args) Map() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

func (a Args) String(name string) string { return cast.ToString(a.Value(name)) }
func (a Args) Int(name string) int64     { return cast.ToInt64(a.Value(name)) }
func (a Args) Bool(name string) bool     { return cast.ToBool(a.Value(name)) }

// ID returns a coerced identifier option, or 0 when absent.
func (a Args) ID(name string) int64 { return cast.ToInt64(a.Value(name)) }
