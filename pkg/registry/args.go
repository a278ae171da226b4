package registry

// Arg is one named constructor argument
type Arg struct {
	Name  string
	Value interface{}
}

// Args is an ordered list of named constructor arguments. Order is the
// insertion order of the keys as written in the document, which matters
// when nested construction has observable side effects.
type Args struct {
	pairs []Arg
}

// NewArgs creates an Args list from ordered pairs
func NewArgs(pairs ...Arg) Args {
	return Args{pairs: pairs}
}

// Append adds a named argument, preserving order
func (a *Args) Append(name string, value interface{}) {
	a.pairs = append(a.pairs, Arg{Name: name, Value: value})
}

// Get returns the value for name
func (a Args) Get(name string) (interface{}, bool) {
	for _, pair := range a.pairs {
		if pair.Name == name {
			return pair.Value, true
		}
	}
	return nil, false
}

// String returns the value for name as a string, or the empty string
func (a Args) String(name string) string {
	if v, ok := a.Get(name); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Int returns the value for name as an int64, or zero
func (a Args) Int(name string) int64 {
	if v, ok := a.Get(name); ok {
		if i, ok := v.(int64); ok {
			return i
		}
	}
	return 0
}

// Bool returns the value for name as a bool, or false
func (a Args) Bool(name string) bool {
	if v, ok := a.Get(name); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Names returns the argument names in order
func (a Args) Names() []string {
	names := make([]string, len(a.pairs))
	for i, pair := range a.pairs {
		names[i] = pair.Name
	}
	return names
}

// Pairs returns the ordered arguments
func (a Args) Pairs() []Arg {
	pairs := make([]Arg, len(a.pairs))
	copy(pairs, a.pairs)
	return pairs
}

// Len returns the number of arguments
func (a Args) Len() int {
	return len(a.pairs)
}

// Values returns the argument values in order, for bridging named
// arguments into a positional entry point.
func (a Args) Values() []interface{} {
	values := make([]interface{}, len(a.pairs))
	for i, pair := range a.pairs {
		values[i] = pair.Value
	}
	return values
}
