package fromenv

import "sort"

// Footprint is the set of variable names consumed to produce a decoded
// value. It is built during a decode call and must not be mutated after the
// call returns. Unrelated keys of the source mapping never appear here.
type Footprint map[string]struct{}

// Has reports whether the variable name was consumed.
func (f Footprint) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Names returns the consumed variable names in sorted order.
func (f Footprint) Names() []string {
	out := make([]string, 0, len(f))
	for name := range f {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

func (f Footprint) add(name string) {
	f[name] = struct{}{}
}
