package resolve

import "strings"

// ChainSeparator joins package names in a formatted chain.
const ChainSeparator = " -> "

// Chain is an ordered path of package names. Chain[0] is the root of the
// search that produced it and the last element is the discovered dependent.
type Chain []string

// String formats the chain as "a -> b -> c".
func (c Chain) String() string { return strings.Join(c, ChainSeparator) }

// Prepend returns a new chain with names placed before c. The receiver is
// not modified.
func (c Chain) Prepend(names ...string) Chain {
	out := make(Chain, 0, len(names)+len(c))
	out = append(out, names...)
	return append(out, c...)
}

// Dependent returns the last package of the chain, or "" if it is empty.
func (c Chain) Dependent() string {
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1]
}

// Visited is an immutable set of package names. Adding a name returns a new
// set that shares structure with its parent, so each recursion branch holds
// its own view without copying. The nil *Visited is the empty set.
type Visited struct {
	name   string
	parent *Visited
}

// NewVisited returns a set holding names.
func NewVisited(names ...string) *Visited {
	var v *Visited
	for _, n := range names {
		v = v.With(n)
	}
	return v
}

// With returns a set holding the receiver's names plus name.
func (v *Visited) With(name string) *Visited {
	return &Visited{name: name, parent: v}
}

// Contains reports whether name is in the set. Sets are as deep as the
// recursion, so the linear walk stays short.
func (v *Visited) Contains(name string) bool {
	for n := v; n != nil; n = n.parent {
		if n.name == name {
			return true
		}
	}
	return false
}

// Len returns the number of names in the set.
func (v *Visited) Len() int {
	n := 0
	for ; v != nil; v = v.parent {
		n++
	}
	return n
}
