package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ExtendsPath is the chain of environments currently being resolved, outermost first.
type ExtendsPath []string

// Enter returns the path extended by name. It fails with ErrCyclicExtends when
// name is already on the path.
func (p ExtendsPath) Enter(name string) (ExtendsPath, error) {
	if i := slices.Index(p, name); i >= 0 {
		cycle := strings.Join(append(slices.Clone(p[i:]), name), " -> ")
		return p, zerr.With(zerr.Wrap(ErrCyclicExtends, "resolve extends"), "cycle", cycle)
	}
	return append(slices.Clone(p), name), nil
}
