// SPDX-License-Identifier: MIT
// Package: featuretools/primitive
//
// registry.go — the closed name→primitive registry and pool resolution.
//
// Design contract (strict):
//   - Registries are populated once at package init from standard.go and
//     never mutated afterwards; lookup is case-insensitive.
//   - Resolve normalizes a mixed list of names and configured instances
//     into immutable descriptors, failing fast before any enumeration.
//   - Groupby-transform pools resolve against the transform registry: the
//     category wording in errors is "transform" by design of the surface.

package primitive

import (
	"fmt"
	"strings"
)

// registries keyed by resolution category. Groupby shares the transform
// registry (see doc.go).
var (
	aggRegistry   = map[string]func() *Instance{}
	transRegistry = map[string]func() *Instance{}
)

// register adds a factory to the category registry. Called from init only.
func register(kind Kind, factory func() *Instance) {
	name := factory().Name()
	switch kind {
	case KindAggregation:
		aggRegistry[name] = factory
	default:
		transRegistry[name] = factory
	}
}

// registryFor maps a resolution category to its registry and the category
// wording used in error messages.
func registryFor(kind Kind) (map[string]func() *Instance, string) {
	if kind == KindAggregation {
		return aggRegistry, "aggregation"
	}

	// Transform and groupby-transform pools draw from the same registry.
	return transRegistry, "transform"
}

// Resolve normalizes refs into primitive descriptors for the given pool
// category. String refs are case-insensitive registry lookups; *Instance
// refs are validated against the category and passed through unchanged.
//
// Errors:
//   - ErrUnknownPrimitive — a name matches nothing in the category registry.
//   - ErrWrongKind        — an instance belongs to another category.
func Resolve(kind Kind, refs []Ref) ([]*Instance, error) {
	reg, wording := registryFor(kind)
	out := make([]*Instance, 0, len(refs))

	var ref Ref
	for _, ref = range refs {
		switch r := ref.(type) {
		case string:
			factory, ok := reg[strings.ToLower(r)]
			if !ok {
				return nil, fmt.Errorf("unknown %s primitive %q: %w", wording, r, ErrUnknownPrimitive)
			}
			out = append(out, factory())
		case *Instance:
			if !kindCompatible(kind, r.Kind()) {
				return nil, fmt.Errorf("primitive %q in %s pool is not an %s primitive: %w",
					r.Name(), wording, wording, ErrWrongKind)
			}
			out = append(out, r)
		default:
			return nil, fmt.Errorf("primitive reference %T is neither a name nor an instance: %w",
				ref, ErrUnknownPrimitive)
		}
	}

	return out, nil
}

// kindCompatible reports whether an instance of kind got may serve in a
// pool of kind want. Transforms serve both transform and groupby pools.
func kindCompatible(want, got Kind) bool {
	if want == KindAggregation {
		return got == KindAggregation
	}

	return got == KindTransform || got == KindGroupbyTransform
}

// DefaultAggregation returns the default aggregation pool, in fixed order.
func DefaultAggregation() []*Instance {
	return []*Instance{
		Sum(), Std(), Max(), Skew(), Min(), Mean(),
		Count(), PercentTrue(), NumUnique(), Mode(),
	}
}

// DefaultTransform returns the default transform pool, in fixed order.
func DefaultTransform() []*Instance {
	return []*Instance{
		Day(), Year(), Month(), Weekday(), NumWords(), NumCharacters(),
	}
}

// DefaultWhere returns the default pool of aggregation primitives eligible
// to carry where-clauses.
func DefaultWhere() []*Instance {
	return []*Instance{Count()}
}
