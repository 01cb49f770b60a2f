package feature

import (
	"fmt"

	"github.com/windwiki/featuretools/primitive"
	"github.com/windwiki/featuretools/schema"
)

// Feature is an immutable node in the symbolic feature DAG.
type Feature interface {
	// Name is the canonical display name, also the per-entity dedup key.
	Name() string

	// Entity is the entity the feature is defined on.
	Entity() *schema.Entity

	// EntityID is shorthand for Entity().ID().
	EntityID() string

	// Depth is the number of primitive-composition layers above raw
	// identity variables.
	Depth() int

	// Bases returns the ordered base features (nil for identity features).
	Bases() []Feature

	// Primitive returns the applied primitive descriptor; nil for identity
	// and direct features.
	Primitive() *primitive.Instance

	// Type is the declared output variable type.
	Type() *schema.VarType

	// NumOutputs is the output arity; values above one expose indexable
	// Slice sub-features.
	NumOutputs() int

	// Dependencies returns the features this feature is built from, in
	// stable order without duplicates. With deep=true the transitive
	// closure is returned.
	Dependencies(deep bool) []Feature

	// UniqueName is the entity-qualified dedup/equality key.
	UniqueName() string
}

// uniqueName is the shared UniqueName rendering.
func uniqueName(f Feature) string { return f.EntityID() + ": " + f.Name() }

// directDeps collects the immediate dependencies of a feature: bases plus
// any where-clause base and groupby key.
func directDeps(f Feature) []Feature {
	deps := append([]Feature(nil), f.Bases()...)
	if a, ok := f.(*Aggregation); ok && a.where != nil {
		deps = append(deps, a.where.Base)
	}
	if g, ok := f.(*GroupbyTransform); ok {
		deps = append(deps, g.groupby)
	}
	if s, ok := f.(*Slice); ok {
		deps = append(deps, s.base)
	}

	return deps
}

// dependencies is the shared Dependencies implementation: stable order,
// deduplicated by UniqueName.
func dependencies(f Feature, deep bool) []Feature {
	var out []Feature
	seen := make(map[string]bool)

	var collect func(g Feature)
	collect = func(g Feature) {
		var d Feature
		for _, d = range directDeps(g) {
			if seen[d.UniqueName()] {
				continue
			}
			seen[d.UniqueName()] = true
			out = append(out, d)
			if deep {
				collect(d)
			}
		}
	}
	collect(f)

	return out
}

// maxDepth returns the deepest Depth among the given features, 0 when none.
func maxDepth(feats []Feature) int {
	depth := 0
	var f Feature
	for _, f = range feats {
		if f.Depth() > depth {
			depth = f.Depth()
		}
	}

	return depth
}

// Identity wraps one Variable directly: depth 0, the atoms every other
// feature is ultimately built from.
type Identity struct {
	entity   *schema.Entity
	variable *schema.Variable
}

// NewIdentity wraps a variable of the given entity.
func NewIdentity(e *schema.Entity, v *schema.Variable) *Identity {
	if e == nil || v == nil {
		panic("feature: NewIdentity(nil)")
	}

	return &Identity{entity: e, variable: v}
}

// Variable returns the wrapped variable.
func (f *Identity) Variable() *schema.Variable { return f.variable }

func (f *Identity) Name() string                    { return f.variable.ID }
func (f *Identity) Entity() *schema.Entity          { return f.entity }
func (f *Identity) EntityID() string                { return f.entity.ID() }
func (f *Identity) Depth() int                      { return 0 }
func (f *Identity) Bases() []Feature                { return nil }
func (f *Identity) Primitive() *primitive.Instance  { return nil }
func (f *Identity) Type() *schema.VarType           { return f.variable.Type }
func (f *Identity) NumOutputs() int                 { return 1 }
func (f *Identity) Dependencies(deep bool) []Feature { return dependencies(f, deep) }
func (f *Identity) UniqueName() string              { return uniqueName(f) }

// Direct pulls a feature computed on a parent entity down to a child entity.
// The relationship path is kept flat: wrapping a Direct base concatenates
// paths instead of nesting, so `A.(B.C)` and `A.B.C` are one feature.
type Direct struct {
	entity *schema.Entity // the child end of the first hop
	path   []*schema.Relationship
	base   Feature
}

// NewDirect pulls base (a feature on rel.Parent) down to rel.Child,
// flattening Direct-of-Direct into a single concatenated path.
func NewDirect(rel *schema.Relationship, base Feature) *Direct {
	if rel == nil || base == nil {
		panic("feature: NewDirect(nil)")
	}

	path := []*schema.Relationship{rel}
	if d, ok := base.(*Direct); ok {
		path = append(path, d.path...)
		base = d.base
	}

	return &Direct{entity: rel.Child, path: path, base: base}
}

// Path returns the flat relationship chain, first hop first.
func (f *Direct) Path() []*schema.Relationship { return f.path }

// Base returns the feature on the terminal parent entity.
func (f *Direct) Base() Feature { return f.base }

// SourceEntityID is the terminal parent entity the value originates from.
func (f *Direct) SourceEntityID() string { return f.base.EntityID() }

func (f *Direct) Name() string {
	name := ""
	var r *schema.Relationship
	for _, r = range f.path {
		name += r.ParentSegment() + "."
	}

	return name + f.base.Name()
}

func (f *Direct) Entity() *schema.Entity          { return f.entity }
func (f *Direct) EntityID() string                { return f.entity.ID() }
func (f *Direct) Depth() int                      { return f.base.Depth() }
func (f *Direct) Bases() []Feature                { return []Feature{f.base} }
func (f *Direct) Primitive() *primitive.Instance  { return f.base.Primitive() }
func (f *Direct) Type() *schema.VarType           { return f.base.Type() }
func (f *Direct) NumOutputs() int                 { return f.base.NumOutputs() }
func (f *Direct) Dependencies(deep bool) []Feature { return dependencies(f, deep) }
func (f *Direct) UniqueName() string              { return uniqueName(f) }

// Slice is the i-th output slot of a multi-output feature, a first-class
// sub-feature that later levels can stack on independently.
type Slice struct {
	base Feature
	n    int
}

// NewSlice indexes output slot n of a multi-output base feature.
func NewSlice(base Feature, n int) *Slice {
	if base == nil {
		panic("feature: NewSlice(nil)")
	}
	if n < 0 || n >= base.NumOutputs() {
		panic("feature: NewSlice index out of range")
	}

	return &Slice{base: base, n: n}
}

// Base returns the multi-output feature being indexed.
func (f *Slice) Base() Feature { return f.base }

// N returns the slot index.
func (f *Slice) N() int { return f.n }

func (f *Slice) Name() string                    { return fmt.Sprintf("%s[%d]", f.base.Name(), f.n) }
func (f *Slice) Entity() *schema.Entity          { return f.base.Entity() }
func (f *Slice) EntityID() string                { return f.base.EntityID() }
func (f *Slice) Depth() int                      { return f.base.Depth() }
func (f *Slice) Bases() []Feature                { return []Feature{f.base} }
func (f *Slice) Primitive() *primitive.Instance  { return f.base.Primitive() }
func (f *Slice) Type() *schema.VarType           { return f.base.Type() }
func (f *Slice) NumOutputs() int                 { return 1 }
func (f *Slice) Dependencies(deep bool) []Feature { return dependencies(f, deep) }
func (f *Slice) UniqueName() string              { return uniqueName(f) }
