package feature

import (
	"fmt"

	"github.com/windwiki/featuretools/primitive"
	"github.com/windwiki/featuretools/schema"
)

// Transform applies an elementwise primitive to one or more sibling
// features on the same entity.
type Transform struct {
	entity *schema.Entity
	prim   *primitive.Instance
	bases  []Feature
}

// NewTransform applies prim to the ordered base features. All bases must
// live on the same entity.
func NewTransform(prim *primitive.Instance, bases []Feature) *Transform {
	if prim == nil || len(bases) == 0 {
		panic("feature: NewTransform requires a primitive and at least one base")
	}

	return &Transform{entity: bases[0].Entity(), prim: prim, bases: bases}
}

func (f *Transform) Name() string {
	return f.prim.DisplayName(baseNames(f.bases))
}

func (f *Transform) Entity() *schema.Entity          { return f.entity }
func (f *Transform) EntityID() string                { return f.entity.ID() }
func (f *Transform) Depth() int                      { return 1 + maxDepth(f.bases) }
func (f *Transform) Bases() []Feature                { return f.bases }
func (f *Transform) Primitive() *primitive.Instance  { return f.prim }
func (f *Transform) Type() *schema.VarType           { return returnType(f.prim, f.bases) }
func (f *Transform) NumOutputs() int                 { return f.prim.NumOutputs() }
func (f *Transform) Dependencies(deep bool) []Feature { return dependencies(f, deep) }
func (f *Transform) UniqueName() string              { return uniqueName(f) }

// GroupbyTransform is a Transform additionally partitioned by a groupby
// key feature (an Id-typed identity or single-hop direct feature).
type GroupbyTransform struct {
	entity  *schema.Entity
	prim    *primitive.Instance
	bases   []Feature
	groupby Feature
}

// NewGroupbyTransform applies prim to bases within partitions of groupby.
func NewGroupbyTransform(prim *primitive.Instance, bases []Feature, groupby Feature) *GroupbyTransform {
	if prim == nil || len(bases) == 0 || groupby == nil {
		panic("feature: NewGroupbyTransform requires a primitive, bases, and a groupby key")
	}

	return &GroupbyTransform{entity: bases[0].Entity(), prim: prim, bases: bases, groupby: groupby}
}

// Groupby returns the partition key feature.
func (f *GroupbyTransform) Groupby() Feature { return f.groupby }

func (f *GroupbyTransform) Name() string {
	return f.prim.DisplayName(baseNames(f.bases)) + " by " + f.groupby.Name()
}

func (f *GroupbyTransform) Entity() *schema.Entity         { return f.entity }
func (f *GroupbyTransform) EntityID() string               { return f.entity.ID() }
func (f *GroupbyTransform) Depth() int                     { return 1 + maxDepth(f.bases) }
func (f *GroupbyTransform) Bases() []Feature               { return f.bases }
func (f *GroupbyTransform) Primitive() *primitive.Instance { return f.prim }
func (f *GroupbyTransform) Type() *schema.VarType          { return returnType(f.prim, f.bases) }
func (f *GroupbyTransform) NumOutputs() int                { return f.prim.NumOutputs() }
func (f *GroupbyTransform) Dependencies(deep bool) []Feature {
	return dependencies(f, deep)
}
func (f *GroupbyTransform) UniqueName() string { return uniqueName(f) }

// Where is the equality predicate attached to an aggregation: only child
// rows where Base equals Value are rolled up.
type Where struct {
	// Base is the conditioned feature on the child entity (or pulled in
	// from a descendant through a direct feature).
	Base Feature

	// Value is the interesting literal being matched.
	Value any
}

// Name renders the predicate the way display names embed it.
func (w *Where) Name() string { return fmt.Sprintf("%s = %v", w.Base.Name(), w.Value) }

// Aggregation rolls one or more child-entity features up to a parent
// entity across exactly one relationship, optionally filtered by a
// where-clause over an interesting value.
type Aggregation struct {
	parent *schema.Entity
	rel    *schema.Relationship
	prim   *primitive.Instance
	bases  []Feature
	where  *Where
}

// NewAggregation rolls bases (features on rel.Child) up to rel.Parent.
func NewAggregation(rel *schema.Relationship, prim *primitive.Instance, bases []Feature, where *Where) *Aggregation {
	if rel == nil || prim == nil || len(bases) == 0 {
		panic("feature: NewAggregation requires a relationship, a primitive, and bases")
	}

	return &Aggregation{parent: rel.Parent, rel: rel, prim: prim, bases: bases, where: where}
}

// Relationship returns the traversed child→parent edge.
func (f *Aggregation) Relationship() *schema.Relationship { return f.rel }

// Where returns the optional where-clause, nil when unconditioned.
func (f *Aggregation) Where() *Where { return f.where }

func (f *Aggregation) Name() string {
	seg := f.rel.ChildSegment()
	suffix := ""
	if f.where != nil {
		suffix = " WHERE " + f.where.Name()
	}

	// Baseless primitives name the child alone: COUNT(log WHERE ...).
	if f.prim.Baseless() {
		return f.prim.DisplayName([]string{seg + suffix})
	}

	names := make([]string, len(f.bases))
	var i int
	var b Feature
	for i, b = range f.bases {
		names[i] = seg + "." + b.Name()
	}
	names[len(names)-1] += suffix

	return f.prim.DisplayName(names)
}

func (f *Aggregation) Entity() *schema.Entity         { return f.parent }
func (f *Aggregation) EntityID() string               { return f.parent.ID() }
func (f *Aggregation) Depth() int                     { return 1 + maxDepth(f.bases) }
func (f *Aggregation) Bases() []Feature               { return f.bases }
func (f *Aggregation) Primitive() *primitive.Instance { return f.prim }
func (f *Aggregation) Type() *schema.VarType          { return returnType(f.prim, f.bases) }
func (f *Aggregation) NumOutputs() int                { return f.prim.NumOutputs() }
func (f *Aggregation) Dependencies(deep bool) []Feature {
	return dependencies(f, deep)
}
func (f *Aggregation) UniqueName() string { return uniqueName(f) }

// baseNames renders the display names of the base features.
func baseNames(bases []Feature) []string {
	names := make([]string, len(bases))
	var i int
	var b Feature
	for i, b = range bases {
		names[i] = b.Name()
	}

	return names
}

// returnType resolves the declared output type; a nil declaration means
// the output follows the first input.
func returnType(prim *primitive.Instance, bases []Feature) *schema.VarType {
	if t := prim.ReturnType(); t != nil {
		return t
	}

	return bases[0].Type()
}
