// SPDX-License-Identifier: MIT
// Package: featuretools/primitive
//
// types.go — Kind, Spec, Instance, Ref, and sentinel errors.
//
// Error policy (explicit and strict):
//   • Only sentinel variables (package-level) are exposed.
//   • Callers MUST use errors.Is(err, ErrX) to branch on semantics.
//   • Implementations attach context with %w wrapping, never by mutating
//     the sentinel message.

package primitive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/windwiki/featuretools/schema"
)

// Sentinel errors for primitive resolution and option validation.
var (
	// ErrUnknownPrimitive indicates a name that matches no registered
	// primitive of the expected category.
	ErrUnknownPrimitive = errors.New("primitive: unknown primitive")

	// ErrWrongKind indicates a primitive explicitly supplied for one
	// category that belongs to another.
	ErrWrongKind = errors.New("primitive: wrong primitive category")

	// ErrUnknownOption indicates an unrecognized primitive-option key.
	ErrUnknownOption = errors.New("primitive: unrecognized primitive option")

	// ErrOptionShape indicates an option value of the wrong shape
	// (entities must be []string, variables map[string][]string).
	ErrOptionShape = errors.New("primitive: incorrect type formatting for primitive option")

	// ErrConflictingOptions indicates overlapping directives: one primitive
	// named by multiple entries, or include_* and ignore_* of the same
	// scope in the same slot.
	ErrConflictingOptions = errors.New("primitive: conflicting primitive options")

	// ErrOptionSlotCount indicates a per-slot option list whose length does
	// not match the primitive's number of input slots.
	ErrOptionSlotCount = errors.New("primitive: number of options does not match number of inputs")
)

// Kind is the closed primitive category tag.
type Kind int

const (
	// KindAggregation rolls child rows up to a parent entity.
	KindAggregation Kind = iota

	// KindTransform applies elementwise to sibling features.
	KindTransform

	// KindGroupbyTransform applies a transform within row partitions.
	KindGroupbyTransform
)

// String returns the human category wording used in error messages.
func (k Kind) String() string {
	switch k {
	case KindAggregation:
		return "aggregation"
	case KindTransform:
		return "transform"
	case KindGroupbyTransform:
		return "groupby transform"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NameFunc renders a custom display name from the formatted base-feature
// names (e.g. "a + b" for add_numeric).
type NameFunc func(inst *Instance, base []string) string

// Spec is the shared descriptor record behind every primitive variant.
type Spec struct {
	// Name is the canonical lower-case registry name.
	Name string

	// Kind is the category tag.
	Kind Kind

	// InputTypes lists the accepted ordered input signatures (overloaded
	// arity is expressed as multiple signatures). All signatures of one
	// primitive share the same arity per slot-option rules.
	InputTypes [][]*schema.VarType

	// ReturnType is the declared output type; nil means "same type as the
	// first input".
	ReturnType *schema.VarType

	// Commutative marks two-input primitives whose unordered argument
	// pairs must be deduplicated.
	Commutative bool

	// StackOnSelf permits nesting inside another instance of the same
	// primitive.
	StackOnSelf bool

	// StackOn restricts which base-primitive categories this primitive may
	// be applied on top of; nil allows all.
	StackOn []Kind

	// NumOutputs is the declared output arity (≥ 1); values above one make
	// the feature expose indexable slot sub-features.
	NumOutputs int

	// Baseless drops the base argument from display names (COUNT(log)).
	Baseless bool

	// NameFmt, when non-nil, overrides the default "NAME(b1, b2)" display.
	NameFmt NameFunc
}

// Instance is an immutable resolved primitive descriptor, optionally
// carrying constructor-bound parameters (args is their display rendering).
type Instance struct {
	spec       Spec
	args       string
	numOutputs int
}

// New builds a custom primitive instance from a Spec. The registry covers
// the standard surface; New exists for domain-specific primitives supplied
// directly as pool instances.
func New(spec Spec) *Instance { return newInstance(spec) }

// newInstance builds an Instance from a Spec, normalizing NumOutputs.
func newInstance(spec Spec) *Instance {
	n := spec.NumOutputs
	if n < 1 {
		n = 1
	}

	return &Instance{spec: spec, numOutputs: n}
}

// Name returns the canonical lower-case primitive name.
func (p *Instance) Name() string { return p.spec.Name }

// Kind returns the category tag.
func (p *Instance) Kind() Kind { return p.spec.Kind }

// InputTypes returns the accepted ordered input signatures.
func (p *Instance) InputTypes() [][]*schema.VarType { return p.spec.InputTypes }

// Arity returns the number of input slots (shared by all signatures).
func (p *Instance) Arity() int {
	if len(p.spec.InputTypes) == 0 {
		return 0
	}

	return len(p.spec.InputTypes[0])
}

// ReturnType returns the declared output type; nil means the output type
// follows the first input.
func (p *Instance) ReturnType() *schema.VarType { return p.spec.ReturnType }

// Commutative reports whether unordered argument pairs are equivalent.
func (p *Instance) Commutative() bool { return p.spec.Commutative }

// StackOnSelf reports whether the primitive may nest inside itself.
func (p *Instance) StackOnSelf() bool { return p.spec.StackOnSelf }

// CanStackOn reports whether this primitive may be applied on top of a
// feature produced by a primitive of category k.
func (p *Instance) CanStackOn(k Kind) bool {
	if p.spec.StackOn == nil {
		return true
	}
	var allowed Kind
	for _, allowed = range p.spec.StackOn {
		if allowed == k {
			return true
		}
	}

	return false
}

// NumOutputs returns the output arity (≥ 1).
func (p *Instance) NumOutputs() int { return p.numOutputs }

// Baseless reports whether display names omit the base argument.
func (p *Instance) Baseless() bool { return p.spec.Baseless }

// Args returns the display rendering of constructor-bound parameters.
func (p *Instance) Args() string { return p.args }

// DisplayName renders the canonical feature display name over the already
// formatted base names, honoring a custom NameFmt when declared.
func (p *Instance) DisplayName(base []string) string {
	if p.spec.NameFmt != nil {
		return p.spec.NameFmt(p, base)
	}

	return strings.ToUpper(p.spec.Name) + "(" + strings.Join(base, ", ") + ")"
}

// Ref names a primitive for pool resolution: either a registry name
// (string, case-insensitive) or an already configured *Instance.
type Ref any
