// Package schema: Variable, Entity, Relationship types, the semantic type
// lattice, and sentinel errors.
package schema

import "errors"

// Sentinel errors for schema graph operations.
var (
	// ErrEmptyEntitySet indicates a lookup against an entity set that holds no entities at all.
	ErrEmptyEntitySet = errors.New("schema: entity set has no entities")

	// ErrEntityNotFound indicates the requested entity id is not present in the set.
	ErrEntityNotFound = errors.New("schema: entity not found")

	// ErrVariableNotFound indicates the requested variable id is not present on the entity.
	ErrVariableNotFound = errors.New("schema: variable not found")

	// ErrDuplicateEntity indicates AddEntity was called with an id already registered.
	ErrDuplicateEntity = errors.New("schema: duplicate entity id")

	// ErrMissingIndex indicates an entity was declared without an Index-typed variable.
	ErrMissingIndex = errors.New("schema: entity has no index variable")
)

// VarType is a node in the semantic variable-type lattice. Types form a
// single-parent hierarchy rooted at AnyType; primitive signature matching
// uses Is (subtype compatibility), never pointer equality.
type VarType struct {
	name   string
	parent *VarType
}

// String returns the canonical lattice name of the type.
func (t *VarType) String() string { return t.name }

// Is reports whether t equals other or is a descendant of other in the
// lattice. A nil receiver or argument never matches.
func (t *VarType) Is(other *VarType) bool {
	if other == nil {
		return false
	}
	for cur := t; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}

	return false
}

// The built-in lattice. Discrete splits into Categorical/Ordinal/Boolean,
// and Id is a Categorical; Index is deliberately NOT Discrete so index
// columns never feed value primitives by accident.
var (
	// AnyType is the lattice root; every type Is(AnyType).
	AnyType = &VarType{name: "variable"}

	// Discrete covers finite-domain values.
	Discrete = &VarType{name: "discrete", parent: AnyType}

	// Categorical is an unordered Discrete.
	Categorical = &VarType{name: "categorical", parent: Discrete}

	// Ordinal is an ordered Discrete.
	Ordinal = &VarType{name: "ordinal", parent: Discrete}

	// Boolean is a two-valued Discrete.
	Boolean = &VarType{name: "boolean", parent: Discrete}

	// Id marks foreign-key variables referencing another entity's index.
	Id = &VarType{name: "id", parent: Categorical}

	// Index marks the unique row identifier of an entity.
	Index = &VarType{name: "index", parent: AnyType}

	// Numeric covers continuous numeric values.
	Numeric = &VarType{name: "numeric", parent: AnyType}

	// Datetime covers timestamps.
	Datetime = &VarType{name: "datetime", parent: AnyType}

	// TimeIndex marks the time index of an entity.
	TimeIndex = &VarType{name: "time_index", parent: Datetime}

	// Text covers free-form strings.
	Text = &VarType{name: "text", parent: AnyType}
)

// typesByName backs TypeByName; keys are the canonical lattice names.
var typesByName = map[string]*VarType{
	AnyType.name:     AnyType,
	Discrete.name:    Discrete,
	Categorical.name: Categorical,
	Ordinal.name:     Ordinal,
	Boolean.name:     Boolean,
	Id.name:          Id,
	Index.name:       Index,
	Numeric.name:     Numeric,
	Datetime.name:    Datetime,
	TimeIndex.name:   TimeIndex,
	Text.name:        Text,
}

// TypeByName resolves a lattice node by its canonical name.
// Used by fixture loaders; returns false for unknown names.
func TypeByName(name string) (*VarType, bool) {
	t, ok := typesByName[name]

	return t, ok
}

// Variable is a typed column within an Entity.
type Variable struct {
	// ID is the variable (column) identifier, unique within its entity.
	ID string

	// Type is the semantic lattice type used for primitive matching.
	Type *VarType

	// Entity is the owning entity id.
	Entity string

	// InterestingValues lists literal values worth conditioning a
	// where-clause aggregation on. Declaration order is preserved.
	InterestingValues []any
}

// Var constructs a Variable with the given id and type. The owning entity
// id is filled in by AddEntity.
func Var(id string, t *VarType) *Variable {
	return &Variable{ID: id, Type: t}
}

// Entity is a named relation with an ordered set of Variables and exactly
// one Index-typed index variable. Entities are immutable for the duration
// of a DFS run.
type Entity struct {
	id       string
	vars     []*Variable
	varsByID map[string]*Variable
	index    *Variable
}

// ID returns the entity identifier.
func (e *Entity) ID() string { return e.id }

// Variables returns the entity's variables in declaration order.
// The returned slice must not be mutated.
func (e *Entity) Variables() []*Variable { return e.vars }

// Variable resolves a variable by id, or fails with ErrVariableNotFound.
func (e *Entity) Variable(id string) (*Variable, error) {
	v, ok := e.varsByID[id]
	if !ok {
		return nil, ErrVariableNotFound
	}

	return v, nil
}

// HasVariable reports whether the entity declares the given variable id.
func (e *Entity) HasVariable(id string) bool {
	_, ok := e.varsByID[id]

	return ok
}

// Index returns the entity's index variable.
func (e *Entity) Index() *Variable { return e.index }

// Relationship is a directed foreign-key edge: Child.ChildVariable refers
// to Parent.ParentVariable (the parent's index).
type Relationship struct {
	// Parent is the referenced entity (the "one" side).
	Parent *Entity

	// ParentVariable is the parent's index variable.
	ParentVariable *Variable

	// Child is the referencing entity (the "many" side).
	Child *Entity

	// ChildVariable is the foreign-key variable on the child.
	ChildVariable *Variable

	// qualified is true when more than one relationship connects the same
	// child/parent pair, so name segments must carry the fk variable.
	qualified bool
}

// Qualified reports whether display-name segments for this relationship
// must disambiguate with the child foreign-key variable (e.g.
// "teams[home_team_id]").
func (r *Relationship) Qualified() bool { return r.qualified }

// ParentSegment is the display segment used when pulling a parent feature
// down to the child (direct features).
func (r *Relationship) ParentSegment() string {
	if r.qualified {
		return r.Parent.ID() + "[" + r.ChildVariable.ID + "]"
	}

	return r.Parent.ID()
}

// ChildSegment is the display segment used when rolling a child feature up
// to the parent (aggregation features).
func (r *Relationship) ChildSegment() string {
	if r.qualified {
		return r.Child.ID() + "[" + r.ChildVariable.ID + "]"
	}

	return r.Child.ID()
}
