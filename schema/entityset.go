package schema

import "fmt"

// EntitySet is the read-only schema graph: an ordered collection of
// entities plus the directed child→parent relationships between them.
// The graph may contain diamonds (two paths to a common ancestor); only a
// repeated entity within one linear path counts as a loop.
type EntitySet struct {
	id            string
	entities      []*Entity
	byID          map[string]*Entity
	relationships []*Relationship
}

// NewEntitySet creates an empty entity set with the given id.
func NewEntitySet(id string) *EntitySet {
	return &EntitySet{
		id:   id,
		byID: make(map[string]*Entity),
	}
}

// ID returns the entity-set identifier.
func (es *EntitySet) ID() string { return es.id }

// AddEntity registers a new entity with the given ordered variables. The
// first Index-typed variable becomes the entity index; an entity without
// one fails with ErrMissingIndex.
func (es *EntitySet) AddEntity(id string, vars ...*Variable) (*Entity, error) {
	if _, ok := es.byID[id]; ok {
		return nil, fmt.Errorf("schema: AddEntity(%q): %w", id, ErrDuplicateEntity)
	}

	e := &Entity{
		id:       id,
		vars:     make([]*Variable, 0, len(vars)),
		varsByID: make(map[string]*Variable, len(vars)),
	}
	var v *Variable
	for _, v = range vars {
		v.Entity = id
		e.vars = append(e.vars, v)
		e.varsByID[v.ID] = v
		if e.index == nil && v.Type.Is(Index) {
			e.index = v
		}
	}
	if e.index == nil {
		return nil, fmt.Errorf("schema: AddEntity(%q): %w", id, ErrMissingIndex)
	}

	es.entities = append(es.entities, e)
	es.byID[id] = e

	return e, nil
}

// Entity resolves an entity by id. It distinguishes a completely empty set
// (ErrEmptyEntitySet) from a simply missing id (ErrEntityNotFound).
func (es *EntitySet) Entity(id string) (*Entity, error) {
	if len(es.entities) == 0 {
		return nil, fmt.Errorf("schema: entity %q: %w", id, ErrEmptyEntitySet)
	}
	e, ok := es.byID[id]
	if !ok {
		return nil, fmt.Errorf("schema: entity %q not in entity set %s: %w", id, es.id, ErrEntityNotFound)
	}

	return e, nil
}

// Entities returns all entities in declaration order.
func (es *EntitySet) Entities() []*Entity { return es.entities }

// Relationships returns all relationships in declaration order.
func (es *EntitySet) Relationships() []*Relationship { return es.relationships }

// AddRelationship declares a foreign-key edge child.childVar → parent's
// index. A non-Id child variable is coerced to Id. When a second
// relationship joins the same child/parent pair, both become qualified so
// feature names stay unambiguous.
func (es *EntitySet) AddRelationship(childID, childVar, parentID string) (*Relationship, error) {
	child, err := es.Entity(childID)
	if err != nil {
		return nil, err
	}
	parent, err := es.Entity(parentID)
	if err != nil {
		return nil, err
	}
	fk, err := child.Variable(childVar)
	if err != nil {
		return nil, fmt.Errorf("schema: AddRelationship %s.%s: %w", childID, childVar, err)
	}

	// Foreign keys are ids by definition.
	if !fk.Type.Is(Id) {
		fk.Type = Id
	}

	r := &Relationship{
		Parent:         parent,
		ParentVariable: parent.Index(),
		Child:          child,
		ChildVariable:  fk,
	}

	// Mark every relationship over the same entity pair as qualified.
	var prior *Relationship
	for _, prior = range es.relationships {
		if prior.Child == child && prior.Parent == parent {
			prior.qualified = true
			r.qualified = true
		}
	}

	es.relationships = append(es.relationships, r)

	return r, nil
}

// ForwardRelationships returns the relationships in which the entity is the
// child: one hop toward a parent. Declaration order.
func (es *EntitySet) ForwardRelationships(entityID string) []*Relationship {
	var out []*Relationship
	var r *Relationship
	for _, r = range es.relationships {
		if r.Child.ID() == entityID {
			out = append(out, r)
		}
	}

	return out
}

// BackwardRelationships returns the relationships in which the entity is
// the parent: one hop toward a child. Declaration order.
func (es *EntitySet) BackwardRelationships(entityID string) []*Relationship {
	var out []*Relationship
	var r *Relationship
	for _, r = range es.relationships {
		if r.Parent.ID() == entityID {
			out = append(out, r)
		}
	}

	return out
}

// ForwardPaths enumerates every loop-free chain of forward relationships
// from start to target with at most maxHops hops, in declaration-driven
// order. Parallel paths through diamond topologies are all reported; only
// a repeated entity within a single chain is rejected.
func (es *EntitySet) ForwardPaths(startID, targetID string, maxHops int) [][]*Relationship {
	var paths [][]*Relationship
	seen := map[string]bool{startID: true}

	var walk func(at string, path []*Relationship)
	walk = func(at string, path []*Relationship) {
		if at == targetID && len(path) > 0 {
			paths = append(paths, append([]*Relationship(nil), path...))

			return
		}
		if len(path) >= maxHops {
			return
		}
		var r *Relationship
		for _, r = range es.ForwardRelationships(at) {
			next := r.Parent.ID()
			if seen[next] {
				continue
			}
			seen[next] = true
			walk(next, append(path, r))
			seen[next] = false
		}
	}
	walk(startID, nil)

	return paths
}

// SetInterestingValues declares the literal values of a variable worth
// conditioning where-clause aggregations on, replacing any prior list.
func (es *EntitySet) SetInterestingValues(entityID, variableID string, values ...any) error {
	e, err := es.Entity(entityID)
	if err != nil {
		return err
	}
	v, err := e.Variable(variableID)
	if err != nil {
		return fmt.Errorf("schema: SetInterestingValues %s.%s: %w", entityID, variableID, err)
	}
	v.InterestingValues = values

	return nil
}
