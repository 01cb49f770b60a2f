// Package schema defines the read-only relational schema graph consumed by
// the DFS engine: typed Variables, Entities, directed child→parent
// Relationships, and the EntitySet container with its traversal primitives.
//
// The schema is purely informational: no row data is ever stored or scanned.
// All accessors return declaration-ordered slices so that downstream
// enumeration is deterministic — no map iteration order escapes this package.
//
// Variable semantics are drawn from a small type lattice rooted at AnyType;
// primitive input matching uses subtype compatibility (VarType.Is), not
// exact equality.
//
// Errors:
//
//   - ErrEmptyEntitySet    — lookup on a set with no entities at all.
//   - ErrEntityNotFound    — entity id not present.
//   - ErrVariableNotFound  — variable id not present on the entity.
//   - ErrDuplicateEntity   — AddEntity with an id already in the set.
//   - ErrMissingIndex      — entity declared without an Index-typed variable.
package schema
