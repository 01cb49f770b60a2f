// Package dfs implements Deep Feature Synthesis: deterministic, depth-bounded
// enumeration of every valid symbolic feature definition reachable from a
// target entity of a relational schema, composing aggregation, transform,
// and groupby-transform primitives across entity relationships.
//
// Key features:
//   - New(es, targetEntityID, opts...): eagerly validated construction —
//     unknown primitives, malformed primitive options, and missing target
//     entities fail before any enumeration work begins
//   - BuildFeatures(returnTypes...): total, never-failing enumeration
//     returning the flat, deduplicated, depth-ordered feature list
//   - Constraints: max depth, per-entity/per-variable exclusions, allowed
//     relationship paths, where-clause stacking limits, name-based drops,
//     result truncation
//   - Dedup: commutative argument pairs canonicalized first-seen; feature
//     identity is the entity-qualified display name
//
// Complexity:
//
//   - Time:   bounded by the number of enumerable features; per-(entity,
//     depth-budget) feature sets are memoized across sibling branches.
//   - Memory: O(features) for the working sets; the memo is scoped to one
//     BuildFeatures invocation and discarded at its end.
//
// Determinism: identical inputs yield the identical ordered feature list.
// Construction order never depends on map iteration; all traversal follows
// schema declaration order and primitive pool order.
//
// Errors (construction time only):
//
//   - ErrNilEntitySet                — nil schema graph.
//   - schema.ErrEmptyEntitySet       — target lookup on an empty set.
//   - schema.ErrEntityNotFound       — target id not present.
//   - primitive.ErrUnknownPrimitive  — unresolvable primitive reference.
//   - primitive.ErrWrongKind         — primitive supplied to the wrong pool.
//   - primitive.Err*Option*          — malformed primitive options.
package dfs
