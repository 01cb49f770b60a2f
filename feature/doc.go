// Package feature defines the symbolic feature graph: immutable, hashable,
// composable feature definitions produced by Deep Feature Synthesis.
//
// Five variants exist — Identity, Direct, Transform, GroupbyTransform,
// Aggregation — plus Slice, the indexable output slot of a multi-output
// feature. Every variant satisfies the Feature interface and exposes a
// canonical display name; UniqueName (entity-qualified display name) is the
// dedup/equality key: two features with equal UniqueName are the same
// feature by contract.
//
// Features are pure in-memory values; nothing here touches row data. Depth
// counts primitive-composition layers: identity features are depth 0,
// direct features keep their base's depth, and transform/groupby/
// aggregation features are one deeper than their deepest base.
//
// Constructors validate programmer errors (nil primitives, empty bases) by
// panicking, mirroring option-constructor policy elsewhere in the module;
// no constructor performs I/O or can fail at runtime.
package feature
