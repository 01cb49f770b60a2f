// SPDX-License-Identifier: MIT
// Package: featuretools/primitive
//
// Package primitive defines the closed registry of feature primitives and
// resolves caller-supplied primitive references and per-primitive options
// into immutable descriptors, before any enumeration work begins.
//
// Three disjoint kinds exist — aggregation, transform, groupby-transform —
// modeled as tagged variants sharing one Spec record (signatures, return
// type, commutativity, stacking legality, output arity), never as a class
// hierarchy. Downstream code switches on Kind and capability flags only.
//
// References (Ref) mix case-insensitive registry names with already
// configured *Instance values carrying bound constructor parameters, e.g.
// NMostCommon(3). Groupby-transform references resolve against the
// transform registry: a groupby pool entry that is not a transform fails
// as an unknown transform primitive.
//
// Per-primitive options (include/ignore entities, variables, and groupby
// variables, per input slot) are validated eagerly; schema mismatches
// degrade to returned warning diagnostics instead of ambient side effects.
//
// Errors:
//
//   - ErrUnknownPrimitive    — name not registered for the category.
//   - ErrWrongKind           — instance supplied for another category.
//   - ErrUnknownOption       — unrecognized option key.
//   - ErrOptionShape         — option value has the wrong shape.
//   - ErrConflictingOptions  — overlapping directives for one primitive.
//   - ErrOptionSlotCount     — per-slot option count ≠ input arity.
package primitive
