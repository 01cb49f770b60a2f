// Package featuretools is an in-memory Deep Feature Synthesis (DFS) engine:
// it enumerates candidate predictive features over a relational schema by
// composing primitive operations across entity relationships, up to a bounded
// composition depth — symbolically, without ever touching row data.
//
// 🚀 What is featuretools?
//
//	A deterministic, pure-Go feature-definition generator that brings together:
//		• Schema graph: typed entities, variables, and foreign-key relationships
//		• Primitive registry: aggregation / transform / groupby-transform descriptors
//		• Feature graph: immutable, hashable, composable symbolic feature objects
//		• DFS engine: breadth-first, depth-bounded, fully deduplicated enumeration
//
// ✨ Why choose featuretools?
//
//   - Deterministic by contract – identical inputs always yield identical ordered output
//   - Fail-fast configuration – every option is validated before any search runs
//   - Pure Go – no cgo, no I/O, no data materialization
//   - Extensible – register configured primitive instances with bound parameters
//
// Everything is organized under four subpackages:
//
//	schema/    — entity/variable/relationship graph and the semantic type lattice
//	primitive/ — primitive descriptors, registry, and per-primitive option resolution
//	feature/   — identity, direct, transform, groupby-transform, and aggregation features
//	dfs/       — the Deep Feature Synthesis enumeration engine
//
// Quick ASCII example of a schema diamond:
//
//	    regions
//	    ╱     ╲
//	customers stores
//	    ╲     ╱
//	  transactions
//
//	both regions paths are explored independently and named distinctly:
//	customers.regions.name vs stores.regions.name.
//
// Dive into the dfs package docs for a full walk-through of the
// enumeration pipeline.
//
//	go get github.com/windwiki/featuretools
package featuretools
