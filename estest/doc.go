// Package estest provides shared entity-set fixtures for tests: a retail
// schema with seven entities, a diamond-shaped schema, and a schema with
// two relationships between the same entity pair.
//
// Fixtures are declared in embedded YAML and materialized per test, so
// mutations (interesting values, extra relationships) never leak between
// cases.
package estest
