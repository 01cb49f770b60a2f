// SPDX-License-Identifier: MIT
// Package: featuretools/primitive
//
// options.go — per-primitive include/ignore option resolution.
//
// Design contract (strict):
//   - All validation happens here, before any enumeration work begins:
//     unrecognized keys, wrong value shapes, conflicting directives, and
//     per-slot count mismatches fail wholesale with sentinel errors.
//   - References to entities or variables absent from the schema degrade
//     to warning diagnostics returned to the caller (never ambient state).
//   - Raw map keys are visited in sorted order so the first error raised
//     is deterministic.

package primitive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/windwiki/featuretools/schema"
)

// Recognized per-slot directive keys.
const (
	optIncludeEntities  = "include_entities"
	optIgnoreEntities   = "ignore_entities"
	optIncludeVariables = "include_variables"
	optIgnoreVariables  = "ignore_variables"
	optIncludeGroupby   = "include_groupby_variables"
	optIgnoreGroupby    = "ignore_groupby_variables"
)

// Globals carries the engine-wide exclusions every primitive inherits
// unless its own directives override them.
type Globals struct {
	// IgnoreEntities removes entities from every primitive's default
	// "everything allowed" set.
	IgnoreEntities map[string]bool

	// IgnoreVariables removes variables per entity id.
	IgnoreVariables map[string]map[string]bool
}

// slotFilter holds the directives of one input slot. A nil include set
// means "directive absent"; an empty-but-non-nil include set allows nothing.
type slotFilter struct {
	includeEntities  map[string]bool
	ignoreEntities   map[string]bool
	includeVariables map[string]map[string]bool
	ignoreVariables  map[string]map[string]bool
	includeGroupby   map[string]map[string]bool
	ignoreGroupby    map[string]map[string]bool
}

// Filter is the effective per-primitive predicate: one slotFilter per input
// slot, merged with the global exclusions.
//
// Merge semantics: include_* narrows the allowed set to exactly the listed
// ids and overrides the global directive of the same scope; ignore_*
// subtracts and composes with the global directive.
type Filter struct {
	slots  []slotFilter
	global Globals
}

// Slots returns the number of per-slot directive sets.
func (f *Filter) Slots() int { return len(f.slots) }

// slot clamps an index into the available slot filters (primitives without
// explicit options carry a single slot applied to every input).
func (f *Filter) slot(i int) *slotFilter {
	if i >= len(f.slots) {
		i = len(f.slots) - 1
	}

	return &f.slots[i]
}

// EntityAllowed reports whether features rooted in the entity may feed the
// given input slot.
func (f *Filter) EntityAllowed(slot int, entityID string) bool {
	s := f.slot(slot)
	if s.includeEntities != nil {
		return s.includeEntities[entityID]
	}

	return !s.ignoreEntities[entityID] && !f.global.IgnoreEntities[entityID]
}

// VariableAllowed reports whether the identity variable may appear among
// the deep dependencies of a feature feeding the given input slot.
func (f *Filter) VariableAllowed(slot int, entityID, variableID string) bool {
	s := f.slot(slot)
	if inc, ok := s.includeVariables[entityID]; ok {
		return inc[variableID]
	}
	if s.ignoreVariables[entityID][variableID] {
		return false
	}

	return !f.global.IgnoreVariables[entityID][variableID]
}

// GroupbyAllowed reports whether the variable may serve as the groupby key
// for this primitive.
func (f *Filter) GroupbyAllowed(entityID, variableID string) bool {
	s := f.slot(0)
	if inc, ok := s.includeGroupby[entityID]; ok {
		return inc[variableID]
	}
	if s.ignoreGroupby[entityID][variableID] {
		return false
	}

	return !f.global.IgnoreVariables[entityID][variableID]
}

// ResolveOptions validates the raw per-primitive option mapping and merges
// it with the global exclusions into one Filter per pool primitive.
//
// Raw layout: key = primitive name, or a comma-separated list of primitive
// names sharing one directive set; value = a single map[string]any applied
// to all input slots, or a []map[string]any with exactly one entry per slot.
//
// Returns the filter per primitive name, warning diagnostics for schema
// mismatches, and the first (deterministic) validation error.
func ResolveOptions(es *schema.EntitySet, prims []*Instance, raw map[string]any, global Globals) (map[string]*Filter, []string, error) {
	byName := make(map[string]*Instance, len(prims))
	var p *Instance
	for _, p = range prims {
		byName[p.Name()] = p
	}

	filters := make(map[string]*Filter, len(prims))
	for _, p = range prims {
		filters[p.Name()] = &Filter{slots: make([]slotFilter, 1), global: global}
	}

	var warnings []string

	// Sorted key order keeps the first raised error deterministic.
	keys := make([]string, 0, len(raw))
	var k string
	for k = range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	claimed := make(map[string]bool, len(raw))
	for _, k = range keys {
		var names []string
		var part string
		for _, part = range strings.Split(k, ",") {
			names = append(names, strings.ToLower(strings.TrimSpace(part)))
		}

		var name string
		for _, name = range names {
			prim, ok := byName[name]
			if !ok {
				warnings = append(warnings, fmt.Sprintf("unused primitive options for %q: not in any primitive pool", name))
				continue
			}
			if claimed[name] {
				return nil, nil, fmt.Errorf("multiple options found for primitive %q: %w", name, ErrConflictingOptions)
			}
			claimed[name] = true

			slots, w, err := parseSlots(es, prim, raw[k])
			if err != nil {
				return nil, nil, err
			}
			warnings = append(warnings, w...)
			filters[name] = &Filter{slots: slots, global: global}
		}
	}

	return filters, warnings, nil
}

// parseSlots normalizes the raw value of one primitive entry into per-slot
// filters, replicating a single directive map across every input slot.
func parseSlots(es *schema.EntitySet, prim *Instance, v any) ([]slotFilter, []string, error) {
	arity := prim.Arity()
	if arity < 1 {
		arity = 1
	}

	var rawSlots []map[string]any
	switch val := v.(type) {
	case map[string]any:
		rawSlots = []map[string]any{val}
	case []map[string]any:
		rawSlots = val
	default:
		return nil, nil, fmt.Errorf("options for %s must be a directive map or a per-slot list: %w",
			prim.Name(), ErrOptionShape)
	}

	if len(rawSlots) != 1 && len(rawSlots) != arity {
		return nil, nil, fmt.Errorf("number of options does not match number of inputs for primitive %s: %w",
			prim.Name(), ErrOptionSlotCount)
	}

	var warnings []string
	slots := make([]slotFilter, 0, arity)
	var rs map[string]any
	for _, rs = range rawSlots {
		sf, w, err := parseSlot(es, prim.Name(), rs)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)
		slots = append(slots, sf)
	}

	// One directive map governs every slot.
	for len(slots) < arity {
		slots = append(slots, slots[0])
	}

	return slots, warnings, nil
}

// parseSlot validates one directive map.
func parseSlot(es *schema.EntitySet, primName string, rs map[string]any) (slotFilter, []string, error) {
	var sf slotFilter
	var warnings []string

	keys := make([]string, 0, len(rs))
	var k string
	for k = range rs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k = range keys {
		switch k {
		case optIncludeEntities, optIgnoreEntities:
			ids, ok := toStringList(rs[k])
			if !ok {
				return sf, nil, fmt.Errorf("incorrect type formatting for %q for %s: %w", k, primName, ErrOptionShape)
			}
			set, w := entitySet(es, ids)
			warnings = append(warnings, w...)
			if k == optIncludeEntities {
				sf.includeEntities = set
			} else {
				sf.ignoreEntities = set
			}
		case optIncludeVariables, optIgnoreVariables, optIncludeGroupby, optIgnoreGroupby:
			m, ok := toVariableMap(rs[k])
			if !ok {
				return sf, nil, fmt.Errorf("incorrect type formatting for %q for %s: %w", k, primName, ErrOptionShape)
			}
			set, w := variableSet(es, m)
			warnings = append(warnings, w...)
			switch k {
			case optIncludeVariables:
				sf.includeVariables = set
			case optIgnoreVariables:
				sf.ignoreVariables = set
			case optIncludeGroupby:
				sf.includeGroupby = set
			default:
				sf.ignoreGroupby = set
			}
		default:
			return sf, nil, fmt.Errorf("unrecognized primitive option %q for %s: %w", k, primName, ErrUnknownOption)
		}
	}

	if sf.includeEntities != nil && sf.ignoreEntities != nil {
		return sf, nil, fmt.Errorf("%s supplies both include_entities and ignore_entities: %w",
			primName, ErrConflictingOptions)
	}
	if sf.includeVariables != nil && sf.ignoreVariables != nil {
		return sf, nil, fmt.Errorf("%s supplies both include_variables and ignore_variables: %w",
			primName, ErrConflictingOptions)
	}
	if sf.includeGroupby != nil && sf.ignoreGroupby != nil {
		return sf, nil, fmt.Errorf("%s supplies both include_groupby_variables and ignore_groupby_variables: %w",
			primName, ErrConflictingOptions)
	}

	return sf, warnings, nil
}

// entitySet resolves entity ids against the schema, warning on misses.
func entitySet(es *schema.EntitySet, ids []string) (map[string]bool, []string) {
	set := make(map[string]bool, len(ids))
	var warnings []string
	var id string
	for _, id = range ids {
		if _, err := es.Entity(id); err != nil {
			warnings = append(warnings, fmt.Sprintf("entity %q not in entity set, option ignored", id))
			continue
		}
		set[id] = true
	}

	return set, warnings
}

// variableSet resolves per-entity variable lists, warning on misses.
func variableSet(es *schema.EntitySet, m map[string][]string) (map[string]map[string]bool, []string) {
	set := make(map[string]map[string]bool, len(m))
	var warnings []string

	entities := make([]string, 0, len(m))
	var eid string
	for eid = range m {
		entities = append(entities, eid)
	}
	sort.Strings(entities)

	for _, eid = range entities {
		e, err := es.Entity(eid)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("entity %q not in entity set, option ignored", eid))
			continue
		}
		vars := make(map[string]bool, len(m[eid]))
		var vid string
		for _, vid = range m[eid] {
			if !e.HasVariable(vid) {
				warnings = append(warnings, fmt.Sprintf("variable %q not in entity %q, option ignored", vid, eid))
				continue
			}
			vars[vid] = true
		}
		set[eid] = vars
	}

	return set, warnings
}

// toStringList accepts []string or []any-of-strings.
func toStringList(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		var item any
		for _, item = range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}

		return out, true
	default:
		return nil, false
	}
}

// toVariableMap accepts map[string][]string or map[string]any with
// string-list values.
func toVariableMap(v any) (map[string][]string, bool) {
	switch val := v.(type) {
	case map[string][]string:
		return val, true
	case map[string]any:
		out := make(map[string][]string, len(val))
		var k string
		var item any
		for k, item = range val {
			list, ok := toStringList(item)
			if !ok {
				return nil, false
			}
			out[k] = list
		}

		return out, true
	default:
		return nil, false
	}
}
