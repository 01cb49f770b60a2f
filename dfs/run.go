// run.go — the breadth-bounded enumeration over the entity graph.
//
// One run holds the per-(entity, budget) memo and the engine-relative depth
// of every constructed feature. Relative depth is what the max_depth budget
// meters: seed features enter at zero regardless of their structural depth,
// so stacking on a seed costs one level, not the seed's own height.

package dfs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/windwiki/featuretools/feature"
	"github.com/windwiki/featuretools/primitive"
	"github.com/windwiki/featuretools/schema"
)

// featureSet is an insertion-ordered, name-deduplicated feature collection
// scoped to one entity.
type featureSet struct {
	order []feature.Feature
	index map[string]bool
}

func newFeatureSet() *featureSet {
	return &featureSet{index: make(map[string]bool)}
}

// add appends f unless a feature with the same display name is present.
func (fs *featureSet) add(f feature.Feature) bool {
	name := f.Name()
	if fs.index[name] {
		return false
	}
	fs.index[name] = true
	fs.order = append(fs.order, f)

	return true
}

// run is one BuildFeatures invocation's mutable state.
type run struct {
	s *Synthesizer

	// memo caches the feature set per (entity, remaining budget) — plus
	// traversal path when allowed paths constrain it.
	memo map[string]*featureSet

	// depths records the engine-relative depth per feature UniqueName.
	depths map[string]int
}

func newRun(s *Synthesizer) *run {
	return &run{
		s:      s,
		memo:   make(map[string]*featureSet),
		depths: make(map[string]int),
	}
}

// relDepth is the budget-relative depth of f: recorded value if the run
// built or seeded it, the base's depth for output slices, the structural
// depth otherwise.
func (r *run) relDepth(f feature.Feature) int {
	if d, ok := r.depths[f.UniqueName()]; ok {
		return d
	}
	if sl, ok := f.(*feature.Slice); ok {
		return r.relDepth(sl.Base())
	}

	return f.Depth()
}

func (r *run) setDepth(f feature.Feature, d int) { r.depths[f.UniqueName()] = d }

func (r *run) maxRelDepth(feats []feature.Feature) int {
	depth := 0
	var f feature.Feature
	for _, f = range feats {
		if d := r.relDepth(f); d > depth {
			depth = d
		}
	}

	return depth
}

// memoKey scopes memoization to (entity, budget); constrained traversals
// additionally carry the path, since different prefixes see different edges.
func (r *run) memoKey(e *schema.Entity, budget int, ids []string) string {
	key := fmt.Sprintf("%s|%d", e.ID(), budget)
	if len(r.s.cfg.allowedPaths) > 0 {
		key += "|" + strings.Join(ids, ">")
	}

	return key
}

// pathAllowed reports whether the entity-id traversal is a prefix of some
// allowed path. An empty allow-list permits everything.
func (r *run) pathAllowed(ids []string) bool {
	if len(r.s.cfg.allowedPaths) == 0 {
		return true
	}
	var p []string
	for _, p = range r.s.cfg.allowedPaths {
		if len(ids) > len(p) {
			continue
		}
		match := true
		var i int
		for i = range ids {
			if p[i] != ids[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}

	return false
}

// entityFeatures enumerates every feature of e reachable within budget
// relationship/stacking levels, along the traversal recorded in ids.
//
// Order per entity: identities, seeds, child rollups (aggregations), parent
// pulls (direct features), groupby transforms, transforms. Declaration
// order of variables, relationships and pools fixes the result order.
func (r *run) entityFeatures(e *schema.Entity, budget int, ids []string) *featureSet {
	key := r.memoKey(e, budget, ids)
	if fs, ok := r.memo[key]; ok {
		return fs
	}
	fs := newFeatureSet()
	r.memo[key] = fs

	// 1) Identity features, minus global variable ignores.
	var v *schema.Variable
	for _, v = range e.Variables() {
		if r.s.globals.IgnoreVariables[e.ID()][v.ID] {
			continue
		}
		id := feature.NewIdentity(e, v)
		r.setDepth(id, 0)
		fs.add(id)
	}

	// 2) Seeds attach to their home entity at relative depth zero.
	var seed feature.Feature
	for _, seed = range r.s.cfg.seeds {
		if seed.EntityID() != e.ID() {
			continue
		}
		r.setDepth(seed, 0)
		fs.add(seed)
	}

	if budget > 0 {
		// 3) Backward edges: recurse into each child, roll features up.
		var rel *schema.Relationship
		for _, rel = range r.s.es.BackwardRelationships(e.ID()) {
			if r.s.globals.IgnoreEntities[rel.Child.ID()] {
				continue
			}
			next := append(append([]string(nil), ids...), rel.Child.ID())
			if !r.pathAllowed(next) {
				continue
			}
			childSet := r.entityFeatures(rel.Child, budget-1, next)
			r.buildAggregations(fs, rel, childSet, budget)
		}

		// 4) Forward edges: recurse into each parent, pull features down.
		for _, rel = range r.s.es.ForwardRelationships(e.ID()) {
			if r.s.globals.IgnoreEntities[rel.Parent.ID()] {
				continue
			}
			next := append(append([]string(nil), ids...), rel.Parent.ID())
			if !r.pathAllowed(next) {
				continue
			}
			parentSet := r.entityFeatures(rel.Parent, budget-1, next)
			r.buildDirects(fs, rel, parentSet, budget)
		}
	}

	// 5) Same-entity composition.
	r.buildGroupbys(fs, e, budget)
	r.buildTransforms(fs, e, budget)

	return fs
}

// candidates flattens a feature set into stacking candidates: single-output
// features as-is, multi-output features replaced by their output slices
// (the whole stays in the set for output, but only slices stack).
func candidates(fs *featureSet) []feature.Feature {
	out := make([]feature.Feature, 0, len(fs.order))
	var f feature.Feature
	for _, f = range fs.order {
		if n := f.NumOutputs(); n > 1 {
			var i int
			for i = 0; i < n; i++ {
				out = append(out, feature.NewSlice(f, i))
			}
			continue
		}
		out = append(out, f)
	}

	return out
}

// buildAggregations rolls child candidates up through rel for every
// aggregation primitive, emitting where-conditioned variants for primitives
// in the where pool.
func (r *run) buildAggregations(fs *featureSet, rel *schema.Relationship, childSet *featureSet, budget int) {
	cands := candidates(childSet)
	wheres := whereClauses(childSet)

	var prim *primitive.Instance
	for _, prim = range r.s.aggs {
		filter := r.s.filters[prim.Name()]

		var combo []feature.Feature
		for _, combo = range r.inputCombos(prim, filter, cands, rel.Child, rel.Parent.ID()) {
			d := 1 + r.maxRelDepth(combo)
			if d > budget {
				continue
			}
			agg := feature.NewAggregation(rel, prim, combo, nil)
			if fs.add(agg) {
				r.setDepth(agg, d)
			}

			if !r.s.whereNames[prim.Name()] {
				continue
			}
			var w feature.Where
			for _, w = range wheres {
				if comboContains(combo, w.Base) {
					continue
				}
				// A predicate pulled from the parent is constant per group.
				if isDirectFrom(w.Base, rel.Parent.ID()) {
					continue
				}
				// The predicate base obeys the primitive's option filter
				// like any other input.
				if !allowedByFilter(filter, 0, w.Base) {
					continue
				}
				cond := w
				wagg := feature.NewAggregation(rel, prim, combo, &cond)
				if whereDepth(wagg) > r.s.cfg.whereStackingLimit {
					continue
				}
				if fs.add(wagg) {
					r.setDepth(wagg, d)
				}
			}
		}
	}
}

// buildDirects pulls every parent feature down through rel; a direct
// feature inherits its base's relative depth.
func (r *run) buildDirects(fs *featureSet, rel *schema.Relationship, parentSet *featureSet, budget int) {
	var f feature.Feature
	for _, f = range parentSet.order {
		d := r.relDepth(f)
		if d > budget {
			continue
		}
		df := feature.NewDirect(rel, f)
		if fs.add(df) {
			r.setDepth(df, d)
		}
	}
}

// buildGroupbys applies each groupby-transform primitive to candidate
// inputs within partitions keyed by the entity's Id/Index identities.
func (r *run) buildGroupbys(fs *featureSet, e *schema.Entity, budget int) {
	keys := groupbyKeys(fs)
	if len(keys) == 0 {
		return
	}

	var prim *primitive.Instance
	for _, prim = range r.s.groupbys {
		filter := r.s.filters[prim.Name()]

		var combo []feature.Feature
		for _, combo = range r.inputCombos(prim, filter, candidates(fs), e, "") {
			d := 1 + r.maxRelDepth(combo)
			if d > budget {
				continue
			}
			var key feature.Feature
			for _, key = range keys {
				kv := keyVariable(key)
				if kv == nil || !filter.GroupbyAllowed(kv.EntityID(), kv.Variable().ID) {
					continue
				}
				g := feature.NewGroupbyTransform(prim, combo, key)
				if fs.add(g) {
					r.setDepth(g, d)
				}
			}
		}
	}
}

// buildTransforms applies each transform primitive over the entity's
// current candidates. A combination made solely of direct features sharing
// one relationship path is skipped: that feature belongs on the source
// entity, where it is built and then pulled down whole.
func (r *run) buildTransforms(fs *featureSet, e *schema.Entity, budget int) {
	var prim *primitive.Instance
	for _, prim = range r.s.trans {
		filter := r.s.filters[prim.Name()]

		var combo []feature.Feature
		for _, combo = range r.inputCombos(prim, filter, candidates(fs), e, "") {
			if allDirectSamePath(combo) {
				continue
			}
			d := 1 + r.maxRelDepth(combo)
			if d > budget {
				continue
			}
			tf := feature.NewTransform(prim, combo)
			if fs.add(tf) {
				r.setDepth(tf, d)
			}
		}
	}
}

// inputCombos produces every argument tuple for the primitive: each
// declared signature is matched slot by slot, tuples are expanded, and
// duplicates across overlapping signatures are collapsed. aggParentID, when
// non-empty, suppresses candidates pulled down from the aggregation's own
// parent (rolling them back up is a no-op).
func (r *run) inputCombos(prim *primitive.Instance, filter *primitive.Filter, cands []feature.Feature, owner *schema.Entity, aggParentID string) [][]feature.Feature {
	var out [][]feature.Feature
	seen := make(map[string]bool)

	var signature []*schema.VarType
	for _, signature = range prim.InputTypes() {
		slotCands, ok := r.matchSignature(prim, filter, signature, cands, owner, aggParentID)
		if !ok {
			continue
		}
		var combo []feature.Feature
		for _, combo = range combos(prim, slotCands) {
			key := comboKey(combo)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, combo)
		}
	}

	return out
}

// matchSignature collects, per slot of one signature, the candidates that
// satisfy the slot type, the stacking rules, and the option filter. A slot
// with no candidates voids the signature.
func (r *run) matchSignature(prim *primitive.Instance, filter *primitive.Filter, signature []*schema.VarType, cands []feature.Feature, owner *schema.Entity, aggParentID string) ([][]feature.Feature, bool) {
	out := make([][]feature.Feature, len(signature))
	var i int
	for i = range signature {
		var list []feature.Feature
		var c feature.Feature
		for _, c = range cands {
			if !slotTypeOK(signature[i], c, owner) {
				continue
			}
			if !stackOK(prim, c) {
				continue
			}
			if aggParentID != "" && isDirectFrom(c, aggParentID) {
				continue
			}
			if !allowedByFilter(filter, i, c) {
				continue
			}
			list = append(list, c)
		}
		if len(list) == 0 {
			return nil, false
		}
		out[i] = list
	}

	return out, true
}

// slotTypeOK matches a candidate against one slot type. An Index slot
// admits only the owner's own index identity; index-typed features never
// satisfy value slots.
func slotTypeOK(t *schema.VarType, c feature.Feature, owner *schema.Entity) bool {
	if t == schema.Index {
		id, ok := c.(*feature.Identity)

		return ok && id.Variable() == owner.Index()
	}
	ct := c.Type()
	if ct == nil || ct.Is(schema.Index) {
		return false
	}

	return ct.Is(t)
}

// comboKey is the ordered identity of an argument tuple.
func comboKey(combo []feature.Feature) string {
	names := make([]string, len(combo))
	var i int
	for i = range combo {
		names[i] = combo[i].UniqueName()
	}

	return strings.Join(names, "\x00")
}

// stackOK enforces the primitive's stacking rules against the primitive
// that produced the candidate (looking through directs and slices).
func stackOK(prim *primitive.Instance, c feature.Feature) bool {
	kind, producer, applied := featKind(c)
	if !applied {
		return true
	}
	if producer.Name() == prim.Name() && !prim.StackOnSelf() {
		return false
	}

	return prim.CanStackOn(kind)
}

// featKind resolves the producing primitive of a feature, unwrapping
// directs and slices down to the composition node.
func featKind(f feature.Feature) (primitive.Kind, *primitive.Instance, bool) {
	switch v := f.(type) {
	case *feature.Direct:
		return featKind(v.Base())
	case *feature.Slice:
		return featKind(v.Base())
	case *feature.Transform:
		return primitive.KindTransform, v.Primitive(), true
	case *feature.GroupbyTransform:
		return primitive.KindGroupbyTransform, v.Primitive(), true
	case *feature.Aggregation:
		return primitive.KindAggregation, v.Primitive(), true
	default:
		return 0, nil, false
	}
}

// isDirectFrom reports whether c (unwrapping slices) is a direct feature
// whose first hop pulls from the given entity.
func isDirectFrom(c feature.Feature, entityID string) bool {
	if sl, ok := c.(*feature.Slice); ok {
		return isDirectFrom(sl.Base(), entityID)
	}
	d, ok := c.(*feature.Direct)
	if !ok {
		return false
	}

	return d.Path()[0].Parent.ID() == entityID
}

// allowedByFilter applies the per-primitive option filter to a candidate:
// the candidate and each of its deep dependencies must come from allowed
// entities, and every identity among them from allowed variables.
func allowedByFilter(filter *primitive.Filter, slot int, c feature.Feature) bool {
	feats := append([]feature.Feature{c}, c.Dependencies(true)...)
	var f feature.Feature
	for _, f = range feats {
		if !filter.EntityAllowed(slot, f.EntityID()) {
			return false
		}
		if id, ok := f.(*feature.Identity); ok {
			if !filter.VariableAllowed(slot, id.EntityID(), id.Variable().ID) {
				return false
			}
		}
	}

	return true
}

// whereClauses lists the conditionable predicates visible on an entity:
// one per interesting value of an identity, or of an identity pulled in
// through a direct feature.
func whereClauses(fs *featureSet) []feature.Where {
	var out []feature.Where
	var f feature.Feature
	for _, f = range fs.order {
		v := interestingVariable(f)
		if v == nil || len(v.InterestingValues) == 0 {
			continue
		}
		var val any
		for _, val = range v.InterestingValues {
			out = append(out, feature.Where{Base: f, Value: val})
		}
	}

	return out
}

// interestingVariable unwraps a candidate to the variable whose interesting
// values may condition a where-clause.
func interestingVariable(f feature.Feature) *schema.Variable {
	switch v := f.(type) {
	case *feature.Identity:
		return v.Variable()
	case *feature.Direct:
		if id, ok := v.Base().(*feature.Identity); ok {
			return id.Variable()
		}
	}

	return nil
}

// whereDepth is the longest chain of where-conditioned aggregations within
// f, itself included.
func whereDepth(f feature.Feature) int {
	depth := 0
	var d feature.Feature
	for _, d = range f.Dependencies(false) {
		if n := whereDepth(d); n > depth {
			depth = n
		}
	}
	if a, ok := f.(*feature.Aggregation); ok && a.Where() != nil {
		depth++
	}

	return depth
}

// groupbyKeys lists the entity's own Id- and Index-typed identities, in
// declaration order. An entity with no eligible identity of its own (its
// index excluded by a variable ignore) falls back to single-hop direct
// Id features.
func groupbyKeys(fs *featureSet) []feature.Feature {
	var out []feature.Feature
	var f feature.Feature
	for _, f = range fs.order {
		id, ok := f.(*feature.Identity)
		if !ok {
			continue
		}
		if id.Type().Is(schema.Id) || id.Type().Is(schema.Index) {
			out = append(out, id)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, f = range fs.order {
		d, ok := f.(*feature.Direct)
		if !ok || len(d.Path()) != 1 {
			continue
		}
		if id, ok := d.Base().(*feature.Identity); ok && id.Type().Is(schema.Id) {
			out = append(out, d)
		}
	}

	return out
}

// keyVariable resolves a groupby key to the identity variable it denotes,
// looking through a direct pull.
func keyVariable(key feature.Feature) *feature.Identity {
	switch v := key.(type) {
	case *feature.Identity:
		return v
	case *feature.Direct:
		if id, ok := v.Base().(*feature.Identity); ok {
			return id
		}
	}

	return nil
}

// comboContains reports whether the combo already uses f.
func comboContains(combo []feature.Feature, f feature.Feature) bool {
	name := f.UniqueName()
	var c feature.Feature
	for _, c = range combo {
		if c.UniqueName() == name {
			return true
		}
	}

	return false
}

// allDirectSamePath reports whether every combo member is a direct feature
// (or a slice of one) traversing the identical relationship path.
func allDirectSamePath(combo []feature.Feature) bool {
	key := ""
	var i int
	var f feature.Feature
	for i, f = range combo {
		if sl, ok := f.(*feature.Slice); ok {
			f = sl.Base()
		}
		d, ok := f.(*feature.Direct)
		if !ok {
			return false
		}
		k := pathKey(d.Path())
		if i == 0 {
			key = k
		} else if k != key {
			return false
		}
	}

	return key != ""
}

func pathKey(path []*schema.Relationship) string {
	segs := make([]string, len(path))
	var i int
	var rel *schema.Relationship
	for i, rel = range path {
		segs[i] = rel.ChildSegment() + ">" + rel.ParentSegment()
	}

	return strings.Join(segs, "|")
}

// combos expands per-slot candidate lists into argument tuples: no feature
// repeats within a tuple, and commutative primitives keep only the
// first-seen ordering of each unordered set.
func combos(prim *primitive.Instance, slotCands [][]feature.Feature) [][]feature.Feature {
	var out [][]feature.Feature
	seen := make(map[string]bool)
	cur := make([]feature.Feature, len(slotCands))

	var rec func(slot int)
	rec = func(slot int) {
		if slot == len(slotCands) {
			names := make([]string, len(cur))
			var i int
			for i = range cur {
				names[i] = cur[i].UniqueName()
			}
			var j int
			for i = range names {
				for j = i + 1; j < len(names); j++ {
					if names[i] == names[j] {
						return
					}
				}
			}
			if prim.Commutative() {
				sort.Strings(names)
			}
			key := strings.Join(names, "\x00")
			if seen[key] {
				return
			}
			seen[key] = true
			out = append(out, append([]feature.Feature(nil), cur...))
			return
		}
		var f feature.Feature
		for _, f = range slotCands[slot] {
			cur[slot] = f
			rec(slot + 1)
		}
	}
	rec(0)

	return out
}
