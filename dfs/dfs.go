package dfs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/windwiki/featuretools/feature"
	"github.com/windwiki/featuretools/primitive"
	"github.com/windwiki/featuretools/schema"
)

// ErrNilEntitySet is returned by New when the entity set is nil.
var ErrNilEntitySet = errors.New("dfs: entity set must not be nil")

// Synthesizer enumerates the feature space of one target entity within an
// entity set. Construct with New (which validates everything eagerly),
// then call BuildFeatures any number of times; a Synthesizer is immutable
// after construction.
type Synthesizer struct {
	es     *schema.EntitySet
	target *schema.Entity
	cfg    config

	aggs     []*primitive.Instance
	trans    []*primitive.Instance
	groupbys []*primitive.Instance
	// whereNames marks aggregation primitives eligible for where-clauses.
	whereNames map[string]bool

	globals  primitive.Globals
	filters  map[string]*primitive.Filter
	warnings []string
}

// New validates the entity set, target, primitive pools and primitive
// options, and returns a ready Synthesizer.
//
// Steps:
//  1. Reject a nil entity set and resolve the target entity.
//  2. Apply options over the deterministic defaults.
//  3. Resolve the four primitive pools against the registries.
//  4. Compile global ignores and per-primitive option filters.
//
// Errors:
//   - ErrNilEntitySet — es is nil;
//   - schema.ErrEntityNotFound / schema.ErrEmptyEntitySet — bad target;
//   - primitive.ErrUnknownPrimitive / primitive.ErrWrongKind — bad pools;
//   - primitive option failures per primitive.ResolveOptions.
//
// Complexity: O(P·S + V) for P primitives, S option slots, V variables.
func New(es *schema.EntitySet, targetEntityID string, opts ...Option) (*Synthesizer, error) {
	// 1) Entity set and target.
	if es == nil {
		return nil, ErrNilEntitySet
	}
	target, err := es.Entity(targetEntityID)
	if err != nil {
		return nil, fmt.Errorf("dfs: resolve target: %w", err)
	}

	// 2) Options over defaults.
	cfg := defaultConfig()
	var opt Option
	for _, opt = range opts {
		opt(&cfg)
	}

	s := &Synthesizer{es: es, target: target, cfg: cfg}

	// 3) Primitive pools.
	if s.aggs, err = resolvePool(primitive.KindAggregation, cfg.agg, cfg.aggSet, primitive.DefaultAggregation); err != nil {
		return nil, err
	}
	if s.trans, err = resolvePool(primitive.KindTransform, cfg.trans, cfg.transSet, primitive.DefaultTransform); err != nil {
		return nil, err
	}
	if s.groupbys, err = resolvePool(primitive.KindGroupbyTransform, cfg.groupby, cfg.groupbySet, nil); err != nil {
		return nil, err
	}
	wheres, err := resolvePool(primitive.KindAggregation, cfg.where, cfg.whereSet, primitive.DefaultWhere)
	if err != nil {
		return nil, err
	}
	s.whereNames = make(map[string]bool, len(wheres))
	var w *primitive.Instance
	for _, w = range wheres {
		s.whereNames[w.Name()] = true
	}

	// 4) Global ignores and per-primitive filters.
	s.globals = primitive.Globals{
		IgnoreEntities:  make(map[string]bool, len(cfg.ignoreEntities)),
		IgnoreVariables: make(map[string]map[string]bool, len(cfg.ignoreVariables)),
	}
	var eid string
	for _, eid = range cfg.ignoreEntities {
		s.globals.IgnoreEntities[eid] = true
	}
	var vids []string
	for eid, vids = range cfg.ignoreVariables {
		set := make(map[string]bool, len(vids))
		var vid string
		for _, vid = range vids {
			set[vid] = true
		}
		s.globals.IgnoreVariables[eid] = set
	}

	pool := make([]*primitive.Instance, 0, len(s.aggs)+len(s.trans)+len(s.groupbys))
	pool = append(pool, s.aggs...)
	pool = append(pool, s.trans...)
	pool = append(pool, s.groupbys...)
	s.filters, s.warnings, err = primitive.ResolveOptions(es, pool, cfg.primitiveOptions, s.globals)
	if err != nil {
		return nil, err
	}
	var msg string
	for _, msg = range s.warnings {
		cfg.logger.Warn("primitive option ignored", zap.String("detail", msg))
	}

	return s, nil
}

// resolvePool resolves refs against the kind's registry, substituting the
// default pool when the option was never supplied.
func resolvePool(kind primitive.Kind, refs []primitive.Ref, set bool, def func() []*primitive.Instance) ([]*primitive.Instance, error) {
	if !set {
		if def == nil {
			return nil, nil
		}

		return def(), nil
	}

	return primitive.Resolve(kind, refs)
}

// Warnings reports non-fatal primitive-option diagnostics collected during
// construction, in deterministic order.
func (s *Synthesizer) Warnings() []string { return s.warnings }

// BuildFeatures enumerates the full feature space for the target entity and
// returns it ordered by depth (declaration order within a depth).
//
// returnTypes narrows the output to features whose type is a subtype of any
// listed type; omitted, it defaults to Discrete and Numeric. Passing
// schema.AnyType admits every type.
//
// Complexity: O(F·A) features×arity over the bounded enumeration space.
func (s *Synthesizer) BuildFeatures(returnTypes ...*schema.VarType) []feature.Feature {
	r := newRun(s)
	fs := r.entityFeatures(s.target, s.cfg.maxDepth, []string{s.target.ID()})
	feats := append([]feature.Feature(nil), fs.order...)

	// 1) Stable depth order.
	sort.SliceStable(feats, func(i, j int) bool { return feats[i].Depth() < feats[j].Depth() })

	// 2) Name-based drops.
	feats = s.dropByName(feats)

	// 3) Return-type filter.
	feats = filterTypes(feats, returnTypes)

	// 4) Truncation.
	if s.cfg.maxFeatures > 0 && len(feats) > s.cfg.maxFeatures {
		feats = feats[:s.cfg.maxFeatures]
	}

	s.cfg.logger.Debug("feature enumeration complete",
		zap.String("target", s.target.ID()),
		zap.Int("features", len(feats)))
	return feats
}

// dropByName strips features whose name matches dropExact or contains any
// dropContains substring.
func (s *Synthesizer) dropByName(feats []feature.Feature) []feature.Feature {
	if len(s.cfg.dropExact) == 0 && len(s.cfg.dropContains) == 0 {
		return feats
	}
	exact := make(map[string]bool, len(s.cfg.dropExact))
	var n string
	for _, n = range s.cfg.dropExact {
		exact[n] = true
	}
	out := feats[:0]
	var f feature.Feature
	for _, f = range feats {
		name := f.Name()
		if exact[name] {
			continue
		}
		dropped := false
		var sub string
		for _, sub = range s.cfg.dropContains {
			if strings.Contains(name, sub) {
				dropped = true
				break
			}
		}
		if dropped {
			continue
		}
		out = append(out, f)
	}
	return out
}

// filterTypes keeps features typed as (a subtype of) any requested return
// type.
func filterTypes(feats []feature.Feature, types []*schema.VarType) []feature.Feature {
	if len(types) == 0 {
		types = []*schema.VarType{schema.Discrete, schema.Numeric}
	}
	var t *schema.VarType
	for _, t = range types {
		if t == schema.AnyType {
			return feats
		}
	}
	out := feats[:0]
	var f feature.Feature
	for _, f = range feats {
		ft := f.Type()
		if ft == nil {
			continue
		}
		keep := false
		for _, t = range types {
			if ft.Is(t) {
				keep = true
				break
			}
		}
		if keep {
			out = append(out, f)
		}
	}
	return out
}
