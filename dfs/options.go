// Package dfs: functional options and deterministic defaults for the
// synthesizer. Options mutate a private config resolved once inside New;
// every knob is validated there, before enumeration.
package dfs

import (
	"go.uber.org/zap"

	"github.com/windwiki/featuretools/feature"
	"github.com/windwiki/featuretools/primitive"
)

// Default knob values.
const (
	// DefaultMaxDepth is the composition-depth ceiling when
	// WithMaxDepth is not supplied.
	DefaultMaxDepth = 2

	// DefaultWhereStackingLimit bounds nesting of where-conditioned
	// aggregations when WithWhereStackingLimit is not supplied.
	DefaultWhereStackingLimit = 1
)

// Option configures the synthesizer. Use with New(es, target, opts...).
type Option func(*config)

// config holds the resolved construction surface.
type config struct {
	agg        []primitive.Ref
	trans      []primitive.Ref
	groupby    []primitive.Ref
	where      []primitive.Ref
	aggSet     bool
	transSet   bool
	groupbySet bool
	whereSet   bool

	maxDepth           int
	maxFeatures        int
	whereStackingLimit int

	ignoreEntities  []string
	ignoreVariables map[string][]string
	allowedPaths    [][]string

	seeds []feature.Feature

	dropContains []string
	dropExact    []string

	primitiveOptions map[string]any

	logger *zap.Logger
}

// defaultConfig returns the deterministic defaults: depth 2, unbounded
// results, where-stacking limit 1, default primitive pools, Nop logger.
func defaultConfig() config {
	return config{
		maxDepth:           DefaultMaxDepth,
		maxFeatures:        -1,
		whereStackingLimit: DefaultWhereStackingLimit,
		logger:             zap.NewNop(),
	}
}

// WithAggPrimitives sets the aggregation primitive pool. Passing no refs
// explicitly empties the pool; omitting the option keeps the default pool.
func WithAggPrimitives(refs ...primitive.Ref) Option {
	return func(c *config) {
		c.agg = refs
		c.aggSet = true
	}
}

// WithTransPrimitives sets the transform primitive pool. Passing no refs
// explicitly empties the pool; omitting the option keeps the default pool.
func WithTransPrimitives(refs ...primitive.Ref) Option {
	return func(c *config) {
		c.trans = refs
		c.transSet = true
	}
}

// WithGroupbyTransPrimitives sets the groupby-transform pool (resolved
// against the transform registry). Default is empty.
func WithGroupbyTransPrimitives(refs ...primitive.Ref) Option {
	return func(c *config) {
		c.groupby = refs
		c.groupbySet = true
	}
}

// WithWherePrimitives names the aggregation primitives eligible to carry
// where-clauses. Default is count only.
func WithWherePrimitives(refs ...primitive.Ref) Option {
	return func(c *config) {
		c.where = refs
		c.whereSet = true
	}
}

// WithMaxDepth sets the composition-depth ceiling (≥ 0).
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithMaxFeatures truncates the ordered result to the first n features;
// n ≤ 0 means unbounded.
func WithMaxFeatures(n int) Option {
	return func(c *config) {
		c.maxFeatures = n
	}
}

// WithIgnoreEntities globally excludes entities from enumeration.
func WithIgnoreEntities(entityIDs ...string) Option {
	return func(c *config) {
		c.ignoreEntities = entityIDs
	}
}

// WithIgnoreVariables globally excludes variables, per entity id.
func WithIgnoreVariables(vars map[string][]string) Option {
	return func(c *config) {
		c.ignoreVariables = vars
	}
}

// WithAllowedPaths restricts relationship traversal to the given entity-id
// path sequences, each starting at the target entity; a traversal is legal
// only while it remains a prefix of some allowed path.
func WithAllowedPaths(paths [][]string) Option {
	return func(c *config) {
		c.allowedPaths = paths
	}
}

// WithSeedFeatures injects pre-built features at engine depth 0, so later
// levels stack on them relative to max_depth.
func WithSeedFeatures(feats ...feature.Feature) Option {
	return func(c *config) {
		c.seeds = feats
	}
}

// WithDropContains removes result features whose canonical name contains
// any of the given substrings.
func WithDropContains(substrings ...string) Option {
	return func(c *config) {
		c.dropContains = substrings
	}
}

// WithDropExact removes result features whose canonical name exactly
// matches any of the given strings.
func WithDropExact(names ...string) Option {
	return func(c *config) {
		c.dropExact = names
	}
}

// WithPrimitiveOptions supplies the per-primitive include/ignore directive
// mapping; see primitive.ResolveOptions for layout and failure taxonomy.
func WithPrimitiveOptions(opts map[string]any) Option {
	return func(c *config) {
		c.primitiveOptions = opts
	}
}

// WithWhereStackingLimit bounds how deeply where-conditioned aggregations
// may nest inside each other.
func WithWhereStackingLimit(limit int) Option {
	return func(c *config) {
		c.whereStackingLimit = limit
	}
}

// WithLogger installs a structured logger for construction diagnostics and
// enumeration summaries. A nil logger has no effect (Nop is retained).
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
