package dfs_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windwiki/featuretools/dfs"
	"github.com/windwiki/featuretools/estest"
	"github.com/windwiki/featuretools/feature"
	"github.com/windwiki/featuretools/primitive"
	"github.com/windwiki/featuretools/schema"
)

// build is the common happy-path harness: construct and enumerate.
func build(t *testing.T, es *schema.EntitySet, target string, opts ...dfs.Option) []feature.Feature {
	t.Helper()

	s, err := dfs.New(es, target, opts...)
	require.NoError(t, err)

	return s.BuildFeatures()
}

func identity(t *testing.T, es *schema.EntitySet, entityID, varID string) *feature.Identity {
	t.Helper()

	e, err := es.Entity(entityID)
	require.NoError(t, err)
	v, err := e.Variable(varID)
	require.NoError(t, err)

	return feature.NewIdentity(e, v)
}

func TestNew_Validation(t *testing.T) {
	es := estest.Ecommerce(t)

	_, err := dfs.New(nil, "sessions")
	assert.ErrorIs(t, err, dfs.ErrNilEntitySet)

	_, err = dfs.New(schema.NewEntitySet("empty"), "sessions")
	assert.ErrorIs(t, err, schema.ErrEmptyEntitySet)

	_, err = dfs.New(es, "warehouses")
	require.ErrorIs(t, err, schema.ErrEntityNotFound)
	assert.Contains(t, err.Error(), `entity "warehouses" not in entity set ecommerce`)

	_, err = dfs.New(es, "sessions", dfs.WithAggPrimitives("fake"))
	require.ErrorIs(t, err, primitive.ErrUnknownPrimitive)
	assert.Contains(t, err.Error(), `unknown aggregation primitive "fake"`)

	_, err = dfs.New(es, "sessions", dfs.WithAggPrimitives(primitive.Hour()))
	require.ErrorIs(t, err, primitive.ErrWrongKind)
	assert.Contains(t, err.Error(), "is not an aggregation primitive")

	_, err = dfs.New(es, "customers", dfs.WithGroupbyTransPrimitives("max"))
	require.ErrorIs(t, err, primitive.ErrUnknownPrimitive)
	assert.Contains(t, err.Error(), `unknown transform primitive "max"`)
}

func TestMakesAggFeatures(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives())

	assert.True(t, estest.FeatureWithName(feats, "LAST(log.value)"))
}

func TestMakesAggFeatures_MixedRefsAndCase(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("LAST", primitive.Mean()),
		dfs.WithTransPrimitives())

	assert.True(t, estest.FeatureWithName(feats, "LAST(log.value)"))
	assert.True(t, estest.FeatureWithName(feats, "MEAN(log.value)"))
}

func TestOnlyMakesSuppliedPrimitives(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives())

	var f feature.Feature
	for _, f = range feats {
		if p := f.Primitive(); p != nil {
			assert.Equal(t, "last", p.Name(), "unexpected primitive in %s", f.Name())
		}
	}
}

func TestIgnoreEntities(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives(),
		dfs.WithIgnoreEntities("log"))

	var f feature.Feature
	for _, f = range feats {
		var d feature.Feature
		for _, d = range f.Dependencies(true) {
			assert.NotEqual(t, "log", d.EntityID(), "feature %s reaches log", f.Name())
		}
	}
}

func TestIgnoreVariables(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives(),
		dfs.WithIgnoreVariables(map[string][]string{"log": {"value"}}))

	var f feature.Feature
	for _, f = range feats {
		var d feature.Feature
		for _, d = range f.Dependencies(true) {
			if id, ok := d.(*feature.Identity); ok && id.EntityID() == "log" {
				assert.NotEqual(t, "value", id.Variable().ID)
			}
		}
	}
}

func TestMakesDirectFeatures(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives())

	assert.True(t, estest.FeatureWithName(feats, "customers.age"))
}

func TestMakesDeepDirectFeatures(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "log",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives())

	assert.True(t, estest.FeatureWithName(feats, "sessions.customers.age"))
}

func TestMakesTransformFeatures(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "log",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives("hour"))

	assert.True(t, estest.FeatureWithName(feats, "HOUR(datetime)"))
}

func TestMakesDirectsOfAggFeatures(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions", dfs.WithAggPrimitives("last"))

	assert.True(t, estest.FeatureWithName(feats, "customers.LAST(sessions.device_type)"))
}

func TestMakesAggsOfTransformFeatures(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives("hour"))

	assert.True(t, estest.FeatureWithName(feats, "LAST(log.HOUR(datetime))"))
}

func TestMakesDirectOfAggOfTransformOnTarget(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "log",
		dfs.WithAggPrimitives("mean"),
		dfs.WithTransPrimitives("absolute"),
		dfs.WithMaxDepth(3))

	assert.True(t, estest.FeatureWithName(feats, "sessions.MEAN(log.ABSOLUTE(value))"))
}

func TestGroupbyFeatures(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "log",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives(),
		dfs.WithGroupbyTransPrimitives("cum_sum"))

	assert.True(t, estest.FeatureWithName(feats, "CUM_SUM(value) by session_id"))
	// Direct features group too.
	assert.True(t, estest.FeatureWithName(feats, "CUM_SUM(products.rating) by session_id"))
}

func TestGroupbyFeatures_DifferentKeys(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "log",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives(),
		dfs.WithGroupbyTransPrimitives("diff"))

	assert.True(t, estest.FeatureWithName(feats, "DIFF(value) by session_id"))
	assert.True(t, estest.FeatureWithName(feats, "DIFF(value) by product_id"))
}

func TestGroupbyFeatures_IdAsBase(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives(),
		dfs.WithGroupbyTransPrimitives("cum_count"))

	assert.True(t, estest.FeatureWithName(feats, "CUM_COUNT(customer_id) by customer_id"))
}

func TestGroupbyFeatures_DifferentIdKey(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "customers",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives(),
		dfs.WithGroupbyTransPrimitives("cum_count"))

	assert.True(t, estest.FeatureWithName(feats, "CUM_COUNT(cohort) by region_id"))
}

func TestGroupbyFeatures_ParentIdFallbackKey(t *testing.T) {
	es := estest.Ecommerce(t)
	// With every own id variable ignored, pulled-down parent ids become
	// the grouping keys, rendered with their path.
	feats := build(t, es, "log",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives(),
		dfs.WithGroupbyTransPrimitives("cum_sum"),
		dfs.WithIgnoreVariables(map[string][]string{
			"log": {"id", "session_id", "product_id"},
		}))

	assert.True(t, estest.FeatureWithName(feats, "CUM_SUM(value) by sessions.customer_id"))
}

func TestAggOfGroupbyFeature(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "cohorts",
		dfs.WithAggPrimitives("sum"),
		dfs.WithTransPrimitives(),
		dfs.WithGroupbyTransPrimitives("cum_sum"))

	assert.True(t, estest.FeatureWithName(feats, "SUM(customers.CUM_SUM(age) by region_id)"))
}

func TestMaxDepth(t *testing.T) {
	es := estest.Ecommerce(t)
	for _, depth := range []int{1, 2, 3} {
		feats := build(t, es, "sessions",
			dfs.WithAggPrimitives("last"),
			dfs.WithTransPrimitives(),
			dfs.WithMaxDepth(depth))

		require.NotEmpty(t, feats)
		var f feature.Feature
		for _, f = range feats {
			assert.LessOrEqual(t, f.Depth(), depth, "feature %s", f.Name())
		}
	}
}

func TestDropContains(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives(),
		dfs.WithMaxDepth(1))
	require.True(t, estest.FeatureWithName(feats, "LAST(log.value)"))

	dropped := build(t, es, "sessions",
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives(),
		dfs.WithMaxDepth(1),
		dfs.WithDropContains("LAST("))

	require.NotEmpty(t, dropped)
	var f feature.Feature
	for _, f = range dropped {
		assert.NotContains(t, f.Name(), "LAST(")
	}
}

func TestDropExact(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives(),
		dfs.WithMaxDepth(1))
	require.NotEmpty(t, feats)
	name := feats[0].Name()

	dropped := build(t, es, "sessions",
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives(),
		dfs.WithMaxDepth(1),
		dfs.WithDropExact(name))

	assert.NotContains(t, estest.Names(dropped), name)
}

func TestSeedFeatures(t *testing.T) {
	es := estest.Ecommerce(t)
	sessToLog := es.BackwardRelationships("sessions")[0]

	seedSessions := feature.NewAggregation(sessToLog, primitive.Count(),
		[]feature.Feature{identity(t, es, "log", "id")}, nil)
	seedLog := feature.NewTransform(primitive.Hour(),
		[]feature.Feature{identity(t, es, "log", "datetime")})

	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives(),
		dfs.WithSeedFeatures(seedSessions, seedLog))

	assert.True(t, estest.FeatureWithName(feats, "COUNT(log)"))
	assert.True(t, estest.FeatureWithName(feats, "LAST(log.HOUR(datetime))"))
}

func TestSeedFeatures_StackBeyondMaxDepth(t *testing.T) {
	es := estest.Ecommerce(t)
	sessToLog := es.BackwardRelationships("sessions")[0]

	seedSessions := feature.NewAggregation(sessToLog, primitive.Count(),
		[]feature.Feature{identity(t, es, "log", "id")}, nil)
	seedLog := feature.NewTransform(primitive.Hour(),
		[]feature.Feature{identity(t, es, "log", "datetime")})

	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("last", "count"),
		dfs.WithTransPrimitives(),
		dfs.WithMaxDepth(1),
		dfs.WithSeedFeatures(seedSessions, seedLog))

	names := estest.Names(feats)
	assert.Contains(t, names, "COUNT(log)")
	// Seeds enter at depth zero, so one stacking level fits in budget 1.
	assert.Contains(t, names, "LAST(log.HOUR(datetime))")
	// Two levels above a seed exceed the budget.
	assert.NotContains(t, names, "customers.MODE(sessions.LAST(log.HOUR(datetime)))")
}

func TestNoAggOfDirectFromTarget(t *testing.T) {
	es := estest.Ecommerce(t)
	custToSess := es.BackwardRelationships("customers")[0]

	seed := feature.NewAggregation(custToSess, primitive.Count(),
		[]feature.Feature{identity(t, es, "sessions", "id")}, nil)

	feats := build(t, es, "customers",
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives(),
		dfs.WithSeedFeatures(seed))

	names := estest.Names(feats)
	// Rolling back up what was pulled down from the target is a no-op.
	assert.NotContains(t, names, "LAST(sessions.customers.COUNT(sessions))")
	assert.NotContains(t, names, "LAST(sessions.customers.age)")
}

func TestAllowedPaths(t *testing.T) {
	es := estest.Ecommerce(t)
	opts := []dfs.Option{
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives(),
	}

	unconstrained := build(t, es, "customers", opts...)
	names := estest.Names(unconstrained)
	assert.Contains(t, names, "LAST(sessions.device_type)")
	assert.Contains(t, names, "LAST(sessions.LAST(log.value))")

	constrained := build(t, es, "customers",
		append(opts, dfs.WithAllowedPaths([][]string{{"customers", "sessions"}}))...)
	cnames := estest.Names(constrained)
	assert.Contains(t, cnames, "LAST(sessions.device_type)")
	assert.NotContains(t, cnames, "LAST(sessions.LAST(log.value))")
}

func TestMaxFeatures(t *testing.T) {
	es := estest.Ecommerce(t)
	opts := []dfs.Option{
		dfs.WithAggPrimitives("last"),
		dfs.WithTransPrimitives(),
	}

	unbounded := build(t, es, "customers", opts...)
	explicit := build(t, es, "customers", append(opts, dfs.WithMaxFeatures(-1))...)
	assert.Equal(t, len(unbounded), len(explicit))

	one := build(t, es, "customers", append(opts, dfs.WithMaxFeatures(1))...)
	assert.Len(t, one, 1)
}

func TestWhereFeatures(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("count"),
		dfs.WithWherePrimitives("count"),
		dfs.WithTransPrimitives())

	assert.True(t, estest.FeatureWithName(feats, "COUNT(log WHERE priority_level = 0)"))
	// Conditions reach through direct features of child descendants.
	assert.True(t, estest.FeatureWithName(feats, "COUNT(log WHERE products.department = food)"))
}

func TestWhereFeatures_DirectOfWhere(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("count"),
		dfs.WithTransPrimitives())

	assert.True(t, estest.FeatureWithName(feats, "customers.COUNT(sessions WHERE device_type = 0)"))
	assert.True(t, estest.FeatureWithName(feats, "COUNT(log WHERE products.department = electronics)"))
}

func TestWhereClauseHonorsPrimitiveOptions(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("count"),
		dfs.WithTransPrimitives(),
		dfs.WithPrimitiveOptions(map[string]any{
			"count": map[string]any{"ignore_entities": []string{"products"}},
		}))

	// An ignored entity cannot sneak back in through a where condition.
	assert.True(t, estest.FeatureWithName(feats, "COUNT(log WHERE priority_level = 0)"))
	assert.False(t, estest.FeatureWithName(feats, "COUNT(log WHERE products.department = food)"))
	assert.False(t, estest.FeatureWithName(feats, "COUNT(log WHERE products.department = electronics)"))
}

func TestWherePrimitivesPool(t *testing.T) {
	es := estest.Ecommerce(t)
	opts := []dfs.Option{
		dfs.WithAggPrimitives("count", "last"),
		dfs.WithTransPrimitives("absolute"),
		dfs.WithMaxDepth(3),
	}

	countWhere := func(feats []feature.Feature, prim string) int {
		n := 0
		var f feature.Feature
		for _, f = range feats {
			agg, ok := f.(*feature.Aggregation)
			if ok && agg.Where() != nil && agg.Primitive().Name() == prim {
				n++
			}
		}
		return n
	}

	// Default where pool is count only.
	defaults := build(t, es, "customers", opts...)
	assert.Greater(t, countWhere(defaults, "count"), 0)
	assert.Zero(t, countWhere(defaults, "last"))

	// An explicit pool replaces it.
	lastOnly := build(t, es, "customers", append(opts, dfs.WithWherePrimitives("last"))...)
	assert.Zero(t, countWhere(lastOnly, "count"))
	assert.Greater(t, countWhere(lastOnly, "last"), 0)
}

func TestWhereStackingLimit(t *testing.T) {
	es := estest.Ecommerce(t)
	opts := []dfs.Option{
		dfs.WithAggPrimitives("count", "last"),
		dfs.WithWherePrimitives("count", "last"),
		dfs.WithMaxDepth(3),
	}

	stackedWheres := func(feats []feature.Feature) int {
		n := 0
		var f feature.Feature
		for _, f = range feats {
			agg, ok := f.(*feature.Aggregation)
			if !ok || agg.Where() == nil {
				continue
			}
			var b feature.Feature
			for _, b = range agg.Dependencies(true) {
				if inner, ok := b.(*feature.Aggregation); ok && inner.Where() != nil {
					n++
					break
				}
			}
		}
		return n
	}

	limit1 := build(t, es, "customers", opts...)
	assert.Zero(t, stackedWheres(limit1))

	limit2 := build(t, es, "customers", append(opts, dfs.WithWhereStackingLimit(2))...)
	assert.Greater(t, stackedWheres(limit2), 0)
}

func TestWhereAndPlainVariantsCoexist(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "customers",
		dfs.WithAggPrimitives("last", "count"),
		dfs.WithWherePrimitives("last", "count"),
		dfs.WithMaxDepth(3))

	var plain, conditioned []string
	var f feature.Feature
	for _, f = range feats {
		agg, ok := f.(*feature.Aggregation)
		if !ok {
			continue
		}
		if agg.Where() == nil {
			plain = append(plain, f.UniqueName())
		} else {
			conditioned = append(conditioned, f.UniqueName())
		}
	}
	require.NotEmpty(t, conditioned)
	var name string
	for _, name = range plain {
		assert.NotContains(t, conditioned, name)
	}
}

func TestCommutativeDedup(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "log",
		dfs.WithAggPrimitives("sum"),
		dfs.WithTransPrimitives("add_numeric"),
		dfs.WithMaxDepth(3))

	seen := map[string]bool{}
	var f feature.Feature
	for _, f = range feats {
		tf, ok := f.(*feature.Transform)
		if !ok || tf.Primitive().Name() != "add_numeric" {
			continue
		}
		bases := tf.Bases()
		require.Len(t, bases, 2)
		a, b := bases[0].UniqueName(), bases[1].UniqueName()
		if a > b {
			a, b = b, a
		}
		key := a + "|" + b
		assert.False(t, seen[key], "unordered duplicate pair: %s", f.Name())
		seen[key] = true
	}
	assert.NotEmpty(t, seen)
}

func TestTransformOrderingAndStacking(t *testing.T) {
	es := schema.NewEntitySet("flags")
	_, err := es.AddEntity("first",
		schema.Var("index", schema.Index),
		schema.Var("a", schema.Numeric),
		schema.Var("b", schema.Boolean),
		schema.Var("b1", schema.Boolean),
		schema.Var("b12", schema.Numeric),
		schema.Var("P", schema.Numeric),
	)
	require.NoError(t, err)

	feats := build(t, es, "first",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives("and", "add_numeric", "or"))

	names := estest.Names(feats)
	for _, want := range []string{
		"a", "b", "b1", "b12", "P",
		"AND(b, b1)",
		"a + P", "b12 + P", "a + b12",
		"OR(b, b1)",
		"OR(b, AND(b, b1))",
		"OR(b1, AND(b, b1))",
	} {
		assert.Contains(t, names, want)
	}
	// Commutative pairs keep only the declaration-order rendering.
	assert.NotContains(t, names, "AND(b1, b)")
}

func TestConfiguredTransformInstance(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "log",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives(primitive.IsIn("coke zero")))

	assert.True(t, estest.FeatureWithName(feats, "product_id.isin(['coke zero'])"))
}

func TestConfiguredAggInstance(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives(primitive.NMostCommon(3)),
		dfs.WithTransPrimitives())

	assert.True(t, estest.FeatureWithName(feats, "N_MOST_COMMON(log.product_id)"))
}

func TestReturnTypes(t *testing.T) {
	es := estest.Ecommerce(t)
	s, err := dfs.New(es, "sessions",
		dfs.WithAggPrimitives("count", primitive.NMostCommon(3)),
		dfs.WithTransPrimitives("absolute", "hour"))
	require.NoError(t, err)

	typesOf := func(feats []feature.Feature) map[*schema.VarType]bool {
		out := map[*schema.VarType]bool{}
		var f feature.Feature
		for _, f = range feats {
			out[f.Type()] = true
		}
		return out
	}

	defaults := typesOf(s.BuildFeatures())
	assert.True(t, defaults[schema.Numeric])
	assert.False(t, defaults[schema.Datetime])

	discrete := typesOf(s.BuildFeatures(schema.Discrete))
	assert.False(t, discrete[schema.Numeric])
	assert.False(t, discrete[schema.Datetime])

	all := typesOf(s.BuildFeatures(schema.AnyType))
	assert.True(t, all[schema.Numeric])
	assert.True(t, all[schema.Datetime])

	datetimes := typesOf(s.BuildFeatures(schema.Datetime))
	assert.True(t, datetimes[schema.Datetime])
	assert.False(t, datetimes[schema.Numeric])
	assert.False(t, datetimes[schema.Categorical])
}

func TestDiamond_StackedAggsAlongBothPaths(t *testing.T) {
	es := estest.Diamond(t)
	feats := build(t, es, "regions",
		dfs.WithAggPrimitives("mean"),
		dfs.WithTransPrimitives())

	assert.True(t, estest.FeatureWithName(feats, "MEAN(customers.MEAN(transactions.amount))"))
	assert.True(t, estest.FeatureWithName(feats, "MEAN(stores.MEAN(transactions.amount))"))
}

func TestDiamond_DirectsAlongBothPaths(t *testing.T) {
	es := estest.Diamond(t)
	feats := build(t, es, "transactions",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives(),
		dfs.WithMaxDepth(3))

	assert.True(t, estest.FeatureWithName(feats, "customers.regions.name"))
	assert.True(t, estest.FeatureWithName(feats, "stores.regions.name"))
}

func TestGames_QualifiedSegments(t *testing.T) {
	es := estest.Games(t)
	feats := build(t, es, "games",
		dfs.WithAggPrimitives("mean"),
		dfs.WithTransPrimitives())

	for _, forward := range []string{"home", "away"} {
		for _, backward := range []string{"home", "away"} {
			for _, col := range []string{"home", "away"} {
				name := "teams[" + forward + "_team_id].MEAN(games[" + backward + "_team_id]." + col + "_team_score)"
				assert.True(t, estest.FeatureWithName(feats, name), name)
			}
		}
	}
}

func TestNoTransformOfSingleDirectFeature(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives("weekday"))

	names := estest.Names(feats)
	assert.NotContains(t, names, "WEEKDAY(customers.signup_date)")
	assert.Contains(t, names, "customers.WEEKDAY(signup_date)")
}

func TestNoTransformOfIndexVariable(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives(primitive.NMostCommon(3)),
		dfs.WithTransPrimitives("not_equal"),
		dfs.WithMaxDepth(2))

	names := estest.Names(feats)
	assert.Contains(t, names, "device_type != device_name")
	assert.Contains(t, names, "device_type != N_MOST_COMMON(log.product_id)[0]")
	// The entity index never flows into a value slot, on either side.
	var name string
	for _, name = range names {
		assert.False(t, strings.HasPrefix(name, "id != "), name)
		assert.False(t, strings.HasSuffix(name, " != id"), name)
	}
}

func TestTransformOfDirectsFromDifferentPaths(t *testing.T) {
	es := estest.Diamond(t)
	feats := build(t, es, "transactions",
		dfs.WithAggPrimitives("mean"),
		dfs.WithTransPrimitives("equal"),
		dfs.WithMaxDepth(4))

	names := estest.Names(feats)
	// Direct mixed with a local feature.
	assert.Contains(t, names, "amount = stores.MEAN(transactions.amount)")
	// Directs from different entities.
	assert.Contains(t, names, "customers.MEAN(transactions.amount) = stores.square_ft")
	// Directs of the same entity through different paths.
	assert.Contains(t, names, "customers.regions.name = stores.regions.name")
	// Same-path directs are built at the source and pulled down whole.
	assert.NotContains(t, names, "stores.square_ft = stores.MEAN(transactions.amount)")
	assert.NotContains(t, names, "stores.MEAN(transactions.amount) = stores.square_ft")
	assert.Contains(t, names, "stores.square_ft = MEAN(transactions.amount)")
}

func TestMultiOutputStacking(t *testing.T) {
	es := estest.Ecommerce(t)
	testTime := primitive.New(primitive.Spec{
		Name:       "test_time",
		Kind:       primitive.KindTransform,
		InputTypes: [][]*schema.VarType{{schema.Datetime}},
		ReturnType: schema.Numeric,
		NumOutputs: 6,
	})

	feats := build(t, es, "customers",
		dfs.WithAggPrimitives("num_unique", primitive.NMostCommon(3)),
		dfs.WithTransPrimitives(testTime, primitive.Diff()),
		dfs.WithMaxDepth(4))

	for i := 0; i < 3; i++ {
		name := "NUM_UNIQUE(sessions.N_MOST_COMMON(log.countrycode)[" + string(rune('0'+i)) + "])"
		assert.True(t, estest.FeatureWithName(feats, name), name)
	}
	for i := 0; i < 6; i++ {
		name := "DIFF(TEST_TIME(date_of_birth)[" + string(rune('0'+i)) + "])"
		assert.True(t, estest.FeatureWithName(feats, name), name)
	}
	// Primitives never stack on wholes, only on their slices. Slices and
	// directs are exempt: both wrap the whole itself rather than compose
	// a primitive over it.
	var f feature.Feature
	for _, f = range feats {
		switch f.(type) {
		case *feature.Slice, *feature.Direct:
			continue
		}
		var b feature.Feature
		for _, b = range f.Bases() {
			assert.LessOrEqual(t, b.NumOutputs(), 1,
				"feature %s stacks on a whole multi-output feature", f.Name())
		}
	}
}

func TestSeedMultiOutputStacking(t *testing.T) {
	es := estest.Ecommerce(t)
	sessToLog := es.BackwardRelationships("sessions")[0]
	seed := feature.NewAggregation(sessToLog, primitive.NMostCommon(3),
		[]feature.Feature{identity(t, es, "log", "product_id")}, nil)

	feats := build(t, es, "customers",
		dfs.WithAggPrimitives("num_unique"),
		dfs.WithTransPrimitives(),
		dfs.WithSeedFeatures(seed),
		dfs.WithMaxDepth(4))

	for i := 0; i < 3; i++ {
		name := "NUM_UNIQUE(sessions.N_MOST_COMMON(log.product_id)[" + string(rune('0'+i)) + "])"
		assert.True(t, estest.FeatureWithName(feats, name), name)
	}
}

func TestPrimitiveOptions_FromSynthesizer(t *testing.T) {
	es := estest.Ecommerce(t)

	// Validation failures surface at construction.
	_, err := dfs.New(es, "customers",
		dfs.WithAggPrimitives("mode"),
		dfs.WithPrimitiveOptions(map[string]any{
			"mode": map[string]any{"include_columns": []string{"age"}},
		}))
	assert.ErrorIs(t, err, primitive.ErrUnknownOption)

	// Schema misses degrade to warnings.
	s, err := dfs.New(es, "customers",
		dfs.WithAggPrimitives("mode"),
		dfs.WithTransPrimitives(),
		dfs.WithPrimitiveOptions(map[string]any{
			"mode":   map[string]any{"ignore_entities": []string{"warehouses"}},
			"median": map[string]any{"include_entities": []string{"sessions"}},
		}))
	require.NoError(t, err)
	assert.Contains(t, s.Warnings(), `entity "warehouses" not in entity set, option ignored`)
	assert.Contains(t, s.Warnings(), `unused primitive options for "median": not in any primitive pool`)
}

func TestPrimitiveOptions_IncludeEntities(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "customers",
		dfs.WithAggPrimitives("mode", "last"),
		dfs.WithTransPrimitives(),
		dfs.WithPrimitiveOptions(map[string]any{
			"mode": map[string]any{"include_entities": []string{"sessions"}},
		}))

	sawMode, sawLastOnLog := false, false
	var f feature.Feature
	for _, f = range feats {
		agg, ok := f.(*feature.Aggregation)
		if !ok {
			continue
		}
		switch agg.Primitive().Name() {
		case "mode":
			sawMode = true
			var dep feature.Feature
			for _, dep = range f.Dependencies(true) {
				if _, isID := dep.(*feature.Identity); isID {
					assert.Equal(t, "sessions", dep.EntityID(),
						"mode feature %s escapes sessions", f.Name())
				}
			}
		case "last":
			if strings.Contains(f.Name(), "log") {
				sawLastOnLog = true
			}
		}
	}
	assert.True(t, sawMode, "mode should still build inside sessions")
	assert.True(t, sawLastOnLog, "last keeps its default scope")
}

func TestPrimitiveOptions_IgnoreVariablesUnionsWithGlobals(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("num_unique"),
		dfs.WithTransPrimitives(),
		dfs.WithIgnoreVariables(map[string][]string{"log": {"countrycode"}}),
		dfs.WithPrimitiveOptions(map[string]any{
			"num_unique": map[string]any{
				"ignore_variables": map[string][]string{"log": {"product_id"}},
			},
		}))

	var f feature.Feature
	for _, f = range feats {
		agg, ok := f.(*feature.Aggregation)
		if !ok || agg.Primitive().Name() != "num_unique" {
			continue
		}
		var d feature.Feature
		for _, d = range f.Dependencies(true) {
			if id, isID := d.(*feature.Identity); isID && id.EntityID() == "log" {
				assert.NotContains(t, []string{"countrycode", "product_id"}, id.Variable().ID)
			}
		}
	}
}

func TestPrimitiveOptions_PerSlot(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions",
		dfs.WithAggPrimitives("trend"),
		dfs.WithTransPrimitives(),
		dfs.WithPrimitiveOptions(map[string]any{
			"trend": []map[string]any{
				{"include_variables": map[string][]string{"log": {"value_2"}, "products": {}}},
				{"include_variables": map[string][]string{"log": {"datetime"}}},
			},
		}))

	found := false
	var f feature.Feature
	for _, f = range feats {
		agg, ok := f.(*feature.Aggregation)
		if !ok || agg.Primitive().Name() != "trend" {
			continue
		}
		found = true
		bases := agg.Bases()
		require.Len(t, bases, 2)
		assert.Equal(t, "value_2", bases[0].Name())
		assert.Equal(t, "datetime", bases[1].Name())
	}
	assert.True(t, found, "trend should build under per-slot includes")
}

func TestPrimitiveOptions_Groupbys(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "customers",
		dfs.WithAggPrimitives(),
		dfs.WithTransPrimitives(),
		dfs.WithGroupbyTransPrimitives("cum_sum", "cum_count", "cum_min"),
		dfs.WithPrimitiveOptions(map[string]any{
			"cum_sum": map[string]any{
				"include_groupby_variables": map[string][]string{"customers": {"region_id"}},
			},
			"cum_count": map[string]any{
				"ignore_groupby_variables": map[string][]string{"customers": {"region_id", "id"}},
			},
			"cum_min": map[string]any{"ignore_entities": []string{"customers"}},
		}))

	assert.True(t, estest.FeatureWithName(feats, "CUM_SUM(age) by region_id"))
	var f feature.Feature
	for _, f = range feats {
		g, ok := f.(*feature.GroupbyTransform)
		if !ok {
			continue
		}
		key := g.Groupby().(*feature.Identity).Variable().ID
		switch g.Primitive().Name() {
		case "cum_sum":
			assert.Equal(t, "region_id", key)
		case "cum_count":
			assert.NotContains(t, []string{"region_id", "id"}, key)
		case "cum_min":
			t.Errorf("cum_min should never build: %s", f.Name())
		}
	}
}

func TestDeterministicOutput(t *testing.T) {
	es := estest.Ecommerce(t)
	opts := []dfs.Option{
		dfs.WithAggPrimitives("sum", "count", "mode"),
		dfs.WithTransPrimitives("day", "absolute"),
		dfs.WithGroupbyTransPrimitives("cum_sum"),
	}

	first := estest.Names(build(t, es, "customers", opts...))
	second := estest.Names(build(t, es, "customers", opts...))
	require.NotEmpty(t, first)
	assert.Empty(t, cmp.Diff(first, second))
}

func TestDepthOrdering(t *testing.T) {
	es := estest.Ecommerce(t)
	feats := build(t, es, "sessions", dfs.WithAggPrimitives("sum", "count"))

	prev := 0
	var f feature.Feature
	for _, f = range feats {
		assert.GreaterOrEqual(t, f.Depth(), prev)
		if f.Depth() > prev {
			prev = f.Depth()
		}
	}
}
