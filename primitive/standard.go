// SPDX-License-Identifier: MIT
// Package: featuretools/primitive
//
// standard.go — the standard primitive library: one exported factory per
// primitive, registered case-insensitively at init. Factories return fresh
// instances so configured copies never alias pool defaults.

package primitive

import (
	"fmt"
	"strings"

	"github.com/windwiki/featuretools/schema"
)

// sig is shorthand for a single ordered input signature.
func sig(types ...*schema.VarType) []*schema.VarType { return types }

// infix renders two-input primitives as "a <op> b".
func infix(op string) NameFunc {
	return func(_ *Instance, base []string) string {
		return base[0] + " " + op + " " + base[1]
	}
}

// ── Aggregation primitives ──────────────────────────────────────────────

// Count counts child rows; its sole input is the child's own index and its
// display name omits the base argument: COUNT(log).
func Count() *Instance {
	return newInstance(Spec{
		Name:        "count",
		Kind:        KindAggregation,
		InputTypes:  [][]*schema.VarType{sig(schema.Index)},
		ReturnType:  schema.Numeric,
		StackOnSelf: true,
		Baseless:    true,
	})
}

// Sum totals a numeric feature across child rows.
func Sum() *Instance { return numericAgg("sum") }

// Mean averages a numeric feature across child rows.
func Mean() *Instance { return numericAgg("mean") }

// Min takes the minimum of a numeric feature across child rows.
func Min() *Instance { return numericAgg("min") }

// Max takes the maximum of a numeric feature across child rows.
func Max() *Instance { return numericAgg("max") }

// Std takes the standard deviation of a numeric feature across child rows.
func Std() *Instance { return numericAgg("std") }

// Skew takes the skewness of a numeric feature across child rows.
func Skew() *Instance { return numericAgg("skew") }

// numericAgg covers the Numeric→Numeric aggregation family.
func numericAgg(name string) *Instance {
	return newInstance(Spec{
		Name:        name,
		Kind:        KindAggregation,
		InputTypes:  [][]*schema.VarType{sig(schema.Numeric)},
		ReturnType:  schema.Numeric,
		StackOnSelf: true,
	})
}

// Last takes the chronologically last value of any feature; the output
// type follows the input.
func Last() *Instance {
	return newInstance(Spec{
		Name:        "last",
		Kind:        KindAggregation,
		InputTypes:  [][]*schema.VarType{sig(schema.AnyType)},
		StackOnSelf: true,
	})
}

// Mode takes the most frequent discrete value; output follows the input.
func Mode() *Instance {
	return newInstance(Spec{
		Name:        "mode",
		Kind:        KindAggregation,
		InputTypes:  [][]*schema.VarType{sig(schema.Discrete)},
		StackOnSelf: true,
	})
}

// NumUnique counts distinct discrete values.
func NumUnique() *Instance {
	return newInstance(Spec{
		Name:        "num_unique",
		Kind:        KindAggregation,
		InputTypes:  [][]*schema.VarType{sig(schema.Discrete)},
		ReturnType:  schema.Numeric,
		StackOnSelf: true,
	})
}

// PercentTrue reports the fraction of true values of a boolean feature.
func PercentTrue() *Instance {
	return newInstance(Spec{
		Name:        "percent_true",
		Kind:        KindAggregation,
		InputTypes:  [][]*schema.VarType{sig(schema.Boolean)},
		ReturnType:  schema.Numeric,
		StackOnSelf: true,
	})
}

// Any reports whether any child value is true.
func Any() *Instance { return boolAgg("any") }

// All reports whether every child value is true.
func All() *Instance { return boolAgg("all") }

func boolAgg(name string) *Instance {
	return newInstance(Spec{
		Name:        name,
		Kind:        KindAggregation,
		InputTypes:  [][]*schema.VarType{sig(schema.Boolean)},
		ReturnType:  schema.Boolean,
		StackOnSelf: true,
	})
}

// NMostCommon returns the n most frequent discrete values as n indexable
// output slots. The registry default is n = 3.
func NMostCommon(n int) *Instance {
	if n < 1 {
		n = 1
	}

	return newInstance(Spec{
		Name:        "n_most_common",
		Kind:        KindAggregation,
		InputTypes:  [][]*schema.VarType{sig(schema.Discrete)},
		ReturnType:  schema.Discrete,
		StackOnSelf: true,
		NumOutputs:  n,
	})
}

// Trend fits the linear trend of a numeric feature over a datetime
// feature: two input slots, exercising per-slot primitive options.
func Trend() *Instance {
	return newInstance(Spec{
		Name:        "trend",
		Kind:        KindAggregation,
		InputTypes:  [][]*schema.VarType{sig(schema.Numeric, schema.Datetime)},
		ReturnType:  schema.Numeric,
		StackOnSelf: true,
	})
}

// ── Transform primitives ────────────────────────────────────────────────

// Absolute takes the elementwise absolute value.
func Absolute() *Instance {
	return newInstance(Spec{
		Name:        "absolute",
		Kind:        KindTransform,
		InputTypes:  [][]*schema.VarType{sig(schema.Numeric)},
		ReturnType:  schema.Numeric,
		StackOnSelf: true,
	})
}

// Hour extracts the hour of a datetime.
func Hour() *Instance { return datetimeUnit("hour") }

// Day extracts the day of a datetime.
func Day() *Instance { return datetimeUnit("day") }

// Month extracts the month of a datetime.
func Month() *Instance { return datetimeUnit("month") }

// Year extracts the year of a datetime.
func Year() *Instance { return datetimeUnit("year") }

// Weekday extracts the weekday of a datetime.
func Weekday() *Instance { return datetimeUnit("weekday") }

func datetimeUnit(name string) *Instance {
	return newInstance(Spec{
		Name:       name,
		Kind:       KindTransform,
		InputTypes: [][]*schema.VarType{sig(schema.Datetime)},
		ReturnType: schema.Numeric,
	})
}

// Diff takes the rowwise difference from the previous value. Diff of Diff
// is noise, so it never stacks on itself.
func Diff() *Instance {
	return newInstance(Spec{
		Name:       "diff",
		Kind:       KindTransform,
		InputTypes: [][]*schema.VarType{sig(schema.Numeric)},
		ReturnType: schema.Numeric,
	})
}

// TimeSincePrevious measures seconds since the previous datetime value.
func TimeSincePrevious() *Instance {
	return newInstance(Spec{
		Name:       "time_since_previous",
		Kind:       KindTransform,
		InputTypes: [][]*schema.VarType{sig(schema.Datetime)},
		ReturnType: schema.Numeric,
	})
}

// NumCharacters counts characters of a text feature.
func NumCharacters() *Instance { return textLen("num_characters") }

// NumWords counts words of a text feature.
func NumWords() *Instance { return textLen("num_words") }

func textLen(name string) *Instance {
	return newInstance(Spec{
		Name:       name,
		Kind:       KindTransform,
		InputTypes: [][]*schema.VarType{sig(schema.Text)},
		ReturnType: schema.Numeric,
	})
}

// Percentile ranks each value against the column distribution.
func Percentile() *Instance {
	return newInstance(Spec{
		Name:       "percentile",
		Kind:       KindTransform,
		InputTypes: [][]*schema.VarType{sig(schema.Numeric)},
		ReturnType: schema.Numeric,
	})
}

// AddNumeric adds two numeric features elementwise: "a + b".
func AddNumeric() *Instance { return arith("add_numeric", "+", true) }

// SubtractNumeric subtracts two numeric features elementwise: "a - b".
func SubtractNumeric() *Instance { return arith("subtract_numeric", "-", false) }

// MultiplyNumeric multiplies two numeric features elementwise: "a * b".
func MultiplyNumeric() *Instance { return arith("multiply_numeric", "*", true) }

func arith(name, op string, commutative bool) *Instance {
	return newInstance(Spec{
		Name:        name,
		Kind:        KindTransform,
		InputTypes:  [][]*schema.VarType{sig(schema.Numeric, schema.Numeric)},
		ReturnType:  schema.Numeric,
		Commutative: commutative,
		StackOnSelf: true,
		NameFmt:     infix(op),
	})
}

// Equal compares two features for equality: "a = b".
func Equal() *Instance { return compare("equal", "=") }

// NotEqual compares two features for inequality: "a != b".
func NotEqual() *Instance { return compare("not_equal", "!=") }

func compare(name, op string) *Instance {
	return newInstance(Spec{
		Name:        name,
		Kind:        KindTransform,
		InputTypes:  [][]*schema.VarType{sig(schema.AnyType, schema.AnyType)},
		ReturnType:  schema.Boolean,
		Commutative: true,
		StackOnSelf: true,
		NameFmt:     infix(op),
	})
}

// And is the elementwise boolean conjunction.
func And() *Instance { return boolPair("and") }

// Or is the elementwise boolean disjunction.
func Or() *Instance { return boolPair("or") }

func boolPair(name string) *Instance {
	return newInstance(Spec{
		Name:        name,
		Kind:        KindTransform,
		InputTypes:  [][]*schema.VarType{sig(schema.Boolean, schema.Boolean)},
		ReturnType:  schema.Boolean,
		Commutative: true,
		StackOnSelf: true,
	})
}

// Not is the elementwise boolean negation.
func Not() *Instance {
	return newInstance(Spec{
		Name:       "not",
		Kind:       KindTransform,
		InputTypes: [][]*schema.VarType{sig(schema.Boolean)},
		ReturnType: schema.Boolean,
	})
}

// IsIn tests membership in a bound literal list; the display follows the
// original surface: base.isin(['a', 'b']).
func IsIn(values ...any) *Instance {
	rendered := make([]string, 0, len(values))
	var v any
	for _, v = range values {
		if s, ok := v.(string); ok {
			rendered = append(rendered, "'"+s+"'")
		} else {
			rendered = append(rendered, fmt.Sprintf("%v", v))
		}
	}

	inst := newInstance(Spec{
		Name:       "is_in",
		Kind:       KindTransform,
		InputTypes: [][]*schema.VarType{sig(schema.AnyType)},
		ReturnType: schema.Boolean,
		NameFmt: func(p *Instance, base []string) string {
			return base[0] + ".isin([" + p.Args() + "])"
		},
	})
	inst.args = strings.Join(rendered, ", ")

	return inst
}

// ── Groupby-eligible cumulative transforms ──────────────────────────────
//
// The cum_* family are transforms by kind and are typically supplied via
// the groupby-transform pool; none of them stacks on itself.

// CumSum is the running sum within a partition.
func CumSum() *Instance { return cumulative("cum_sum", schema.Numeric) }

// CumMean is the running mean within a partition.
func CumMean() *Instance { return cumulative("cum_mean", schema.Numeric) }

// CumMin is the running minimum within a partition.
func CumMin() *Instance { return cumulative("cum_min", schema.Numeric) }

// CumMax is the running maximum within a partition.
func CumMax() *Instance { return cumulative("cum_max", schema.Numeric) }

func cumulative(name string, in *schema.VarType) *Instance {
	return newInstance(Spec{
		Name:       name,
		Kind:       KindTransform,
		InputTypes: [][]*schema.VarType{sig(in)},
		ReturnType: schema.Numeric,
	})
}

// CumCount is the running row count within a partition; it applies to any
// discrete feature, ids included.
func CumCount() *Instance {
	return newInstance(Spec{
		Name:       "cum_count",
		Kind:       KindTransform,
		InputTypes: [][]*schema.VarType{sig(schema.Discrete)},
		ReturnType: schema.Numeric,
	})
}

func init() {
	register(KindAggregation, Count)
	register(KindAggregation, Sum)
	register(KindAggregation, Mean)
	register(KindAggregation, Min)
	register(KindAggregation, Max)
	register(KindAggregation, Std)
	register(KindAggregation, Skew)
	register(KindAggregation, Last)
	register(KindAggregation, Mode)
	register(KindAggregation, NumUnique)
	register(KindAggregation, PercentTrue)
	register(KindAggregation, Any)
	register(KindAggregation, All)
	register(KindAggregation, func() *Instance { return NMostCommon(3) })
	register(KindAggregation, Trend)

	register(KindTransform, Absolute)
	register(KindTransform, Hour)
	register(KindTransform, Day)
	register(KindTransform, Month)
	register(KindTransform, Year)
	register(KindTransform, Weekday)
	register(KindTransform, Diff)
	register(KindTransform, TimeSincePrevious)
	register(KindTransform, NumCharacters)
	register(KindTransform, NumWords)
	register(KindTransform, Percentile)
	register(KindTransform, AddNumeric)
	register(KindTransform, SubtractNumeric)
	register(KindTransform, MultiplyNumeric)
	register(KindTransform, Equal)
	register(KindTransform, NotEqual)
	register(KindTransform, And)
	register(KindTransform, Or)
	register(KindTransform, Not)
	register(KindTransform, func() *Instance { return IsIn() })
	register(KindTransform, CumSum)
	register(KindTransform, CumCount)
	register(KindTransform, CumMean)
	register(KindTransform, CumMin)
	register(KindTransform, CumMax)
}
