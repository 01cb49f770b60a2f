package estest

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/windwiki/featuretools/feature"
	"github.com/windwiki/featuretools/schema"
)

//go:embed fixtures/*.yaml
var fixtures embed.FS

// fixtureDoc mirrors the YAML fixture layout.
type fixtureDoc struct {
	ID       string `yaml:"id"`
	Entities []struct {
		ID        string `yaml:"id"`
		Variables []struct {
			ID   string `yaml:"id"`
			Type string `yaml:"type"`
		} `yaml:"variables"`
	} `yaml:"entities"`
	Relationships []struct {
		Child         string `yaml:"child"`
		ChildVariable string `yaml:"child_variable"`
		Parent        string `yaml:"parent"`
	} `yaml:"relationships"`
}

// load materializes one embedded fixture into a fresh EntitySet.
func load(t *testing.T, path string) *schema.EntitySet {
	t.Helper()

	raw, err := fixtures.ReadFile(path)
	require.NoError(t, err)

	var doc fixtureDoc
	require.NoError(t, yaml.Unmarshal(raw, &doc))

	es := schema.NewEntitySet(doc.ID)
	var i, j int
	for i = range doc.Entities {
		e := doc.Entities[i]
		vars := make([]*schema.Variable, 0, len(e.Variables))
		for j = range e.Variables {
			vt, ok := schema.TypeByName(e.Variables[j].Type)
			require.Truef(t, ok, "fixture %s: unknown variable type %q", path, e.Variables[j].Type)
			vars = append(vars, schema.Var(e.Variables[j].ID, vt))
		}
		_, err = es.AddEntity(e.ID, vars...)
		require.NoError(t, err)
	}
	for i = range doc.Relationships {
		r := doc.Relationships[i]
		_, err = es.AddRelationship(r.Child, r.ChildVariable, r.Parent)
		require.NoError(t, err)
	}

	return es
}

// Ecommerce returns the seven-entity retail fixture with the standard
// interesting values attached.
func Ecommerce(t *testing.T) *schema.EntitySet {
	t.Helper()

	es := load(t, "fixtures/ecommerce.yaml")
	require.NoError(t, es.SetInterestingValues("sessions", "device_type", 0, 1))
	require.NoError(t, es.SetInterestingValues("log", "priority_level", 0, 1))
	require.NoError(t, es.SetInterestingValues("products", "department", "food", "electronics"))

	return es
}

// Diamond returns the fixture where transactions reach regions through two
// distinct forward paths.
func Diamond(t *testing.T) *schema.EntitySet {
	t.Helper()

	return load(t, "fixtures/diamond.yaml")
}

// Games returns the fixture with two relationships between the same entity
// pair.
func Games(t *testing.T) *schema.EntitySet {
	t.Helper()

	return load(t, "fixtures/games.yaml")
}

// FeatureWithName reports whether any feature carries the display name.
func FeatureWithName(feats []feature.Feature, name string) bool {
	var f feature.Feature
	for _, f = range feats {
		if f.Name() == name {
			return true
		}
	}

	return false
}

// Names projects features onto their display names, preserving order.
func Names(feats []feature.Feature) []string {
	out := make([]string, len(feats))
	var i int
	var f feature.Feature
	for i, f = range feats {
		out[i] = f.Name()
	}

	return out
}
