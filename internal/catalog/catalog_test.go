package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, "pla", c.DefaultMaterial().ID)
	assert.Equal(t, "standard", c.DefaultQuality().ID)
	assert.Equal(t, 20, c.DefaultInfill())
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, c.InfillSteps())

	pla, ok := c.Material("pla")
	require.True(t, ok)
	assert.Equal(t, 1.24, pla.DensityGPerCM3)
	assert.Equal(t, "White", pla.Colors[0])

	_, ok = c.Material("unobtainium")
	assert.False(t, ok)

	p, ok := c.Profile("standard")
	require.True(t, ok)
	assert.Equal(t, StandardProfile, p)
}

func TestCatalogAccessorsReturnCopies(t *testing.T) {
	c := Default()

	materials := c.Materials()
	materials[0].ID = "changed"
	steps := c.InfillSteps()
	steps[0] = 99

	assert.Equal(t, "pla", c.Materials()[0].ID)
	assert.Equal(t, 10, c.InfillSteps()[0])
}

func TestHasInfillStep(t *testing.T) {
	c := Default()

	assert.True(t, c.HasInfillStep(10))
	assert.True(t, c.HasInfillStep(100))
	assert.False(t, c.HasInfillStep(15))
	assert.False(t, c.HasInfillStep(0))
	assert.False(t, c.HasInfillStep(110))
}

func TestUnitFactor(t *testing.T) {
	assert.Equal(t, 1.0, UnitMillimeter.Factor())
	assert.Equal(t, 25.4, UnitInch.Factor())
	assert.True(t, UnitInch.Valid())
	assert.False(t, Unit("cm").Valid())
}

func TestParse(t *testing.T) {
	doc := []byte(`
materials:
  - id: pla
    name: PLA
    density_g_per_cm3: 1.24
    colors: [White, Black]
  - id: resin
    density_g_per_cm3: 1.1
    colors: [Clear]
qualities:
  - id: normal
    name: Normal
    layer_height_mm: 0.2
    multiplier: 1.0
  - id: fine
    name: Fine
    multiplier: 1.6
default_quality: fine
infill_steps: [50, 10, 20, 20]
default_infill: 20
pricing_profiles:
  compact:
    base_rate: 6
    flat_fee: 90
    minimum_price: 149
`)

	c, err := Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, "fine", c.DefaultQuality().ID)
	assert.Equal(t, []int{10, 20, 50}, c.InfillSteps())

	resin, ok := c.Material("resin")
	require.True(t, ok)
	assert.Equal(t, "resin", resin.Name)

	compact, ok := c.Profile("compact")
	require.True(t, ok)
	assert.Equal(t, PricingProfile{Name: "compact", BaseRate: 6, FlatFee: 90, MinimumPrice: 149}, compact)
	assert.Equal(t, []string{"compact", "standard"}, c.ProfileNames())
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := map[string]string{
		"no materials": `
qualities: [{id: q, multiplier: 1}]
`,
		"no qualities": `
materials: [{id: pla, density_g_per_cm3: 1.2, colors: [White]}]
`,
		"empty colors": `
materials: [{id: pla, density_g_per_cm3: 1.2, colors: []}]
qualities: [{id: q, multiplier: 1}]
`,
		"zero density": `
materials: [{id: pla, density_g_per_cm3: 0, colors: [White]}]
qualities: [{id: q, multiplier: 1}]
`,
		"duplicate material": `
materials:
  - {id: pla, density_g_per_cm3: 1.2, colors: [White]}
  - {id: pla, density_g_per_cm3: 1.2, colors: [Black]}
qualities: [{id: q, multiplier: 1}]
`,
		"negative multiplier": `
materials: [{id: pla, density_g_per_cm3: 1.2, colors: [White]}]
qualities: [{id: q, multiplier: -1}]
`,
		"unknown default quality": `
materials: [{id: pla, density_g_per_cm3: 1.2, colors: [White]}]
qualities: [{id: q, multiplier: 1}]
default_quality: nope
`,
		"infill out of range": `
materials: [{id: pla, density_g_per_cm3: 1.2, colors: [White]}]
qualities: [{id: q, multiplier: 1}]
infill_steps: [5, 20]
`,
		"default infill not a step": `
materials: [{id: pla, density_g_per_cm3: 1.2, colors: [White]}]
qualities: [{id: q, multiplier: 1}]
default_infill: 35
`,
		"bad pricing profile": `
materials: [{id: pla, density_g_per_cm3: 1.2, colors: [White]}]
qualities: [{id: q, multiplier: 1}]
pricing_profiles:
  broken: {base_rate: 0, flat_fee: 10, minimum_price: 10}
`,
		"unknown field": `
materials: [{id: pla, density_g_per_cm3: 1.2, colors: [White], weight: 3}]
qualities: [{id: q, multiplier: 1}]
`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := []byte(`
materials: [{id: pla, name: PLA, density_g_per_cm3: 1.24, colors: [White]}]
qualities: [{id: standard, multiplier: 1}]
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pla", c.DefaultMaterial().ID)
	assert.Equal(t, 10, c.DefaultInfill())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestShippedCatalogMatchesDefaults(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "configs", "catalog.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Materials(), c.Materials())
	assert.Equal(t, def.Qualities(), c.Qualities())
	assert.Equal(t, def.InfillSteps(), c.InfillSteps())
	assert.Equal(t, def.DefaultInfill(), c.DefaultInfill())
	assert.Equal(t, []string{"compact", "standard"}, c.ProfileNames())
}
