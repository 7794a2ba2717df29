package catalog

// StandardProfile is always available and is the default pricing profile.
var StandardProfile = PricingProfile{
	Name:         "standard",
	BaseRate:     8,
	FlatFee:      150,
	MinimumPrice: 199,
}

var defaultInfillSteps = []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

var builtin = File{
	Materials: []Material{
		{ID: "pla", Name: "PLA", DensityGPerCM3: 1.24, Colors: []string{"White", "Black", "Gray", "Red", "Blue", "Green"}},
		{ID: "petg", Name: "PETG", DensityGPerCM3: 1.27, Colors: []string{"Black", "White", "Transparent", "Orange"}},
		{ID: "abs", Name: "ABS", DensityGPerCM3: 1.04, Colors: []string{"Black", "White", "Gray"}},
		{ID: "tpu", Name: "TPU", DensityGPerCM3: 1.21, Colors: []string{"Black", "Red"}},
	},
	Qualities: []Quality{
		{ID: "standard", Name: "Standard", LayerHeightMM: 0.2, Multiplier: 1.0},
		{ID: "fine", Name: "Fine", LayerHeightMM: 0.12, Multiplier: 1.5},
		{ID: "ultra", Name: "Ultra", LayerHeightMM: 0.08, Multiplier: 2.5},
	},
	DefaultQuality: "standard",
	InfillSteps:    defaultInfillSteps,
	DefaultInfill:  20,
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(builtin)
	if err != nil {
		panic("builtin catalog: " + err.Error())
	}
	return c
}
