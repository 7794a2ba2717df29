// Package catalog holds the fixed tables a quote is configured from:
// materials, print qualities, infill steps, model units and pricing profiles.
// A Catalog is built once at start and never changes afterwards.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidCatalog wraps every validation failure reported by New and Load.
var ErrInvalidCatalog = errors.New("invalid catalog")

const (
	MinInfillPercent = 10
	MaxInfillPercent = 100
)

// Material is a printable material and the colours it is stocked in.
type Material struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	DensityGPerCM3 float64  `yaml:"density_g_per_cm3" json:"density_g_per_cm3"`
	Colors         []string `yaml:"colors" json:"colors"`
}

// HasColor reports whether color is one of the material's colours.
func (m Material) HasColor(color string) bool {
	for _, c := range m.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// Quality is a layer-height preset. Multiplier scales both price and time.
type Quality struct {
	ID            string  `yaml:"id" json:"id"`
	Name          string  `yaml:"name" json:"name"`
	LayerHeightMM float64 `yaml:"layer_height_mm" json:"layer_height_mm"`
	Multiplier    float64 `yaml:"multiplier" json:"multiplier"`
}

// Unit is the unit a model file was authored in.
type Unit string

const (
	UnitMillimeter Unit = "mm"
	UnitInch       Unit = "in"
)

// MillimetersPerInch converts inch-authored models to printable millimetres.
const MillimetersPerInch = 25.4

// Factor is the linear factor applied to native mesh dimensions.
func (u Unit) Factor() float64 {
	if u == UnitInch {
		return MillimetersPerInch
	}
	return 1
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u == UnitMillimeter || u == UnitInch
}

// Units lists the supported units, default first.
func Units() []Unit {
	return []Unit{UnitMillimeter, UnitInch}
}

// PricingProfile holds the deployment-wide pricing constants.
type PricingProfile struct {
	Name         string  `yaml:"-" json:"name"`
	BaseRate     float64 `yaml:"base_rate" json:"base_rate"`
	FlatFee      int64   `yaml:"flat_fee" json:"flat_fee"`
	MinimumPrice int64   `yaml:"minimum_price" json:"minimum_price"`
}

// Validate checks that the constants can produce a non-negative price.
func (p PricingProfile) Validate() error {
	if !(p.BaseRate > 0) || math.IsInf(p.BaseRate, 0) {
		return fmt.Errorf("%w: pricing profile %q: base_rate must be positive", ErrInvalidCatalog, p.Name)
	}
	if p.FlatFee < 0 {
		return fmt.Errorf("%w: pricing profile %q: flat_fee must not be negative", ErrInvalidCatalog, p.Name)
	}
	if p.MinimumPrice < 0 {
		return fmt.Errorf("%w: pricing profile %q: minimum_price must not be negative", ErrInvalidCatalog, p.Name)
	}
	return nil
}

// File is the on-disk shape of a catalog.
type File struct {
	Materials       []Material                `yaml:"materials"`
	Qualities       []Quality                 `yaml:"qualities"`
	DefaultQuality  string                    `yaml:"default_quality"`
	InfillSteps     []int                     `yaml:"infill_steps"`
	DefaultInfill   int                       `yaml:"default_infill"`
	PricingProfiles map[string]PricingProfile `yaml:"pricing_profiles"`
}

// Catalog is an immutable lookup table over a validated File.
type Catalog struct {
	materials      []Material
	materialByID   map[string]Material
	qualities      []Quality
	qualityByID    map[string]Quality
	defaultQuality Quality
	infillSteps    []int
	defaultInfill  int
	profiles       map[string]PricingProfile
}

// New validates f and builds a Catalog from it.
func New(f File) (*Catalog, error) {
	if len(f.Materials) == 0 {
		return nil, fmt.Errorf("%w: at least one material is required", ErrInvalidCatalog)
	}
	if len(f.Qualities) == 0 {
		return nil, fmt.Errorf("%w: at least one quality is required", ErrInvalidCatalog)
	}

	c := &Catalog{
		materialByID: make(map[string]Material, len(f.Materials)),
		qualityByID:  make(map[string]Quality, len(f.Qualities)),
		profiles:     make(map[string]PricingProfile, len(f.PricingProfiles)),
	}

	for _, m := range f.Materials {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: material id is required", ErrInvalidCatalog)
		}
		if _, dup := c.materialByID[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate material %q", ErrInvalidCatalog, m.ID)
		}
		if !(m.DensityGPerCM3 > 0) || math.IsInf(m.DensityGPerCM3, 0) {
			return nil, fmt.Errorf("%w: material %q: density must be positive", ErrInvalidCatalog, m.ID)
		}
		if len(m.Colors) == 0 {
			return nil, fmt.Errorf("%w: material %q: at least one color is required", ErrInvalidCatalog, m.ID)
		}
		if m.Name == "" {
			m.Name = m.ID
		}
		m.Colors = append([]string(nil), m.Colors...)
		c.materials = append(c.materials, m)
		c.materialByID[m.ID] = m
	}

	for _, q := range f.Qualities {
		if q.ID == "" {
			return nil, fmt.Errorf("%w: quality id is required", ErrInvalidCatalog)
		}
		if _, dup := c.qualityByID[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate quality %q", ErrInvalidCatalog, q.ID)
		}
		if !(q.Multiplier > 0) || math.IsInf(q.Multiplier, 0) {
			return nil, fmt.Errorf("%w: quality %q: multiplier must be positive", ErrInvalidCatalog, q.ID)
		}
		if q.Name == "" {
			q.Name = q.ID
		}
		c.qualities = append(c.qualities, q)
		c.qualityByID[q.ID] = q
	}

	c.defaultQuality = c.qualities[0]
	if f.DefaultQuality != "" {
		q, ok := c.qualityByID[f.DefaultQuality]
		if !ok {
			return nil, fmt.Errorf("%w: default quality %q is not declared", ErrInvalidCatalog, f.DefaultQuality)
		}
		c.defaultQuality = q
	}

	steps := f.InfillSteps
	if len(steps) == 0 {
		steps = defaultInfillSteps
	}
	seen := make(map[int]bool, len(steps))
	for _, step := range steps {
		if step < MinInfillPercent || step > MaxInfillPercent {
			return nil, fmt.Errorf("%w: infill step %d outside [%d, %d]", ErrInvalidCatalog, step, MinInfillPercent, MaxInfillPercent)
		}
		if seen[step] {
			continue
		}
		seen[step] = true
		c.infillSteps = append(c.infillSteps, step)
	}
	sort.Ints(c.infillSteps)

	c.defaultInfill = c.infillSteps[0]
	if f.DefaultInfill != 0 {
		if !seen[f.DefaultInfill] {
			return nil, fmt.Errorf("%w: default infill %d is not an infill step", ErrInvalidCatalog, f.DefaultInfill)
		}
		c.defaultInfill = f.DefaultInfill
	}

	c.profiles[StandardProfile.Name] = StandardProfile
	for name, p := range f.PricingProfiles {
		p.Name = name
		if err := p.Validate(); err != nil {
			return nil, err
		}
		c.profiles[name] = p
	}

	return c, nil
}

// Materials returns the materials in declaration order.
func (c *Catalog) Materials() []Material {
	return append([]Material(nil), c.materials...)
}

// Material looks a material up by id.
func (c *Catalog) Material(id string) (Material, bool) {
	m, ok := c.materialByID[id]
	return m, ok
}

// DefaultMaterial is the first declared material.
func (c *Catalog) DefaultMaterial() Material {
	return c.materials[0]
}

// Qualities returns the qualities in declaration order.
func (c *Catalog) Qualities() []Quality {
	return append([]Quality(nil), c.qualities...)
}

// Quality looks a quality up by id.
func (c *Catalog) Quality(id string) (Quality, bool) {
	q, ok := c.qualityByID[id]
	return q, ok
}

func (c *Catalog) DefaultQuality() Quality {
	return c.defaultQuality
}

// InfillSteps returns the selectable infill percentages in ascending order.
func (c *Catalog) InfillSteps() []int {
	return append([]int(nil), c.infillSteps...)
}

// HasInfillStep reports whether percent is one of the selectable steps.
func (c *Catalog) HasInfillStep(percent int) bool {
	i := sort.SearchInts(c.infillSteps, percent)
	return i < len(c.infillSteps) && c.infillSteps[i] == percent
}

func (c *Catalog) DefaultInfill() int {
	return c.defaultInfill
}

// Profile looks a pricing profile up by name.
func (c *Catalog) Profile(name string) (PricingProfile, bool) {
	p, ok := c.profiles[name]
	return p, ok
}

// ProfileNames returns the declared pricing profile names, sorted.
func (c *Catalog) ProfileNames() []string {
	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
