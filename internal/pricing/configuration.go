package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/geometry"
)

// ErrInvalidDimension reports a non-positive or non-finite length or scale.
// The configuration it was meant for is left untouched.
var ErrInvalidDimension = errors.New("invalid dimension")

const (
	// DefaultScaleFactor is the scale a new configuration starts with.
	DefaultScaleFactor = 1.0
	// MaxScaleFactor is the largest accepted scale. Quotes beyond it would
	// no longer fit the price and time fields.
	MaxScaleFactor = 1000.0
)

// Configuration is the print setup for one quote in progress.
type Configuration struct {
	ScaleFactor   float64          `json:"scale_factor"`
	Rotation      geometry.Vector3 `json:"rotation_degrees"`
	Material      catalog.Material `json:"material"`
	Color         string           `json:"color"`
	Quality       catalog.Quality  `json:"quality"`
	InfillPercent int              `json:"infill_percent"`
	Unit          catalog.Unit     `json:"unit"`
}

// DefaultConfiguration returns the configuration a freshly attached file gets.
func DefaultConfiguration(c *catalog.Catalog) Configuration {
	cfg := Configuration{
		ScaleFactor:   DefaultScaleFactor,
		Quality:       c.DefaultQuality(),
		InfillPercent: c.DefaultInfill(),
		Unit:          catalog.UnitMillimeter,
	}
	cfg.SelectMaterial(c.DefaultMaterial())
	return cfg
}

// SelectMaterial switches material and resets the colour to the material's
// first colour.
func (c *Configuration) SelectMaterial(m catalog.Material) {
	c.Material = m
	c.Color = ""
	if len(m.Colors) > 0 {
		c.Color = m.Colors[0]
	}
}

// SelectColor sets the colour if the current material is stocked in it.
func (c *Configuration) SelectColor(color string) bool {
	if !c.Material.HasColor(color) {
		return false
	}
	c.Color = color
	return true
}

func (c *Configuration) SelectQuality(q catalog.Quality) {
	c.Quality = q
}

// SetInfill sets the infill percentage, clamped to [10, 100].
func (c *Configuration) SetInfill(percent int) {
	switch {
	case percent < catalog.MinInfillPercent:
		percent = catalog.MinInfillPercent
	case percent > catalog.MaxInfillPercent:
		percent = catalog.MaxInfillPercent
	}
	c.InfillPercent = percent
}

// SetUnit changes the model unit. Unknown units are ignored.
func (c *Configuration) SetUnit(u catalog.Unit) bool {
	if !u.Valid() {
		return false
	}
	c.Unit = u
	return true
}

// SetRotation records the orientation. It does not change the bounding box
// used for dimensions.
func (c *Configuration) SetRotation(r geometry.Vector3) {
	c.Rotation = r
}

// SetScale sets the uniform scale factor directly. It must lie in
// (0, MaxScaleFactor].
func (c *Configuration) SetScale(factor float64) error {
	if !validScale(factor) {
		return fmt.Errorf("%w: scale factor must be in (0, %v], got %v", ErrInvalidDimension, MaxScaleFactor, factor)
	}
	c.ScaleFactor = factor
	return nil
}

func validScale(v float64) bool {
	return finitePositive(v) && v <= MaxScaleFactor
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
