package pricing

import (
	"fmt"
	"math"

	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/geometry"
)

const (
	// shellMassShare is the part of the mass assumed solid regardless of infill.
	shellMassShare = 0.3
	// cm3PerHour is the volume printed per hour at multiplier 1 and no infill.
	cm3PerHour = 10.0
	// maxHours caps the whole-hour part of a print time so it fits any int.
	maxHours = math.MaxInt32
)

// int64Limit is 2^63, the first float64 that no longer fits in an int64.
const int64Limit = float64(1 << 63)

// PrintTime is an estimated print duration split into hours and minutes.
type PrintTime struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func (t PrintTime) String() string {
	return fmt.Sprintf("%dh %dm", t.Hours, t.Minutes)
}

// Estimate is the quote derived from a snapshot and a configuration.
type Estimate struct {
	PrintableDimensions geometry.Vector3 `json:"printable_dimensions"`
	WeightGrams         float64          `json:"estimated_weight_grams"`
	Price               int64            `json:"estimated_price"`
	PrintTime           PrintTime        `json:"estimated_time"`
}

// RoundedDimensions returns the printable dimensions rounded to one decimal.
func (e Estimate) RoundedDimensions() geometry.Vector3 {
	return geometry.Vector3{
		X: roundTo(e.PrintableDimensions.X, 1),
		Y: roundTo(e.PrintableDimensions.Y, 1),
		Z: roundTo(e.PrintableDimensions.Z, 1),
	}
}

// Calculate computes the estimate for snapshot printed with cfg under the
// pricing constants of profile. It has no side effects and keeps no state.
// Results that do not fit their types saturate at the largest value.
func Calculate(snapshot geometry.Snapshot, cfg Configuration, profile catalog.PricingProfile) Estimate {
	infill := float64(cfg.InfillPercent)
	linearFactor := cfg.ScaleFactor * cfg.Unit.Factor()
	// Volume is already physical; only the scale is cubed, never the unit factor.
	scaledVolume := snapshot.VolumeCM3 * cfg.ScaleFactor * cfg.ScaleFactor * cfg.ScaleFactor

	infillFactor := shellMassShare + (1-shellMassShare)*(infill/100)
	weight := scaledVolume * cfg.Material.DensityGPerCM3 * infillFactor

	infillPriceFactor := 1 + infill/200
	rawPrice := scaledVolume * profile.BaseRate * cfg.Quality.Multiplier * infillPriceFactor
	price := addSaturating(roundToInt64(rawPrice), profile.FlatFee)
	if price < profile.MinimumPrice {
		price = profile.MinimumPrice
	}

	hoursRaw := (scaledVolume / cm3PerHour) * cfg.Quality.Multiplier * (1 + infill/100)

	dims := snapshot.DimensionsCM.Scale(linearFactor)
	return Estimate{
		PrintableDimensions: geometry.Vector3{X: finite(dims.X), Y: finite(dims.Y), Z: finite(dims.Z)},
		WeightGrams:         finite(weight),
		Price:               price,
		PrintTime:           splitHours(hoursRaw),
	}
}

// SetTargetDimension solves the scale factor that makes axis print at target
// length, keeping the aspect ratio. On error cfg is returned unchanged.
func SetTargetDimension(snapshot geometry.Snapshot, cfg Configuration, axis geometry.Axis, target float64) (Configuration, error) {
	if !finitePositive(target) {
		return cfg, fmt.Errorf("%w: target %s must be a positive number, got %v", ErrInvalidDimension, axis, target)
	}

	native := snapshot.DimensionsCM.Get(axis)
	if !finitePositive(native) {
		return cfg, fmt.Errorf("%w: dimensions_cm.%s is %v", geometry.ErrDegenerateGeometry, axis, native)
	}

	scale := target / (native * cfg.Unit.Factor())
	if !validScale(scale) {
		return cfg, fmt.Errorf("%w: target %s of %v yields scale %v outside (0, %v]", ErrInvalidDimension, axis, target, scale, MaxScaleFactor)
	}

	cfg.ScaleFactor = scale
	return cfg, nil
}

func splitHours(hoursRaw float64) PrintTime {
	if !(hoursRaw > 0) {
		return PrintTime{}
	}
	if hoursRaw >= maxHours {
		return PrintTime{Hours: maxHours, Minutes: 59}
	}
	whole := math.Floor(hoursRaw)
	minutes := int(math.Floor((hoursRaw - whole) * 60))
	if minutes > 59 {
		minutes = 59
	}
	return PrintTime{Hours: int(whole), Minutes: minutes}
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// roundToInt64 rounds v to the nearest integer, saturating at math.MaxInt64.
// v is never negative here.
func roundToInt64(v float64) int64 {
	r := math.Round(v)
	if !(r < int64Limit) {
		return math.MaxInt64
	}
	if r < 0 {
		return 0
	}
	return int64(r)
}

func addSaturating(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// finite replaces +Inf with the largest float64 so results stay encodable.
func finite(v float64) float64 {
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}
