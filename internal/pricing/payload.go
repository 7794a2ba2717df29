package pricing

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/Simplici0/printquote/internal/geometry"
)

// Payload keys handed to the quote submission collaborator.
const (
	KeyQuality    = "quality"
	KeyMaterial   = "material"
	KeyInfill     = "infill"
	KeySnapshot   = "snapshot"
	KeyDimensions = "dimensions"
	KeyUnit       = "unit"
	KeyScale      = "scale"
	KeyRotation   = "rotation"
	KeyWeight     = "weight"
	KeyPrice      = "price"
	KeyTime       = "time"
)

// Payload flattens a configuration and its estimate into string fields.
func Payload(snapshot geometry.Snapshot, cfg Configuration, est Estimate) map[string]string {
	dims := est.RoundedDimensions()
	return map[string]string{
		KeyQuality:  cfg.Quality.Name,
		KeyMaterial: fmt.Sprintf("%s - %s", cfg.Material.Name, cfg.Color),
		KeyInfill:   fmt.Sprintf("%d%%", cfg.InfillPercent),
		KeySnapshot: fmt.Sprintf("volume %.2f cm3, %.2f x %.2f x %.2f cm, %s triangles",
			snapshot.VolumeCM3,
			snapshot.DimensionsCM.X, snapshot.DimensionsCM.Y, snapshot.DimensionsCM.Z,
			humanize.Comma(snapshot.TriangleCount)),
		KeyDimensions: fmt.Sprintf("%.1f x %.1f x %.1f", dims.X, dims.Y, dims.Z),
		KeyUnit:       string(cfg.Unit),
		KeyScale:      humanize.FtoaWithDigits(cfg.ScaleFactor*100, 1) + "%",
		KeyRotation:   fmt.Sprintf("X:%g Y:%g Z:%g", cfg.Rotation.X, cfg.Rotation.Y, cfg.Rotation.Z),
		KeyWeight:     fmt.Sprintf("%.2f g", est.WeightGrams),
		KeyPrice:      humanize.Comma(est.Price),
		KeyTime:       est.PrintTime.String(),
	}
}
