package geometry

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrDegenerateGeometry reports a snapshot that cannot be printed: a
// non-positive or non-finite volume or bounding-box dimension.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// ErrUnknownAxis is returned by ParseAxis for names other than x, y and z.
var ErrUnknownAxis = errors.New("unknown axis")

// Axis names one of the three bounding-box axes.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// ParseAxis accepts "x", "y" or "z" in any case.
func ParseAxis(raw string) (Axis, error) {
	switch Axis(strings.ToLower(strings.TrimSpace(raw))) {
	case AxisX:
		return AxisX, nil
	case AxisY:
		return AxisY, nil
	case AxisZ:
		return AxisZ, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAxis, raw)
}

// Vector3 holds one value per axis.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Get returns the component for axis. Unknown axes yield 0.
func (v Vector3) Get(axis Axis) float64 {
	switch axis {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	}
	return 0
}

// Scale multiplies every component by f.
func (v Vector3) Scale(f float64) Vector3 {
	return Vector3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Snapshot is the immutable measurement of one uploaded mesh as reported by
// the mesh analyzer. Dimensions are the unscaled axis-aligned bounding box.
type Snapshot struct {
	VolumeCM3     float64 `json:"volume_cm3"`
	DimensionsCM  Vector3 `json:"dimensions_cm"`
	TriangleCount int64   `json:"triangle_count"`
}

// NewSnapshot validates an analyzer report and returns the snapshot built
// from it. Triangle count is passed through for display only.
func NewSnapshot(volumeCM3 float64, dimensionsCM Vector3, triangleCount int64) (Snapshot, error) {
	s := Snapshot{
		VolumeCM3:     volumeCM3,
		DimensionsCM:  dimensionsCM,
		TriangleCount: triangleCount,
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Validate checks that volume and all dimensions are positive finite numbers.
func (s Snapshot) Validate() error {
	if !positive(s.VolumeCM3) {
		return fmt.Errorf("%w: volume_cm3 must be positive, got %v", ErrDegenerateGeometry, s.VolumeCM3)
	}
	for _, axis := range []Axis{AxisX, AxisY, AxisZ} {
		if v := s.DimensionsCM.Get(axis); !positive(v) {
			return fmt.Errorf("%w: dimensions_cm.%s must be positive, got %v", ErrDegenerateGeometry, axis, v)
		}
	}
	if s.TriangleCount < 0 {
		return fmt.Errorf("%w: triangle_count must not be negative, got %d", ErrDegenerateGeometry, s.TriangleCount)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
