package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/geometry"
	"github.com/Simplici0/printquote/internal/pricing"
)

func mustSnapshot(t *testing.T, volume float64, dims geometry.Vector3) geometry.Snapshot {
	t.Helper()
	s, err := geometry.NewSnapshot(volume, dims, 100)
	require.NoError(t, err)
	return s
}

func TestSessionLifecycle(t *testing.T) {
	c := catalog.Default()
	s := New()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, StateNoFile, s.State)

	_, err := s.Estimate(catalog.StandardProfile)
	assert.ErrorIs(t, err, ErrNoFile)
	assert.ErrorIs(t, s.Edit(nil), ErrNoFile)

	require.NoError(t, s.Attach(mustSnapshot(t, 50, geometry.Vector3{X: 10, Y: 5, Z: 4}), c))
	assert.Equal(t, StateConfiguring, s.State)
	assert.Equal(t, pricing.DefaultConfiguration(c), s.Configuration)

	est, err := s.Estimate(catalog.StandardProfile)
	require.NoError(t, err)
	assert.Equal(t, geometry.Vector3{X: 10, Y: 5, Z: 4}, est.PrintableDimensions)

	require.NoError(t, s.MarkSubmitted(7))
	assert.Equal(t, StateSubmitted, s.State)
	assert.Equal(t, int64(7), s.SubmissionID)

	assert.ErrorIs(t, s.Detach(), ErrSubmitted)
	assert.ErrorIs(t, s.MarkSubmitted(8), ErrSubmitted)
	assert.ErrorIs(t, s.Attach(mustSnapshot(t, 1, geometry.Vector3{X: 1, Y: 1, Z: 1}), c), ErrSubmitted)
}

func TestSessionReplacingFileResetsConfiguration(t *testing.T) {
	c := catalog.Default()
	s := New()
	first := mustSnapshot(t, 50, geometry.Vector3{X: 10, Y: 5, Z: 4})
	require.NoError(t, s.Attach(first, c))

	require.NoError(t, s.Edit(func(snap geometry.Snapshot, cfg pricing.Configuration) (pricing.Configuration, error) {
		cfg.SetRotation(geometry.Vector3{X: 90})
		return pricing.SetTargetDimension(snap, cfg, geometry.AxisX, 30)
	}))
	assert.InDelta(t, 3.0, s.Configuration.ScaleFactor, 1e-12)

	second := mustSnapshot(t, 8, geometry.Vector3{X: 2, Y: 2, Z: 2})
	require.NoError(t, s.Attach(second, c))

	assert.Equal(t, 1.0, s.Configuration.ScaleFactor)
	assert.Equal(t, geometry.Vector3{}, s.Configuration.Rotation)
	assert.Equal(t, second, *s.Snapshot)
}

func TestSessionDetach(t *testing.T) {
	c := catalog.Default()
	s := New()
	require.NoError(t, s.Attach(mustSnapshot(t, 50, geometry.Vector3{X: 10, Y: 5, Z: 4}), c))

	require.NoError(t, s.Detach())
	assert.Equal(t, StateNoFile, s.State)
	assert.Nil(t, s.Snapshot)
	assert.Equal(t, pricing.Configuration{}, s.Configuration)
}

func TestSessionRejectsDegenerateSnapshot(t *testing.T) {
	c := catalog.Default()
	s := New()
	good := mustSnapshot(t, 50, geometry.Vector3{X: 10, Y: 5, Z: 4})
	require.NoError(t, s.Attach(good, c))

	err := s.Attach(geometry.Snapshot{VolumeCM3: 10, DimensionsCM: geometry.Vector3{X: 1, Y: 0, Z: 1}}, c)
	assert.ErrorIs(t, err, geometry.ErrDegenerateGeometry)
	assert.Equal(t, good, *s.Snapshot)
	assert.Equal(t, StateConfiguring, s.State)
}

func TestSessionFailedEditKeepsConfiguration(t *testing.T) {
	c := catalog.Default()
	s := New()
	require.NoError(t, s.Attach(mustSnapshot(t, 50, geometry.Vector3{X: 10, Y: 5, Z: 4}), c))
	require.NoError(t, s.Edit(func(_ geometry.Snapshot, cfg pricing.Configuration) (pricing.Configuration, error) {
		return cfg, cfg.SetScale(1.25)
	}))
	before := s.Configuration

	err := s.Edit(func(snap geometry.Snapshot, cfg pricing.Configuration) (pricing.Configuration, error) {
		cfg.SetInfill(90)
		return pricing.SetTargetDimension(snap, cfg, geometry.AxisX, -1)
	})
	assert.True(t, errors.Is(err, pricing.ErrInvalidDimension))
	assert.Equal(t, before, s.Configuration)
}
