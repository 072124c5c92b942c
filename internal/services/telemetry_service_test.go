package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skihud/internal/domain/entities"
	"skihud/internal/repository"
	"skihud/internal/repository/memory"
)

func newTelemetryFixture(t *testing.T) (*TelemetryService, *memory.RiderRepository, *entities.Rider) {
	t.Helper()
	repo := memory.NewRiderRepository()
	rider := entities.NewRider("rider-1", "Ada")
	require.NoError(t, repo.Create(context.Background(), rider))
	return NewTelemetryService(repo), repo, rider
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }

func TestApplyUpdate_SparseMergeKeepsUnsetFields(t *testing.T) {
	svc, _, _ := newTelemetryFixture(t)
	ctx := context.Background()

	_, err := svc.ApplyUpdate(ctx, "rider-1", UpdateFields{
		Lat:   floatPtr(10.0),
		Speed: floatPtr(5.0),
	})
	require.NoError(t, err)

	// Second update reports speed only; lat must survive untouched.
	rec, err := svc.ApplyUpdate(ctx, "rider-1", UpdateFields{
		Speed: floatPtr(3.0),
	})
	require.NoError(t, err)

	require.NotNil(t, rec.Lat)
	assert.Equal(t, 10.0, *rec.Lat)
	require.NotNil(t, rec.Speed)
	assert.Equal(t, 3.0, *rec.Speed)
	require.NotNil(t, rec.MaxSpeed)
	assert.Equal(t, 5.0, *rec.MaxSpeed)
	assert.Nil(t, rec.Lon)
	assert.Nil(t, rec.Alt)
	assert.Nil(t, rec.Trail)
}

func TestApplyUpdate_RunningMaxima(t *testing.T) {
	svc, _, _ := newTelemetryFixture(t)
	ctx := context.Background()

	speeds := []float64{12.0, 48.5, 30.0, 48.4}
	var wantMax float64
	for _, s := range speeds {
		if s > wantMax {
			wantMax = s
		}
		rec, err := svc.ApplyUpdate(ctx, "rider-1", UpdateFields{Speed: floatPtr(s)})
		require.NoError(t, err)
		assert.Equal(t, s, *rec.Speed)
		assert.Equal(t, wantMax, *rec.MaxSpeed)
	}
}

func TestApplyUpdate_FirstValueSeedsCurrentAndMax(t *testing.T) {
	svc, _, _ := newTelemetryFixture(t)

	rec, err := svc.ApplyUpdate(context.Background(), "rider-1", UpdateFields{
		GForce: floatPtr(1.8),
	})
	require.NoError(t, err)
	assert.Equal(t, 1.8, *rec.GForce)
	assert.Equal(t, 1.8, *rec.MaxGForce)
}

func TestApplyUpdate_MaxNeverDecreases(t *testing.T) {
	svc, _, _ := newTelemetryFixture(t)
	ctx := context.Background()

	_, err := svc.ApplyUpdate(ctx, "rider-1", UpdateFields{GForce: floatPtr(2.5)})
	require.NoError(t, err)

	rec, err := svc.ApplyUpdate(ctx, "rider-1", UpdateFields{GForce: floatPtr(0.9)})
	require.NoError(t, err)
	assert.Equal(t, 0.9, *rec.GForce)
	assert.Equal(t, 2.5, *rec.MaxGForce)
}

func TestApplyUpdate_TrailTruncation(t *testing.T) {
	svc, _, _ := newTelemetryFixture(t)
	ctx := context.Background()

	long := strings.Repeat("x", 30)
	rec, err := svc.ApplyUpdate(ctx, "rider-1", UpdateFields{Trail: strPtr(long)})
	require.NoError(t, err)
	require.NotNil(t, rec.Trail)
	assert.Equal(t, long[:16], *rec.Trail)

	// Short strings pass through unchanged, empty string included.
	rec, err = svc.ApplyUpdate(ctx, "rider-1", UpdateFields{Trail: strPtr("GreenGlades01")})
	require.NoError(t, err)
	assert.Equal(t, "GreenGlades01", *rec.Trail)

	rec, err = svc.ApplyUpdate(ctx, "rider-1", UpdateFields{Trail: strPtr("")})
	require.NoError(t, err)
	require.NotNil(t, rec.Trail)
	assert.Equal(t, "", *rec.Trail)
}

func TestApplyUpdate_TrailTruncationCountsRunes(t *testing.T) {
	svc, _, _ := newTelemetryFixture(t)

	trail := strings.Repeat("é", 20)
	rec, err := svc.ApplyUpdate(context.Background(), "rider-1", UpdateFields{Trail: strPtr(trail)})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 16), *rec.Trail)
}

func TestApplyUpdate_EmptyUpdateRefreshesLiveness(t *testing.T) {
	svc, repo, _ := newTelemetryFixture(t)
	ctx := context.Background()

	before, err := repo.GetByID(ctx, "rider-1")
	require.NoError(t, err)

	rec, err := svc.ApplyUpdate(ctx, "rider-1", UpdateFields{})
	require.NoError(t, err)
	assert.False(t, rec.LastUpdate.Before(before.LastUpdate))
	assert.Nil(t, rec.Lat)
	assert.Nil(t, rec.Speed)
}

func TestApplyUpdate_ActiveFlag(t *testing.T) {
	svc, _, _ := newTelemetryFixture(t)
	ctx := context.Background()

	rec, err := svc.ApplyUpdate(ctx, "rider-1", UpdateFields{Active: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, rec.Active)

	rec, err = svc.ApplyUpdate(ctx, "rider-1", UpdateFields{Active: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, rec.Active)
}

func TestApplyUpdate_UnpairedCoordinatesMergeIndependently(t *testing.T) {
	svc, _, _ := newTelemetryFixture(t)
	ctx := context.Background()

	rec, err := svc.ApplyUpdate(ctx, "rider-1", UpdateFields{Lat: floatPtr(39.1)})
	require.NoError(t, err)
	require.NotNil(t, rec.Lat)
	assert.Nil(t, rec.Lon)

	rec, err = svc.ApplyUpdate(ctx, "rider-1", UpdateFields{Lon: floatPtr(-106.6)})
	require.NoError(t, err)
	assert.Equal(t, 39.1, *rec.Lat)
	assert.Equal(t, -106.6, *rec.Lon)
}

func TestApplyUpdate_MissingID(t *testing.T) {
	svc, repo, _ := newTelemetryFixture(t)
	ctx := context.Background()

	_, err := svc.ApplyUpdate(ctx, "", UpdateFields{Speed: floatPtr(1.0)})
	assert.ErrorIs(t, err, ErrMissingUserID)

	// Store unchanged.
	rec, err := repo.GetByID(ctx, "rider-1")
	require.NoError(t, err)
	assert.Nil(t, rec.Speed)
}

func TestApplyUpdate_UnknownID(t *testing.T) {
	svc, repo, _ := newTelemetryFixture(t)
	ctx := context.Background()

	_, err := svc.ApplyUpdate(ctx, "no-such-rider", UpdateFields{Speed: floatPtr(1.0)})
	assert.ErrorIs(t, err, repository.ErrRiderNotFound)

	riders, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, riders, 1)
}
