package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/lawn-tracker/internal/lawn"
	"github.com/i474232898/lawn-tracker/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestApplications_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryKV())

	first, err := repo.AddApplication(ctx, lawn.Application{
		Kind: lawn.KindPGR, Date: time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC), Rate: 0.5,
		ProductType: "Primo Maxx", NPK: "ignored",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, day(2024, 6, 1), first.Date)
	assert.Empty(t, first.NPK)

	second, err := repo.AddApplication(ctx, lawn.Application{
		Kind: lawn.KindPGR, Date: day(2024, 6, 1), Rate: 0.4,
	})
	require.NoError(t, err)
	assert.Less(t, first.ID, second.ID, "ids sort in creation order")

	fert, err := repo.AddApplication(ctx, lawn.Application{
		Kind: lawn.KindFertilizer, Date: day(2024, 5, 1), Rate: 3, ProductType: "Milorganite", NPK: "6-4-0",
	})
	require.NoError(t, err)
	assert.Equal(t, "6-4-0", fert.NPK)

	pgr, err := repo.Applications(ctx, lawn.KindPGR)
	require.NoError(t, err)
	require.Len(t, pgr, 2)
	assert.Equal(t, first.ID, pgr[0].ID)

	latest, ok := lawn.MostRecent(pgr, lawn.KindPGR)
	require.True(t, ok)
	assert.Equal(t, second.ID, latest.ID, "same-day tie goes to the newest insertion")

	updated, err := repo.UpdateApplication(ctx, first.ID, lawn.Application{
		Kind: lawn.KindIron, Date: day(2024, 6, 2), Rate: 0.6, Notes: "  wet  ",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, lawn.KindPGR, updated.Kind, "kind is not editable")
	assert.Equal(t, "wet", updated.Notes)
	assert.Empty(t, updated.ProductType)

	pgr, err = repo.Applications(ctx, lawn.KindPGR)
	require.NoError(t, err)
	assert.Equal(t, 0.6, pgr[0].Rate)

	require.NoError(t, repo.DeleteApplication(ctx, second.ID))
	all, err := repo.AllApplications(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, lawn.KindPGR, all[0].Kind)
	assert.Equal(t, lawn.KindFertilizer, all[1].Kind)

	assert.ErrorIs(t, repo.DeleteApplication(ctx, second.ID), ErrNotFound)
	_, err = repo.UpdateApplication(ctx, "nope", lawn.Application{Rate: 1, Date: day(2024, 1, 1)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplications_Validation(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryKV())

	tests := []struct {
		name string
		app  lawn.Application
	}{
		{"zero rate", lawn.Application{Kind: lawn.KindPGR, Date: day(2024, 1, 1)}},
		{"negative rate", lawn.Application{Kind: lawn.KindIron, Date: day(2024, 1, 1), Rate: -1}},
		{"missing date", lawn.Application{Kind: lawn.KindIron, Rate: 1}},
		{"unknown kind", lawn.Application{Kind: "herbicide", Date: day(2024, 1, 1), Rate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.AddApplication(ctx, tt.app)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := repo.Applications(ctx, "herbicide")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSoilMeasurements(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryKV())
	capture := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return capture }

	_, err := repo.AddSoilMeasurement(ctx, lawn.SoilMeasurement{})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = repo.AddSoilMeasurement(ctx, lawn.SoilMeasurement{Values: map[lawn.Parameter]float64{"sodium": 1}})
	assert.ErrorIs(t, err, ErrInvalid)

	recent, err := repo.AddSoilMeasurement(ctx, lawn.SoilMeasurement{Values: map[lawn.Parameter]float64{lawn.PH: 6.2}})
	require.NoError(t, err)
	assert.Equal(t, capture, recent.Date)

	_, err = repo.AddSoilMeasurement(ctx, lawn.SoilMeasurement{
		Date:   day(2023, 9, 1),
		Values: map[lawn.Parameter]float64{lawn.PH: 5.4, lawn.Nitrogen: 12},
	})
	require.NoError(t, err)

	history, err := repo.SoilMeasurements(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, day(2023, 9, 1), history[0].Date)
	assert.Equal(t, recent.ID, history[1].ID)
	v, ok := history[0].Value(lawn.Nitrogen)
	require.True(t, ok)
	assert.Equal(t, 12.0, v)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryKV())

	s, err := repo.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, lawn.Settings{}, s)

	saved, err := repo.SaveSettings(ctx, lawn.Settings{
		GrassType: lawn.TallFescue, ZipCode: " 10001 ", CountryCode: "us", SquareFootage: 5000,
	})
	require.NoError(t, err)
	assert.Equal(t, "10001", saved.ZipCode)
	assert.Equal(t, "US", saved.CountryCode)

	s, err = repo.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, s)

	_, err = repo.SaveSettings(ctx, lawn.Settings{SquareFootage: -1})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = repo.SaveSettings(ctx, lawn.Settings{CountryCode: "USA"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSettings_DefaultCountry(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryKV(), WithDefaultCountry(" ca "))

	s, err := repo.Settings(ctx)
	require.NoError(t, err)
	assert.Empty(t, s.CountryCode, "no zip, no country")

	_, err = repo.SaveSettings(ctx, lawn.Settings{ZipCode: "K1A 0B1"})
	require.NoError(t, err)
	s, err = repo.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CA", s.CountryCode)
	assert.Equal(t, "CA", s.Country())

	_, err = repo.SaveSettings(ctx, lawn.Settings{ZipCode: "10001", CountryCode: "us"})
	require.NoError(t, err)
	s, err = repo.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "US", s.CountryCode)
}
