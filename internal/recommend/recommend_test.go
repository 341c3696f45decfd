package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/lawn-tracker/internal/lawn"
	"github.com/i474232898/lawn-tracker/internal/records"
	"github.com/i474232898/lawn-tracker/internal/store"
	"github.com/i474232898/lawn-tracker/internal/weather"
)

var today = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time { return today.AddDate(0, 0, -n) }

func fixture() Inputs {
	return Inputs{
		Applications: []lawn.Application{
			{ID: "p1", Kind: lawn.KindPGR, Date: daysAgo(30), Rate: 0.5},
			{ID: "p2", Kind: lawn.KindPGR, Date: daysAgo(7), Rate: 0.4},
			{ID: "f1", Kind: lawn.KindFertilizer, Date: daysAgo(100), Rate: 3, ProductType: "Scotts Turf Builder"},
		},
		Settings: lawn.Settings{GrassType: lawn.Bermudagrass, ZipCode: "33101", SquareFootage: 5000},
		Weather: &weather.Snapshot{
			CurrentTemp: 88, ForecastAvgMaxTemp: 85, ForecastAvgMinTemp: 65, LocationZip: "33101",
		},
		Today: today,
	}
}

func TestBuild_Full(t *testing.T) {
	b := Build(fixture())

	require.NotNil(t, b.GDD)
	assert.Equal(t, 60.0, b.GDD.BaseTemp)
	assert.InDelta(t, 15, b.GDD.CurrentGDD, 1e-9)
	require.NotNil(t, b.GDD.SinceLastPGR)
	assert.InDelta(t, 105, *b.GDD.SinceLastPGR, 1e-9)

	require.NotNil(t, b.GDD.NextPGR)
	assert.Equal(t, 7, b.GDD.NextPGR.DaysSinceLast)
	assert.Equal(t, 35, b.GDD.NextPGR.RecommendedIntervalDays)
	assert.Equal(t, 28, b.GDD.NextPGR.DaysUntilNext)

	require.NotNil(t, b.Fertilizer)
	assert.Equal(t, 7, b.Fertilizer.IntervalMonths)
	assert.Equal(t, 110, b.Fertilizer.DaysUntilNext)
	assert.Nil(t, b.Iron)
}

func TestBuild_Idempotent(t *testing.T) {
	in := fixture()
	first := Build(in)
	second := Build(in)
	assert.Equal(t, first, second)
	assert.Equal(t, fixture(), in, "inputs are not mutated")
}

func TestBuild_NoWeatherOrGrass(t *testing.T) {
	in := fixture()
	in.Weather = nil
	b := Build(in)
	assert.Nil(t, b.GDD)
	assert.NotNil(t, b.Fertilizer)

	in = fixture()
	in.Settings.GrassType = lawn.UnspecifiedGrass
	b = Build(in)
	assert.Nil(t, b.GDD)
	require.NotNil(t, b.Fertilizer)
	assert.Equal(t, 6, b.Fertilizer.IntervalMonths, "unclassified grass keeps the base interval")
}

func TestBuild_GDDWithoutPGR(t *testing.T) {
	in := fixture()
	in.Applications = in.Applications[2:]
	b := Build(in)
	require.NotNil(t, b.GDD)
	assert.Nil(t, b.GDD.NextPGR)
	assert.Nil(t, b.GDD.SinceLastPGR)
}

func TestBuild_ZeroGDDHasNoEstimate(t *testing.T) {
	in := fixture()
	in.Weather = &weather.Snapshot{ForecastAvgMaxTemp: 50, ForecastAvgMinTemp: 40}
	b := Build(in)
	require.NotNil(t, b.GDD)
	assert.Equal(t, 0.0, b.GDD.CurrentGDD)
	assert.Nil(t, b.GDD.NextPGR)
}

func TestBuild_UsesLatestSoil(t *testing.T) {
	in := fixture()
	in.Settings.GrassType = lawn.OtherGrass
	in.Applications = append(in.Applications,
		lawn.Application{ID: "i1", Kind: lawn.KindIron, Date: daysAgo(10), Rate: 1, ProductType: "Chelated Iron"},
		lawn.Application{ID: "i0", Kind: lawn.KindIron, Date: daysAgo(200), Rate: 1},
	)
	in.Soil = []lawn.SoilMeasurement{
		{ID: "new", Date: daysAgo(20), Values: map[lawn.Parameter]float64{lawn.Nitrogen: 10, lawn.PH: 7.4}},
		{ID: "old", Date: daysAgo(400), Values: map[lawn.Parameter]float64{lawn.Nitrogen: 90}},
	}

	b := Build(in)
	require.NotNil(t, b.Fertilizer)
	assert.Equal(t, 5, b.Fertilizer.IntervalMonths)
	assert.Equal(t, []string{
		"Increase nitrogen application rate or frequency",
	}, b.Fertilizer.Recommendations)

	require.NotNil(t, b.Iron)
	assert.Equal(t, 3, b.Iron.IntervalMonths)
	assert.Equal(t, 80, b.Iron.DaysUntilNext)
}

func TestBuild_LatestFertilizerWithoutProduct(t *testing.T) {
	in := fixture()
	in.Applications = append(in.Applications,
		lawn.Application{ID: "f2", Kind: lawn.KindFertilizer, Date: daysAgo(5), Rate: 2})
	assert.Nil(t, Build(in).Fertilizer)
}

func TestSummarize(t *testing.T) {
	in := fixture()
	usage := Summarize(in.Applications, in.Settings, today)
	require.Len(t, usage, 3)

	pgr := usage[0]
	assert.Equal(t, lawn.KindPGR, pgr.Kind)
	assert.Equal(t, 2, pgr.Count)
	require.NotNil(t, pgr.DaysSinceLast)
	assert.Equal(t, 7, *pgr.DaysSinceLast)
	require.NotNil(t, pgr.TotalProduct)
	assert.InDelta(t, 4.5, *pgr.TotalProduct, 1e-9)
	assert.Equal(t, "oz", pgr.Unit)

	assert.Equal(t, "lbs", usage[1].Unit)
	assert.InDelta(t, 15, *usage[1].TotalProduct, 1e-9)

	iron := usage[2]
	assert.Zero(t, iron.Count)
	assert.Nil(t, iron.Last)
	assert.Nil(t, iron.DaysSinceLast)

	usage = Summarize(in.Applications, lawn.Settings{}, today)
	assert.Nil(t, usage[0].TotalProduct)
}

type stubWeather struct {
	snap weather.Snapshot
	err  error
	locs []weather.Location
}

func (s *stubWeather) Current(_ context.Context, loc weather.Location) (weather.Snapshot, error) {
	s.locs = append(s.locs, loc)
	return s.snap, s.err
}

func seededRepo(t *testing.T, settings lawn.Settings) *records.Repository {
	t.Helper()
	ctx := context.Background()
	repo := records.New(store.NewMemoryKV())
	_, err := repo.SaveSettings(ctx, settings)
	require.NoError(t, err)
	_, err = repo.AddApplication(ctx, lawn.Application{Kind: lawn.KindPGR, Date: daysAgo(7), Rate: 0.4})
	require.NoError(t, err)
	return repo
}

func TestService_Recommendations(t *testing.T) {
	repo := seededRepo(t, lawn.Settings{GrassType: lawn.TallFescue, ZipCode: "10001"})
	ws := &stubWeather{snap: weather.Snapshot{ForecastAvgMaxTemp: 80, ForecastAvgMinTemp: 60}}

	svc := NewService(repo, ws, zap.NewNop())
	svc.now = func() time.Time { return today }

	report, err := svc.Recommendations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
	require.NotNil(t, report.GDD)
	assert.InDelta(t, 20, report.GDD.CurrentGDD, 1e-9)
	require.NotNil(t, report.GDD.NextPGR)
	assert.Equal(t, []weather.Location{{Zip: "10001", Country: "US"}}, ws.locs)
}

func TestService_WeatherFailureIsAWarning(t *testing.T) {
	repo := seededRepo(t, lawn.Settings{GrassType: lawn.TallFescue, ZipCode: "00000"})
	ws := &stubWeather{err: &weather.ProviderError{Provider: "x", StatusCode: 404, Kind: weather.ErrNotFound}}

	svc := NewService(repo, ws, zap.NewNop())
	report, err := svc.Recommendations(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report.GDD)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "Weather data is unavailable")
}

func TestService_MissingSettings(t *testing.T) {
	svc := NewService(seededRepo(t, lawn.Settings{ZipCode: "10001"}), &stubWeather{}, nil)
	report, err := svc.Recommendations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{warnNoGrass}, report.Warnings)

	svc = NewService(seededRepo(t, lawn.Settings{GrassType: lawn.TallFescue}), &stubWeather{}, nil)
	report, err = svc.Recommendations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{warnNoZip}, report.Warnings)
}

type failingRecords struct{}

func (failingRecords) AllApplications(context.Context) ([]lawn.Application, error) {
	return nil, errors.New("disk on fire")
}

func (failingRecords) SoilMeasurements(context.Context) ([]lawn.SoilMeasurement, error) {
	return nil, errors.New("disk on fire")
}

func (failingRecords) Settings(context.Context) (lawn.Settings, error) {
	return lawn.Settings{}, errors.New("disk on fire")
}

func TestService_RecordErrorsPropagate(t *testing.T) {
	svc := NewService(failingRecords{}, nil, nil)
	_, err := svc.Recommendations(context.Background())
	assert.Error(t, err)
	_, err = svc.Usage(context.Background())
	assert.Error(t, err)
}
