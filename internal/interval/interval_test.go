package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/lawn-tracker/internal/lawn"
)

var today = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

func appliedDaysAgo(kind lawn.Kind, product string, n int) lawn.Application {
	return lawn.Application{Kind: kind, ProductType: product, Rate: 3, Date: today.AddDate(0, 0, -n)}
}

func measurement(values map[lawn.Parameter]float64) *lawn.SoilMeasurement {
	return &lawn.SoilMeasurement{Values: values}
}

func TestFertilizer_WarmSeasonScotts(t *testing.T) {
	est, ok := Fertilizer().NextApplication(
		appliedDaysAgo(lawn.KindFertilizer, "Scotts Turf Builder", 100),
		lawn.Bermudagrass, nil, today)
	require.True(t, ok)
	assert.Equal(t, 7, est.IntervalMonths)
	assert.Equal(t, 110, est.DaysUntilNext)
	assert.Equal(t, 100, est.DaysSinceLast)
	assert.Equal(t, "Estimated 110 days until next fertilizer application", est.Message)
	assert.Equal(t, []string{"Upload a soil test for personalized recommendations"}, est.Recommendations)
}

func TestFertilizer_Unavailable(t *testing.T) {
	p := Fertilizer()

	_, ok := p.NextApplication(lawn.Application{}, lawn.Bermudagrass, nil, today)
	assert.False(t, ok, "no last application")

	_, ok = p.NextApplication(appliedDaysAgo(lawn.KindFertilizer, "", 10), lawn.Bermudagrass, nil, today)
	assert.False(t, ok, "no product type")
}

func TestFertilizer_Ready(t *testing.T) {
	est, ok := Fertilizer().NextApplication(
		appliedDaysAgo(lawn.KindFertilizer, "Lesco Professional", 200),
		lawn.TallFescue, nil, today)
	require.True(t, ok)
	assert.Equal(t, 5, est.IntervalMonths)
	assert.Equal(t, 0, est.DaysUntilNext)
	assert.True(t, est.Ready())
	assert.Equal(t, "Ready for next fertilizer application!", est.Message)
}

func TestFertilizer_Months(t *testing.T) {
	p := Fertilizer()
	tests := []struct {
		name    string
		product string
		grass   lawn.GrassType
		soil    *lawn.SoilMeasurement
		want    int
	}{
		{"unknown product uses default", "Garage Blend", lawn.OtherGrass, nil, 6},
		{"unclassified unchanged", "Milorganite", lawn.UnspecifiedGrass, nil, 8},
		{"cool season shortens", "Scotts Turf Builder", lawn.KentuckyBluegrass, nil, 5},
		{"warm season ceiling", "Milorganite", lawn.Zoysiagrass, nil, 8},
		{"low nitrogen shortens", "Scotts Turf Builder", lawn.OtherGrass,
			measurement(map[lawn.Parameter]float64{lawn.Nitrogen: 10}), 5},
		{"high nitrogen lengthens", "Scotts Turf Builder", lawn.OtherGrass,
			measurement(map[lawn.Parameter]float64{lawn.Nitrogen: 80}), 7},
		{"low nitrogen and organic matter", "Scotts Turf Builder", lawn.OtherGrass,
			measurement(map[lawn.Parameter]float64{lawn.Nitrogen: 10, lawn.OrganicMatter: 1}), 4},
		{"floor holds", "Scotts Turf Builder", lawn.KentuckyBluegrass,
			measurement(map[lawn.Parameter]float64{lawn.Nitrogen: 10, lawn.OrganicMatter: 1}), 4},
		{"ceiling holds", "Milorganite", lawn.Bermudagrass,
			measurement(map[lawn.Parameter]float64{lawn.Nitrogen: 80}), 8},
		{"empty soil record unchanged", "Scotts Turf Builder", lawn.OtherGrass,
			measurement(nil), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Months(tt.product, tt.grass, tt.soil))
		})
	}
}

func TestFertilizer_AttachesSoilAdvice(t *testing.T) {
	soil := measurement(map[lawn.Parameter]float64{lawn.PH: 5.0})
	est, ok := Fertilizer().NextApplication(
		appliedDaysAgo(lawn.KindFertilizer, "Scotts Turf Builder", 30),
		lawn.OtherGrass, soil, today)
	require.True(t, ok)
	assert.Equal(t, []string{"Consider lime application to raise soil pH"}, est.Recommendations)
}

func TestIron_Months(t *testing.T) {
	p := Iron()
	tests := []struct {
		name    string
		product string
		grass   lawn.GrassType
		soil    *lawn.SoilMeasurement
		want    int
	}{
		{"unknown product uses default", "Rust", lawn.Bermudagrass, nil, 4},
		{"cool season shortens", "Ironite", lawn.TallFescue, nil, 5},
		{"cool season floor", "Ferrous Sulfate", lawn.TallFescue, nil, 3},
		{"warm season unchanged", "Ironite", lawn.Bermudagrass, nil, 6},
		{"alkaline soil shortens", "Chelated Iron", lawn.Bermudagrass,
			measurement(map[lawn.Parameter]float64{lawn.PH: 7.4}), 3},
		{"acidic soil lengthens", "Chelated Iron", lawn.Bermudagrass,
			measurement(map[lawn.Parameter]float64{lawn.PH: 5.6}), 5},
		{"acidic ceiling", "Ironite", lawn.Bermudagrass,
			measurement(map[lawn.Parameter]float64{lawn.PH: 5.6}), 6},
		{"neutral soil unchanged", "Chelated Iron", lawn.Bermudagrass,
			measurement(map[lawn.Parameter]float64{lawn.PH: 6.5}), 4},
		{"no pH unchanged", "Chelated Iron", lawn.Bermudagrass,
			measurement(map[lawn.Parameter]float64{lawn.Nitrogen: 10}), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Months(tt.product, tt.grass, tt.soil))
		})
	}
}

func TestIron_NextApplication(t *testing.T) {
	est, ok := Iron().NextApplication(
		appliedDaysAgo(lawn.KindIron, "Chelated Iron", 45),
		lawn.Bermudagrass, nil, today)
	require.True(t, ok)
	assert.Equal(t, 4, est.IntervalMonths)
	assert.Equal(t, 75, est.DaysUntilNext)
	assert.Equal(t, "Estimated 75 days until next iron application", est.Message)
	assert.Nil(t, est.Recommendations)
}

func TestForKind(t *testing.T) {
	p, ok := ForKind(lawn.KindIron)
	require.True(t, ok)
	assert.Equal(t, lawn.KindIron, p.Kind)

	_, ok = ForKind(lawn.KindPGR)
	assert.False(t, ok)
}
