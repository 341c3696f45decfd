package weather

import "time"

// ForecastWindow is how far ahead forecast temperatures are averaged.
const ForecastWindow = 7 * 24 * time.Hour

// ForecastAverages averages the max and min temperatures of the points in
// (from, from+ForecastWindow]. With no point in the window it falls back to
// the current day's max and min.
func ForecastAverages(points []ForecastPoint, from time.Time, todayMax, todayMin float64) (avgMax, avgMin float64) {
	until := from.Add(ForecastWindow)

	var sumMax, sumMin float64
	var n int
	for _, p := range points {
		if !p.Time.After(from) || p.Time.After(until) {
			continue
		}
		sumMax += p.MaxTemp
		sumMin += p.MinTemp
		n++
	}
	if n == 0 {
		return todayMax, todayMin
	}
	return sumMax / float64(n), sumMin / float64(n)
}

// AggregateReadings combines multiple provider readings into a single Snapshot.
// Numeric fields are averaged; conditions are selected by majority, ties going
// to the condition seen first. City and description come from the first
// reading that has them.
func AggregateReadings(loc Location, readings []Reading) Snapshot {
	if len(readings) == 0 {
		return Snapshot{
			LocationZip: loc.Zip,
			Timestamp:   time.Now().UTC(),
			Condition:   ConditionUnknown,
		}
	}

	var (
		sumTemp     float64
		sumHumidity float64
		sumMax      float64
		sumMin      float64
		city        string
	)

	conditionCounts := make(map[Condition]int)
	conditionOrder := make([]Condition, 0, len(readings))
	providers := make([]ProviderContribution, 0, len(readings))
	var newestTS time.Time

	for _, r := range readings {
		sumTemp += r.CurrentTemp
		sumHumidity += r.CurrentHumidity
		sumMax += r.ForecastMaxTemp
		sumMin += r.ForecastMinTemp

		cond := r.Condition
		if cond == "" {
			cond = ConditionUnknown
		}
		if conditionCounts[cond] == 0 {
			conditionOrder = append(conditionOrder, cond)
		}
		conditionCounts[cond]++

		if city == "" {
			city = r.City
		}
		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	n := float64(len(readings))

	bestCond := ConditionUnknown
	bestCount := 0
	for _, cond := range conditionOrder {
		if count := conditionCounts[cond]; count > bestCount {
			bestCount = count
			bestCond = cond
		}
	}

	var description string
	for _, r := range readings {
		if r.Description != "" && (r.Condition == bestCond || description == "") {
			description = r.Description
			if r.Condition == bestCond {
				break
			}
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	return Snapshot{
		CurrentTemp:        sumTemp / n,
		CurrentHumidity:    sumHumidity / n,
		ForecastAvgMaxTemp: sumMax / n,
		ForecastAvgMinTemp: sumMin / n,
		Description:        description,
		Condition:          bestCond,
		LocationCity:       city,
		LocationZip:        loc.Zip,
		Timestamp:          newestTS.UTC(),
		Providers:          providers,
	}
}
