package weather

import (
	"time"
)

// hourlyTimeLayout is the minute-precision ISO-8601 form Open-Meteo uses
// for hourly series.
const hourlyTimeLayout = "2006-01-02T15:04"

// ParseObservationTime parses a provider timestamp, accepting both the
// hourly minute-precision form and full RFC3339.
func ParseObservationTime(s string) (time.Time, error) {
	if ts, err := time.Parse(hourlyTimeLayout, s); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ExtractFeatureTable turns the provider's parallel hourly arrays into an
// ordered feature table. Arrays are zipped positionally; the shortest one
// bounds the row count. Rows with an unparseable timestamp are skipped.
func ExtractFeatureTable(times []string, temperatures, humidities, windSpeeds []float64) FeatureTable {
	n := len(times)
	if len(temperatures) < n {
		n = len(temperatures)
	}
	if len(humidities) < n {
		n = len(humidities)
	}
	if len(windSpeeds) < n {
		n = len(windSpeeds)
	}

	table := make(FeatureTable, 0, n)
	for i := 0; i < n; i++ {
		ts, err := ParseObservationTime(times[i])
		if err != nil {
			continue
		}
		table = append(table, Observation{
			Timestamp:   ts,
			HourOfDay:   HourOf(ts),
			Humidity:    humidities[i],
			WindSpeed:   windSpeeds[i],
			Temperature: temperatures[i],
		})
	}
	return table
}
