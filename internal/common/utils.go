package common

import (
	"math"
	"strings"
)

// Slug normalizes a city display name into a storage key: lowercased,
// spaces replaced with dashes. Distinct spellings that normalize to the
// same slug share one model on purpose.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// Round4 rounds to four decimal places, the precision reported metrics
// are stored with.
func Round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
