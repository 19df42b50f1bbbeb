package cache

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mleray/forecastgate/pkg/forecast"
)

// BuildKey serializes an expanded request into its cache key:
// locationID|forecastDays|sortedSegments|sortedTypes. Two requests that
// expand to the same pair set always map to the same key, regardless of
// how their scopes were originally phrased.
func BuildKey(locationID string, forecastDays int, pairs []forecast.Pair) string {
	segSet := make(map[forecast.Segment]struct{})
	typeSet := make(map[forecast.PredictionType]struct{})
	for _, p := range pairs {
		segSet[p.Segment] = struct{}{}
		typeSet[p.Type] = struct{}{}
	}

	segments := make([]string, 0, len(segSet))
	for s := range segSet {
		segments = append(segments, string(s))
	}
	sort.Strings(segments)

	types := make([]string, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, string(t))
	}
	sort.Strings(types)

	parts := []string{
		locationID,
		strconv.Itoa(forecastDays),
		strings.Join(segments, ","),
		strings.Join(types, ","),
	}
	return strings.Join(parts, "|")
}
