package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seriesWith(confidence Confidence, values ...float64) PredictionSeries {
	points := make([]SeriesPoint, len(values))
	for i, v := range values {
		points[i] = SeriesPoint{Value: v}
	}
	return PredictionSeries{Points: points, Confidence: confidence}
}

func TestComputeBandMedium(t *testing.T) {
	band := ComputeBand(seriesWith(ConfidenceMedium, 100))
	assert.InDelta(t, 120, band.Upper[0], 1e-9)
	assert.InDelta(t, 80, band.Lower[0], 1e-9)
}

func TestComputeBandLow(t *testing.T) {
	band := ComputeBand(seriesWith(ConfidenceLow, 10))
	assert.InDelta(t, 13.5, band.Upper[0], 1e-9)
	assert.InDelta(t, 6.5, band.Lower[0], 1e-9)
}

func TestComputeBandHigh(t *testing.T) {
	band := ComputeBand(seriesWith(ConfidenceHigh, 200))
	assert.InDelta(t, 220, band.Upper[0], 1e-9)
	assert.InDelta(t, 180, band.Lower[0], 1e-9)
}

func TestComputeBandZeroValue(t *testing.T) {
	for _, c := range []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow} {
		band := ComputeBand(seriesWith(c, 0))
		assert.Zero(t, band.Upper[0])
		assert.Zero(t, band.Lower[0])
	}
}

func TestComputeBandUnknownConfidenceUsesWidestSpread(t *testing.T) {
	band := ComputeBand(seriesWith(Confidence("weird"), 100))
	assert.InDelta(t, 135, band.Upper[0], 1e-9)
	assert.InDelta(t, 65, band.Lower[0], 1e-9)
}

func TestComputeBandIsStateless(t *testing.T) {
	s := seriesWith(ConfidenceMedium, 50, 60)
	first := ComputeBand(s)
	second := ComputeBand(s)
	assert.Equal(t, first, second)
	assert.Len(t, first.Upper, 2)
	assert.Len(t, first.Lower, 2)
}
