package forecast

// Band is the uncertainty envelope around a predicted series, one
// upper/lower pair per point.
type Band struct {
	Upper []float64 `json:"upper"`
	Lower []float64 `json:"lower"`
}

// bandSpread maps a discrete confidence level to a fixed percentage
// spread around the predicted value.
var bandSpread = map[Confidence]float64{
	ConfidenceHigh:   0.10,
	ConfidenceMedium: 0.20,
	ConfidenceLow:    0.35,
}

// ComputeBand derives the confidence band for a series. Lower bounds
// are floored at zero since predicted revenue and counts cannot go
// negative. Pure transform, safe to call repeatedly.
func ComputeBand(series PredictionSeries) Band {
	spread, ok := bandSpread[series.Confidence]
	if !ok {
		// Unknown level: be conservative and use the widest spread.
		spread = bandSpread[ConfidenceLow]
	}

	band := Band{
		Upper: make([]float64, len(series.Points)),
		Lower: make([]float64, len(series.Points)),
	}
	for i, p := range series.Points {
		band.Upper[i] = p.Value * (1 + spread)
		lower := p.Value * (1 - spread)
		if lower < 0 {
			lower = 0
		}
		band.Lower[i] = lower
	}
	return band
}
