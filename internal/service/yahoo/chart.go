package yahoo

import (
	"errors"
	"fmt"

	"MarketWatch/internal/domain/models"
	"MarketWatch/pkg/util"
)

const chartResult = "chart.result.0"

// chartSeries holds the six parallel daily series of a chart response.
type chartSeries struct {
	timestamp []any
	open      []any
	high      []any
	low       []any
	close     []any
	volume    []any
}

var errNotEnoughBars = errors.New("not enough data points")

func parseChart(doc any) (*chartSeries, error) {
	quote := chartResult + ".indicators.quote.0."
	var s chartSeries
	for _, f := range []struct {
		path string
		dst  *[]any
	}{
		{chartResult + ".timestamp", &s.timestamp},
		{quote + "open", &s.open},
		{quote + "high", &s.high},
		{quote + "low", &s.low},
		{quote + "close", &s.close},
		{quote + "volume", &s.volume},
	} {
		ext := util.Extract(doc, f.path)
		if !ext.Resolved() {
			return nil, fmt.Errorf("chart: missing %s", f.path)
		}
		arr, ok := ext.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("chart: %s is not a series", f.path)
		}
		*f.dst = arr
	}
	return &s, nil
}

// pick selects the last bar, or the second-to-last when previous is set.
func (s *chartSeries) pick(previous bool) (*models.OHLCVSample, error) {
	idx := len(s.timestamp) - 1
	if previous {
		idx--
	}
	if idx < 0 {
		return nil, errNotEnoughBars
	}

	ts, ok := at(s.timestamp, idx, util.Int)
	if !ok {
		return nil, fmt.Errorf("chart: no timestamp at %d", idx)
	}
	out := &models.OHLCVSample{Timestamp: ts, Date: util.FromUnix(ts)}

	for _, f := range []struct {
		name   string
		series []any
		dst    *float64
	}{
		{"open", s.open, &out.Open},
		{"high", s.high, &out.High},
		{"low", s.low, &out.Low},
		{"close", s.close, &out.Close},
	} {
		v, ok := at(f.series, idx, util.Float)
		if !ok {
			return nil, fmt.Errorf("chart: no %s at %d", f.name, idx)
		}
		*f.dst = v
	}

	vol, ok := at(s.volume, idx, util.Int)
	if !ok {
		return nil, fmt.Errorf("chart: no volume at %d", idx)
	}
	out.Volume = vol
	return out, nil
}

func at[T any](series []any, idx int, conv func(any) (T, bool)) (T, bool) {
	var zero T
	if idx >= len(series) {
		return zero, false
	}
	return conv(series[idx])
}
