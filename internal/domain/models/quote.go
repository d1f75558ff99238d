package models

import "time"

// CompositeRecord maps an upstream module name to its extracted payload.
type CompositeRecord map[string]any

// OHLC is one trading day's open/high/low/close quadruple.
type OHLC struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// OHLCVSample is a single daily bar selected from the chart series.
type OHLCVSample struct {
	Symbol    string    `json:"symbol"`
	Timestamp int64     `json:"timestamp"`
	Date      time.Time `json:"date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

func (s OHLCVSample) OHLC() OHLC {
	return OHLC{Open: s.Open, High: s.High, Low: s.Low, Close: s.Close}
}

// PivotLevels holds the floor-trader pivot and its derived levels.
type PivotLevels struct {
	Pivot            float64 `json:"pivot"`
	FirstResistance  float64 `json:"firstResistance"`
	SecondResistance float64 `json:"secondResistance"`
	ThirdResistance  float64 `json:"thirdResistance"`
	FirstSupport     float64 `json:"firstSupport"`
	SecondSupport    float64 `json:"secondSupport"`
	ThirdSupport     float64 `json:"thirdSupport"`
}

// SupportResistance is the cached, daily-quote-derived levels record.
type SupportResistance struct {
	Symbol         string      `json:"symbol"`
	UsePreviousDay bool        `json:"usePreviousDay"`
	Sample         OHLCVSample `json:"sample"`
	Levels         PivotLevels `json:"levels"`
	ComputedAt     time.Time   `json:"computedAt"`
}
