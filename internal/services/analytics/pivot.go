package analytics

import "MarketWatch/internal/domain/models"

// PivotLevels computes classic floor-trader pivot points from one day's quote.
// Values are unrounded; presentation layers round as needed.
func PivotLevels(q models.OHLC) models.PivotLevels {
	pivot := (q.Open + q.High + q.Low + q.Close) / 4
	span := q.High - q.Low
	return models.PivotLevels{
		Pivot:            pivot,
		FirstResistance:  2*pivot - q.Low,
		SecondResistance: pivot + span,
		ThirdResistance:  pivot + 2*span,
		FirstSupport:     2*pivot - q.High,
		SecondSupport:    pivot - span,
		ThirdSupport:     pivot - 2*span,
	}
}
