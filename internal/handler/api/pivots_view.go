package api

import (
	"time"

	"MarketWatch/internal/domain/models"

	"github.com/shopspring/decimal"
)

const levelPlaces = 2

type levelsView struct {
	Pivot            string `json:"pivot"`
	FirstResistance  string `json:"firstResistance"`
	SecondResistance string `json:"secondResistance"`
	ThirdResistance  string `json:"thirdResistance"`
	FirstSupport     string `json:"firstSupport"`
	SecondSupport    string `json:"secondSupport"`
	ThirdSupport     string `json:"thirdSupport"`
}

type pivotsView struct {
	Symbol         string             `json:"symbol"`
	UsePreviousDay bool               `json:"usePreviousDay"`
	Sample         models.OHLCVSample `json:"sample"`
	Levels         levelsView         `json:"levels"`
	ComputedAt     time.Time          `json:"computedAt"`
}

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(levelPlaces)
}

func newPivotsView(rec *models.SupportResistance) pivotsView {
	lv := rec.Levels
	return pivotsView{
		Symbol:         rec.Symbol,
		UsePreviousDay: rec.UsePreviousDay,
		Sample:         rec.Sample,
		Levels: levelsView{
			Pivot:            fixed(lv.Pivot),
			FirstResistance:  fixed(lv.FirstResistance),
			SecondResistance: fixed(lv.SecondResistance),
			ThirdResistance:  fixed(lv.ThirdResistance),
			FirstSupport:     fixed(lv.FirstSupport),
			SecondSupport:    fixed(lv.SecondSupport),
			ThirdSupport:     fixed(lv.ThirdSupport),
		},
		ComputedAt: rec.ComputedAt,
	}
}
