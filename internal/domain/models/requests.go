package models

import "MarketWatch/pkg/util"

// Requests for the symbol HTTP endpoints.

type SymbolRequest struct {
	Symbol    string        `json:"symbol" validate:"max=32"`
	SkipCache util.FlexBool `json:"skipCache"`
}

type QuoteRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=32"`
}
