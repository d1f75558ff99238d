package usecase

import (
	"strings"

	"MarketWatch/internal/domain/models"
)

// validateSymbol rejects symbols that are empty, would corrupt the
// comma-delimited index, or would address a key outside the symbol
// namespace (the index key or a ':'-separated levels key).
func validateSymbol(symbol, reservedKey string) error {
	switch {
	case strings.TrimSpace(symbol) == "":
		return &models.ValidationError{Field: "symbol", Message: "Provide symbol on request body"}
	case strings.Contains(symbol, ","):
		return &models.ValidationError{Field: "symbol", Message: "symbol must not contain ','"}
	case strings.Contains(symbol, ":"):
		return &models.ValidationError{Field: "symbol", Message: "symbol must not contain ':'"}
	case reservedKey != "" && symbol == reservedKey:
		return &models.ValidationError{Field: "symbol", Message: "symbol collides with a reserved key"}
	}
	return nil
}
