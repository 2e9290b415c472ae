package analytics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/songzhibin97/splscan/internal/models"
)

// ErrNotAToken matches every ValidationError
var ErrNotAToken = errors.New("not a recognized token")

// ValidationError names the first required field that failed
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrNotAToken
}

// Validate checks that raw metadata describes a fungible token.
// Fields are checked in a fixed order: name, symbol, supply, decimals.
func Validate(raw *models.RawMetadata) (*models.TokenMetadata, error) {
	if raw == nil {
		return nil, &ValidationError{Field: "name", Reason: "is missing"}
	}

	if strings.TrimSpace(raw.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "is missing"}
	}

	if strings.TrimSpace(raw.Symbol) == "" {
		return nil, &ValidationError{Field: "symbol", Reason: "is missing"}
	}

	supplyText := strings.TrimSpace(raw.Supply)
	if supplyText == "" {
		return nil, &ValidationError{Field: "supply", Reason: "is missing"}
	}
	supply, err := decimal.NewFromString(supplyText)
	if err != nil {
		return nil, &ValidationError{Field: "supply", Reason: "is not a number"}
	}
	if supply.Sign() <= 0 {
		return nil, &ValidationError{Field: "supply", Reason: "must be greater than zero"}
	}

	if raw.Decimals == 0 {
		return nil, &ValidationError{Field: "decimals", Reason: "is missing"}
	}
	if raw.Decimals < 0 {
		return nil, &ValidationError{Field: "decimals", Reason: "must not be negative"}
	}

	return &models.TokenMetadata{
		Name:        raw.Name,
		Symbol:      raw.Symbol,
		Supply:      supply,
		Decimals:    raw.Decimals,
		HolderCount: raw.HolderCount,
		Creator:     raw.Creator,
		CreateTx:    raw.CreateTx,
		CreatedTime: raw.CreatedTime,
		IsMutable:   raw.IsMutable,
		Standard:    raw.Standard,

		UpdateAuthority: raw.UpdateAuthority,
		MarketCapRank:   raw.MarketCapRank,
	}, nil
}
