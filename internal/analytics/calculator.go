package analytics

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/songzhibin97/splscan/internal/models"
)

// ErrDivisionByZero is returned instead of producing Inf or NaN percentages
var ErrDivisionByZero = errors.New("total supply is zero")

var hundred = decimal.NewFromInt(100)

// ComputeOwnership returns each holder's share of totalSupply in the order given
func ComputeOwnership(holders []models.RawHolder, totalSupply decimal.Decimal) ([]models.HolderRecord, error) {
	if totalSupply.IsZero() {
		return nil, ErrDivisionByZero
	}

	records := make([]models.HolderRecord, 0, len(holders))
	for _, h := range holders {
		pct := h.Amount.Div(totalSupply).Mul(hundred)
		exact, _ := pct.Float64()
		records = append(records, models.HolderRecord{
			Address:           h.Address,
			Owner:             h.Owner,
			Amount:            h.Amount,
			Percentage:        exact,
			PercentageDisplay: pct.StringFixed(2),
		})
	}

	return records, nil
}

// ComputeMarketCap multiplies price by supply. A missing or unusable price,
// or a zero supply, yields 0.
func ComputeMarketCap(usdPrice float64, totalSupply decimal.Decimal) float64 {
	if usdPrice <= 0 || math.IsNaN(usdPrice) || math.IsInf(usdPrice, 0) {
		return 0
	}
	if totalSupply.Sign() <= 0 {
		return 0
	}

	mc, _ := decimal.NewFromFloat(usdPrice).Mul(totalSupply).Float64()
	return mc
}

// FormatSupply converts a raw on-chain supply into token units
func FormatSupply(raw decimal.Decimal, decimals int) decimal.Decimal {
	return raw.Shift(int32(-decimals))
}

// BuildRecord merges validated metadata and optional price data into the
// canonical analytics record. The holder count is only what the provider
// reports; a holders page is a sample, not a census, so 0 stays unknown.
func BuildRecord(meta *models.TokenMetadata, price *models.PriceInfo) models.AnalyticsRecord {
	uiSupply := FormatSupply(meta.Supply, meta.Decimals)

	record := models.AnalyticsRecord{
		TokenName:       meta.Name,
		TokenSymbol:     meta.Symbol,
		TotalSupply:     meta.Supply.String(),
		FormattedSupply: uiSupply.String(),
		Decimals:        meta.Decimals,
		HoldersCount:    meta.HolderCount,
		CreatorAddress:  meta.Creator,
		UpdateAuthority: meta.UpdateAuthority,
		MintSignature:   meta.CreateTx,
		CreatedTime:     meta.CreatedTime,
		IsMutable:       meta.IsMutable,
		Standard:        meta.Standard,
		Exchange:        models.NotAvailable,
		PairLabel:       models.NotAvailable,
		MarketCapRank:   meta.MarketCapRank,
	}
	if record.HoldersCount < 0 {
		record.HoldersCount = 0
	}

	if price != nil {
		record.Price = price.USDPrice
		record.Exchange = price.Exchange
		record.PairLabel = price.PairLabel
	}
	record.MarketCap = ComputeMarketCap(record.Price, uiSupply)

	return record
}
