package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/songzhibin97/splscan/internal/models"
)

type priceQuote struct {
	USDPrice     *FlexString `json:"usdPrice"`
	Price        *FlexString `json:"price"`
	ExchangeName string      `json:"exchangeName"`
	PairLabel    string      `json:"pairLabel"`
}

type priceEnvelope struct {
	Pairs json.RawMessage `json:"pairs"`
	Data  json.RawMessage `json:"data"`
	priceQuote
}

// DecodePriceInfo normalizes the price payload shapes used by providers:
// a bare sequence, a {"pairs": [...]} or {"data": ...} wrapper, or a single
// quote object. The first quote of a sequence is used; an empty sequence
// yields a nil PriceInfo.
func DecodePriceInfo(body []byte) (*models.PriceInfo, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty price payload")
	}

	switch body[0] {
	case '[':
		var quotes []priceQuote
		if err := json.Unmarshal(body, &quotes); err != nil {
			return nil, fmt.Errorf("failed to decode price sequence: %w", err)
		}
		if len(quotes) == 0 {
			return nil, nil
		}
		return quotes[0].toPriceInfo()

	case '{':
		var env priceEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("failed to decode price object: %w", err)
		}
		if nested := nonNull(env.Pairs); nested != nil {
			return DecodePriceInfo(nested)
		}
		if nested := nonNull(env.Data); nested != nil {
			return DecodePriceInfo(nested)
		}
		return env.priceQuote.toPriceInfo()

	case 'n':
		if bytes.Equal(body, []byte("null")) {
			return nil, nil
		}
	}

	return nil, fmt.Errorf("unexpected price payload: %.32s", body)
}

func nonNull(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return raw
}

func (q priceQuote) toPriceInfo() (*models.PriceInfo, error) {
	info := &models.PriceInfo{
		Exchange:  q.ExchangeName,
		PairLabel: q.PairLabel,
	}
	if info.Exchange == "" {
		info.Exchange = models.NotAvailable
	}
	if info.PairLabel == "" {
		info.PairLabel = models.NotAvailable
	}

	raw := q.USDPrice
	if raw == nil || *raw == "" {
		raw = q.Price
	}
	if raw == nil || *raw == "" {
		return info, nil
	}

	price, err := strconv.ParseFloat(string(*raw), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid usd price %q: %w", string(*raw), err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return nil, fmt.Errorf("invalid usd price %q", string(*raw))
	}
	info.USDPrice = price

	return info, nil
}
