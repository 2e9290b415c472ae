package solscan

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/songzhibin97/splscan/internal/data"
	"github.com/songzhibin97/splscan/internal/models"
)

const (
	defaultBaseURL  = "https://pro-api.solscan.io/v2.0"
	defaultPageSize = 20
)

// Options configures the Solscan Pro API source
type Options struct {
	BaseURL         string
	APIKey          string
	HoldersPageSize int
}

type SolscanDataSource struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *resty.Client
}

func NewSolscanDataSource(opts Options, client *resty.Client) *SolscanDataSource {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HoldersPageSize <= 0 {
		opts.HoldersPageSize = defaultPageSize
	}

	return &SolscanDataSource{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		pageSize:   opts.HoldersPageSize,
		httpClient: client,
	}
}

func (s *SolscanDataSource) Name() string {
	return "solscan"
}

func (s *SolscanDataSource) FetchMetadata(ctx context.Context, address string) (*models.RawMetadata, error) {
	body, err := s.fetch(ctx, data.EndpointMetadata, address)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data struct {
			Name        string          `json:"name"`
			Symbol      string          `json:"symbol"`
			Decimals    data.FlexInt    `json:"decimals"`
			Supply      data.FlexString `json:"supply"`
			Holder      data.FlexInt    `json:"holder"`
			Creator     string          `json:"creator"`
			CreateTx    string          `json:"create_tx"`
			CreatedTime data.FlexInt    `json:"created_time"`
			Rank        data.FlexInt    `json:"market_cap_rank"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, s.malformed(data.EndpointMetadata, err)
	}

	return &models.RawMetadata{
		Name:        result.Data.Name,
		Symbol:      result.Data.Symbol,
		Supply:      string(result.Data.Supply),
		Decimals:    int(result.Data.Decimals),
		HolderCount: int64(result.Data.Holder),
		Creator:     result.Data.Creator,
		CreateTx:    result.Data.CreateTx,
		CreatedTime: int64(result.Data.CreatedTime),
		Standard:    "spl-token",

		MarketCapRank: int64(result.Data.Rank),
	}, nil
}

func (s *SolscanDataSource) FetchHolders(ctx context.Context, address string) ([]models.RawHolder, error) {
	body, err := s.fetch(ctx, data.EndpointHolders, address)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data struct {
			Total data.FlexInt `json:"total"`
			Items []struct {
				Address string          `json:"address"`
				Owner   string          `json:"owner"`
				Amount  data.FlexString `json:"amount"`
			} `json:"items"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, s.malformed(data.EndpointHolders, err)
	}

	holders := make([]models.RawHolder, 0, len(result.Data.Items))
	for _, item := range result.Data.Items {
		amount, err := decimal.NewFromString(string(item.Amount))
		if err != nil {
			return nil, s.malformed(data.EndpointHolders, fmt.Errorf("holder %s: invalid amount %q", item.Address, item.Amount))
		}
		holders = append(holders, models.RawHolder{
			Address: item.Address,
			Owner:   item.Owner,
			Amount:  amount,
		})
	}

	return holders, nil
}

func (s *SolscanDataSource) FetchPrice(ctx context.Context, address string) (*models.PriceInfo, error) {
	body, err := s.fetch(ctx, data.EndpointPrice, address)
	if err != nil {
		return nil, err
	}

	info, err := data.DecodePriceInfo(body)
	if err != nil {
		return nil, s.malformed(data.EndpointPrice, err)
	}
	return info, nil
}

// fetch issues one GET against the endpoint and returns the raw JSON body
func (s *SolscanDataSource) fetch(ctx context.Context, kind data.EndpointKind, address string) ([]byte, error) {
	req := s.httpClient.R().
		SetContext(ctx).
		SetHeader("token", s.apiKey).
		SetQueryParam("address", address)

	var path string
	switch kind {
	case data.EndpointMetadata:
		path = "/token/meta"
	case data.EndpointHolders:
		path = "/token/holders"
		req.SetQueryParam("page", "1").
			SetQueryParam("page_size", strconv.Itoa(s.pageSize))
	case data.EndpointPrice:
		path = "/token/price"
	default:
		return nil, fmt.Errorf("%s: %w", kind, data.ErrNotSupported)
	}

	resp, err := req.Get(s.baseURL + path)
	if err != nil {
		return nil, &data.ProviderError{Source: s.Name(), Endpoint: kind, Kind: data.Transport, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &data.ProviderError{Source: s.Name(), Endpoint: kind, Kind: data.Unreachable, Status: resp.StatusCode()}
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, s.malformed(kind, fmt.Errorf("invalid json body"))
	}

	return body, nil
}

func (s *SolscanDataSource) malformed(kind data.EndpointKind, err error) error {
	return &data.ProviderError{Source: s.Name(), Endpoint: kind, Kind: data.MalformedResponse, Err: err}
}
