package moralis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/songzhibin97/splscan/internal/data"
	"github.com/songzhibin97/splscan/internal/models"
)

const (
	defaultBaseURL = "https://solana-gateway.moralis.io"
	defaultNetwork = "mainnet"
	defaultLimit   = 20

	// PriceFromPairs reads the first pair of /pairs, PriceFromQuote reads /price
	PriceFromPairs = "pairs"
	PriceFromQuote = "price"
)

// Options configures the Moralis Solana gateway source
type Options struct {
	BaseURL       string
	APIKey        string
	Network       string
	HoldersLimit  int
	PriceEndpoint string
}

type MoralisDataSource struct {
	baseURL       string
	apiKey        string
	network       string
	limit         int
	priceEndpoint string
	httpClient    *resty.Client
}

func NewMoralisDataSource(opts Options, client *resty.Client) *MoralisDataSource {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Network == "" {
		opts.Network = defaultNetwork
	}
	if opts.HoldersLimit <= 0 {
		opts.HoldersLimit = defaultLimit
	}
	if opts.PriceEndpoint != PriceFromQuote {
		opts.PriceEndpoint = PriceFromPairs
	}

	return &MoralisDataSource{
		baseURL:       opts.BaseURL,
		apiKey:        opts.APIKey,
		network:       opts.Network,
		limit:         opts.HoldersLimit,
		priceEndpoint: opts.PriceEndpoint,
		httpClient:    client,
	}
}

func (m *MoralisDataSource) Name() string {
	return "moralis"
}

func (m *MoralisDataSource) FetchMetadata(ctx context.Context, address string) (*models.RawMetadata, error) {
	body, err := m.fetch(ctx, data.EndpointMetadata, address)
	if err != nil {
		return nil, err
	}

	var result struct {
		Standard    string          `json:"standard"`
		Name        string          `json:"name"`
		Symbol      string          `json:"symbol"`
		Decimals    data.FlexInt    `json:"decimals"`
		TotalSupply data.FlexString `json:"totalSupply"`
		Metaplex    *struct {
			UpdateAuthority string `json:"updateAuthority"`
			IsMutable       *bool  `json:"isMutable"`
		} `json:"metaplex"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, m.malformed(data.EndpointMetadata, err)
	}

	meta := &models.RawMetadata{
		Name:     result.Name,
		Symbol:   result.Symbol,
		Supply:   string(result.TotalSupply),
		Decimals: int(result.Decimals),
		Standard: result.Standard,
	}
	if result.Metaplex != nil {
		meta.IsMutable = result.Metaplex.IsMutable
		meta.UpdateAuthority = result.Metaplex.UpdateAuthority
	}

	return meta, nil
}

func (m *MoralisDataSource) FetchHolders(ctx context.Context, address string) ([]models.RawHolder, error) {
	body, err := m.fetch(ctx, data.EndpointHolders, address)
	if err != nil {
		return nil, err
	}

	var result struct {
		Result []struct {
			OwnerAddress string          `json:"ownerAddress"`
			Balance      data.FlexString `json:"balance"`
		} `json:"result"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, m.malformed(data.EndpointHolders, err)
	}

	holders := make([]models.RawHolder, 0, len(result.Result))
	for _, item := range result.Result {
		amount, err := decimal.NewFromString(string(item.Balance))
		if err != nil {
			return nil, m.malformed(data.EndpointHolders, fmt.Errorf("holder %s: invalid balance %q", item.OwnerAddress, item.Balance))
		}
		holders = append(holders, models.RawHolder{
			Address: item.OwnerAddress,
			Owner:   item.OwnerAddress,
			Amount:  amount,
		})
	}

	return holders, nil
}

func (m *MoralisDataSource) FetchPrice(ctx context.Context, address string) (*models.PriceInfo, error) {
	body, err := m.fetch(ctx, data.EndpointPrice, address)
	if err != nil {
		return nil, err
	}

	info, err := data.DecodePriceInfo(body)
	if err != nil {
		return nil, m.malformed(data.EndpointPrice, err)
	}
	return info, nil
}

// fetch issues one GET against the endpoint and returns the raw JSON body
func (m *MoralisDataSource) fetch(ctx context.Context, kind data.EndpointKind, address string) ([]byte, error) {
	base := fmt.Sprintf("%s/token/%s/%s", m.baseURL, m.network, url.PathEscape(address))
	req := m.httpClient.R().
		SetContext(ctx).
		SetHeader("X-API-Key", m.apiKey).
		SetHeader("Accept", "application/json")

	var endpoint string
	switch kind {
	case data.EndpointMetadata:
		endpoint = base + "/metadata"
	case data.EndpointHolders:
		endpoint = base + "/top-holders"
		req.SetQueryParam("limit", strconv.Itoa(m.limit))
	case data.EndpointPrice:
		endpoint = base + "/" + m.priceEndpoint
	default:
		return nil, fmt.Errorf("%s: %w", kind, data.ErrNotSupported)
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		return nil, &data.ProviderError{Source: m.Name(), Endpoint: kind, Kind: data.Transport, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &data.ProviderError{Source: m.Name(), Endpoint: kind, Kind: data.Unreachable, Status: resp.StatusCode()}
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, m.malformed(kind, fmt.Errorf("invalid json body"))
	}

	return body, nil
}

func (m *MoralisDataSource) malformed(kind data.EndpointKind, err error) error {
	return &data.ProviderError{Source: m.Name(), Endpoint: kind, Kind: data.MalformedResponse, Err: err}
}
