package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// NotAvailable marks a label the source did not provide
const NotAvailable = "N/A"

// RawMetadata 数据源返回的未校验代币元数据
type RawMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Supply      string `json:"supply"` // 最小单位的总供应量
	Decimals    int    `json:"decimals"`
	HolderCount int64  `json:"holder_count"` // 0 表示数据源未提供
	Creator     string `json:"creator,omitempty"`
	CreateTx    string `json:"create_tx,omitempty"`
	CreatedTime int64  `json:"created_time,omitempty"` // unix 秒
	IsMutable   *bool  `json:"is_mutable,omitempty"`
	Standard    string `json:"standard,omitempty"`

	UpdateAuthority string `json:"update_authority,omitempty"` // metaplex 更新权限, 不是创建者
	MarketCapRank   int64  `json:"market_cap_rank,omitempty"`  // 0 表示未排名
}

// TokenMetadata 校验通过的代币元数据
type TokenMetadata struct {
	Name        string
	Symbol      string
	Supply      decimal.Decimal
	Decimals    int
	HolderCount int64
	Creator     string
	CreateTx    string
	CreatedTime int64
	IsMutable   *bool
	Standard    string

	UpdateAuthority string
	MarketCapRank   int64
}

// PriceInfo 价格信息
type PriceInfo struct {
	USDPrice  float64 `json:"usd_price"`
	Exchange  string  `json:"exchange"`
	PairLabel string  `json:"pair_label"`
}

// RawHolder 数据源返回的持有人
type RawHolder struct {
	Address string          `json:"address"`
	Owner   string          `json:"owner,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}

// HolderRecord 持有人及其持仓占比
type HolderRecord struct {
	Address           string          `json:"address"`
	Owner             string          `json:"owner,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Percentage        float64         `json:"-"`
	PercentageDisplay string          `json:"percentage"`
}

// AnalyticsRecord 代币分析汇总
type AnalyticsRecord struct {
	TokenName       string  `json:"tokenName"`
	TokenSymbol     string  `json:"tokenSymbol"`
	TotalSupply     string  `json:"totalSupply"`
	FormattedSupply string  `json:"formattedSupply"`
	Decimals        int     `json:"decimals"`
	HoldersCount    int64   `json:"tokenHoldersCount,omitempty"` // 0 表示未知
	CreatorAddress  string  `json:"creatorAddress,omitempty"`
	UpdateAuthority string  `json:"updateAuthority,omitempty"`
	MintSignature   string  `json:"mintSignature,omitempty"`
	CreatedTime     int64   `json:"createdTime,omitempty"`
	IsMutable       *bool   `json:"isMutable,omitempty"`
	Standard        string  `json:"standard,omitempty"`
	Price           float64 `json:"price"`
	Exchange        string  `json:"exchange"`
	PairLabel       string  `json:"pairLabel"`
	MarketCap       float64 `json:"marketCap"`
	MarketCapRank   int64   `json:"marketCapRank,omitempty"`
}

// Insight AI 生成的结构化分析，字段内容原样保留
type Insight struct {
	Summary           json.RawMessage `json:"summary"`
	TokenInfo         json.RawMessage `json:"tokenInfo"`
	Warnings          json.RawMessage `json:"warnings"`
	ActionableAdvice  json.RawMessage `json:"actionableAdvice"`
	ValueAndMarketCap json.RawMessage `json:"valueAndMarketCap"`
}

// EnrichmentResult AI 分析结果
type EnrichmentResult struct {
	Insight    Insight `json:"insight"`
	IsHoneypot bool    `json:"is_honeypot"`
}

// TokenDetails 返回给调用方的代币详情
type TokenDetails struct {
	AnalyticsRecord
	IsHoneyPot bool `json:"isHoneyPot"`
}

// Concentration 持仓集中度
type Concentration struct {
	TopHolderShare  float64  `json:"topHolderShare"`
	Top10Share      float64  `json:"top10Share"`
	IsAcceptable    bool     `json:"isAcceptable"`
	RiskLevel       float64  `json:"riskLevel"`
	RiskFactors     []string `json:"riskFactors"`
	Recommendations []string `json:"recommendations"`
}

// AnalysisResult 单次分析的最终输出, 成功字段与 Error 二者只有其一
type AnalysisResult struct {
	AIResponse        *Insight       `json:"aiResponse,omitempty"`
	TokenDetails      *TokenDetails  `json:"tokenDetails,omitempty"`
	TokenDistribution []HolderRecord `json:"tokenDistribution,omitempty"`
	Concentration     *Concentration `json:"concentration,omitempty"`
	Error             string         `json:"error,omitempty"`

	Stage string `json:"-"`
	Err   error  `json:"-"`
}

// Failed reports whether the result carries an error payload
func (r *AnalysisResult) Failed() bool {
	return r.Error != ""
}
