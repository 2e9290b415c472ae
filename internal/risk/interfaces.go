package risk

import (
	"github.com/songzhibin97/splscan/internal/models"
)

// Assessor evaluates how concentrated a token's ownership is
type Assessor interface {
	// Assess scores the holder distribution. holderCount is the total number
	// of holders on chain, which may exceed len(holders); 0 means unknown.
	Assess(holders []models.HolderRecord, holderCount int64) *models.Concentration
}

// RiskParameters 集中度风险参数
type RiskParameters struct {
	MaxTopHolderShare float64 `json:"max_top_holder_share" yaml:"max_top_holder_share"` // 单一地址最大占比(%)
	MaxTop10Share     float64 `json:"max_top10_share" yaml:"max_top10_share"`           // 前十地址最大占比(%)
	MinHolders        int64   `json:"min_holders" yaml:"min_holders"`                   // 最少持有人数
}

// DefaultRiskParameters 默认参数
func DefaultRiskParameters() RiskParameters {
	return RiskParameters{
		MaxTopHolderShare: 20,
		MaxTop10Share:     50,
		MinHolders:        100,
	}
}
