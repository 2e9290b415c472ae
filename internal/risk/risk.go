package risk

import (
	"fmt"
	"sort"

	"github.com/songzhibin97/splscan/internal/models"
)

type ConcentrationAssessor struct {
	params RiskParameters
}

func NewConcentrationAssessor(params RiskParameters) (*ConcentrationAssessor, error) {
	if params.MaxTopHolderShare <= 0 || params.MaxTop10Share <= 0 || params.MinHolders <= 0 {
		return nil, fmt.Errorf("invalid risk parameters: all values must be positive")
	}
	if params.MaxTopHolderShare > 100 || params.MaxTop10Share > 100 {
		return nil, fmt.Errorf("invalid risk parameters: shares must not exceed 100")
	}

	return &ConcentrationAssessor{params: params}, nil
}

func (a *ConcentrationAssessor) Assess(holders []models.HolderRecord, holderCount int64) *models.Concentration {
	assessment := &models.Concentration{
		IsAcceptable:    true,
		RiskFactors:     make([]string, 0),
		Recommendations: make([]string, 0),
	}

	// 来源顺序不保证按持仓排序
	shares := make([]float64, len(holders))
	for i, h := range holders {
		shares[i] = h.Percentage
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(shares)))

	for i, s := range shares {
		if i == 0 {
			assessment.TopHolderShare = s
		}
		if i >= 10 {
			break
		}
		assessment.Top10Share += s
	}

	// 单一地址持仓过高是最主要的风险
	if assessment.TopHolderShare > a.params.MaxTopHolderShare {
		assessment.IsAcceptable = false
		assessment.RiskLevel += 0.4
		assessment.RiskFactors = append(assessment.RiskFactors,
			fmt.Sprintf("Largest holder owns %.2f%% of supply", assessment.TopHolderShare))
		assessment.Recommendations = append(assessment.Recommendations,
			"Check whether the largest holder is a burn, lock or liquidity pool account")
	}

	if assessment.Top10Share > a.params.MaxTop10Share {
		assessment.IsAcceptable = false
		assessment.RiskLevel += 0.3
		assessment.RiskFactors = append(assessment.RiskFactors,
			fmt.Sprintf("Top 10 holders own %.2f%% of supply", assessment.Top10Share))
		assessment.Recommendations = append(assessment.Recommendations,
			fmt.Sprintf("Prefer tokens whose top 10 holders own less than %.0f%%", a.params.MaxTop10Share))
	}

	// 持有人过少只提示风险, 不单独判定不可接受; 数量未知时跳过
	if holderCount > 0 && holderCount < a.params.MinHolders {
		assessment.RiskLevel += 0.2
		assessment.RiskFactors = append(assessment.RiskFactors,
			fmt.Sprintf("Only %d holders", holderCount))
		assessment.Recommendations = append(assessment.Recommendations,
			"Wait for broader distribution before taking a position")
	}

	return assessment
}
