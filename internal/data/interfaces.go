package data

import (
	"context"

	"github.com/songzhibin97/splscan/internal/models"
)

// DataSource 单个上游数据提供方
type DataSource interface {
	// Name identifies the source in logs and errors
	Name() string

	// FetchMetadata retrieves raw token metadata for a mint address
	FetchMetadata(ctx context.Context, address string) (*models.RawMetadata, error)

	// FetchHolders retrieves the top holders in the order the source returns them
	FetchHolders(ctx context.Context, address string) ([]models.RawHolder, error)

	// FetchPrice retrieves price data. A nil PriceInfo with a nil error means
	// the source has no price for the token.
	FetchPrice(ctx context.Context, address string) (*models.PriceInfo, error)
}

// EndpointKind 上游接口类型
type EndpointKind int

const (
	EndpointMetadata EndpointKind = iota
	EndpointHolders
	EndpointPrice
)

func (k EndpointKind) String() string {
	switch k {
	case EndpointMetadata:
		return "metadata"
	case EndpointHolders:
		return "holders"
	case EndpointPrice:
		return "price"
	default:
		return "unknown"
	}
}
