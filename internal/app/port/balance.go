package port

import (
	"context"

	"balance_chart/internal/domain/entity"
)

// BalanceClient fetches the raw balances of one address on one network from the external API.
type BalanceClient interface {
	FetchBalances(ctx context.Context, query entity.BalanceQuery) (*entity.RawBalanceResponse, error)
}
