package port

import (
	"context"

	"balance_chart/internal/domain/entity"
)

// BalanceController is what renderers drive: they report selection changes and read views.
type BalanceController interface {
	// FetchBalances fetches and, if the selection is still current on completion,
	// commits the result for sel. It blocks until the external call returns.
	FetchBalances(ctx context.Context, sel entity.Selection) error
	// View returns the view model for sel from the current cache snapshot.
	View(sel entity.Selection) entity.View
}
