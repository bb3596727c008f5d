package service

import (
	"errors"
	"fmt"

	"balance_chart/internal/domain/entity"
)

// ErrMalformedResponse marks a response missing the data.ethereum.address[0] path.
var ErrMalformedResponse = errors.New("malformed balance response")

const (
	// maxBalanceValue is an exclusive upper bound; larger values are treated as display noise.
	maxBalanceValue = 1_000_000
	// nonFungibleTokenType is excluded from the fungible balance chart.
	nonFungibleTokenType = "ERC721"
)

// Normalize flattens the GraphQL response into the committed FetchResult.
// A missing or empty balances list yields an error result; a structurally broken
// response yields ErrMalformedResponse and is never committed as-is.
func Normalize(raw *entity.RawBalanceResponse) (entity.FetchResult, error) {
	if raw == nil || raw.Data == nil || raw.Data.Ethereum == nil {
		return entity.FetchResult{}, fmt.Errorf("%w: missing data.ethereum", ErrMalformedResponse)
	}
	if len(raw.Data.Ethereum.Address) == 0 {
		return entity.FetchResult{}, fmt.Errorf("%w: empty address list", ErrMalformedResponse)
	}

	entries := raw.Data.Ethereum.Address[0].Balances
	if len(entries) == 0 {
		return entity.ErrorResult(entity.NoBalancesMessage), nil
	}

	records := make([]entity.BalanceRecord, 0, len(entries))
	for _, e := range entries {
		if !isChartable(e) {
			continue
		}
		records = append(records, entity.BalanceRecord{
			Value:     e.Value,
			Address:   e.Currency.Address,
			Symbol:    e.Currency.Symbol,
			Name:      e.Currency.Name,
			TokenType: e.Currency.TokenType,
		})
	}
	return entity.SuccessResult(records), nil
}

func isChartable(e entity.RawBalanceEntry) bool {
	return e.Value > 0 && e.Value < maxBalanceValue && e.Currency.TokenType != nonFungibleTokenType
}
