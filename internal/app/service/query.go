package service

import "balance_chart/internal/domain/entity"

// BuildQuery builds the balance query for one fetch. No validation is done on the address.
func BuildQuery(network, address string) entity.BalanceQuery {
	return entity.BalanceQuery{Network: network, Address: address}
}
