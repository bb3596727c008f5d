package httpclient

import "balance_chart/internal/domain/entity"

// balancesQuery asks Bitquery for every currency balance of one address on one network.
const balancesQuery = `query ($network: EthereumNetwork!, $address: String!) {
  ethereum(network: $network) {
    address(address: {is: $address}) {
      balances {
        currency {
          address
          symbol
          tokenType
          name
        }
        value
      }
    }
  }
}`

// GraphQLRequest is the POST body understood by the GraphQL endpoint.
type GraphQLRequest struct {
	Query     string           `json:"query"`
	Variables BalanceVariables `json:"variables"`
}

// BalanceVariables binds the query parameters.
type BalanceVariables struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

// NewBalanceRequest builds the request payload for q. The address is passed through untouched;
// the API is responsible for rejecting malformed ones.
func NewBalanceRequest(q entity.BalanceQuery) GraphQLRequest {
	return GraphQLRequest{
		Query:     balancesQuery,
		Variables: BalanceVariables{Network: q.Network, Address: q.Address},
	}
}
