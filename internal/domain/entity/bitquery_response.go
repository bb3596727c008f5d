package entity

// RawBalanceResponse is the GraphQL envelope returned by the balances query.
// Nested levels are pointers/slices so that missing fields can be told apart from empty ones.
type RawBalanceResponse struct {
	Data   *RawBalanceData `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// RawBalanceData holds the data.ethereum level.
type RawBalanceData struct {
	Ethereum *RawEthereum `json:"ethereum"`
}

// RawEthereum holds the list of matched addresses. The query filters on a single address,
// so at most one element is expected.
type RawEthereum struct {
	Address []RawAddress `json:"address"`
}

// RawAddress carries the balances list for one address. A nil slice means the API sent null.
type RawAddress struct {
	Balances []RawBalanceEntry `json:"balances"`
}

// GraphQLError is one item of the top-level errors array.
type GraphQLError struct {
	Message string `json:"message"`
}
