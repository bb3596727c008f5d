package entity

// BalanceQuery identifies a single balance lookup: one wallet address on one network.
type BalanceQuery struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

// Currency describes the token side of a raw balance entry as returned by Bitquery.
type Currency struct {
	Address   string `json:"address"`
	Symbol    string `json:"symbol"`
	TokenType string `json:"tokenType"`
	Name      string `json:"name"`
}

// RawBalanceEntry is a single balances[] item of the external response.
type RawBalanceEntry struct {
	Currency Currency `json:"currency"`
	Value    float64  `json:"value"`
}

// BalanceRecord is the normalized unit drawn as one chart segment.
type BalanceRecord struct {
	Value     float64 `json:"value"`
	Address   string  `json:"address"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	TokenType string  `json:"tokenType"`
}
