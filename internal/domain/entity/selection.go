package entity

// Selection is what the user currently looks at. Every change triggers a new fetch.
type Selection struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

