package entity

// ViewKind is the tri-state flag consumed by renderers.
type ViewKind string

const (
	ViewLoader ViewKind = "loader"
	ViewError  ViewKind = "error"
	ViewChart  ViewKind = "chart"
)

// ChartSegment is one bar of the chart together with its colour and tooltip text.
type ChartSegment struct {
	BalanceRecord
	Color   string `json:"color"`
	Label   string `json:"label"`
	Caption string `json:"caption"`
}

// View is the presentation model for the current selection.
type View struct {
	Kind            ViewKind       `json:"kind"`
	Network         string         `json:"network"`
	Address         string         `json:"address"`
	ChecksumAddress string         `json:"checksumAddress,omitempty"`
	Title           string         `json:"title"`
	Message         string         `json:"message,omitempty"`
	Segments        []ChartSegment `json:"segments,omitempty"`
}
