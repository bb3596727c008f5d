package service

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"balance_chart/internal/app/cache"
	"balance_chart/internal/domain/entity"
)

// Palette assigns segment colours, cycling once every colour has been used.
type Palette []string

// Color returns the colour of the i-th segment.
func (p Palette) Color(i int) string {
	if len(p) == 0 || i < 0 {
		return ""
	}
	return p[i%len(p)]
}

// Presenter turns the cache entry of a selection into the tri-state view model.
type Presenter struct {
	palette Palette
}

// NewPresenter creates a presenter with the given palette.
func NewPresenter(palette []string) *Presenter {
	return &Presenter{palette: Palette(palette)}
}

// Palette returns the presenter's palette.
func (p *Presenter) Palette() Palette {
	return p.palette
}

// View builds the view for sel from snapshot: loader while pending, the error message for an
// error entry, and coloured segments in response order otherwise.
func (p *Presenter) View(snapshot *cache.BalanceCache, sel entity.Selection) entity.View {
	v := entity.View{
		Kind:    entity.ViewLoader,
		Network: sel.Network,
		Address: sel.Address,
		Title:   "Overview of " + sel.Address,
	}
	if common.IsHexAddress(sel.Address) {
		v.ChecksumAddress = common.HexToAddress(sel.Address).Hex()
	}

	result, ok := snapshot.Get(sel.Address, sel.Network)
	if !ok {
		return v
	}
	if result.IsError() {
		v.Kind = entity.ViewError
		v.Message = result.Message
		return v
	}

	v.Kind = entity.ViewChart
	v.Segments = make([]entity.ChartSegment, 0, len(result.Balances))
	for i, b := range result.Balances {
		v.Segments = append(v.Segments, entity.ChartSegment{
			BalanceRecord: b,
			Color:         p.palette.Color(i),
			Label:         TooltipLabel(b),
			Caption:       b.Name,
		})
	}
	return v
}

// TooltipLabel renders "SYMBOL : value" with the value in plain decimal notation.
func TooltipLabel(b entity.BalanceRecord) string {
	return fmt.Sprintf("%s : %s", b.Symbol, decimal.NewFromFloat(b.Value).String())
}
