package service

import (
	"context"

	"balance_chart/internal/domain/entity"
)

func rawResponse(entries ...entity.RawBalanceEntry) *entity.RawBalanceResponse {
	return &entity.RawBalanceResponse{
		Data: &entity.RawBalanceData{
			Ethereum: &entity.RawEthereum{
				Address: []entity.RawAddress{{Balances: entries}},
			},
		},
	}
}

func rawEntry(value float64, tokenType, address, symbol, name string) entity.RawBalanceEntry {
	return entity.RawBalanceEntry{
		Currency: entity.Currency{Address: address, Symbol: symbol, TokenType: tokenType, Name: name},
		Value:    value,
	}
}

type reply struct {
	resp *entity.RawBalanceResponse
	err  error
}

type pendingCall struct {
	query entity.BalanceQuery
	reply chan reply
}

// gatedClient blocks every call until the test answers it, so tests control completion order.
type gatedClient struct {
	calls chan *pendingCall
}

func newGatedClient() *gatedClient {
	return &gatedClient{calls: make(chan *pendingCall, 8)}
}

func (c *gatedClient) FetchBalances(ctx context.Context, q entity.BalanceQuery) (*entity.RawBalanceResponse, error) {
	call := &pendingCall{query: q, reply: make(chan reply, 1)}
	c.calls <- call
	select {
	case r := <-call.reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// stubClient answers immediately.
type stubClient struct {
	resp    *entity.RawBalanceResponse
	err     error
	queries []entity.BalanceQuery
}

func (c *stubClient) FetchBalances(_ context.Context, q entity.BalanceQuery) (*entity.RawBalanceResponse, error) {
	c.queries = append(c.queries, q)
	return c.resp, c.err
}
