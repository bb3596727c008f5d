package httpclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"balance_chart/internal/domain/entity"
	"balance_chart/internal/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrUnexpectedStatus is returned when the endpoint answers with a non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected status from GraphQL endpoint")
	// ErrGraphQL is returned when the response carries errors and no usable data.
	ErrGraphQL = errors.New("GraphQL endpoint returned errors")
)

const apiKeyHeader = "X-API-KEY"

// BitqueryClient implements port.BalanceClient against the Bitquery GraphQL API.
type BitqueryClient struct {
	client   *fasthttp.Client
	endpoint string
	apiKey   string
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewBitqueryClient creates a client for endpoint. A zero timeout means requests wait for as long
// as the context allows; a nil limiter disables rate limiting.
func NewBitqueryClient(endpoint, apiKey string, timeout time.Duration, limiter *rate.Limiter, logger *zap.Logger) *BitqueryClient {
	return &BitqueryClient{
		client:   &fasthttp.Client{},
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		timeout:  timeout,
		limiter:  limiter,
		logger:   logger.Named("BitqueryClient"),
	}
}

// FetchBalances implements port.BalanceClient.
func (c *BitqueryClient) FetchBalances(ctx context.Context, query entity.BalanceQuery) (*entity.RawBalanceResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait for %s/%s: %w", query.Network, query.Address, err)
		}
	}

	payload, err := json.Marshal(NewBalanceRequest(query))
	if err != nil {
		return nil, fmt.Errorf("failed to encode balance query: %w", err)
	}

	c.logger.Debug("Requesting balances from Bitquery",
		zap.String("network", query.Network),
		zap.String("address", query.Address))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.SetBodyRaw(payload)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := c.do(ctx, req, resp); err != nil {
		c.logger.Error("Failed to execute request to Bitquery",
			zap.String("endpoint", c.endpoint),
			zap.String("network", query.Network),
			zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", c.endpoint, err)
	}

	rawBody := resp.Body()
	metrics.UpstreamResponses.WithLabelValues(strconv.Itoa(resp.StatusCode())).Inc()

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Bitquery request failed",
			zap.String("endpoint", c.endpoint),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode(), string(rawBody))
	}

	var decoded entity.RawBalanceResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		c.logger.Error("Failed to unmarshal Bitquery response",
			zap.String("network", query.Network),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal Bitquery response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		if decoded.Data == nil || decoded.Data.Ethereum == nil {
			return nil, fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(messages, "; "))
		}
		c.logger.Warn("Bitquery returned partial data with errors",
			zap.String("network", query.Network),
			zap.Strings("errors", messages))
	}

	return &decoded, nil
}

// do picks the context deadline first, then the configured timeout, and otherwise waits indefinitely.
func (c *BitqueryClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if deadline, ok := ctx.Deadline(); ok {
		return c.client.DoDeadline(req, resp, deadline)
	}
	if c.timeout > 0 {
		return c.client.DoTimeout(req, resp, c.timeout)
	}
	return c.client.Do(req, resp)
}
