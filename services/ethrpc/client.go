package ethrpc

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/treasury"
	"github.com/lilypad-dao/lilypad/services/metrics"
)

const failureThreshold = 5

// Client reads balances from an Ethereum node. Calls fail fast once the node keeps failing.
type Client struct {
	eth     *ethclient.Client
	breaker *gobreaker.CircuitBreaker[*big.Int]
	logger  core.Logger
}

var _ treasury.BalanceReader = (*Client)(nil)

// NewClient returns a Client calling the node at url. No connection is made for http(s) urls.
func NewClient(ctx context.Context, url string, timeout time.Duration, logger core.Logger) (*Client, error) {
	rc, err := rpc.DialOptions(ctx, url, rpc.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}

	c := &Client{eth: ethclient.NewClient(rc), logger: logger}
	c.breaker = gobreaker.NewCircuitBreaker[*big.Int](gobreaker.Settings{
		Name:        "ethrpc",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", map[string]interface{}{
				"breaker": name, "from": from.String(), "to": to.String(),
			})
		},
	})
	return c, nil
}

// BalanceAt returns the latest balance of address, in wei.
func (c *Client) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, core.NewArgumentError("address", "not a hex address")
	}

	wei, err := c.breaker.Execute(func() (*big.Int, error) {
		return c.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
	})
	metrics.RPCCall("eth_getBalance", err)
	if err != nil {
		return nil, errors.Wrap(err, "eth_getBalance")
	}
	return wei, nil
}

func (c *Client) Close() {
	c.eth.Close()
}
