package rpcclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
)

// Client is a lazily dialled JSON-RPC connection to the configured network.
// Commands that never touch the chain never connect.
type Client struct {
	url  string
	once sync.Once
	rpc  *rpc.Client
	eth  *ethclient.Client
	err  error
}

// NewClient creates a client for the runtime network
func NewClient(cfg *config.RuntimeConfig) *Client {
	c := &Client{}
	if cfg != nil && cfg.Network != nil {
		c.url = cfg.Network.RPCURL
	}
	return c
}

// NewClientForURL creates a client for an explicit endpoint
func NewClientForURL(url string) *Client {
	return &Client{url: url}
}

// URL returns the endpoint the client dials
func (c *Client) URL() string {
	return c.url
}

func (c *Client) dial() error {
	c.once.Do(func() {
		if c.url == "" {
			c.err = fmt.Errorf("%w: pass --network", domain.ErrNoNetwork)
			return
		}
		client, err := rpc.DialContext(context.Background(), c.url)
		if err != nil {
			c.err = fmt.Errorf("failed to connect to %s: %w", c.url, err)
			return
		}
		c.rpc = client
		c.eth = ethclient.NewClient(client)
	})
	return c.err
}

// RPC returns the raw JSON-RPC client
func (c *Client) RPC() (*rpc.Client, error) {
	if err := c.dial(); err != nil {
		return nil, err
	}
	return c.rpc, nil
}

// Eth returns the typed Ethereum client
func (c *Client) Eth() (*ethclient.Client, error) {
	if err := c.dial(); err != nil {
		return nil, err
	}
	return c.eth, nil
}

// Close closes the connection if one was opened
func (c *Client) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
}
