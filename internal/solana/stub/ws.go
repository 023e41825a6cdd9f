package stub

import (
	"context"
	"fmt"
	"sync"

	"solana-token-sentinel/internal/solana"
)

// WSClient implements solana.WSClient for testing. Subscriptions are keyed
// by the first mentioned program; tests push notifications with Publish.
type WSClient struct {
	mu            sync.Mutex
	subs          map[string]chan solana.LogNotification
	SubscribeErrs map[string]error // per-program injected subscribe failures
	closed        bool
}

// NewWSClient creates a new stub WebSocket client.
func NewWSClient() *WSClient {
	return &WSClient{
		subs:          make(map[string]chan solana.LogNotification),
		SubscribeErrs: make(map[string]error),
	}
}

// SubscribeLogs registers a subscription for the filter's first mention.
func (c *WSClient) SubscribeLogs(_ context.Context, filter solana.LogsFilter) (<-chan solana.LogNotification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("client closed")
	}
	if len(filter.Mentions) == 0 {
		return nil, fmt.Errorf("stub requires a mentions filter")
	}

	program := filter.Mentions[0]
	if err := c.SubscribeErrs[program]; err != nil {
		return nil, err
	}

	ch := make(chan solana.LogNotification, 100)
	c.subs[program] = ch
	return ch, nil
}

// Publish delivers a notification to the subscription for program.
func (c *WSClient) Publish(program string, notif solana.LogNotification) {
	c.mu.Lock()
	ch := c.subs[program]
	c.mu.Unlock()

	if ch != nil {
		ch <- notif
	}
}

// Close closes all subscription channels.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	for program, ch := range c.subs {
		close(ch)
		delete(c.subs, program)
	}
	return nil
}

// Compile-time interface check.
var _ solana.WSClient = (*WSClient)(nil)
