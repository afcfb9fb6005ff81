package adapter

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// decimalsCache caches token decimals by address. Decimals are immutable
// on-chain, so cached values never go stale.
type decimalsCache struct {
	mu   sync.RWMutex
	data map[common.Address]uint8
}

func newDecimalsCache() *decimalsCache {
	return &decimalsCache{data: make(map[common.Address]uint8)}
}

func (c *decimalsCache) get(address common.Address) (uint8, bool) {
	c.mu.RLock()
	decimals, ok := c.data[address]
	c.mu.RUnlock()
	return decimals, ok
}

func (c *decimalsCache) set(address common.Address, decimals uint8) {
	c.mu.Lock()
	c.data[address] = decimals
	c.mu.Unlock()
}
