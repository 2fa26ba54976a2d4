package schedule

import (
	"sync"
	"time"
)

// memoryCache é um cache em memória com TTL fixo, chaveado pelo filtro de
// liga. É estado derivado e descartável: nunca é fonte de verdade e uma
// entrada expirada é substituída apenas por um fetch bem-sucedido.
type memoryCache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry[T]
}

type cacheEntry[T any] struct {
	value     T
	fetchedAt time.Time
}

func newMemoryCache[T any](ttl time.Duration) *memoryCache[T] {
	return &memoryCache[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry[T]),
	}
}

// get retorna o valor se existir e ainda estiver dentro do TTL
func (c *memoryCache[T]) get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// set substitui a entrada atomicamente com timestamp de agora
func (c *memoryCache[T]) set(key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry[T]{value: v, fetchedAt: c.now()}
}
