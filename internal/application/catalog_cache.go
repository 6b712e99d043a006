package application

import (
	"strings"
	"sync"
	"time"
)

// catalogCacheEntry representa una entrada en el caché
type catalogCacheEntry struct {
	value     interface{}
	timestamp time.Time
}

// CatalogCache implementa un caché simple en memoria para las listas del
// catálogo (categorías, productos, experiencias, paquetes). Las listas
// cambian poco y el asistente las pide en cada transición de menú.
type CatalogCache struct {
	cache map[string]*catalogCacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
}

// NewCatalogCache crea un nuevo caché de catálogo
func NewCatalogCache(ttl time.Duration) *CatalogCache {
	cache := &CatalogCache{
		cache: make(map[string]*catalogCacheEntry),
		ttl:   ttl,
	}

	// Iniciar limpieza periódica
	go cache.cleanupLoop()

	return cache
}

// Get obtiene un valor del caché si existe y no ha expirado
func (cc *CatalogCache) Get(key string) (interface{}, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	entry, exists := cc.cache[cc.normalizeKey(key)]
	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > cc.ttl {
		return nil, false
	}

	return entry.value, true
}

// Set guarda un valor en el caché
func (cc *CatalogCache) Set(key string, value interface{}) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.cache[cc.normalizeKey(key)] = &catalogCacheEntry{
		value:     value,
		timestamp: time.Now(),
	}
}

// normalizeKey normaliza la clave para tolerar variaciones de espacios y caja
func (cc *CatalogCache) normalizeKey(key string) string {
	normalized := strings.ToLower(strings.TrimSpace(key))
	normalized = strings.Join(strings.Fields(normalized), " ")
	return normalized
}

// cleanupLoop limpia entradas expiradas periódicamente
func (cc *CatalogCache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cc.cleanup()
	}
}

// cleanup elimina entradas expiradas
func (cc *CatalogCache) cleanup() {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	now := time.Now()
	for key, entry := range cc.cache {
		if now.Sub(entry.timestamp) > cc.ttl {
			delete(cc.cache, key)
		}
	}
}

// Clear limpia todo el caché
func (cc *CatalogCache) Clear() {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.cache = make(map[string]*catalogCacheEntry)
}

// Size retorna el número de entradas en el caché
func (cc *CatalogCache) Size() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	return len(cc.cache)
}
