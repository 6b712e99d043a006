package application

import (
	"fmt"
	"sync"
	"time"
)

// rateLimitEntry representa una entrada en el rate limiter
type rateLimitEntry struct {
	count     int
	resetTime time.Time
}

// RateLimiter implementa un límite de mensajes por ventana de tiempo. Es el
// único mecanismo de contrapresión del asistente: mientras una sesión tenga
// la ventana agotada, sus envíos se rechazan con un mensaje renderizable.
type RateLimiter struct {
	limits map[string]*rateLimitEntry
	mu     sync.Mutex
	window time.Duration
	limit  int
}

// NewRateLimiter crea un nuevo rate limiter.
// window: duración de la ventana (ej: 1 minuto)
// limit: mensajes permitidos por ventana
func NewRateLimiter(window time.Duration, limit int) *RateLimiter {
	rl := &RateLimiter{
		limits: make(map[string]*rateLimitEntry),
		window: window,
		limit:  limit,
	}

	go rl.cleanupLoop()

	return rl
}

// Allow verifica si se permite un mensaje para el identificador dado
// (sessionID o conversationID).
func (rl *RateLimiter) Allow(identifier string) (bool, error) {
	if identifier == "" {
		identifier = "anonimo"
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, exists := rl.limits[identifier]

	if !exists || now.After(entry.resetTime) {
		rl.limits[identifier] = &rateLimitEntry{
			count:     1,
			resetTime: now.Add(rl.window),
		}
		return true, nil
	}

	if entry.count >= rl.limit {
		restante := entry.resetTime.Sub(now)
		return false, fmt.Errorf("límite de mensajes excedido. Intenta de nuevo en %v", restante.Round(time.Second))
	}

	entry.count++
	return true, nil
}

// Reset descarta la ventana de un identificador (al cerrar la sesión).
func (rl *RateLimiter) Reset(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.limits, identifier)
}

// cleanupLoop elimina ventanas vencidas periódicamente
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for id, entry := range rl.limits {
			if now.After(entry.resetTime) {
				delete(rl.limits, id)
			}
		}
		rl.mu.Unlock()
	}
}
