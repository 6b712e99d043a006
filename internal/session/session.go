package session

import (
	"context"
	"errors"
	"time"

	"github.com/davidar27/tesorosindia_backend/internal/domain"
)

// Record es el estado de conversación de una sesión tal como se persiste.
type Record struct {
	ID        string                   `json:"id"`
	State     domain.ConversationState `json:"state"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// Store abstrae dónde vive el estado de sesión del asistente. Hay un driver
// en memoria (tests y desarrollo) y uno sobre redis (producción).
type Store interface {
	// Get retorna nil, nil si la sesión no existe.
	Get(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, record *Record) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Errores comunes de los drivers.
var (
	ErrInvalidConfig    = errors.New("configuración de sesión inválida")
	ErrInvalidStoreType = errors.New("driver de sesión desconocido")
	ErrClosed           = errors.New("almacén de sesiones cerrado")
)

// Config selecciona e inicializa un driver.
type Config struct {
	Driver    string // "memory" | "redis"
	RedisAddr string
	RedisPass string
	RedisDB   int
	TTL       time.Duration
}

// New construye el Store según la configuración.
func New(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "memory", "":
		return NewMemoryStore(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, ErrInvalidConfig
		}
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.TTL), nil
	default:
		return nil, ErrInvalidStoreType
	}
}
