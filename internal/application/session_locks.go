package application

import "sync"

// SessionLocks entrega un candado por sesión. Los controladores se
// construyen por petición, pero los de una misma sesión comparten el mismo
// mutex, de modo que leer-aplicar-guardar queda serializado entre
// peticiones concurrentes y ningún guardado pisa al anterior.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// For retorna el candado de la sesión, creándolo la primera vez.
func (s *SessionLocks) For(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}
