package domain

import "time"

// ChatMessage representa un mensaje dentro de una conversación.
// Sender es "user" o "bot". Data lleva el payload estructurado que
// el backend de IA puede adjuntar a una respuesta.
type ChatMessage struct {
	ID        string                   `json:"id"`
	Text      string                   `json:"text"`
	Sender    string                   `json:"sender"`
	Timestamp time.Time                `json:"timestamp"`
	Data      []map[string]interface{} `json:"data,omitempty"`
}

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type ChatRequest struct {
	Message        string  `json:"message"`
	SessionID      string  `json:"sessionId"`
	ConversationID *string `json:"conversationId,omitempty"`
	ClienteID      *int    `json:"clienteId,omitempty"`
}

// ChatResponse es la respuesta renderizable que siempre recibe el frontend,
// incluso cuando el backend de IA falla (Success=false + mensaje de disculpa).
type ChatResponse struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	ConversationID string          `json:"conversationId"`
	Items          []ParsedItem    `json:"items,omitempty"`
	HasItems       bool            `json:"hasItems"`
	Intent         *DetectedIntent `json:"intent,omitempty"`
	Data           []CatalogRecord `json:"data,omitempty"`
}

type ConversationHistory struct {
	ID        string        `json:"id"`
	ClienteID *int          `json:"clienteId,omitempty"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type ConversationRepository interface {
	SaveConversation(conversation *ConversationHistory) error
	GetConversation(conversationID string) (*ConversationHistory, error)
	UpdateConversation(conversation *ConversationHistory) error
	SaveMessage(clienteID int, contenido string) error
	GetClientConversations(clienteID int) ([]ConversationHistory, error)
}

// User es el usuario autenticado visto por este subsistema. La autenticación
// en sí es un colaborador externo; aquí solo consumimos identidad y rol.
type User struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
}

const (
	RolCliente       = "cliente"
	RolEmprendedor   = "emprendedor"
	RolAdministrador = "administrador"
	RolObservador    = "observador"
)

// AuthContext abstrae el contexto de sesión inyectado por la capa HTTP.
type AuthContext interface {
	GetCurrentUser() (*User, bool)
	IsAuthenticated() bool
}
