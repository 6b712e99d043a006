package application

import (
	"time"

	"github.com/davidar27/tesorosindia_backend/internal/domain"
	"github.com/davidar27/tesorosindia_backend/internal/ia"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ChatService orquesta el modo de chat libre: convierte el texto del usuario
// en una petición al backend de IA (anónima o autenticada según el contexto
// de sesión), pasa la prosa de la respuesta por el parser de entidades y
// combina la intención declarada por el backend con la detección local.
// El llamador siempre recibe una respuesta renderizable: los fallos de
// transporte se convierten en un mensaje de disculpa, nunca se propagan.
type ChatService struct {
	iaClient *ia.Client
	detector *IntentDetector
	parser   *ResponseParser
	catalog  *MenuCatalogProvider
	repo     domain.ConversationRepository
	limiter  *RateLimiter
}

func NewChatService(
	iaClient *ia.Client,
	detector *IntentDetector,
	parser *ResponseParser,
	catalog *MenuCatalogProvider,
	repo domain.ConversationRepository,
	limiter *RateLimiter,
) *ChatService {
	return &ChatService{
		iaClient: iaClient,
		detector: detector,
		parser:   parser,
		catalog:  catalog,
		repo:     repo,
		limiter:  limiter,
	}
}

const fallbackApology = "Lo siento, en este momento no puedo responderte. Por favor, intenta de nuevo en unos minutos."

// SendMessage procesa un mensaje de chat libre de principio a fin.
func (s *ChatService) SendMessage(req domain.ChatRequest, auth domain.AuthContext) (*domain.ChatResponse, error) {
	log.Printf("[ChatService] Procesando mensaje de sesión %s", req.SessionID)

	// 1. Contrapresión: una sesión con la ventana agotada recibe el motivo
	// como respuesta renderizable, no un error.
	if allowed, err := s.limiter.Allow(req.SessionID); !allowed {
		return &domain.ChatResponse{
			Success: false,
			Message: err.Error(),
		}, nil
	}

	// 2. Obtener o crear el historial de conversación
	conversation, err := s.loadOrCreateConversation(req)
	if err != nil {
		log.Printf("[ChatService] Error cargando conversación: %v", err)
		conversation = s.newConversation(req)
	}

	history := buildHistory(conversation.Messages)

	// 3. Registrar el mensaje del usuario
	userMessage := domain.ChatMessage{
		ID:        uuid.New().String(),
		Text:      req.Message,
		Sender:    domain.SenderUser,
		Timestamp: time.Now(),
	}
	conversation.Messages = append(conversation.Messages, userMessage)

	// 4. Llamar al backend con la forma anónima o autenticada
	reply, err := s.callBackend(req.Message, history, auth)
	if err != nil {
		log.Printf("[ChatService] Error del backend de IA: %v", err)
		return &domain.ChatResponse{
			Success:        false,
			Message:        fallbackApology,
			ConversationID: conversation.ID,
		}, nil
	}

	// 5. Extraer tarjetas de entidad de la prosa generada
	parsed := s.parser.Parse(reply.Text)

	// 6. Intención: la declarada por el backend tiene prioridad; si no hay,
	// la detección local corre sobre el mensaje del usuario.
	intent := s.resolveIntent(reply.Intent, req.Message)

	// 7. Normalizar el payload estructurado opcional en el borde
	var records []domain.CatalogRecord
	if len(reply.Data) > 0 {
		records = s.catalog.NormalizeRecords(reply.Data)
	}

	// 8. Registrar la respuesta del bot y persistir
	conversation.Messages = append(conversation.Messages, domain.ChatMessage{
		ID:        uuid.New().String(),
		Text:      parsed.Text,
		Sender:    domain.SenderBot,
		Timestamp: time.Now(),
		Data:      reply.Data,
	})
	conversation.UpdatedAt = time.Now()

	if req.ConversationID == nil || *req.ConversationID == "" {
		err = s.repo.SaveConversation(conversation)
	} else {
		err = s.repo.UpdateConversation(conversation)
	}
	if err != nil {
		// La persistencia no bloquea la respuesta al usuario
		log.Printf("[ChatService] Error guardando conversación: %v", err)
	}

	if req.ClienteID != nil {
		_ = s.repo.SaveMessage(*req.ClienteID, req.Message)
	}

	return &domain.ChatResponse{
		Success:        true,
		Message:        parsed.Text,
		ConversationID: conversation.ID,
		Items:          parsed.Items,
		HasItems:       parsed.HasItems,
		Intent:         intent,
		Data:           records,
	}, nil
}

func (s *ChatService) loadOrCreateConversation(req domain.ChatRequest) (*domain.ConversationHistory, error) {
	if req.ConversationID != nil && *req.ConversationID != "" {
		conversation, err := s.repo.GetConversation(*req.ConversationID)
		if err != nil {
			return nil, err
		}
		if conversation != nil {
			return conversation, nil
		}
	}
	return s.newConversation(req), nil
}

func (s *ChatService) newConversation(req domain.ChatRequest) *domain.ConversationHistory {
	return &domain.ConversationHistory{
		ID:        uuid.New().String(),
		ClienteID: req.ClienteID,
		Messages:  []domain.ChatMessage{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// callBackend decide la forma de la petición según el contexto de sesión.
func (s *ChatService) callBackend(prompt string, history []ia.HistoryEntry, auth domain.AuthContext) (*ia.Reply, error) {
	if auth != nil && auth.IsAuthenticated() {
		if user, ok := auth.GetCurrentUser(); ok {
			return s.iaClient.SendRegistered(ia.RegisteredRequest{
				Prompt:  prompt,
				History: history,
				UserID:  user.ID,
				Role:    user.Role,
			})
		}
	}
	return s.iaClient.Send(ia.Request{
		Prompt:  prompt,
		History: history,
	})
}

func (s *ChatService) resolveIntent(backendIntent *ia.Intent, userMessage string) *domain.DetectedIntent {
	if backendIntent != nil && backendIntent.Type != "" && backendIntent.Type != domain.IntentNone {
		return &domain.DetectedIntent{
			Category:   backendIntent.Type,
			Confidence: backendIntent.Confidence,
			RedirectTo: backendIntent.RedirectTo,
			Message:    backendIntent.Message,
			ButtonText: backendIntent.ButtonText,
		}
	}

	detected := s.detector.Detect(userMessage)
	if detected.Category == domain.IntentNone {
		return nil
	}
	return &detected
}

// buildHistory mapea el historial previo al formato compacto del backend.
func buildHistory(messages []domain.ChatMessage) []ia.HistoryEntry {
	history := make([]ia.HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Sender == domain.SenderBot {
			role = "assistant"
		}
		history = append(history, ia.HistoryEntry{
			Role:    role,
			Content: msg.Text,
		})
	}
	return history
}
