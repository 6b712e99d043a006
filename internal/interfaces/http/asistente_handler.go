package http

import (
	"github.com/davidar27/tesorosindia_backend/internal/application"
	"github.com/davidar27/tesorosindia_backend/internal/domain"
	"github.com/davidar27/tesorosindia_backend/internal/email"
	"github.com/davidar27/tesorosindia_backend/internal/ia"
	services "github.com/davidar27/tesorosindia_backend/internal/service"
	"github.com/davidar27/tesorosindia_backend/internal/session"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// AsistenteHandler expone el asistente conversacional por HTTP: chat libre,
// despacho de acciones de menú, contenido guiado, estado de sesión,
// historial y descarga de reportes.
type AsistenteHandler struct {
	chatService   *application.ChatService
	catalog       *application.MenuCatalogProvider
	store         session.Store
	iaClient      *ia.Client
	convRepo      domain.ConversationRepository
	reportStorage *services.ReportStorage // opcional
	emailClient   *email.Client           // opcional
	locks         *application.SessionLocks
}

func NewAsistenteHandler(
	chatService *application.ChatService,
	catalog *application.MenuCatalogProvider,
	store session.Store,
	iaClient *ia.Client,
	convRepo domain.ConversationRepository,
	reportStorage *services.ReportStorage,
	emailClient *email.Client,
) *AsistenteHandler {
	return &AsistenteHandler{
		chatService:   chatService,
		catalog:       catalog,
		store:         store,
		iaClient:      iaClient,
		convRepo:      convRepo,
		reportStorage: reportStorage,
		emailClient:   emailClient,
		locks:         application.NewSessionLocks(),
	}
}

func (h *AsistenteHandler) controllerFor(c *fiber.Ctx, sessionID string) *application.ConversationController {
	return application.NewConversationController(sessionID, h.store, h.catalog, AuthFromRequest(c), h.locks)
}

// Chat procesa un mensaje de chat libre.
func (h *AsistenteHandler) Chat(c *fiber.Ctx) error {
	var req domain.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[AsistenteHandler] Error parseando body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Formato de petición inválido",
		})
	}

	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "El mensaje es requerido",
		})
	}

	response, err := h.chatService.SendMessage(req, AuthFromRequest(c))
	if err != nil {
		log.Printf("[AsistenteHandler] Error procesando mensaje: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(response)
}

type dispatchRequest struct {
	SessionID string            `json:"sessionId"`
	Option    domain.MenuOption `json:"option"`
}

type dispatchResponse struct {
	State   domain.ConversationState `json:"state"`
	Effects []domain.Effect          `json:"effects,omitempty"`
}

// Dispatch aplica una acción de menú sobre la sesión y retorna el nuevo
// estado con los efectos que la UI debe ejecutar.
func (h *AsistenteHandler) Dispatch(c *fiber.Ctx) error {
	var req dispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Formato de petición inválido",
		})
	}

	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sessionId es requerido",
		})
	}

	controller := h.controllerFor(c, req.SessionID)
	state, effects := controller.Dispatch(c.Context(), req.Option)

	return c.JSON(dispatchResponse{State: state, Effects: effects})
}

// GetState retorna el estado actual de una sesión.
func (h *AsistenteHandler) GetState(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sessionId es requerido",
		})
	}

	controller := h.controllerFor(c, sessionID)
	return c.JSON(controller.State(c.Context()))
}

type guidedRequest struct {
	SessionID string                   `json:"sessionId"`
	Kind      domain.GuidedContentKind `json:"kind,omitempty"`
}

// ShowGuided activa el contenido guiado tras el redirect de una intención.
func (h *AsistenteHandler) ShowGuided(c *fiber.Ctx) error {
	var req guidedRequest
	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sessionId y kind son requeridos",
		})
	}

	controller := h.controllerFor(c, req.SessionID)
	return c.JSON(controller.ShowGuidedContentInChat(c.Context(), req.Kind))
}

// HideGuided cierra el overlay de contenido guiado.
func (h *AsistenteHandler) HideGuided(c *fiber.Ctx) error {
	var req guidedRequest
	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sessionId es requerido",
		})
	}

	controller := h.controllerFor(c, req.SessionID)
	return c.JSON(controller.HideGuidedContent(c.Context()))
}

// GetMainMenu retorna el árbol del menú principal.
func (h *AsistenteHandler) GetMainMenu(c *fiber.Ctx) error {
	return c.JSON(h.catalog.GetMainMenu())
}

// GetCategoryMenu retorna el submenú de categorías.
func (h *AsistenteHandler) GetCategoryMenu(c *fiber.Ctx) error {
	options, err := h.catalog.GetCategoryMenu()
	if err != nil {
		log.Printf("[AsistenteHandler] Error armando menú de categorías: %v", err)
		// Estado vacío renderizable en lugar de error fatal
		return c.JSON([]domain.MenuOption{})
	}
	return c.JSON(options)
}

// GetConversation retorna una conversación persistida por id.
func (h *AsistenteHandler) GetConversation(c *fiber.Ctx) error {
	conversationID := c.Params("id")
	if conversationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "El id de conversación es requerido",
		})
	}

	conversation, err := h.convRepo.GetConversation(conversationID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if conversation == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Conversación no encontrada",
		})
	}

	return c.JSON(conversation)
}

// GetClientConversations lista las conversaciones de un cliente.
func (h *AsistenteHandler) GetClientConversations(c *fiber.Ctx) error {
	clienteID, err := c.ParamsInt("clienteId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Id de cliente inválido",
		})
	}

	conversations, err := h.convRepo.GetClientConversations(clienteID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(conversations)
}

// DownloadReport descarga el reporte PDF del usuario autenticado y lo
// entrega como informe_experiencia.pdf. Si hay almacenamiento S3 se archiva
// una copia; si además llega un correo, se envía el enlace.
func (h *AsistenteHandler) DownloadReport(c *fiber.Ctx) error {
	auth := AuthFromRequest(c)
	user, ok := auth.GetCurrentUser()
	if !ok {
		// Sin usuario resoluble la acción se omite: no se envía la petición
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Se requiere un usuario autenticado para generar el reporte",
		})
	}

	if user.Role != domain.RolEmprendedor && user.Role != domain.RolAdministrador {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Tu rol no permite generar reportes",
		})
	}

	pdf, err := h.iaClient.DownloadReport(user.ID)
	if err != nil {
		log.Printf("[AsistenteHandler] Error descargando reporte: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "No pudimos generar el reporte en este momento. Intenta de nuevo más tarde.",
		})
	}

	// Archivado y notificación son mejor-esfuerzo: no bloquean la descarga
	if h.reportStorage != nil {
		if url, err := h.reportStorage.UploadReport(c.Context(), user.ID, pdf); err != nil {
			log.Printf("[AsistenteHandler] Error archivando reporte en S3: %v", err)
		} else if correo := c.Query("correo"); correo != "" && h.emailClient != nil {
			if err := h.emailClient.SendReportLink(correo, c.Query("nombre", "emprendedor"), url); err != nil {
				log.Printf("[AsistenteHandler] Error enviando enlace de reporte: %v", err)
			}
		}
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="informe_experiencia.pdf"`)
	return c.Send(pdf)
}
