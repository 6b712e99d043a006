package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/davidar27/tesorosindia_backend/internal/application"
	"github.com/davidar27/tesorosindia_backend/internal/domain"
	"github.com/davidar27/tesorosindia_backend/internal/ia"
	"github.com/davidar27/tesorosindia_backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalogRepo struct{}

func (stubCatalogRepo) GetCategories() ([]domain.ProductCategory, error) {
	return []domain.ProductCategory{{ID: "1", Nombre: "Tejidos"}}, nil
}

func (stubCatalogRepo) GetProducts() ([]domain.ChatbotProduct, error) {
	return nil, nil
}

func (stubCatalogRepo) GetProductsByCategory(categoriaID string) ([]domain.ChatbotProduct, error) {
	return []domain.ChatbotProduct{{ID: "10", Nombre: "Mochila Wayuu", CategoriaID: categoriaID}}, nil
}

func (stubCatalogRepo) GetExperiences() ([]domain.ChatbotExperience, error) {
	return []domain.ChatbotExperience{{ID: "5", Nombre: "Ruta del Cacao"}}, nil
}

func (stubCatalogRepo) GetPackages() ([]domain.ChatbotPackage, error) {
	return []domain.ChatbotPackage{{ID: "9", Nombre: "Aventura Andina"}}, nil
}

func (stubCatalogRepo) GetTopProducts(userID int) ([]domain.TopProduct, error) {
	return nil, nil
}

func (stubCatalogRepo) GetTotalIncome(userID int) (*domain.IncomeSummary, error) {
	return &domain.IncomeSummary{}, nil
}

type stubConversationRepo struct {
	conversations map[string]*domain.ConversationHistory
}

func (s *stubConversationRepo) SaveConversation(conversation *domain.ConversationHistory) error {
	s.conversations[conversation.ID] = conversation
	return nil
}

func (s *stubConversationRepo) GetConversation(conversationID string) (*domain.ConversationHistory, error) {
	return s.conversations[conversationID], nil
}

func (s *stubConversationRepo) UpdateConversation(conversation *domain.ConversationHistory) error {
	s.conversations[conversation.ID] = conversation
	return nil
}

func (s *stubConversationRepo) SaveMessage(clienteID int, contenido string) error {
	return nil
}

func (s *stubConversationRepo) GetClientConversations(clienteID int) ([]domain.ConversationHistory, error) {
	return nil, nil
}

func newTestApp(t *testing.T, iaURL string) (*fiber.App, *stubConversationRepo) {
	t.Helper()

	catalog := application.NewMenuCatalogProvider(stubCatalogRepo{}, application.NewCatalogCache(time.Minute))
	iaClient := ia.NewClient(iaURL)
	convRepo := &stubConversationRepo{conversations: make(map[string]*domain.ConversationHistory)}
	chatService := application.NewChatService(
		iaClient,
		application.NewIntentDetector(),
		application.NewResponseParser(),
		catalog,
		convRepo,
		application.NewRateLimiter(time.Minute, 100),
	)

	handler := NewAsistenteHandler(chatService, catalog, session.NewMemoryStore(), iaClient, convRepo, nil, nil)

	app := fiber.New()
	asistente := app.Group("/api/asistente")
	asistente.Post("/chat", handler.Chat)
	asistente.Post("/accion", handler.Dispatch)
	asistente.Get("/estado/:sessionId", handler.GetState)
	asistente.Post("/guiado/mostrar", handler.ShowGuided)
	asistente.Post("/guiado/ocultar", handler.HideGuided)
	asistente.Get("/menu", handler.GetMainMenu)
	asistente.Get("/menu/categorias", handler.GetCategoryMenu)
	asistente.Get("/conversation/:id", handler.GetConversation)
	asistente.Get("/reporte/descargar", handler.DownloadReport)

	return app, convRepo
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestChatEndpoint(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"text": "Hola, ¿en qué puedo ayudarte?"})
	}))
	defer backend.Close()

	app, _ := newTestApp(t, backend.URL)

	resp := postJSON(t, app, "/api/asistente/chat", map[string]string{
		"message":   "hola",
		"sessionId": "s1",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var chatResp domain.ChatResponse
	decodeBody(t, resp, &chatResp)
	assert.True(t, chatResp.Success)
	assert.Equal(t, "Hola, ¿en qué puedo ayudarte?", chatResp.Message)
	assert.NotEmpty(t, chatResp.ConversationID)
}

func TestChatEndpointMensajeVacio(t *testing.T) {
	app, _ := newTestApp(t, "http://localhost:0")

	resp := postJSON(t, app, "/api/asistente/chat", map[string]string{
		"sessionId": "s1",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDispatchEndpoint(t *testing.T) {
	app, _ := newTestApp(t, "http://localhost:0")

	resp := postJSON(t, app, "/api/asistente/accion", map[string]interface{}{
		"sessionId": "s1",
		"option": map[string]string{
			"action": "show_categories",
		},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		State   domain.ConversationState `json:"state"`
		Effects []domain.Effect          `json:"effects"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, domain.ModeCategoriesMenu, body.State.CurrentMode)
	require.Len(t, body.State.Categories, 1)
	assert.Empty(t, body.Effects)
}

func TestDispatchEndpointSinSesion(t *testing.T) {
	app, _ := newTestApp(t, "http://localhost:0")

	resp := postJSON(t, app, "/api/asistente/accion", map[string]interface{}{
		"option": map[string]string{"action": "go_back"},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEstadoEndpointPersisteEntrePeticiones(t *testing.T) {
	app, _ := newTestApp(t, "http://localhost:0")

	postJSON(t, app, "/api/asistente/accion", map[string]interface{}{
		"sessionId": "s1",
		"option":    map[string]string{"action": "show_packages"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/asistente/estado/s1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var state domain.ConversationState
	decodeBody(t, resp, &state)
	assert.Equal(t, domain.ModePackagesDisplay, state.CurrentMode)
	require.Len(t, state.Packages, 1)
}

func TestGuiadoMostrarYOcultar(t *testing.T) {
	app, _ := newTestApp(t, "http://localhost:0")

	resp := postJSON(t, app, "/api/asistente/guiado/mostrar", map[string]string{
		"sessionId": "s1",
		"kind":      "experiences",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var state domain.ConversationState
	decodeBody(t, resp, &state)
	assert.True(t, state.GuidedContent.Active)
	assert.Equal(t, domain.ModeFreeChat, state.CurrentMode)

	resp = postJSON(t, app, "/api/asistente/guiado/ocultar", map[string]string{
		"sessionId": "s1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	decodeBody(t, resp, &state)
	assert.False(t, state.GuidedContent.Active)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, domain.SenderBot, state.Messages[0].Sender)
}

func TestMenuEndpoints(t *testing.T) {
	app, _ := newTestApp(t, "http://localhost:0")

	req := httptest.NewRequest(http.MethodGet, "/api/asistente/menu", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var menu []domain.MenuOption
	decodeBody(t, resp, &menu)
	assert.Len(t, menu, 7)

	req = httptest.NewRequest(http.MethodGet, "/api/asistente/menu/categorias", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)

	var categorias []domain.MenuOption
	decodeBody(t, resp, &categorias)
	// Una categoría más la opción de volver
	assert.Len(t, categorias, 2)
}

func TestConversationEndpointNoEncontrada(t *testing.T) {
	app, _ := newTestApp(t, "http://localhost:0")

	req := httptest.NewRequest(http.MethodGet, "/api/asistente/conversation/no-existe", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDownloadReportSinUsuario(t *testing.T) {
	app, _ := newTestApp(t, "http://localhost:0")

	req := httptest.NewRequest(http.MethodGet, "/api/asistente/reporte/descargar", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDownloadReportRolSinPermiso(t *testing.T) {
	app, _ := newTestApp(t, "http://localhost:0")

	req := httptest.NewRequest(http.MethodGet, "/api/asistente/reporte/descargar", nil)
	req.Header.Set("X-Usuario-Id", "3")
	req.Header.Set("X-Usuario-Rol", domain.RolCliente)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDownloadReportEntregaPDF(t *testing.T) {
	pdf := []byte("%PDF-1.4 contenido")

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IA/reportes/descargar", r.URL.Path)
		w.Write(pdf)
	}))
	defer backend.Close()

	app, _ := newTestApp(t, backend.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/asistente/reporte/descargar", nil)
	req.Header.Set("X-Usuario-Id", "7")
	req.Header.Set("X-Usuario-Rol", domain.RolEmprendedor)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "informe_experiencia.pdf")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, pdf, body)
}

func TestAuthFromRequestHeaders(t *testing.T) {
	app := fiber.New()
	var auth domain.AuthContext
	app.Get("/probe", func(c *fiber.Ctx) error {
		auth = AuthFromRequest(c)
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Usuario-Id", "7")
	req.Header.Set("X-Usuario-Rol", "administrador")
	_, err := app.Test(req, -1)
	require.NoError(t, err)

	require.True(t, auth.IsAuthenticated())
	user, ok := auth.GetCurrentUser()
	require.True(t, ok)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, domain.RolAdministrador, user.Role)

	// Sin cabeceras no hay usuario
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	_, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.False(t, auth.IsAuthenticated())

	// Id presente sin rol asume cliente
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Usuario-Id", "3")
	_, err = app.Test(req, -1)
	require.NoError(t, err)
	user, ok = auth.GetCurrentUser()
	require.True(t, ok)
	assert.Equal(t, domain.RolCliente, user.Role)
}
