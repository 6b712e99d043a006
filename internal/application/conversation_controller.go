package application

import (
	"context"
	"sync"
	"time"

	"github.com/davidar27/tesorosindia_backend/internal/domain"
	"github.com/davidar27/tesorosindia_backend/internal/session"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// StateListener recibe cada nuevo estado después de un despacho.
type StateListener func(domain.ConversationState)

// ConversationController es el dueño explícito del estado de una sesión del
// asistente: pantalla actual, rastro de navegación, overlay de contenido
// guiado e historial de mensajes. Recibe acciones discretas y produce el
// siguiente estado más las peticiones de efecto que la UI anfitriona debe
// ejecutar. Las mutaciones se serializan con un candado por sesión tomado
// de SessionLocks, compartido entre todos los controladores de esa sesión;
// ningún fallo de datos cruza el borde de una transición.
type ConversationController struct {
	sessionID string
	store     session.Store
	catalog   *MenuCatalogProvider
	auth      domain.AuthContext

	mu        *sync.Mutex
	listeners []StateListener
}

func NewConversationController(sessionID string, store session.Store, catalog *MenuCatalogProvider, auth domain.AuthContext, locks *SessionLocks) *ConversationController {
	return &ConversationController{
		sessionID: sessionID,
		store:     store,
		catalog:   catalog,
		auth:      auth,
		mu:        locks.For(sessionID),
	}
}

// Subscribe registra un observador del estado para la capa de presentación.
func (c *ConversationController) Subscribe(listener StateListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// Etiquetas del rastro de navegación. La raíz es fija.
const (
	crumbCategories  = "Categories"
	crumbProducts    = "Products"
	crumbExperiences = "Experiences"
	crumbPackages    = "Packages"
	crumbTopProducts = "Top Products"
	crumbTotalIncome = "Total Income"
	crumbFreeChat    = "Free Chat"
)

// Mensajes contextuales al cerrar el contenido guiado: uno por tipo de
// overlay, elegido de forma determinista, más uno por defecto.
var guidedFarewells = map[domain.GuidedContentKind]string{
	domain.GuidedExperiences: "Espero que alguna de nuestras experiencias te haya interesado. ¿En qué más puedo ayudarte?",
	domain.GuidedProducts:    "Espero que hayas encontrado algún producto que te guste. ¿En qué más puedo ayudarte?",
	domain.GuidedPackages:    "Espero que alguno de nuestros paquetes te haya llamado la atención. ¿En qué más puedo ayudarte?",
}

const guidedFarewellDefault = "Listo, seguimos conversando. ¿En qué más puedo ayudarte?"

func initialState() domain.ConversationState {
	return domain.ConversationState{
		CurrentMode: domain.ModeMainMenu,
		Breadcrumb:  []string{domain.BreadcrumbRoot},
	}
}

// State retorna el estado actual de la sesión (inicial si no existe).
func (c *ConversationController) State(ctx context.Context) domain.ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadState(ctx)
}

// Dispatch aplica una acción de menú y retorna el nuevo estado junto con los
// efectos que la UI debe ejecutar. Nunca retorna error: los fallos de datos
// se registran y la transición deja listas vacías o agrega un mensaje del
// bot, pero la conversación sigue usable.
func (c *ConversationController) Dispatch(ctx context.Context, opt domain.MenuOption) (domain.ConversationState, []domain.Effect) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.loadState(ctx)
	var effects []domain.Effect

	switch opt.Action {
	case domain.ActionShowCategories:
		c.applyShowCategories(&state)

	case domain.ActionShowProducts:
		c.applyShowProducts(&state, opt.Value)

	case domain.ActionShowExperiences:
		c.applyShowExperiences(&state)

	case domain.ActionShowPackages:
		c.applyShowPackages(&state)

	case domain.ActionNavigate:
		// La navegación cierra el chat y se delega a la UI anfitriona.
		effects = append(effects,
			domain.Effect{Type: domain.EffectCloseChat},
			domain.Effect{Type: domain.EffectNavigate, Path: opt.Value},
		)

	case domain.ActionGoBack:
		// Única acción que garantiza el reinicio completo del estado
		// transitorio: listas, mensajes y rastro vuelven al inicio.
		state = initialState()

	case domain.ActionCustom:
		effects = c.applyCustom(&state, opt.Value)

	default:
		log.Printf("[ConversationController] Acción desconocida: %s", opt.Action)
	}

	c.saveState(ctx, state)
	c.notify(state)
	return state, effects
}

func (c *ConversationController) applyShowCategories(state *domain.ConversationState) {
	categorias, err := c.catalog.GetCategories()
	if err != nil {
		log.Printf("[ConversationController] Error cargando categorías: %v", err)
		categorias = nil
	}

	state.Categories = categorias
	c.switchToDisplay(state, domain.ModeCategoriesMenu, crumbCategories)
}

func (c *ConversationController) applyShowProducts(state *domain.ConversationState, categoriaID string) {
	productos, err := c.catalog.GetProductsByCategory(categoriaID)
	if err != nil {
		log.Printf("[ConversationController] Error cargando productos de %s: %v", categoriaID, err)
		productos = nil
	}

	state.Products = productos
	state.SelectedCategory = categoriaID
	c.switchToDisplay(state, domain.ModeProductsDisplay, crumbProducts)
}

func (c *ConversationController) applyShowExperiences(state *domain.ConversationState) {
	experiencias, err := c.catalog.GetExperiences()
	if err != nil {
		log.Printf("[ConversationController] Error cargando experiencias: %v", err)
		experiencias = nil
	}

	state.Experiences = experiencias
	c.switchToDisplay(state, domain.ModeExperiencesDisplay, crumbExperiences)
}

func (c *ConversationController) applyShowPackages(state *domain.ConversationState) {
	paquetes, err := c.catalog.GetPackages()
	if err != nil {
		log.Printf("[ConversationController] Error cargando paquetes: %v", err)
		paquetes = nil
	}

	state.Packages = paquetes
	c.switchToDisplay(state, domain.ModePackagesDisplay, crumbPackages)
}

func (c *ConversationController) applyCustom(state *domain.ConversationState, value string) []domain.Effect {
	switch value {
	case domain.CustomOpenFreeChat:
		state.CurrentMode = domain.ModeFreeChat
		state.GuidedContent = domain.GuidedContent{}
		state.Breadcrumb = append(state.Breadcrumb, crumbFreeChat)
		state.Messages = nil
		return nil

	case domain.CustomShowTopProducts:
		user, ok := c.requireAnalyticsUser(value)
		if !ok {
			return nil
		}
		top, err := c.catalog.GetTopProducts(user.ID)
		if err != nil {
			log.Printf("[ConversationController] Error cargando más vendidos: %v", err)
			c.appendBotMessage(state, "No pudimos obtener los productos más vendidos en este momento. Intenta de nuevo más tarde.")
			return nil
		}
		state.TopProducts = top
		c.switchToDisplay(state, domain.ModeTopProducts, crumbTopProducts)
		return nil

	case domain.CustomShowTotalIncome:
		user, ok := c.requireAnalyticsUser(value)
		if !ok {
			return nil
		}
		ingresos, err := c.catalog.GetTotalIncome(user.ID)
		if err != nil {
			log.Printf("[ConversationController] Error cargando ingresos: %v", err)
			c.appendBotMessage(state, "No pudimos obtener tus ingresos totales en este momento. Intenta de nuevo más tarde.")
			return nil
		}
		state.TotalIncome = ingresos
		c.switchToDisplay(state, domain.ModeTotalIncome, crumbTotalIncome)
		return nil

	case domain.CustomGenerateReport:
		user, ok := c.requireAnalyticsUser(value)
		if !ok {
			return nil
		}
		// La descarga la ejecuta la capa HTTP; aquí solo se declara.
		return []domain.Effect{{
			Type:     domain.EffectDownloadReport,
			Path:     "/IA/reportes/descargar",
			FileName: "informe_experiencia.pdf",
			UserID:   user.ID,
		}}

	default:
		log.Printf("[ConversationController] Valor custom desconocido: %s", value)
		return nil
	}
}

// requireAnalyticsUser aplica la puerta de las acciones de analítica: exige
// usuario autenticado con rol de emprendedor o administrador. Si no hay
// usuario resoluble la acción se omite sin enviar ninguna petición.
func (c *ConversationController) requireAnalyticsUser(action string) (*domain.User, bool) {
	user, ok := c.auth.GetCurrentUser()
	if !ok {
		log.Printf("[ConversationController] Acción %s omitida: sin usuario autenticado", action)
		return nil, false
	}
	if user.Role != domain.RolEmprendedor && user.Role != domain.RolAdministrador {
		log.Printf("[ConversationController] Acción %s omitida: rol %s sin permiso", action, user.Role)
		return nil, false
	}
	return user, true
}

// switchToDisplay cambia a un modo de pantalla completa. El cambio a un menú
// de despliegue desactiva el overlay y limpia el historial de mensajes.
func (c *ConversationController) switchToDisplay(state *domain.ConversationState, mode domain.Mode, crumb string) {
	state.CurrentMode = mode
	state.GuidedContent = domain.GuidedContent{}
	state.Messages = nil
	state.Breadcrumb = append(state.Breadcrumb, crumb)
}

// ShowGuidedContentInChat activa el contenido guiado tras el redirect de una
// intención detectada. Para experiencias y paquetes el modo sigue siendo
// free_chat con el overlay activo; para productos se pasa primero por el
// menú de categorías (y a productos cuando se elige una). La asimetría es
// intencional y los llamadores dependen de ella.
func (c *ConversationController) ShowGuidedContentInChat(ctx context.Context, kind domain.GuidedContentKind) domain.ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.loadState(ctx)

	switch kind {
	case domain.GuidedExperiences:
		experiencias, err := c.catalog.GetExperiences()
		if err != nil {
			log.Printf("[ConversationController] Error cargando experiencias guiadas: %v", err)
			experiencias = nil
		}
		state.Experiences = experiencias
		state.CurrentMode = domain.ModeFreeChat
		state.GuidedContent = domain.GuidedContent{Active: true, Kind: kind}
		state.Breadcrumb = append(state.Breadcrumb, crumbExperiences)

	case domain.GuidedPackages:
		paquetes, err := c.catalog.GetPackages()
		if err != nil {
			log.Printf("[ConversationController] Error cargando paquetes guiados: %v", err)
			paquetes = nil
		}
		state.Packages = paquetes
		state.CurrentMode = domain.ModeFreeChat
		state.GuidedContent = domain.GuidedContent{Active: true, Kind: kind}
		state.Breadcrumb = append(state.Breadcrumb, crumbPackages)

	case domain.GuidedProducts:
		// Productos pasa por el menú de categorías sin overlay activo,
		// conservando el invariante overlay activo => free_chat.
		c.applyShowCategories(&state)

	default:
		log.Printf("[ConversationController] Tipo de contenido guiado desconocido: %s", kind)
	}

	c.saveState(ctx, state)
	c.notify(state)
	return state
}

// HideGuidedContent cierra el overlay, agrega exactamente un mensaje
// contextual del bot según el tipo que estaba activo y filtra del rastro las
// entradas de navegación de catálogo.
func (c *ConversationController) HideGuidedContent(ctx context.Context) domain.ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.loadState(ctx)

	farewell, ok := guidedFarewells[state.GuidedContent.Kind]
	if !ok {
		farewell = guidedFarewellDefault
	}

	state.GuidedContent = domain.GuidedContent{}
	state.CurrentMode = domain.ModeFreeChat
	state.Breadcrumb = filterCrumbs(state.Breadcrumb, crumbCategories, crumbProducts, crumbExperiences, crumbPackages)
	c.appendBotMessage(&state, farewell)

	c.saveState(ctx, state)
	c.notify(state)
	return state
}

// AppendMessage agrega un mensaje al historial de la sesión (lo usa el flujo
// de chat para reflejar los intercambios con el backend de IA).
func (c *ConversationController) AppendMessage(ctx context.Context, msg domain.ChatMessage) domain.ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.loadState(ctx)
	state.Messages = append(state.Messages, msg)

	c.saveState(ctx, state)
	c.notify(state)
	return state
}

func (c *ConversationController) appendBotMessage(state *domain.ConversationState, text string) {
	state.Messages = append(state.Messages, domain.ChatMessage{
		ID:        uuid.New().String(),
		Text:      text,
		Sender:    domain.SenderBot,
		Timestamp: time.Now(),
	})
}

func filterCrumbs(crumbs []string, drop ...string) []string {
	dropSet := make(map[string]bool, len(drop))
	for _, label := range drop {
		dropSet[label] = true
	}

	filtered := make([]string, 0, len(crumbs))
	for _, crumb := range crumbs {
		if !dropSet[crumb] {
			filtered = append(filtered, crumb)
		}
	}
	return filtered
}

func (c *ConversationController) loadState(ctx context.Context) domain.ConversationState {
	record, err := c.store.Get(ctx, c.sessionID)
	if err != nil {
		log.Printf("[ConversationController] Error leyendo sesión %s: %v", c.sessionID, err)
		return initialState()
	}
	if record == nil {
		return initialState()
	}
	return record.State
}

func (c *ConversationController) saveState(ctx context.Context, state domain.ConversationState) {
	err := c.store.Save(ctx, &session.Record{
		ID:    c.sessionID,
		State: state,
	})
	if err != nil {
		log.Printf("[ConversationController] Error guardando sesión %s: %v", c.sessionID, err)
	}
}

func (c *ConversationController) notify(state domain.ConversationState) {
	for _, listener := range c.listeners {
		listener(state)
	}
}
