package domain

// Mode es la pantalla activa del asistente. Exactamente una a la vez.
type Mode string

const (
	ModeMainMenu           Mode = "main_menu"
	ModeCategoriesMenu     Mode = "categories_menu"
	ModeProductsDisplay    Mode = "products_display"
	ModeExperiencesDisplay Mode = "experiences_display"
	ModePackagesDisplay    Mode = "packages_display"
	ModeTopProducts        Mode = "top_products_display"
	ModeTotalIncome        Mode = "total_income_display"
	ModeFreeChat           Mode = "free_chat"
)

// BreadcrumbRoot es el primer elemento fijo del rastro de navegación.
const BreadcrumbRoot = "Main Menu"

type MenuOptionKind string

const (
	OptionKindMainMenu   MenuOptionKind = "main_menu"
	OptionKindCategory   MenuOptionKind = "category"
	OptionKindProduct    MenuOptionKind = "product"
	OptionKindExperience MenuOptionKind = "experience"
	OptionKindPackage    MenuOptionKind = "package"
	OptionKindBack       MenuOptionKind = "back"
	OptionKindCustom     MenuOptionKind = "custom"
)

type MenuAction string

const (
	ActionNavigate        MenuAction = "navigate"
	ActionShowCategories  MenuAction = "show_categories"
	ActionShowProducts    MenuAction = "show_products"
	ActionShowExperiences MenuAction = "show_experiences"
	ActionShowPackages    MenuAction = "show_packages"
	ActionGoBack          MenuAction = "go_back"
	ActionCustom          MenuAction = "custom"
)

// Valores reconocidos para ActionCustom.
const (
	CustomOpenFreeChat    = "open_free_chat"
	CustomShowTopProducts = "show_top_products"
	CustomShowTotalIncome = "show_total_income"
	CustomGenerateReport  = "generate_report"
)

type MenuOption struct {
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	Kind   MenuOptionKind `json:"kind"`
	Action MenuAction     `json:"action"`
	Value  string         `json:"value,omitempty"`
}

type GuidedContentKind string

const (
	GuidedExperiences GuidedContentKind = "experiences"
	GuidedProducts    GuidedContentKind = "products"
	GuidedPackages    GuidedContentKind = "packages"
)

// GuidedContent es el overlay de tarjetas dentro del chat libre.
// Invariante: Active == true implica CurrentMode == free_chat.
type GuidedContent struct {
	Active bool              `json:"active"`
	Kind   GuidedContentKind `json:"kind,omitempty"`
}

// ConversationState es el estado completo de una sesión del asistente.
// Se crea una vez por sesión, lo muta cada acción despachada y go_back
// lo devuelve íntegro al estado inicial.
type ConversationState struct {
	CurrentMode      Mode                `json:"currentMode"`
	Breadcrumb       []string            `json:"breadcrumb"`
	SelectedCategory string              `json:"selectedCategory,omitempty"`
	GuidedContent    GuidedContent       `json:"guidedContent"`
	Messages         []ChatMessage       `json:"messages"`
	Categories       []ProductCategory   `json:"categories,omitempty"`
	Products         []ChatbotProduct    `json:"products,omitempty"`
	Experiences      []ChatbotExperience `json:"experiences,omitempty"`
	Packages         []ChatbotPackage    `json:"packages,omitempty"`
	TopProducts      []TopProduct        `json:"topProducts,omitempty"`
	TotalIncome      *IncomeSummary      `json:"totalIncome,omitempty"`
}

// DetectedIntent es el resultado de clasificar texto libre.
// Invariante: Category == "none" si y solo si Confidence < 0.3.
type DetectedIntent struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	RedirectTo string  `json:"redirectTo"`
	Message    string  `json:"message"`
	ButtonText string  `json:"buttonText"`
}

const IntentNone = "none"

// ParsedItem es una tarjeta de entidad extraída de la prosa del bot.
type ParsedItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind"`
	URL         string `json:"url"`
	Image       string `json:"image,omitempty"`
}

type ParsedResponse struct {
	Text     string       `json:"text"`
	Items    []ParsedItem `json:"items"`
	HasItems bool         `json:"hasItems"`
}

// EffectType identifica una petición de efecto hacia la UI anfitriona.
type EffectType string

const (
	EffectNavigate       EffectType = "navigate"
	EffectCloseChat      EffectType = "close_chat"
	EffectDownloadReport EffectType = "download_report"
)

// Effect es un efecto secundario que el controlador delega: la UI (o la capa
// HTTP) lo ejecuta, el controlador solo lo declara.
type Effect struct {
	Type     EffectType `json:"type"`
	Path     string     `json:"path,omitempty"`
	FileName string     `json:"fileName,omitempty"`
	UserID   int        `json:"userId,omitempty"`
}
