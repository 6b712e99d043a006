package application

import (
	"fmt"
	"strconv"

	"github.com/davidar27/tesorosindia_backend/internal/domain"
)

// MenuCatalogProvider construye los árboles de menú del asistente y resuelve
// las listas del dominio (categorías, productos, experiencias, paquetes,
// más vendidos, ingresos). Es una fuente de datos de solo lectura: el
// controlador de conversación depende de él pero no lo posee.
type MenuCatalogProvider struct {
	repo  domain.CatalogRepository
	cache *CatalogCache
}

func NewMenuCatalogProvider(repo domain.CatalogRepository, cache *CatalogCache) *MenuCatalogProvider {
	return &MenuCatalogProvider{
		repo:  repo,
		cache: cache,
	}
}

// GetMainMenu retorna el árbol fijo del menú principal. Las acciones de
// analítica aparecen siempre; el controlador decide si el usuario puede
// ejecutarlas según su rol.
func (p *MenuCatalogProvider) GetMainMenu() []domain.MenuOption {
	return []domain.MenuOption{
		{ID: "categorias", Label: "Ver categorías", Kind: domain.OptionKindMainMenu, Action: domain.ActionShowCategories},
		{ID: "experiencias", Label: "Experiencias", Kind: domain.OptionKindMainMenu, Action: domain.ActionShowExperiences},
		{ID: "paquetes", Label: "Paquetes turísticos", Kind: domain.OptionKindMainMenu, Action: domain.ActionShowPackages},
		{ID: "chat_libre", Label: "Chat libre", Kind: domain.OptionKindCustom, Action: domain.ActionCustom, Value: domain.CustomOpenFreeChat},
		{ID: "mas_vendidos", Label: "Productos más vendidos", Kind: domain.OptionKindCustom, Action: domain.ActionCustom, Value: domain.CustomShowTopProducts},
		{ID: "ingresos", Label: "Ingresos totales", Kind: domain.OptionKindCustom, Action: domain.ActionCustom, Value: domain.CustomShowTotalIncome},
		{ID: "reporte", Label: "Generar reporte", Kind: domain.OptionKindCustom, Action: domain.ActionCustom, Value: domain.CustomGenerateReport},
	}
}

// GetCategoryMenu arma el submenú de categorías a partir del catálogo,
// con la opción de volver al final.
func (p *MenuCatalogProvider) GetCategoryMenu() ([]domain.MenuOption, error) {
	categorias, err := p.GetCategories()
	if err != nil {
		return nil, err
	}

	options := make([]domain.MenuOption, 0, len(categorias)+1)
	for _, cat := range categorias {
		options = append(options, domain.MenuOption{
			ID:     "categoria_" + cat.ID,
			Label:  cat.Nombre,
			Kind:   domain.OptionKindCategory,
			Action: domain.ActionShowProducts,
			Value:  cat.ID,
		})
	}
	options = append(options, domain.MenuOption{
		ID:     "volver",
		Label:  "Volver",
		Kind:   domain.OptionKindBack,
		Action: domain.ActionGoBack,
	})

	return options, nil
}

func (p *MenuCatalogProvider) GetCategories() ([]domain.ProductCategory, error) {
	if cached, ok := p.cache.Get("categorias"); ok {
		if categorias, ok := cached.([]domain.ProductCategory); ok {
			return categorias, nil
		}
	}

	categorias, err := p.repo.GetCategories()
	if err != nil {
		return nil, fmt.Errorf("error obteniendo categorías: %w", err)
	}

	p.cache.Set("categorias", categorias)
	return categorias, nil
}

func (p *MenuCatalogProvider) GetProductsByCategory(categoriaID string) ([]domain.ChatbotProduct, error) {
	key := "productos:" + categoriaID
	if cached, ok := p.cache.Get(key); ok {
		if productos, ok := cached.([]domain.ChatbotProduct); ok {
			return productos, nil
		}
	}

	productos, err := p.repo.GetProductsByCategory(categoriaID)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo productos de la categoría %s: %w", categoriaID, err)
	}

	p.cache.Set(key, productos)
	return productos, nil
}

func (p *MenuCatalogProvider) GetExperiences() ([]domain.ChatbotExperience, error) {
	if cached, ok := p.cache.Get("experiencias"); ok {
		if experiencias, ok := cached.([]domain.ChatbotExperience); ok {
			return experiencias, nil
		}
	}

	experiencias, err := p.repo.GetExperiences()
	if err != nil {
		return nil, fmt.Errorf("error obteniendo experiencias: %w", err)
	}

	p.cache.Set("experiencias", experiencias)
	return experiencias, nil
}

func (p *MenuCatalogProvider) GetPackages() ([]domain.ChatbotPackage, error) {
	if cached, ok := p.cache.Get("paquetes"); ok {
		if paquetes, ok := cached.([]domain.ChatbotPackage); ok {
			return paquetes, nil
		}
	}

	paquetes, err := p.repo.GetPackages()
	if err != nil {
		return nil, fmt.Errorf("error obteniendo paquetes: %w", err)
	}

	p.cache.Set("paquetes", paquetes)
	return paquetes, nil
}

// Los datos por usuario (ranking e ingresos) no pasan por el caché.

func (p *MenuCatalogProvider) GetTopProducts(userID int) ([]domain.TopProduct, error) {
	top, err := p.repo.GetTopProducts(userID)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo más vendidos del usuario %d: %w", userID, err)
	}
	return top, nil
}

func (p *MenuCatalogProvider) GetTotalIncome(userID int) (*domain.IncomeSummary, error) {
	ingresos, err := p.repo.GetTotalIncome(userID)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo ingresos del usuario %d: %w", userID, err)
	}
	return ingresos, nil
}

// NormalizeRecords convierte los registros sueltos que adjunta el backend de
// IA en variantes tipadas. Los registros inválidos se descartan: el payload
// es opcional y nunca debe tumbar la respuesta.
func (p *MenuCatalogProvider) NormalizeRecords(records []map[string]interface{}) []domain.CatalogRecord {
	normalized := make([]domain.CatalogRecord, 0, len(records))
	for _, rec := range records {
		record, err := ParseLooseRecord(rec)
		if err != nil {
			continue
		}
		normalized = append(normalized, record)
	}
	return normalized
}

// ParseLooseRecord valida un registro sin esquema en el borde y lo convierte
// a la variante etiquetada que corresponda según su campo "tipo".
func ParseLooseRecord(rec map[string]interface{}) (domain.CatalogRecord, error) {
	tipo := looseString(rec, "tipo", "kind", "type")

	id := looseString(rec, "id")
	nombre := looseString(rec, "nombre", "name")
	if id == "" || nombre == "" {
		return domain.CatalogRecord{}, fmt.Errorf("registro sin id o nombre: %v", rec)
	}

	descripcion := looseString(rec, "descripcion", "description")
	imagen := looseString(rec, "imagen", "image")
	precio := looseFloat(rec, "precio", "price")

	switch tipo {
	case "producto", "product":
		return domain.CatalogRecord{
			Kind: domain.KindProduct,
			Producto: &domain.ChatbotProduct{
				ID:          id,
				Nombre:      nombre,
				Descripcion: descripcion,
				Precio:      precio,
				Imagen:      imagen,
				CategoriaID: looseString(rec, "categoriaId", "categoria_id"),
			},
		}, nil
	case "experiencia", "experience":
		return domain.CatalogRecord{
			Kind: domain.KindExperience,
			Experiencia: &domain.ChatbotExperience{
				ID:          id,
				Nombre:      nombre,
				Descripcion: descripcion,
				Precio:      precio,
				Imagen:      imagen,
				Ubicacion:   looseString(rec, "ubicacion", "location"),
			},
		}, nil
	case "paquete", "package":
		return domain.CatalogRecord{
			Kind: domain.KindPackage,
			Paquete: &domain.ChatbotPackage{
				ID:          id,
				Nombre:      nombre,
				Descripcion: descripcion,
				Precio:      precio,
				Imagen:      imagen,
			},
		}, nil
	default:
		return domain.CatalogRecord{}, fmt.Errorf("tipo de registro desconocido: %q", tipo)
	}
}

// looseString lee la primera clave presente y la convierte a string.
// Los ids numéricos de JSON llegan como float64.
func looseString(rec map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		switch value := v.(type) {
		case string:
			return value
		case float64:
			if value == float64(int64(value)) {
				return strconv.FormatInt(int64(value), 10)
			}
			return strconv.FormatFloat(value, 'f', -1, 64)
		case int:
			return strconv.Itoa(value)
		}
	}
	return ""
}

func looseFloat(rec map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		switch value := v.(type) {
		case float64:
			return value
		case int:
			return float64(value)
		case string:
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				return f
			}
		}
	}
	return 0
}
