package domain

// DTOs del catálogo. Los registros llegan sueltos (JSON sin esquema) desde el
// backend de IA y tipados desde la base de datos; en ambos casos se convierten
// a estas formas en el borde y el resto del sistema trabaja solo con ellas.

type ProductCategory struct {
	ID          string `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	Imagen      string `json:"imagen,omitempty"`
}

type ChatbotProduct struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion,omitempty"`
	Precio      float64 `json:"precio"`
	Imagen      string  `json:"imagen,omitempty"`
	CategoriaID string  `json:"categoriaId,omitempty"`
}

type ChatbotExperience struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion,omitempty"`
	Precio      float64 `json:"precio"`
	Imagen      string  `json:"imagen,omitempty"`
	Ubicacion   string  `json:"ubicacion,omitempty"`
}

type ChatbotPackage struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion,omitempty"`
	Precio      float64 `json:"precio"`
	Imagen      string  `json:"imagen,omitempty"`
}

// TopProduct es una fila del ranking de más vendidos de un emprendedor.
type TopProduct struct {
	Producto ChatbotProduct `json:"producto"`
	Vendidos int            `json:"vendidos"`
}

type IncomeSummary struct {
	TotalIngresos  float64 `json:"totalIngresos"`
	CantidadVentas int     `json:"cantidadVentas"`
}

// CatalogRecord es la variante etiquetada que resulta de normalizar un
// registro suelto: exactamente uno de los punteros es no-nil según Kind.
type CatalogRecord struct {
	Kind        string             `json:"kind"`
	Producto    *ChatbotProduct    `json:"producto,omitempty"`
	Experiencia *ChatbotExperience `json:"experiencia,omitempty"`
	Paquete     *ChatbotPackage    `json:"paquete,omitempty"`
}

const (
	KindProduct    = "product"
	KindExperience = "experience"
	KindPackage    = "package"
)

type CatalogRepository interface {
	GetCategories() ([]ProductCategory, error)
	GetProducts() ([]ChatbotProduct, error)
	GetProductsByCategory(categoriaID string) ([]ChatbotProduct, error)
	GetExperiences() ([]ChatbotExperience, error)
	GetPackages() ([]ChatbotPackage, error)
	GetTopProducts(userID int) ([]TopProduct, error)
	GetTotalIncome(userID int) (*IncomeSummary, error)
}
