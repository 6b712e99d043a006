package repository

import (
	"database/sql"
	"fmt"

	"github.com/davidar27/tesorosindia_backend/internal/domain"
)

type catalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) domain.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetCategories() ([]domain.ProductCategory, error) {
	query := `
		SELECT id, nombre, COALESCE(descripcion, ''), COALESCE(imagen, '')
		FROM categoria_producto
		ORDER BY nombre
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error consultando categorías: %w", err)
	}
	defer rows.Close()

	var categorias []domain.ProductCategory
	for rows.Next() {
		var cat domain.ProductCategory
		if err := rows.Scan(&cat.ID, &cat.Nombre, &cat.Descripcion, &cat.Imagen); err != nil {
			return nil, fmt.Errorf("error leyendo categoría: %w", err)
		}
		categorias = append(categorias, cat)
	}

	return categorias, rows.Err()
}

func (r *catalogRepository) GetProducts() ([]domain.ChatbotProduct, error) {
	return r.queryProducts(`
		SELECT id, nombre, COALESCE(descripcion, ''), precio, COALESCE(imagen, ''), categoria_id
		FROM producto
		WHERE estado = 'activo'
		ORDER BY nombre
	`)
}

func (r *catalogRepository) GetProductsByCategory(categoriaID string) ([]domain.ChatbotProduct, error) {
	return r.queryProducts(`
		SELECT id, nombre, COALESCE(descripcion, ''), precio, COALESCE(imagen, ''), categoria_id
		FROM producto
		WHERE estado = 'activo' AND categoria_id = $1
		ORDER BY nombre
	`, categoriaID)
}

func (r *catalogRepository) queryProducts(query string, args ...interface{}) ([]domain.ChatbotProduct, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error consultando productos: %w", err)
	}
	defer rows.Close()

	var productos []domain.ChatbotProduct
	for rows.Next() {
		var p domain.ChatbotProduct
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.Precio, &p.Imagen, &p.CategoriaID); err != nil {
			return nil, fmt.Errorf("error leyendo producto: %w", err)
		}
		productos = append(productos, p)
	}

	return productos, rows.Err()
}

func (r *catalogRepository) GetExperiences() ([]domain.ChatbotExperience, error) {
	query := `
		SELECT id, nombre, COALESCE(descripcion, ''), precio, COALESCE(imagen, ''), COALESCE(ubicacion, '')
		FROM experiencia
		WHERE estado = 'activo'
		ORDER BY nombre
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error consultando experiencias: %w", err)
	}
	defer rows.Close()

	var experiencias []domain.ChatbotExperience
	for rows.Next() {
		var e domain.ChatbotExperience
		if err := rows.Scan(&e.ID, &e.Nombre, &e.Descripcion, &e.Precio, &e.Imagen, &e.Ubicacion); err != nil {
			return nil, fmt.Errorf("error leyendo experiencia: %w", err)
		}
		experiencias = append(experiencias, e)
	}

	return experiencias, rows.Err()
}

func (r *catalogRepository) GetPackages() ([]domain.ChatbotPackage, error) {
	query := `
		SELECT id, nombre, COALESCE(descripcion, ''), precio, COALESCE(imagen, '')
		FROM paquete
		WHERE estado = 'activo'
		ORDER BY nombre
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error consultando paquetes: %w", err)
	}
	defer rows.Close()

	var paquetes []domain.ChatbotPackage
	for rows.Next() {
		var p domain.ChatbotPackage
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.Precio, &p.Imagen); err != nil {
			return nil, fmt.Errorf("error leyendo paquete: %w", err)
		}
		paquetes = append(paquetes, p)
	}

	return paquetes, rows.Err()
}

func (r *catalogRepository) GetTopProducts(userID int) ([]domain.TopProduct, error) {
	query := `
		SELECT p.id, p.nombre, COALESCE(p.descripcion, ''), p.precio, COALESCE(p.imagen, ''),
		       p.categoria_id, SUM(dv.cantidad) AS vendidos
		FROM producto p
		JOIN detalle_venta dv ON dv.producto_id = p.id
		JOIN venta v ON v.id = dv.venta_id
		WHERE p.emprendedor_id = $1 AND v.estado = 'completada'
		GROUP BY p.id, p.nombre, p.descripcion, p.precio, p.imagen, p.categoria_id
		ORDER BY vendidos DESC
		LIMIT 5
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("error consultando más vendidos: %w", err)
	}
	defer rows.Close()

	var top []domain.TopProduct
	for rows.Next() {
		var t domain.TopProduct
		err := rows.Scan(
			&t.Producto.ID,
			&t.Producto.Nombre,
			&t.Producto.Descripcion,
			&t.Producto.Precio,
			&t.Producto.Imagen,
			&t.Producto.CategoriaID,
			&t.Vendidos,
		)
		if err != nil {
			return nil, fmt.Errorf("error leyendo más vendido: %w", err)
		}
		top = append(top, t)
	}

	return top, rows.Err()
}

func (r *catalogRepository) GetTotalIncome(userID int) (*domain.IncomeSummary, error) {
	// Una venta puede tener varios detalles del mismo emprendedor; se
	// deduplica antes de agregar para no contar el total más de una vez
	query := `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM (
			SELECT DISTINCT v.id, v.total
			FROM venta v
			JOIN detalle_venta dv ON dv.venta_id = v.id
			JOIN producto p ON p.id = dv.producto_id
			WHERE p.emprendedor_id = $1 AND v.estado = 'completada'
		) ventas
	`

	var resumen domain.IncomeSummary
	err := r.db.QueryRow(query, userID).Scan(&resumen.TotalIngresos, &resumen.CantidadVentas)
	if err != nil {
		return nil, fmt.Errorf("error consultando ingresos: %w", err)
	}

	return &resumen, nil
}
