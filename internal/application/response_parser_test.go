package application

import (
	"strings"
	"testing"

	"github.com/davidar27/tesorosindia_backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraeEntidadesConDescripcionEImagen(t *testing.T) {
	parser := NewResponseParser()

	response := strings.Join([]string{
		"Te recomiendo estos:",
		"",
		"![foto](https://cdn.tesorosindia.com/tour.jpg)",
		"[**Tour del Café**](/Paquete/12)",
		"Un recorrido por fincas cafeteras.",
		"",
		"[Taller de Cerámica](/Experiencia/7)",
		"Moldea tu propia pieza.",
	}, "\n")

	parsed := parser.Parse(response)

	require.Len(t, parsed.Items, 2)
	assert.True(t, parsed.HasItems)

	paquete := parsed.Items[0]
	assert.Equal(t, "12", paquete.ID)
	assert.Equal(t, "Tour del Café", paquete.Name)
	assert.Equal(t, domain.KindPackage, paquete.Kind)
	assert.Equal(t, "/paquetes/12", paquete.URL)
	assert.Equal(t, "Un recorrido por fincas cafeteras.", paquete.Description)
	assert.Equal(t, "https://cdn.tesorosindia.com/tour.jpg", paquete.Image)

	experiencia := parsed.Items[1]
	assert.Equal(t, "7", experiencia.ID)
	assert.Equal(t, "Taller de Cerámica", experiencia.Name)
	assert.Equal(t, domain.KindExperience, experiencia.Kind)
	assert.Equal(t, "/experiencias/7", experiencia.URL)
	assert.Equal(t, "Moldea tu propia pieza.", experiencia.Description)
	assert.Empty(t, experiencia.Image)

	expected := strings.Join([]string{
		"Te recomiendo estos:",
		"Un recorrido por fincas cafeteras.",
		"Moldea tu propia pieza.",
	}, "\n")
	assert.Equal(t, expected, parsed.Text)
}

func TestParseOrdenDeExtraccion(t *testing.T) {
	parser := NewResponseParser()

	// Los productos aparecen primero en la prosa pero los paquetes y las
	// experiencias se extraen antes
	response := strings.Join([]string{
		"[Mochila Wayuu](/Producto/3)",
		"[Ruta del Cacao](/Experiencia/5)",
		"[Aventura Andina](/Paquete/9)",
	}, "\n")

	parsed := parser.Parse(response)

	require.Len(t, parsed.Items, 3)
	assert.Equal(t, domain.KindPackage, parsed.Items[0].Kind)
	assert.Equal(t, domain.KindExperience, parsed.Items[1].Kind)
	assert.Equal(t, domain.KindProduct, parsed.Items[2].Kind)
	assert.Equal(t, "/productos/3/detalles", parsed.Items[2].URL)
}

func TestParseIgnoraEnlacesFueraDeContrato(t *testing.T) {
	parser := NewResponseParser()

	tests := []struct {
		name     string
		response string
	}{
		{"segmento en minúscula", "[Tour](/paquete/12)"},
		{"id no numérico", "[Tour](/Paquete/abc)"},
		{"ruta ajena", "[Inicio](/Home)"},
		{"url absoluta", "[Sitio](https://example.com/Paquete/12)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := parser.Parse(tt.response)
			assert.Empty(t, parsed.Items)
			assert.False(t, parsed.HasItems)
		})
	}
}

func TestParseEnlaceNoConformeSeReduceASuEtiqueta(t *testing.T) {
	parser := NewResponseParser()

	parsed := parser.Parse("Visita [nuestra tienda](/tienda) cuando quieras.")

	assert.Empty(t, parsed.Items)
	assert.Equal(t, "Visita nuestra tienda cuando quieras.", parsed.Text)
}

func TestParseDescripcionRechazaLineasConMarcado(t *testing.T) {
	parser := NewResponseParser()

	response := strings.Join([]string{
		"[Tour del Café](/Paquete/12)",
		"**Solo este mes**",
		"Incluye transporte y guía.",
	}, "\n")

	parsed := parser.Parse(response)

	require.Len(t, parsed.Items, 1)
	// La línea con asteriscos se salta y gana la siguiente dentro de la ventana
	assert.Equal(t, "Incluye transporte y guía.", parsed.Items[0].Description)
}

func TestParseDescripcionFueraDeVentana(t *testing.T) {
	parser := NewResponseParser()

	response := strings.Join([]string{
		"[Tour del Café](/Paquete/12)",
		"",
		"",
		"Esta línea queda fuera de la ventana.",
	}, "\n")

	parsed := parser.Parse(response)

	require.Len(t, parsed.Items, 1)
	assert.Empty(t, parsed.Items[0].Description)
}

func TestParseImagenDespuesDelEnlace(t *testing.T) {
	parser := NewResponseParser()

	response := strings.Join([]string{
		"[Tour del Café](/Paquete/12)",
		"Un recorrido por fincas cafeteras.",
		"![foto](https://cdn.tesorosindia.com/cafe.jpg)",
	}, "\n")

	parsed := parser.Parse(response)

	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "https://cdn.tesorosindia.com/cafe.jpg", parsed.Items[0].Image)
}

func TestParseEnlacesAdyacentesDeTiposDistintos(t *testing.T) {
	parser := NewResponseParser()

	response := strings.Join([]string{
		"[Ruta del Cacao](/Experiencia/5)",
		"[Aventura Andina](/Paquete/9)",
		"Descripción del paquete.",
	}, "\n")

	parsed := parser.Parse(response)

	require.Len(t, parsed.Items, 2)

	paquete := parsed.Items[0]
	assert.Equal(t, domain.KindPackage, paquete.Kind)
	assert.Equal(t, "Descripción del paquete.", paquete.Description)

	// La línea del enlace vecino se salta como siempre y gana la prosa
	// real dentro de la ventana, nunca un marcador interno
	experiencia := parsed.Items[1]
	assert.Equal(t, domain.KindExperience, experiencia.Kind)
	assert.Equal(t, "Descripción del paquete.", experiencia.Description)

	for _, item := range parsed.Items {
		assert.NotContains(t, item.Description, "{{")
		assert.NotContains(t, item.Image, "{{")
	}
	assert.NotContains(t, parsed.Text, "{{")
}

func TestParseTextoSinEntidades(t *testing.T) {
	parser := NewResponseParser()

	parsed := parser.Parse("Hola, ¿en qué puedo ayudarte hoy?")

	assert.Empty(t, parsed.Items)
	assert.False(t, parsed.HasItems)
	assert.Equal(t, "Hola, ¿en qué puedo ayudarte hoy?", parsed.Text)
}

func TestParseEntidadesRepetidas(t *testing.T) {
	parser := NewResponseParser()

	response := "[Tour A](/Paquete/1) y también [Tour A](/Paquete/1)"

	parsed := parser.Parse(response)

	require.Len(t, parsed.Items, 2)
	assert.Equal(t, "1", parsed.Items[0].ID)
	assert.Equal(t, "1", parsed.Items[1].ID)
	assert.Equal(t, "y también", parsed.Text)
}
