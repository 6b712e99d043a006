package application

import (
	"strings"

	"github.com/davidar27/tesorosindia_backend/internal/domain"
)

// IntentDetector clasifica texto libre del usuario en una de las categorías
// de navegación del asistente. Es un cómputo determinista sobre su
// configuración: sin estado, sin efectos, una sola instancia inyectada.
type IntentDetector struct {
	categories []intentCategory
}

// intentCategory asocia una categoría con sus patrones de palabras clave y la
// plantilla de respuesta que se entrega cuando la categoría gana.
type intentCategory struct {
	name     string
	patterns []string
	template intentTemplate
}

type intentTemplate struct {
	message    string
	buttonText string
	redirectTo string
}

// Pesos y umbrales del puntaje. El piso de 0.3 separa "none" del resto.
const (
	exactMatchScore     = 1.0
	substringMatchScore = 0.7
	fuzzyMatchScore     = 0.5
	fuzzyThreshold      = 0.8
	minSubstringLen     = 3
	confidenceFloor     = 0.3
	boostPerMatch       = 0.2
	maxBoost            = 0.5
)

// NewIntentDetector construye el detector con la configuración fija de
// categorías. El orden de declaración importa: es el criterio de desempate
// entre categorías con puntaje igual y los llamadores dependen de él.
func NewIntentDetector() *IntentDetector {
	return &IntentDetector{
		categories: []intentCategory{
			{
				name: "packages",
				patterns: []string{
					"paquete", "paquetes", "tour", "tours", "turistico",
					"turisticos", "viaje", "viajes", "excursion", "excursiones",
				},
				template: intentTemplate{
					message:    "Veo que te interesan nuestros paquetes turísticos. ¿Quieres verlos?",
					buttonText: "Ver paquetes",
					redirectTo: "show_packages",
				},
			},
			{
				name: "products",
				patterns: []string{
					"producto", "productos", "artesania", "artesanias",
					"comprar", "tienda", "souvenir", "souvenirs", "tejido", "ceramica",
				},
				template: intentTemplate{
					message:    "Tenemos productos artesanales hechos por nuestros emprendedores. ¿Te los muestro?",
					buttonText: "Ver productos",
					redirectTo: "show_products",
				},
			},
			{
				name: "top_products",
				patterns: []string{
					"vendidos", "vendido", "populares", "destacados",
					"top", "ranking", "favoritos",
				},
				template: intentTemplate{
					message:    "Puedo mostrarte los productos más vendidos. ¿Quieres verlos?",
					buttonText: "Ver más vendidos",
					redirectTo: "show_top_products",
				},
			},
			{
				name: "experiences",
				patterns: []string{
					"experiencia", "experiencias", "actividad", "actividades",
					"taller", "talleres", "vivencial", "vivenciales", "ruta", "rutas",
				},
				template: intentTemplate{
					message:    "Nuestras experiencias vivenciales te acercan a la comunidad. ¿Quieres conocerlas?",
					buttonText: "Ver experiencias",
					redirectTo: "show_experiences",
				},
			},
			{
				name: "categories",
				patterns: []string{
					"categoria", "categorias", "tipos", "secciones", "rubros", "catalogo",
				},
				template: intentTemplate{
					message:    "Puedo mostrarte las categorías de productos disponibles. ¿Vamos?",
					buttonText: "Ver categorías",
					redirectTo: "show_categories",
				},
			},
		},
	}
}

// Detect clasifica un mensaje crudo. Si ninguna categoría alcanza el piso de
// confianza retorna la categoría "none" con confianza 0.
func (d *IntentDetector) Detect(rawMessage string) domain.DetectedIntent {
	text := Normalize(rawMessage)
	words := strings.Fields(text)

	var best *intentCategory
	bestScore := 0.0

	for i := range d.categories {
		score := d.scoreCategory(&d.categories[i], words)
		// El desempate es por orden de declaración: solo un puntaje
		// estrictamente mayor desplaza al ganador actual.
		if score > bestScore {
			bestScore = score
			best = &d.categories[i]
		}
	}

	if best == nil || bestScore < confidenceFloor {
		return domain.DetectedIntent{
			Category:   domain.IntentNone,
			Confidence: 0,
		}
	}

	return domain.DetectedIntent{
		Category:   best.name,
		Confidence: bestScore,
		RedirectTo: best.template.redirectTo,
		Message:    best.template.message,
		ButtonText: best.template.buttonText,
	}
}

// scoreCategory acumula aportes por cada par patrón/palabra: igualdad exacta
// 1.0, contención de subcadena 0.7 (ambas de largo >= 3 para no disparar con
// palabras cortas), similitud Levenshtein > 0.8 aporta 0.5. El puntaje final
// se normaliza por cantidad de palabras y se refuerza por cantidad de
// coincidencias, acotado a 1.0.
func (d *IntentDetector) scoreCategory(category *intentCategory, words []string) float64 {
	rawScore := 0.0
	matchCount := 0

	for _, pattern := range category.patterns {
		for _, word := range words {
			switch {
			case word == pattern:
				rawScore += exactMatchScore
				matchCount++
			case len(word) >= minSubstringLen && len(pattern) >= minSubstringLen &&
				(strings.Contains(word, pattern) || strings.Contains(pattern, word)):
				rawScore += substringMatchScore
				matchCount++
			case LevenshteinSimilarity(word, pattern) > fuzzyThreshold:
				rawScore += fuzzyMatchScore
				matchCount++
			}
		}
	}

	if matchCount == 0 {
		return 0
	}

	wordCount := len(words)
	if wordCount < 1 {
		wordCount = 1
	}

	normalized := rawScore / float64(wordCount)

	boost := float64(matchCount) * boostPerMatch
	if boost > maxBoost {
		boost = maxBoost
	}

	score := normalized + boost
	if score > 1.0 {
		score = 1.0
	}
	return score
}
