package application

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/davidar27/tesorosindia_backend/internal/domain"
)

// ResponseParser extrae referencias a entidades del dominio incrustadas en la
// prosa markdown que genera el backend de IA y las convierte en tarjetas
// estructuradas. El contrato de enlaces es parte del protocolo con el backend:
// [Nombre](/Paquete/<id>), /Experiencia/<id> y /Producto/<id>, con los
// segmentos en español capitalizados tal cual (sensible a mayúsculas).
type ResponseParser struct{}

func NewResponseParser() *ResponseParser {
	return &ResponseParser{}
}

// entitySpec define cómo se reconoce y enlaza cada tipo de entidad.
// El orden del slice fija el orden de extracción (paquetes, experiencias,
// productos) y con ello el orden de los items resultantes.
type entitySpec struct {
	kind    string
	pattern *regexp.Regexp
	urlFor  func(id string) string
}

var entitySpecs = []entitySpec{
	{
		kind:    domain.KindPackage,
		pattern: regexp.MustCompile(`\[([^\]]+)\]\(/Paquete/(\d+)\)`),
		urlFor:  func(id string) string { return "/paquetes/" + id },
	},
	{
		kind:    domain.KindExperience,
		pattern: regexp.MustCompile(`\[([^\]]+)\]\(/Experiencia/(\d+)\)`),
		urlFor:  func(id string) string { return "/experiencias/" + id },
	},
	{
		kind:    domain.KindProduct,
		pattern: regexp.MustCompile(`\[([^\]]+)\]\(/Producto/(\d+)\)`),
		urlFor:  func(id string) string { return "/productos/" + id + "/detalles" },
	},
}

var (
	placeholderPattern = regexp.MustCompile(`\{\{ENTIDAD_\d+\}\}`)
	imagePattern       = regexp.MustCompile(`!\[[^\]]*\]\(([^)]*)\)`)
	linkPattern        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// Ventanas posicionales para descripción e imagen, en líneas.
const (
	descriptionLinesAhead = 2
	imageLinesBefore      = 3
	imageLinesAfter       = 2
)

// entityMatch es una coincidencia ya resuelta sobre un texto dado. La búsqueda
// es una función pura que retorna la lista completa ordenada de coincidencias
// no solapadas; no hay estado de escaneo implícito.
type entityMatch struct {
	fullText string
	label    string
	id       string
	line     int
}

func findEntityMatches(pattern *regexp.Regexp, text string) []entityMatch {
	raw := pattern.FindAllStringSubmatchIndex(text, -1)
	matches := make([]entityMatch, 0, len(raw))
	for _, idx := range raw {
		matches = append(matches, entityMatch{
			fullText: text[idx[0]:idx[1]],
			label:    text[idx[2]:idx[3]],
			id:       text[idx[4]:idx[5]],
			line:     strings.Count(text[:idx[0]], "\n"),
		})
	}
	return matches
}

// Parse escanea el texto de respuesta, extrae las tarjetas y retorna la prosa
// limpia. Los enlaces que no cumplen el contrato se ignoran en silencio y la
// limpieza final los reduce a su etiqueta.
func (p *ResponseParser) Parse(responseText string) domain.ParsedResponse {
	working := responseText
	items := []domain.ParsedItem{}
	placeholderSeq := 0

	// Las ventanas de línea se resuelven siempre sobre el texto original:
	// el marcador posicional de un tipo ya extraído no debe leerse como
	// prosa de los siguientes. Los patrones por tipo son disjuntos y los
	// reemplazos no cruzan líneas, así que coincidencias y números de
	// línea son los mismos en ambos textos.
	lines := strings.Split(responseText, "\n")

	for _, spec := range entitySpecs {
		for _, m := range findEntityMatches(spec.pattern, responseText) {
			name := strings.TrimSpace(strings.ReplaceAll(m.label, "**", ""))

			items = append(items, domain.ParsedItem{
				ID:          m.id,
				Name:        name,
				Description: findDescription(lines, m.line),
				Kind:        spec.kind,
				URL:         spec.urlFor(m.id),
				Image:       findImage(lines, m.line),
			})

			// Marcador posicional para que la limpieza final no vuelva
			// a interpretar este tramo como enlace.
			placeholder := fmt.Sprintf("{{ENTIDAD_%d}}", placeholderSeq)
			placeholderSeq++
			working = strings.Replace(working, m.fullText, placeholder, 1)
		}
	}

	return domain.ParsedResponse{
		Text:     cleanResponseText(working),
		Items:    items,
		HasItems: len(items) > 0,
	}
}

// findDescription busca en las líneas estrictamente posteriores a la del
// enlace, hasta 2 adelante: la primera línea no vacía sin '[' ni '*'.
func findDescription(lines []string, matchLine int) string {
	for i := matchLine + 1; i <= matchLine+descriptionLinesAhead && i < len(lines); i++ {
		candidate := strings.TrimSpace(lines[i])
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, "[") || strings.Contains(candidate, "*") {
			continue
		}
		return candidate
	}
	return ""
}

// findImage busca un token de imagen markdown hasta 3 líneas antes del enlace
// y, si no aparece, hasta 2 líneas después.
func findImage(lines []string, matchLine int) string {
	start := matchLine - imageLinesBefore
	if start < 0 {
		start = 0
	}
	for i := start; i < matchLine && i < len(lines); i++ {
		if m := imagePattern.FindStringSubmatch(lines[i]); m != nil {
			return m[1]
		}
	}
	for i := matchLine + 1; i <= matchLine+imageLinesAfter && i < len(lines); i++ {
		if m := imagePattern.FindStringSubmatch(lines[i]); m != nil {
			return m[1]
		}
	}
	return ""
}

// cleanResponseText es la pasada final: elimina marcadores posicionales,
// imágenes y enlaces markdown restantes (los enlaces se reducen a su
// etiqueta), quita negritas y cursivas, colapsa espacios y recorta.
func cleanResponseText(text string) string {
	cleaned := placeholderPattern.ReplaceAllString(text, "")
	cleaned = imagePattern.ReplaceAllString(cleaned, "")
	cleaned = linkPattern.ReplaceAllString(cleaned, "$1")
	cleaned = strings.ReplaceAll(cleaned, "**", "")
	cleaned = strings.ReplaceAll(cleaned, "*", "")

	var kept []string
	for _, line := range strings.Split(cleaned, "\n") {
		collapsed := strings.Join(strings.Fields(line), " ")
		if collapsed != "" {
			kept = append(kept, collapsed)
		}
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
