package application

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics descompone a NFD y elimina las marcas combinantes,
// de modo que "café" y "cafe" normalizan igual.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize deja el texto en minúsculas, sin tildes ni signos de puntuación,
// con los espacios colapsados. Es pura e idempotente:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	lowered := strings.ToLower(text)

	stripped, _, err := transform.String(stripDiacritics, lowered)
	if err != nil {
		// Entrada no normalizable: seguimos con el texto en minúsculas
		stripped = lowered
	}

	var sb strings.Builder
	sb.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// Levenshtein calcula la distancia de edición estándar (insertar, borrar,
// sustituir, costo 1 cada una). Simétrica; Levenshtein(a, a) == 0.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // borrado
				curr[j-1]+1,    // inserción
				prev[j-1]+cost, // sustitución
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// LevenshteinSimilarity retorna 1 - distancia/longitudMáxima, en [0,1].
func LevenshteinSimilarity(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
