package notes

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/maticastro/notaprensa/internal/domain/errors"
	"github.com/maticastro/notaprensa/internal/domain/models"
)

var (
	fenceRe        = regexp.MustCompile("```[a-zA-Z]*\n|```")
	controlCharsRe = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSONObjects devuelve candidatos a objeto JSON encontrados en la
// salida cruda del modelo, el más probable primero: la región {...} más
// grande, después el barrido ingenuo primera-a-última llave, y el texto
// entero como último recurso.
func ExtractJSONObjects(raw string) []string {
	if raw == "" {
		return nil
	}
	text := controlCharsRe.ReplaceAllString(fenceRe.ReplaceAllString(raw, ""), " ")

	var candidates []string
	if largest := largestBracedRegion(text); largest != "" {
		candidates = append(candidates, largest)
	}

	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first != -1 && last > first {
		frag := text[first : last+1]
		if !containsStr(candidates, frag) {
			candidates = append(candidates, frag)
		}
	}

	if !containsStr(candidates, text) {
		candidates = append(candidates, text)
	}
	return candidates
}

func largestBracedRegion(text string) string {
	var stack []int
	best := ""
	for i, ch := range text {
		switch ch {
		case '{':
			stack = append(stack, i)
		case '}':
			if len(stack) == 0 {
				continue
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if cand := text[start : i+1]; len(cand) > len(best) {
				best = cand
			}
		}
	}
	return best
}

// MinimalJSONRepairs aplica arreglos mínimos y seguros: comillas tipográficas
// y comas colgantes. Nunca inventa contenido.
func MinimalJSONRepairs(s string) string {
	replacer := strings.NewReplacer("“", `"`, "”", `"`, "’", "'")
	s = replacer.Replace(s)
	s = trailingComma.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// ExtractAndValidateDraft convierte la salida cruda del modelo en un draft
// validado. Errores de decodificación agotan los candidatos; un draft que
// decodifica pero viola el contrato corta de inmediato con VALIDATION.
func ExtractAndValidateDraft(raw string) (*models.NotesDraft, error) {
	candidates := ExtractJSONObjects(raw)
	if len(candidates) == 0 {
		return nil, errors.New(errors.CodeValidation, "la respuesta del modelo no contiene ningún objeto JSON")
	}

	var lastErr error
	for _, cand := range candidates {
		fixed := MinimalJSONRepairs(cand)

		var draft models.NotesDraft
		decoder := json.NewDecoder(strings.NewReader(fixed))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&draft); err != nil {
			lastErr = err
			continue
		}

		if err := ValidateDraft(&draft); err != nil {
			return nil, err
		}
		return &draft, nil
	}

	return nil, errors.Wrap(errors.CodeValidation, "ningún candidato JSON de la respuesta decodificó", lastErr)
}

func containsStr(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
