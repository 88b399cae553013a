package features

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parts es la descripción estructurada de un gato.
type Parts struct {
	Color   string `json:"color"`
	Pattern string `json:"pattern"`
	Fur     string `json:"fur"`
	Tail    string `json:"tail"`
	Other   string `json:"other"`
}

// Codec convierte entre texto libre de rasgos y Parts.
type Codec struct {
	vocab Vocabulary
}

func NewCodec(v Vocabulary) Codec {
	return Codec{vocab: v}
}

func (c Codec) Vocabulary() Vocabulary {
	return c.vocab
}

// Decompose extrae patrón, color, pelaje y cola del texto; lo que sobra va a Other.
// Nunca falla: un texto vacío produce Parts vacío.
func (c Codec) Decompose(text string) Parts {
	var p Parts
	if strings.TrimSpace(text) == "" {
		return p
	}

	rest := text
	// Patrón antes que color: varios patrones contienen un color (茶トラ, brown tabby).
	p.Pattern, rest = c.extract(rest, c.vocab.Patterns, "")
	p.Color, rest = c.extract(rest, c.vocab.Colors, "")
	p.Fur, rest = c.extract(rest, c.vocab.Fur, "")
	p.Tail, rest = c.extract(rest, c.vocab.Tails, c.vocab.TailSuffix)

	p.Other = strings.TrimFunc(rest, isSeparator)
	return p
}

// Compose arma el texto en orden patrón, color, pelaje, cola, otros.
// Los campos vacíos o "desconocido" se omiten.
func (c Codec) Compose(p Parts) string {
	out := make([]string, 0, 5)

	for _, v := range []string{p.Pattern, p.Color, p.Fur} {
		if v = strings.TrimSpace(v); v != "" && v != c.vocab.Unknown {
			out = append(out, v)
		}
	}
	if tail := strings.TrimSpace(p.Tail); tail != "" && tail != c.vocab.Unknown {
		out = append(out, c.withTailSuffix(tail))
	}
	if strings.TrimSpace(p.Other) != "" {
		out = append(out, p.Other)
	}

	return strings.Join(out, " ")
}

// extract busca el primer término del vocabulario presente en s y lo quita
// (una sola ocurrencia). Si suffix aparece justo después del término, también se quita.
func (c Codec) extract(s string, terms []string, suffix string) (string, string) {
	for _, term := range terms {
		if term == "" || c.vocab.isSentinel(term) {
			continue
		}
		idx := c.index(s, term)
		if idx < 0 {
			continue
		}

		end := idx + len(term)
		if suffix != "" {
			after := s[end:]
			trimmed := strings.TrimLeftFunc(after, unicode.IsSpace)
			if strings.HasPrefix(trimmed, suffix) {
				end += len(after) - len(trimmed) + len(suffix)
			}
		}

		return term, strings.TrimFunc(s[:idx]+s[end:], isSeparator)
	}
	return "", s
}

// index devuelve la primera ocurrencia de term en s que respete los límites de palabra del vocabulario.
func (c Codec) index(s, term string) int {
	if !c.vocab.WordBounded {
		return strings.Index(s, term)
	}
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], term)
		if i < 0 {
			return -1
		}
		idx := from + i
		end := idx + len(term)
		if !wordRuneBefore(s, idx) && !wordRuneAfter(s, end) {
			return idx
		}
		_, size := utf8.DecodeRuneInString(s[idx:])
		from = idx + size
	}
	return -1
}

func wordRuneBefore(s string, idx int) bool {
	if idx == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return isWordRune(r)
}

func wordRuneAfter(s string, end int) bool {
	if end >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (c Codec) withTailSuffix(tail string) string {
	sfx := c.vocab.TailSuffix
	if sfx == "" || strings.HasSuffix(tail, sfx) {
		return tail
	}
	// En inglés se separa con espacio ("long tail"); en japonés va pegado (長い尻尾).
	if c.vocab.Locale == English.Locale {
		return tail + " " + sfx
	}
	return tail + sfx
}

func isSeparator(r rune) bool {
	return r == ',' || r == '、' || r == '/' || unicode.IsSpace(r)
}
