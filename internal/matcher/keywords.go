package matcher

import (
	"strings"

	"salvo-backend/internal/textnorm"
)

// keywordGroup maps a canonical category tag to the words people use for it.
type keywordGroup struct {
	tag      string
	synonyms []string
}

// keywordTable is scanned in order; several tags may match one text.
// Synonyms are folded when the package loads.
var keywordTable = foldTable([]keywordGroup{
	{"pizza", []string{"pizza", "pizzaria"}},
	{"farmacia", []string{"farmacia", "farmácia", "remedio", "remédio", "medicamento"}},
	{"mercado", []string{"mercado", "supermercado", "compras"}},
	{"posto", []string{"posto", "gasolina", "combustivel", "combustível"}},
	{"padaria", []string{"padaria", "pão", "pao"}},
	{"restaurante", []string{"restaurante", "comida", "almoço", "jantar"}},
	{"lanchonete", []string{"lanchonete", "lanche", "sanduiche", "sanduíche"}},
	{"barbearia", []string{"barbearia", "cabelo", "barba"}},
	{"salao", []string{"salao", "salão", "beleza", "manicure"}},
	{"oficina", []string{"oficina", "mecanica", "mecânica", "carro", "auto"}},
})

const maxAdHocKeywords = 3

func foldTable(groups []keywordGroup) []keywordGroup {
	out := make([]keywordGroup, 0, len(groups))
	for _, g := range groups {
		seen := map[string]struct{}{}
		folded := make([]string, 0, len(g.synonyms))
		for _, s := range g.synonyms {
			f := textnorm.Fold(s)
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			folded = append(folded, f)
		}
		out = append(out, keywordGroup{tag: g.tag, synonyms: folded})
	}
	return out
}

// ExtractKeywords turns free text into relevance keywords. Every canonical
// category with a synonym occurring anywhere in the text contributes its
// tag. If none does, the first three words longer than two characters are
// used as-is.
func ExtractKeywords(text string) []string {
	normalized := textnorm.Fold(text)

	var keywords []string
	for _, g := range keywordTable {
		for _, syn := range g.synonyms {
			if strings.Contains(normalized, syn) {
				keywords = append(keywords, g.tag)
				break
			}
		}
	}
	if len(keywords) > 0 {
		return keywords
	}

	for _, w := range strings.Fields(normalized) {
		if textnorm.RuneLen(w) > 2 {
			keywords = append(keywords, w)
			if len(keywords) == maxAdHocKeywords {
				break
			}
		}
	}
	return keywords
}

// Relevance scores rec-like fields against keywords: 2 for each keyword
// found in the category, otherwise 1 if found in the name. With no
// keywords everything is equally relevant (1).
func Relevance(name, category string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 1.0
	}
	name = textnorm.Fold(name)
	category = textnorm.Fold(category)

	score := 0.0
	for _, kw := range keywords {
		kw = textnorm.Fold(kw)
		switch {
		case kw == "":
		case strings.Contains(category, kw):
			score += 2.0
		case strings.Contains(name, kw):
			score += 1.0
		}
	}
	return score
}
