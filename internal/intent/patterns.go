package intent

import "regexp"

// Patterns are matched against folded text (lower-case, no diacritics),
// so every variant is written without accents.
var (
	greetingPatterns = compile(
		`\b(oi|ola|hey|ei|bom dia|boa tarde|boa noite)\b`,
		`\b(tchau|ate logo|falou|obrigad[ao])\b`,
	)

	registerPatterns = compile(
		`\b(cadastr(o|a|e|i|ar)|registr(o|a|e|i|ar)|anunci(o|a|e|i|ar))\b`,
		`\b(meu negocio|minha empresa|minha loja)\b`,
		`\b(divulgar|promover|vender)\b`,
	)

	helpPatterns = compile(
		`\b(ajuda|help|como|tutorial|duvida)\b`,
		`\b(nao entendi|nao sei|me explica)\b`,
	)

	searchPatterns = compile(
		`\b(procur(o|a|e|i|ar)|quero|preciso|busco|onde)\b`,
		`\b(pizza|farmacia|mercado|posto|padaria|restaurante)\b`,
		`\b(comida|remedio|gasolina|pao|lanche)\b`,
	)
)

// stopWords are dropped by ExtractSearchTerms: articles, prepositions,
// pronouns and the filler verbs people use to ask for something.
var stopWords = map[string]struct{}{
	"o": {}, "a": {}, "os": {}, "as": {}, "um": {}, "uma": {},
	"de": {}, "do": {}, "da": {}, "dos": {}, "das": {},
	"em": {}, "no": {}, "na": {}, "nos": {}, "nas": {},
	"para": {}, "por": {}, "com": {}, "sem": {},
	"que": {}, "qual": {}, "quais": {}, "onde": {}, "como": {}, "quando": {}, "porque": {},
	"eu": {}, "voce": {}, "ele": {}, "ela": {}, "voces": {}, "eles": {}, "elas": {},
	"meu": {}, "minha": {}, "seu": {}, "sua": {}, "nosso": {}, "nossa": {},
	"procuro": {}, "quero": {}, "preciso": {}, "busco": {}, "procurar": {}, "encontrar": {},
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
