// Package intent decides what a chat message is asking for: a greeting, a
// business search, a registration request or help.
package intent

import (
	"github.com/rs/zerolog"

	"salvo-backend/internal/model"
	"salvo-backend/internal/textnorm"
)

const maxSearchTerms = 5

// Classifier wraps Classify with debug tracing.
type Classifier struct {
	log zerolog.Logger
}

// NewClassifier creates a Classifier logging to log.
func NewClassifier(log zerolog.Logger) *Classifier {
	return &Classifier{log: log}
}

// Classify returns the intent of text. Evaluation order is fixed and the
// first match wins: greeting, register, help, search. Anything else is
// treated as a search, except empty input which is IntentUnknown.
func (c *Classifier) Classify(text string) model.Intent {
	in, matched := classify(text)
	c.log.Debug().
		Str("intent", string(in.Kind)).
		Bool("pattern_matched", matched).
		Strs("keywords", in.Keywords).
		Msg("message classified")
	return in
}

// Classify is the logger-free form of Classifier.Classify.
func Classify(text string) model.Intent {
	in, _ := classify(text)
	return in
}

// classify also reports whether a pattern matched, false meaning the
// search-first default was applied.
func classify(text string) (model.Intent, bool) {
	folded := textnorm.Fold(text)
	if folded == "" {
		return model.Intent{Kind: model.IntentUnknown}, false
	}

	switch {
	case matchesAny(folded, greetingPatterns):
		return model.Intent{Kind: model.IntentGreeting}, true
	case matchesAny(folded, registerPatterns):
		return model.Intent{Kind: model.IntentRegister}, true
	case matchesAny(folded, helpPatterns):
		return model.Intent{Kind: model.IntentHelp}, true
	}

	search := model.Intent{Kind: model.IntentSearch, Keywords: ExtractSearchTerms(text)}
	return search, matchesAny(folded, searchPatterns)
}

// ExtractSearchTerms returns up to five meaningful words of text, folded,
// in order of first occurrence, without stop words or words of two
// characters or fewer.
func ExtractSearchTerms(text string) []string {
	words := textnorm.Words(textnorm.Fold(text))

	terms := make([]string, 0, maxSearchTerms)
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if textnorm.RuneLen(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
		if len(terms) == maxSearchTerms {
			break
		}
	}
	return terms
}
