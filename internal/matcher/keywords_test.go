package matcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"salvo-backend/internal/model"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"synonym", "procuro remedio", []string{"farmacia"}},
		{"accented synonym", "Farmácia aberta", []string{"farmacia"}},
		{"several categories", "pizza e gasolina", []string{"pizza", "posto"}},
		{"table order", "gasolina e pizza", []string{"pizza", "posto"}},
		{"bread", "pão francês", []string{"padaria"}},
		{"fallback words", "sorvete de morango gelado agora", []string{"sorvete", "morango", "gelado"}},
		{"fallback short", "oi", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeywords(tt.text))
		})
	}
}

// Synonym matching is a plain substring test, so words that merely contain
// a synonym also count. "automático" hits "auto" (oficina).
func TestExtractKeywords_SubstringMatching(t *testing.T) {
	assert.Equal(t, []string{"oficina"}, ExtractKeywords("câmbio automático"))
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		name     string
		bizName  string
		category string
		keywords []string
		want     float64
	}{
		{"category hit", "Drogaria Vida", "Farmácia", []string{"farmacia"}, 2},
		{"name hit", "Pizza Express", "Lanchonete", []string{"pizza"}, 1},
		{"category wins over name", "Pizzaria Pizza", "Pizzaria", []string{"pizza"}, 2},
		{"no hit", "Mercadinho", "Mercado", []string{"pizza"}, 0},
		{"sum", "Padaria Pizza", "Padaria", []string{"padaria", "pizza"}, 3},
		{"no keywords", "Qualquer", "Coisa", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Relevance(tt.bizName, tt.category, tt.keywords))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		q     model.SearchQuery
		field string
	}{
		{"ok", model.SearchQuery{Latitude: -23.5, Longitude: -46.6, RadiusKm: 2}, ""},
		{"ok zero", model.SearchQuery{}, ""},
		{"lat range", model.SearchQuery{Latitude: 91, Longitude: 0}, "lat"},
		{"lng range", model.SearchQuery{Latitude: 0, Longitude: -181}, "lng"},
		{"nan", model.SearchQuery{Latitude: math.NaN()}, "lat"},
		{"inf radius", model.SearchQuery{RadiusKm: math.Inf(1)}, "radius_km"},
		{"negative radius", model.SearchQuery{RadiusKm: -1}, "radius_km"},
		{"first non-finite field", model.SearchQuery{Latitude: math.NaN(), Longitude: math.Inf(-1), RadiusKm: math.NaN()}, "lat"},
		{"lng before radius", model.SearchQuery{Longitude: math.NaN(), RadiusKm: math.Inf(1)}, "lng"},
		{"too many keywords", model.SearchQuery{Keywords: []string{"a", "b", "c", "d", "e", "f"}}, "keywords"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.q)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			if assert.ErrorAs(t, err, &ve) {
				assert.Equal(t, tt.field, ve.Field)
			}
			assert.True(t, IsValidationError(err))
		})
	}
}
