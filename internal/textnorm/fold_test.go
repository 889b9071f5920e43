package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Farmácia", "farmacia"},
		{"  PÃO de Açúcar ", "pao de acucar"},
		{"não entendi", "nao entendi"},
		{"", ""},
		{"pizza 🍕!", "pizza 🍕!"},
		{"Olá", "ola"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"oi", "bom", "dia"}, Words("oi, bom dia!"))
	assert.Equal(t, []string{"farmácia", "24h"}, Words("farmácia-24h"))
	assert.Empty(t, Words("  ?! 🍕 "))
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 3, RuneLen("pão"))
	assert.Equal(t, 0, RuneLen(""))
}
