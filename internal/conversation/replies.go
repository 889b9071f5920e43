package conversation

import (
	"fmt"
	"strings"

	"salvo-backend/internal/model"
)

// Button ids offered in the menu.
const (
	ButtonSearch   = "buscar"
	ButtonRegister = "cadastrar"
	ButtonHelp     = "ajuda"
)

var menuButtons = []model.Button{
	{ID: ButtonSearch, Title: "Buscar perto de mim"},
	{ID: ButtonRegister, Title: "Cadastrar negócio"},
	{ID: ButtonHelp, Title: "Ajuda"},
}

const (
	replyWelcome = "Olá! Eu sou o Salvô 👋\n" +
		"Encontro negócios perto de você. Diga o que procura (ex.: \"farmácia\", \"pizza\") " +
		"ou envie sua localização."

	replyHelp = "Como usar o Salvô:\n" +
		"1. Escreva o que procura, por exemplo \"quero uma pizza\".\n" +
		"2. Envie sua localização pelo 📎 > Localização.\n" +
		"Eu respondo com os negócios mais próximos."

	replyRegister = "Que bom que quer divulgar seu negócio! 🏪\n" +
		"Envie o nome, a categoria e o endereço do seu negócio e nossa equipe fará o cadastro."

	replyAskLocation = "Certo! Para encontrar o que fica perto de você, envie sua localização " +
		"pelo 📎 > Localização."

	replyNoResults = "Não encontrei nenhum negócio perto de você 😕\n" +
		"Tente outro termo ou envie uma localização diferente."

	replyUnsupported = "Ainda não entendo esse tipo de mensagem. Escreva o que procura ou envie sua localização."
)

// FormatDistance renders meters below 1 km and one-decimal kilometres above.
func FormatDistance(r model.MatchResult) string {
	if r.DistanceMeters < 1000 {
		return fmt.Sprintf("%d m", r.DistanceMeters)
	}
	return strings.Replace(fmt.Sprintf("%.1f km", r.DistanceKm), ".", ",", 1)
}

// FormatResults builds the reply listing results in order.
func FormatResults(results []model.MatchResult) string {
	if len(results) == 0 {
		return replyNoResults
	}

	var b strings.Builder
	b.WriteString("Encontrei estes negócios perto de você:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. *%s* (%s)\n", i+1, r.Name, FormatDistance(r))
		if r.Category != "" {
			fmt.Fprintf(&b, "   %s\n", r.Category)
		}
		if r.Address != "" {
			fmt.Fprintf(&b, "   📍 %s\n", r.Address)
		}
		phone := r.WhatsApp
		if phone == "" {
			phone = r.Phone
		}
		if phone != "" {
			fmt.Fprintf(&b, "   📞 %s\n", phone)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
