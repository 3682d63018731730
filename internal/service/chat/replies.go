package chat

import (
	"fmt"
	"strings"
	"time"
)

// Fixed user-facing strings. Every failure a user can see is one of these or
// an extractor-provided message; raw errors never cross the transport
// boundary.
const (
	apologyReply = "Desculpe, ocorreu um erro ao processar sua mensagem. Tente novamente."

	webSearchFallback = "Desculpe, não consegui acessar informações atualizadas. Recomendo consultar um médico ou farmacêutico para informações precisas."

	localDataFallback = "Não consegui processar os dados locais."

	createFallback = "Não consegui criar o medicamento."
	editFallback   = "Não consegui editar o medicamento."

	// additionalInfoSeparator joins the locally-grounded and the
	// general-knowledge halves of an "ambos" answer.
	additionalInfoSeparator = "\n\n---\n\n📚 Informações adicionais:\n"

	brazilianDateTime = "02/01/2006 15:04"
	brazilianTime     = "15:04"
)

// greetingKeywords short-circuit the whole pipeline when matched as a whole
// word against the normalized message.
var greetingKeywords = []string{
	"olá", "oi", "ola", "bom dia", "boa tarde", "boa noite",
	"hello", "hi", "hey", "e aí", "eai",
}

var greetingReplies = []string{
	"Olá! Como posso ajudá-lo hoje?",
	"Oi! Em que posso ser útil?",
	"Bom dia! Como posso ajudá-lo?",
	"Olá! Estou aqui para ajudar. O que você precisa?",
	"Oi! Como posso ser útil hoje?",
	"E aí! Como posso te ajudar?",
	"Boa tarde! Em que posso ser útil?",
	"Boa noite! Como posso ajudá-lo?",
}

// medicationAwareGreetings replaces the generic pool when the context summary
// suggests the user already has medications registered.
var medicationAwareGreetings = []string{
	"Olá! Vejo que você tem medicamentos cadastrados. Como posso ajudá-lo hoje?",
	"Oi! Posso ajudar com seus medicamentos ou adicionar novos. O que precisa?",
	"Bom dia! Como posso ajudar com seus lembretes de medicamentos?",
}

var greetingPrefixes = []string{
	"Olá! ", "Oi! ", "Bom dia! ", "Boa tarde! ", "Boa noite! ", "E aí! ",
}

func buildCreateConfirmation(p MedicationPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Medicamento %q adicionado com sucesso!\n\n", p.Title)
	b.WriteString("📋 Detalhes:\n")
	fmt.Fprintf(&b, "• Nome: %s\n", p.Title)
	fmt.Fprintf(&b, "• Frequência: %dx %s\n", p.FrequencyQuantity, p.FrequencyType)
	fmt.Fprintf(&b, "• Início: %s\n\n", formatBrazilianDateTime(p.StartDateTime))
	b.WriteString("O medicamento foi salvo e você receberá lembretes conforme configurado.")
	return b.String()
}

// buildEditConfirmation enumerates only the fields present in the sparse
// payload.
func buildEditConfirmation(p MedicationPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Medicamento %q editado com sucesso!\n\n", p.Title)
	b.WriteString("📋 Alterações aplicadas:\n")

	if p.Title != "" {
		fmt.Fprintf(&b, "• Nome: %s\n", p.Title)
	}
	if p.FrequencyQuantity > 0 && p.FrequencyType != "" {
		fmt.Fprintf(&b, "• Frequência: %dx %s\n", p.FrequencyQuantity, p.FrequencyType)
	}
	if p.StartDateTime != "" {
		fmt.Fprintf(&b, "• Início: %s\n", formatBrazilianDateTime(p.StartDateTime))
	}
	if p.Color != "" {
		fmt.Fprintf(&b, "• Cor: %s\n", p.Color)
	}

	b.WriteString("\nO medicamento foi atualizado e você receberá lembretes conforme a nova configuração.")
	return b.String()
}

func formatBrazilianDateTime(iso string) string {
	t, err := parseDateTime(iso)
	if err != nil {
		return iso
	}
	return t.Format(brazilianDateTime)
}

// formatTimeOfDay extracts the HH:MM component fed into the preference
// accumulator. Empty when the start time is absent or unparseable.
func formatTimeOfDay(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := parseDateTime(iso)
	if err != nil {
		return ""
	}
	return t.Format(brazilianTime)
}

func parseDateTime(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
