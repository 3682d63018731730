package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/lembremed/lembremed/internal/core"
)

// maxUserDataTokens bounds how much of the serialized medication set is
// inlined into a prompt. A user with a long history must not blow up the
// request.
const maxUserDataTokens = 2000

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func tokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		tk, _ = tiktoken.GetEncoding("cl100k_base")
	})
	return tk
}

func trimToTokens(text string, max int) string {
	enc := tokenizer()
	if enc == nil {
		return text
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= max {
		return text
	}
	return enc.Decode(ids[:max]) + "…"
}

func formatUserData(data *core.UserData) string {
	if data == nil {
		return "Nenhum dado encontrado"
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "Nenhum dado encontrado"
	}
	return trimToTokens(string(raw), maxUserDataTokens)
}

func buildCreateIntentPrompt(message string) string {
	return fmt.Sprintf(`Analise a mensagem do usuário e determine se ele quer ADICIONAR/CRIAR um novo medicamento.

Mensagem: %q

Responda APENAS com "SIM" ou "NÃO".`, message)
}

func buildEditIntentPrompt(message string) string {
	return fmt.Sprintf(`Analise a mensagem do usuário e determine se ele quer EDITAR/MODIFICAR um medicamento existente.

Mensagem: %q

Responda APENAS com "SIM" ou "NÃO".`, message)
}

func buildStrategyPrompt(message string, data *core.UserData) string {
	return fmt.Sprintf(`Analise a pergunta do usuário e determine a melhor estratégia de resposta.

Pergunta: %q
Dados do usuário: %s

Responda APENAS com uma das opções:
1. "dados_locais"
2. "pesquisa_web"
3. "ambos"`, message, formatUserData(data))
}

func buildCreateExtractionPrompt(message, nowISO string) string {
	return fmt.Sprintf(`Analise a mensagem do usuário e extraia informações sobre um medicamento que ele quer adicionar.
Responda APENAS em JSON válido com as seguintes informações:

Mensagem do usuário: %q
Data atual: %s

Extraia e retorne em JSON:
{
  "acao": "criar_medicamento",
  "titulo": "nome do medicamento",
  "frequenciaTipo": "diaria|horas|semana",
  "frequenciaQuantidade": número,
  "diasSemanaSelecionados": [array de números 0-6, onde 0=domingo],
  "dataHoraInicio": "data e hora no formato ISO",
  "cor": "cor em hexadecimal",
  "confirmacao": "mensagem de confirmação para o usuário"
}

Se não conseguir extrair informações suficientes, retorne:
{
  "acao": "solicitar_info",
  "mensagem": "mensagem pedindo mais informações"
}

Use valores padrão sensatos quando não especificado:
- frequenciaTipo: "diaria"
- frequenciaQuantidade: 1
- diasSemanaSelecionados: [1,2,3,4,5] (segunda a sexta)
- dataHoraInicio: USE EXATAMENTE a data atual fornecida (%s)
- cor: "#E3FFE3"`, message, nowISO, nowISO)
}

func buildEditExtractionPrompt(message, nowISO string, medications []core.MedicationRecord) string {
	if medications == nil {
		medications = []core.MedicationRecord{}
	}
	meds, err := json.MarshalIndent(medications, "", "  ")
	if err != nil {
		meds = []byte("[]")
	}

	return fmt.Sprintf(`Analise a mensagem do usuário e identifique qual medicamento ele quer editar e quais alterações fazer.

Mensagem do usuário: %q
Data atual: %s
Medicamentos do usuário: %s

Responda APENAS em JSON válido com as seguintes informações:

{
  "acao": "editar_medicamento",
  "medicamentoId": "id_do_medicamento_encontrado",
  "titulo": "novo_nome_ou_nome_atual",
  "frequenciaTipo": "diaria|horas|semana",
  "frequenciaQuantidade": número,
  "diasSemanaSelecionados": [array de números 0-6, onde 0=domingo],
  "dataHoraInicio": "data e hora no formato ISO",
  "cor": "cor em hexadecimal",
  "confirmacao": "mensagem de confirmação para o usuário"
}

Se não conseguir identificar o medicamento ou as alterações, retorne:
{
  "acao": "solicitar_info",
  "mensagem": "mensagem pedindo mais informações"
}

Se não encontrar o medicamento mencionado, retorne:
{
  "acao": "medicamento_nao_encontrado",
  "mensagem": "mensagem informando que o medicamento não foi encontrado"
}`, message, nowISO, trimToTokens(string(meds), maxUserDataTokens))
}

func buildContextPrompt(message string, history []core.ConversationTurn, prefs core.UserPreferences) string {
	var lines []string
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("- %s: %q → %q", turn.Category, turn.UserMessage, turn.AssistantReply))
	}

	return fmt.Sprintf(`Analise o contexto da conversa atual baseado no histórico e preferências do usuário.

Mensagem atual: %q

Histórico recente (últimas %d conversas):
%s

Preferências do usuário:
- Medicamentos favoritos: %s
- Horários preferidos: %s
- Tipos de frequência: %s
- Cores preferidas: %s

Responda com um resumo do contexto em 1-2 frases, incluindo:
- Padrões identificados nas conversas
- Preferências relevantes para a mensagem atual
- Sugestões de personalização baseadas no histórico

Seja conciso e focado no que é relevante para responder à mensagem atual.`,
		message, len(history), strings.Join(lines, "\n"),
		joinOrNone(prefs.FavoriteMedications),
		joinOrNone(prefs.PreferredTimes),
		joinOrNone(prefs.FrequencyTypes),
		joinOrNone(prefs.PreferredColors),
	)
}

func buildLocalAnswerPrompt(message, contextSummary string, data *core.UserData) string {
	return fmt.Sprintf(`Você é um assistente médico virtual. Responda baseado nos dados do usuário e no contexto.

Dados do usuário:
%s

Contexto da conversa:
%s

Pergunta: %q

Instruções:
- Use as informações dos dados fornecidos
- Considere o contexto da conversa para personalizar a resposta
- Se não houver dados suficientes, diga que não tem informações específicas
- Seja útil e educativo
- Responda em português brasileiro`, formatUserData(data), contextSummary, message)
}

// buildLocalDataPrompt is the context-free variant used for the local half of
// an "ambos" answer.
func buildLocalDataPrompt(message string, data *core.UserData) string {
	return fmt.Sprintf(`Você é um assistente médico virtual. Responda baseado nos dados do usuário fornecidos.

Dados do usuário:
%s

Pergunta: %q

Instruções:
- Use as informações dos dados fornecidos
- Seja específico sobre os medicamentos do usuário
- Seja útil e educativo
- Responda em português brasileiro`, formatUserData(data), message)
}

func buildWebAnswerPrompt(question string) string {
	return fmt.Sprintf(`Você é um assistente médico especializado. O usuário fez uma pergunta que requer informações médicas gerais.

Pergunta do usuário: %q

Use seu conhecimento médico para responder de forma precisa e útil.
IMPORTANTE:
- Sempre mencione que é importante consultar um médico ou farmacêutico
- Seja claro sobre limitações e quando procurar ajuda médica
- Responda em português brasileiro
- Mantenha tom profissional mas acessível`, question)
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "Nenhum"
	}
	return strings.Join(list, ", ")
}
