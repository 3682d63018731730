package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lembremed/lembremed/internal/core"
)

const testNowISO = "2025-03-10T08:30:00Z"

func TestDecodeExtractionStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"acao\":\"criar_medicamento\",\"titulo\":\"Dipirona\"}\n```"

	got := decodeExtraction(raw, actionCreate, testNowISO)

	require.Equal(t, OutcomeSuccess, got.Outcome)
	assert.Equal(t, "Dipirona", got.Payload.Title)
}

func TestDecodeExtractionNeedInfo(t *testing.T) {
	raw := `{"acao":"solicitar_info","mensagem":"Qual o nome do medicamento?"}`

	got := decodeExtraction(raw, actionCreate, testNowISO)

	assert.Equal(t, OutcomeNeedInfo, got.Outcome)
	assert.Equal(t, "Qual o nome do medicamento?", got.Message)
}

func TestDecodeExtractionNotFound(t *testing.T) {
	raw := `{"acao":"medicamento_nao_encontrado","mensagem":"Medicamento não encontrado."}`

	got := decodeExtraction(raw, actionEdit, testNowISO)

	assert.Equal(t, OutcomeNotFound, got.Outcome)
}

func TestDecodeExtractionUnparseableBecomesError(t *testing.T) {
	got := decodeExtraction("desculpe, não entendi", actionCreate, testNowISO)

	assert.Equal(t, OutcomeError, got.Outcome)
	assert.Equal(t, "Não foi possível processar a solicitação de medicamento.", got.Message)

	got = decodeExtraction("desculpe, não entendi", actionEdit, testNowISO)
	assert.Equal(t, "Não foi possível processar a solicitação de edição.", got.Message)
}

func TestDecodeExtractionWrongActionBecomesError(t *testing.T) {
	raw := `{"acao":"criar_medicamento","titulo":"Dipirona"}`

	got := decodeExtraction(raw, actionEdit, testNowISO)

	assert.Equal(t, OutcomeError, got.Outcome)
}

func TestNormalizeStartDateTime(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"2025-03-10T08:00:00Z", "2025-03-10T08:00:00Z"},
		{"2025-03-10T08:00", "2025-03-10T08:00"},
		{"2025-03-10", "2025-03-10"},
		{"amanhã de manhã", testNowISO}, // unparseable collapses to now
		{"", ""},                        // absence preserved for sparse edits
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeStartDateTime(tt.value, testNowISO), "value %q", tt.value)
	}
}

func TestApplyCreateDefaults(t *testing.T) {
	p := MedicationPayload{Title: "Dipirona"}

	applyCreateDefaults(&p, testNowISO)

	assert.Equal(t, core.FrequencyDaily, p.FrequencyType)
	assert.Equal(t, 1, p.FrequencyQuantity)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, p.SelectedWeekdays)
	assert.Equal(t, "#E3FFE3", p.Color)
	assert.Equal(t, testNowISO, p.StartDateTime)
}

func TestApplyCreateDefaultsKeepsProvidedValues(t *testing.T) {
	p := MedicationPayload{
		Title:             "Dipirona",
		FrequencyType:     core.FrequencyHourly,
		FrequencyQuantity: 8,
		SelectedWeekdays:  []int{0, 6},
		StartDateTime:     "2025-03-11T10:00:00Z",
		Color:             "#FFE3E3",
	}

	applyCreateDefaults(&p, testNowISO)

	assert.Equal(t, core.FrequencyHourly, p.FrequencyType)
	assert.Equal(t, 8, p.FrequencyQuantity)
	assert.Equal(t, []int{0, 6}, p.SelectedWeekdays)
	assert.Equal(t, "2025-03-11T10:00:00Z", p.StartDateTime)
	assert.Equal(t, "#FFE3E3", p.Color)
}

func TestExtractCreateBackendErrorIsOutcome(t *testing.T) {
	env := newTestEnv(func(string) (string, error) { return "", errors.New("backend down") })

	got := env.composer.extractCreate(context.Background(), "adicionar dipirona")

	assert.Equal(t, OutcomeError, got.Outcome)
	assert.NotEmpty(t, got.Message)
}

func TestExtractCreateCachesResult(t *testing.T) {
	env := newTestEnv(func(string) (string, error) {
		return `{"acao":"criar_medicamento","titulo":"Dipirona"}`, nil
	})

	ctx := context.Background()
	first := env.composer.extractCreate(ctx, "adicionar dipirona")
	second := env.composer.extractCreate(ctx, "adicionar dipirona")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, env.gen.calls(createExtractMarker))
}

func TestExtractCreateDoesNotCacheParseFailure(t *testing.T) {
	replies := []string{
		"desculpe, não entendi",
		`{"acao":"criar_medicamento","titulo":"Dipirona"}`,
	}
	call := 0
	env := newTestEnv(func(string) (string, error) {
		reply := replies[call]
		call++
		return reply, nil
	})

	ctx := context.Background()
	first := env.composer.extractCreate(ctx, "adicionar dipirona")
	require.Equal(t, OutcomeError, first.Outcome)

	// Retrying the same message must hit the backend again, not the cache.
	second := env.composer.extractCreate(ctx, "adicionar dipirona")
	assert.Equal(t, OutcomeSuccess, second.Outcome)
	assert.Equal(t, "Dipirona", second.Payload.Title)
	assert.Equal(t, 2, env.gen.calls(createExtractMarker))
}

func TestExtractEditDoesNotCacheParseFailure(t *testing.T) {
	replies := []string{
		"```json\n{quebrado",
		`{"acao":"editar_medicamento","medicamentoId":"doc-1","cor":"#FFE3E3"}`,
	}
	call := 0
	env := newTestEnv(func(string) (string, error) {
		reply := replies[call]
		call++
		return reply, nil
	})

	ctx := context.Background()
	first := env.composer.extractEdit(ctx, "muda a cor", nil)
	require.Equal(t, OutcomeError, first.Outcome)

	second := env.composer.extractEdit(ctx, "muda a cor", nil)
	assert.Equal(t, OutcomeSuccess, second.Outcome)
	assert.Equal(t, 2, env.gen.calls(editExtractMarker))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
}
