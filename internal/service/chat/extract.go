package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/lembremed/lembremed/internal/core"
	"github.com/lembremed/lembremed/pkg/cache"
	"github.com/lembremed/lembremed/pkg/log"
)

// Outcome is the closed set of extractor results.
type Outcome int

const (
	// OutcomeSuccess carries a structured medication payload.
	OutcomeSuccess Outcome = iota
	// OutcomeNeedInfo asks the user for more details.
	OutcomeNeedInfo
	// OutcomeNotFound reports that the referenced medication does not
	// exist (edit only).
	OutcomeNotFound
	// OutcomeError reports an unusable backend reply. It never crosses the
	// extractor as a raised error.
	OutcomeError
)

// MedicationPayload is the structured result of a successful extraction. For
// edits the zero value of a field means "leave untouched".
type MedicationPayload struct {
	MedicationID      string
	Title             string
	FrequencyType     core.FrequencyType
	FrequencyQuantity int
	SelectedWeekdays  []int
	StartDateTime     string
	Color             string
	Confirmation      string
}

// Extraction is the tagged extractor result: Payload is meaningful only for
// OutcomeSuccess, Message for everything else.
type Extraction struct {
	Outcome Outcome
	Payload MedicationPayload
	Message string
}

// Raw reply shapes the backend is instructed to produce.
const (
	actionCreate   = "criar_medicamento"
	actionEdit     = "editar_medicamento"
	actionNeedInfo = "solicitar_info"
	actionNotFound = "medicamento_nao_encontrado"
)

type rawExtraction struct {
	Action            string `json:"acao"`
	MedicationID      string `json:"medicamentoId"`
	Title             string `json:"titulo"`
	FrequencyType     string `json:"frequenciaTipo"`
	FrequencyQuantity int    `json:"frequenciaQuantidade"`
	SelectedWeekdays  []int  `json:"diasSemanaSelecionados"`
	StartDateTime     string `json:"dataHoraInicio"`
	Color             string `json:"cor"`
	Confirmation      string `json:"confirmacao"`
	Message           string `json:"mensagem"`
}

// extractCreate turns a free-text message into a create payload. The current
// timestamp is injected into the prompt and enforced afterwards, so the
// backend can never invent its own "now".
func (c *Composer) extractCreate(ctx context.Context, message string) Extraction {
	key := cache.Key("medicamento", message)
	if cached, ok := c.cache.Get(key); ok {
		if value, ok := cached.(Extraction); ok {
			return value
		}
	}

	nowISO := c.now().Format(time.RFC3339)
	raw, err := c.gen.Generate(ctx, buildCreateExtractionPrompt(message, nowISO))
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("create extraction failed")
		return Extraction{Outcome: OutcomeError, Message: "Não foi possível processar a solicitação de medicamento."}
	}

	result := decodeExtraction(raw, actionCreate, nowISO)
	if result.Outcome == OutcomeSuccess {
		applyCreateDefaults(&result.Payload, nowISO)
	}
	// A parse failure is transient; caching it would lock this message out
	// for the whole TTL.
	if result.Outcome != OutcomeError {
		c.cache.Set(key, result)
	}
	return result
}

// extractEdit identifies the target medication and the requested changes,
// given the user's existing records.
func (c *Composer) extractEdit(ctx context.Context, message string, medications []core.MedicationRecord) Extraction {
	key := cache.Key("editar_medicamento", message)
	if cached, ok := c.cache.Get(key); ok {
		if value, ok := cached.(Extraction); ok {
			return value
		}
	}

	nowISO := c.now().Format(time.RFC3339)
	raw, err := c.gen.Generate(ctx, buildEditExtractionPrompt(message, nowISO, medications))
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("edit extraction failed")
		return Extraction{Outcome: OutcomeError, Message: "Não foi possível processar a solicitação de edição."}
	}

	result := decodeExtraction(raw, actionEdit, nowISO)
	if result.Outcome != OutcomeError {
		c.cache.Set(key, result)
	}
	return result
}

// decodeExtraction validates the raw backend reply at the boundary and maps
// it into the closed Extraction type. An unparseable reply becomes an
// OutcomeError, never a raised error.
func decodeExtraction(raw, expectedAction, nowISO string) Extraction {
	cleaned := stripCodeFences(raw)

	var parsed rawExtraction
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		message := "Não foi possível processar a solicitação de medicamento."
		if expectedAction == actionEdit {
			message = "Não foi possível processar a solicitação de edição."
		}
		return Extraction{Outcome: OutcomeError, Message: message}
	}

	switch parsed.Action {
	case expectedAction:
		payload := MedicationPayload{
			MedicationID:      parsed.MedicationID,
			Title:             parsed.Title,
			FrequencyType:     core.FrequencyType(parsed.FrequencyType),
			FrequencyQuantity: parsed.FrequencyQuantity,
			SelectedWeekdays:  parsed.SelectedWeekdays,
			StartDateTime:     normalizeStartDateTime(parsed.StartDateTime, nowISO),
			Color:             parsed.Color,
			Confirmation:      parsed.Confirmation,
		}
		return Extraction{Outcome: OutcomeSuccess, Payload: payload}
	case actionNeedInfo:
		return Extraction{Outcome: OutcomeNeedInfo, Message: parsed.Message}
	case actionNotFound:
		return Extraction{Outcome: OutcomeNotFound, Message: parsed.Message}
	default:
		return Extraction{Outcome: OutcomeError, Message: parsed.Message}
	}
}

// normalizeStartDateTime overwrites an invalid date with the injected current
// timestamp. A payload never leaves the extractor with an unparseable start
// time; absence is preserved for edits.
func normalizeStartDateTime(value, nowISO string) string {
	if value == "" {
		return ""
	}
	if _, err := parseDateTime(value); err != nil {
		return nowISO
	}
	return value
}

func applyCreateDefaults(p *MedicationPayload, nowISO string) {
	if p.FrequencyType == "" {
		p.FrequencyType = core.FrequencyDaily
	}
	if p.FrequencyQuantity <= 0 {
		p.FrequencyQuantity = 1
	}
	if len(p.SelectedWeekdays) == 0 {
		p.SelectedWeekdays = []int{1, 2, 3, 4, 5}
	}
	if p.Color == "" {
		p.Color = "#E3FFE3"
	}
	if p.StartDateTime == "" {
		p.StartDateTime = nowISO
	}
}

func stripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
