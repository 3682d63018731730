package core

const (
	AppName    = "LembreMed"
	AppVersion = "0.1.0"

	// CollectionMedications is the durable store collection holding one
	// document per medication record.
	CollectionMedications = "medicamentos"
)

// Category tags a recorded conversation turn with the flow that produced it.
type Category string

const (
	CategoryCreate   Category = "criar"
	CategoryEdit     Category = "editar"
	CategoryQuestion Category = "pergunta"
	CategoryGreeting Category = "cumprimento"
	CategoryOther    Category = "outro"
)

// ConversationTurn is one completed user-message/assistant-reply exchange.
// Turns are never mutated after creation; the memory store evicts the oldest
// when its cap is reached.
type ConversationTurn struct {
	ID                string   `json:"id"`
	UserMessage       string   `json:"mensagem"`
	AssistantReply    string   `json:"resposta"`
	Timestamp         int64    `json:"timestamp"`
	Category          Category `json:"tipo"`
	MentionedEntities []string `json:"medicamentosMencionados,omitempty"`
	ContextSummary    string   `json:"contexto,omitempty"`
}

// UserPreferences accumulates the entities a user references most often.
// Every list is capped with FIFO eviction at insert time.
type UserPreferences struct {
	FavoriteMedications []string `json:"medicamentosFavoritos"`
	PreferredTimes      []string `json:"horariosPreferidos"`
	FrequencyTypes      []string `json:"tiposFrequencia"`
	PreferredColors     []string `json:"coresPreferidas"`
	LastActivity        int64    `json:"ultimaAtividade"`
}

type FrequencyType string

const (
	FrequencyDaily  FrequencyType = "diaria"
	FrequencyHourly FrequencyType = "horas"
	FrequencyWeekly FrequencyType = "semana"
)

// MedicationRecord is the durable medication entity. The field tags mirror
// the document layout in the durable store; weekdays are 0-6 with 0=Sunday.
type MedicationRecord struct {
	ID                string        `json:"id"`
	Title             string        `json:"titulo"`
	StartDateTime     string        `json:"dataHoraInicio"`
	FrequencyType     FrequencyType `json:"frequenciaTipo"`
	FrequencyQuantity int           `json:"frequenciaQuantidade"`
	SelectedWeekdays  []int         `json:"diasSemanaSelecionados"`
	Color             string        `json:"cor"`
	OwnerUserID       string        `json:"userId"`
}

// Reminder is the denormalized mirror entry kept in local storage for fast
// reads. It must stay consistent with the durable store after every create
// and edit.
type Reminder struct {
	ID                string        `json:"id"`
	Title             string        `json:"titulo"`
	StartDateTime     string        `json:"dataHoraInicio"`
	FrequencyType     FrequencyType `json:"frequenciaTipo"`
	FrequencyQuantity int           `json:"frequenciaQuantidade"`
	SelectedWeekdays  []int         `json:"diasSemanaSelecionados"`
}

// UserData is the fetched summary of a user's medication set, memoized in the
// ephemeral cache.
type UserData struct {
	UserID           string             `json:"userId"`
	Medications      []MedicationRecord `json:"medicamentos"`
	TotalMedications int                `json:"totalMedicamentos"`
}
