package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lembremed/lembremed/internal/core"
)

func TestBuildEditExtractionPromptNilMedications(t *testing.T) {
	prompt := buildEditExtractionPrompt("muda a cor", testNowISO, nil)

	assert.Contains(t, prompt, "Medicamentos do usuário: []")
	assert.NotContains(t, prompt, "Medicamentos do usuário: null")
}

func TestBuildLocalDataPromptOmitsContext(t *testing.T) {
	data := &core.UserData{UserID: "u1", TotalMedications: 1}

	prompt := buildLocalDataPrompt("para que serve dipirona?", data)

	assert.Contains(t, prompt, "Seja específico sobre os medicamentos do usuário")
	assert.NotContains(t, prompt, "Contexto da conversa")
}

func TestFormatUserDataNil(t *testing.T) {
	assert.Equal(t, "Nenhum dado encontrado", formatUserData(nil))
}
