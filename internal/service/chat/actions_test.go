package chat

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lembremed/lembremed/internal/core"
	"github.com/lembremed/lembremed/internal/service/memory"
	"github.com/lembremed/lembremed/pkg/cache"
)

func signedOutComposer() (*Composer, *fakeDocs, *fakeKV) {
	docs := newFakeDocs()
	kv := newFakeKV()
	auth := &fakeAuth{user: nil}
	c := NewComposer(nil, docs, kv, auth, memory.NewStore(kv, auth), memory.NewPrefs(kv, auth), cache.New(cache.DefaultTTL))
	return c, docs, kv
}

func TestExecuteCreateRequiresAuth(t *testing.T) {
	c, docs, _ := signedOutComposer()

	_, err := c.executeCreate(context.Background(), MedicationPayload{Title: "Dipirona"})

	assert.ErrorIs(t, err, core.ErrNotAuthenticated)
	assert.Empty(t, docs.docs, "nothing may be written without a signed-in user")
}

func TestExecuteEditRequiresAuth(t *testing.T) {
	c, _, _ := signedOutComposer()

	err := c.executeEdit(context.Background(), MedicationPayload{MedicationID: "doc-1"})

	assert.ErrorIs(t, err, core.ErrNotAuthenticated)
}

func TestExecuteCreateWritesMirrorAndInvalidatesCache(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	// A stale cached summary must not survive the create.
	env.composer.cache.Set(cache.UserDataKey(testUserID), &core.UserData{UserID: testUserID})

	id, err := env.composer.executeCreate(ctx, MedicationPayload{
		Title:             "Dipirona",
		StartDateTime:     "2025-03-10T08:00:00Z",
		FrequencyType:     core.FrequencyHourly,
		FrequencyQuantity: 8,
		SelectedWeekdays:  []int{1, 2, 3, 4, 5},
		Color:             "#E3FFE3",
	})
	require.NoError(t, err)
	require.Equal(t, "doc-1", id)

	raw, ok, err := env.kv.Get(ctx, remindersKey)
	require.NoError(t, err)
	require.True(t, ok)
	var reminders []core.Reminder
	require.NoError(t, json.Unmarshal([]byte(raw), &reminders))
	require.Len(t, reminders, 1)
	assert.Equal(t, id, reminders[0].ID)
	assert.Equal(t, "Dipirona", reminders[0].Title)

	_, found := env.composer.cache.Get(cache.UserDataKey(testUserID))
	assert.False(t, found, "cached user data must be dropped after a write")
}

func TestExecuteEditAppliesSparsePatch(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	id, err := env.docs.Add(ctx, core.CollectionMedications, map[string]any{
		"titulo":         "Dipirona",
		"cor":            "#E3FFE3",
		"dataHoraInicio": "2025-03-10T08:00:00Z",
		"userId":         testUserID,
	})
	require.NoError(t, err)

	err = env.composer.executeEdit(ctx, MedicationPayload{
		MedicationID: id,
		Color:        "#FFE3E3",
	})
	require.NoError(t, err)

	doc := env.docs.docs[id]
	assert.Equal(t, "#FFE3E3", doc.Fields["cor"])
	assert.Equal(t, "Dipirona", doc.Fields["titulo"])
	assert.Equal(t, "2025-03-10T08:00:00Z", doc.Fields["dataHoraInicio"])
}

func TestExecuteEditPatchesMirrorEntry(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	id, err := env.composer.executeCreate(ctx, MedicationPayload{
		Title:             "Dipirona",
		StartDateTime:     "2025-03-10T08:00:00Z",
		FrequencyType:     core.FrequencyDaily,
		FrequencyQuantity: 1,
	})
	require.NoError(t, err)

	err = env.composer.executeEdit(ctx, MedicationPayload{
		MedicationID:      id,
		FrequencyType:     core.FrequencyHourly,
		FrequencyQuantity: 6,
	})
	require.NoError(t, err)

	raw, _, err := env.kv.Get(ctx, remindersKey)
	require.NoError(t, err)
	var reminders []core.Reminder
	require.NoError(t, json.Unmarshal([]byte(raw), &reminders))
	require.Len(t, reminders, 1)
	assert.Equal(t, core.FrequencyHourly, reminders[0].FrequencyType)
	assert.Equal(t, 6, reminders[0].FrequencyQuantity)
	assert.Equal(t, "Dipirona", reminders[0].Title, "fields absent from the patch stay put")
}

func TestExecuteEditToleratesMissingMirrorEntry(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	id, err := env.docs.Add(ctx, core.CollectionMedications, map[string]any{
		"titulo": "Dipirona",
		"userId": testUserID,
	})
	require.NoError(t, err)

	// No mirror list exists at all; the durable update must still land.
	err = env.composer.executeEdit(ctx, MedicationPayload{MedicationID: id, Title: "Dipirona 500mg"})

	require.NoError(t, err)
	assert.Equal(t, "Dipirona 500mg", env.docs.docs[id].Fields["titulo"])
}

func TestFetchUserDataMemoizes(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	_, err := env.docs.Add(ctx, core.CollectionMedications, map[string]any{
		"titulo": "Dipirona",
		"userId": testUserID,
	})
	require.NoError(t, err)

	first, err := env.composer.fetchUserData(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, first.TotalMedications)
	assert.Equal(t, "Dipirona", first.Medications[0].Title)

	// A second document added behind the cache's back stays invisible until
	// invalidation.
	_, err = env.docs.Add(ctx, core.CollectionMedications, map[string]any{
		"titulo": "Paracetamol",
		"userId": testUserID,
	})
	require.NoError(t, err)

	second, err := env.composer.fetchUserData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalMedications)

	env.composer.InvalidateUser(testUserID)

	third, err := env.composer.fetchUserData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, third.TotalMedications)
}

func TestFetchUserDataSignedOut(t *testing.T) {
	c, _, _ := signedOutComposer()

	data, err := c.fetchUserData(context.Background())

	require.NoError(t, err)
	assert.Nil(t, data)
}
