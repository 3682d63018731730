package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lembremed/lembremed/internal/core"
	"github.com/lembremed/lembremed/pkg/cache"
	"github.com/lembremed/lembremed/pkg/log"
)

// remindersKey holds the denormalized mirror list in local storage.
const remindersKey = "lembretes"

// executeCreate writes a new medication record. Ordering is fixed: durable
// write, then mirror append, then cache invalidation; a failure at any step
// surfaces instead of partially succeeding in silence.
func (c *Composer) executeCreate(ctx context.Context, p MedicationPayload) (string, error) {
	user := c.auth.CurrentUser()
	if user == nil {
		return "", core.ErrNotAuthenticated
	}

	id, err := c.docs.Add(ctx, core.CollectionMedications, map[string]any{
		"titulo":                 p.Title,
		"dataHoraInicio":         p.StartDateTime,
		"frequenciaTipo":         string(p.FrequencyType),
		"frequenciaQuantidade":   p.FrequencyQuantity,
		"diasSemanaSelecionados": p.SelectedWeekdays,
		"cor":                    p.Color,
		"userId":                 user.ID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save medication: %w", err)
	}

	reminders, err := c.loadReminders(ctx)
	if err != nil {
		return "", err
	}
	reminders = append(reminders, core.Reminder{
		ID:                id,
		Title:             p.Title,
		StartDateTime:     p.StartDateTime,
		FrequencyType:     p.FrequencyType,
		FrequencyQuantity: p.FrequencyQuantity,
		SelectedWeekdays:  p.SelectedWeekdays,
	})
	if err := c.saveReminders(ctx, reminders); err != nil {
		return "", err
	}

	c.cache.Delete(cache.UserDataKey(user.ID))
	return id, nil
}

// executeEdit applies a sparse patch: only the fields present in the payload
// reach the durable update. The mirror update is best-effort; a missing
// mirror entry does not fail the operation.
func (c *Composer) executeEdit(ctx context.Context, p MedicationPayload) error {
	user := c.auth.CurrentUser()
	if user == nil {
		return core.ErrNotAuthenticated
	}

	fields := make(map[string]any)
	if p.Title != "" {
		fields["titulo"] = p.Title
	}
	if p.StartDateTime != "" {
		fields["dataHoraInicio"] = p.StartDateTime
	}
	if p.FrequencyType != "" {
		fields["frequenciaTipo"] = string(p.FrequencyType)
	}
	if p.FrequencyQuantity > 0 {
		fields["frequenciaQuantidade"] = p.FrequencyQuantity
	}
	if len(p.SelectedWeekdays) > 0 {
		fields["diasSemanaSelecionados"] = p.SelectedWeekdays
	}
	if p.Color != "" {
		fields["cor"] = p.Color
	}

	if err := c.docs.Update(ctx, core.CollectionMedications, p.MedicationID, fields); err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}

	if err := c.patchReminderMirror(ctx, p); err != nil {
		// Accepted eventual-consistency slack: the durable update stands.
		log.FromCtx(ctx).Warn().Err(err).Str("id", p.MedicationID).Msg("reminder mirror update skipped")
	}

	c.cache.Delete(cache.UserDataKey(user.ID))
	return nil
}

func (c *Composer) patchReminderMirror(ctx context.Context, p MedicationPayload) error {
	reminders, err := c.loadReminders(ctx)
	if err != nil {
		return err
	}

	index := -1
	for i, r := range reminders {
		if r.ID == p.MedicationID {
			index = i
			break
		}
	}
	if index == -1 {
		// Not in the mirror; tolerated silently.
		return nil
	}

	if p.Title != "" {
		reminders[index].Title = p.Title
	}
	if p.StartDateTime != "" {
		reminders[index].StartDateTime = p.StartDateTime
	}
	if p.FrequencyType != "" {
		reminders[index].FrequencyType = p.FrequencyType
	}
	if p.FrequencyQuantity > 0 {
		reminders[index].FrequencyQuantity = p.FrequencyQuantity
	}
	if len(p.SelectedWeekdays) > 0 {
		reminders[index].SelectedWeekdays = p.SelectedWeekdays
	}

	return c.saveReminders(ctx, reminders)
}

func (c *Composer) loadReminders(ctx context.Context) ([]core.Reminder, error) {
	raw, ok, err := c.kv.Get(ctx, remindersKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read reminders: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var reminders []core.Reminder
	if err := json.Unmarshal([]byte(raw), &reminders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reminders: %w", err)
	}
	return reminders, nil
}

func (c *Composer) saveReminders(ctx context.Context, reminders []core.Reminder) error {
	data, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("failed to marshal reminders: %w", err)
	}
	return c.kv.Set(ctx, remindersKey, string(data))
}
