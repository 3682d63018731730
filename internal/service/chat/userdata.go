package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lembremed/lembremed/internal/core"
	"github.com/lembremed/lembremed/pkg/cache"
)

// fetchUserData loads the user's medication set, memoized under the per-user
// cache key. A signed-out user yields nil without error.
func (c *Composer) fetchUserData(ctx context.Context) (*core.UserData, error) {
	user := c.auth.CurrentUser()
	if user == nil {
		return nil, nil
	}

	key := cache.UserDataKey(user.ID)
	if cached, ok := c.cache.Get(key); ok {
		if data, ok := cached.(*core.UserData); ok {
			return data, nil
		}
	}

	docs, err := c.docs.Query(ctx, core.CollectionMedications, "userId", user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query medications: %w", err)
	}

	medications := make([]core.MedicationRecord, 0, len(docs))
	for _, doc := range docs {
		record, err := decodeMedication(doc)
		if err != nil {
			return nil, err
		}
		medications = append(medications, record)
	}

	data := &core.UserData{
		UserID:           user.ID,
		Medications:      medications,
		TotalMedications: len(medications),
	}
	c.cache.Set(key, data)
	return data, nil
}

func decodeMedication(doc core.Document) (core.MedicationRecord, error) {
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return core.MedicationRecord{}, fmt.Errorf("failed to marshal document fields: %w", err)
	}

	var record core.MedicationRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return core.MedicationRecord{}, fmt.Errorf("failed to decode medication %s: %w", doc.ID, err)
	}
	record.ID = doc.ID
	return record, nil
}
