package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/lembremed/lembremed/internal/core"
)

const (
	prefsKeyPrefix = "preferencias_usuario_"

	maxFavoriteMedications = 10
	maxPreferredTimes      = 5
	maxFrequencyTypes      = 3
	maxPreferredColors     = 5
)

// Prefs is the per-user preference accumulator. The profile is created lazily
// with empty defaults on first access and grows incrementally after each
// create or edit action.
type Prefs struct {
	kv   core.KeyValue
	auth core.Auth
	now  func() time.Time
}

func NewPrefs(kv core.KeyValue, auth core.Auth) *Prefs {
	return &Prefs{kv: kv, auth: auth, now: time.Now}
}

func emptyPreferences(now time.Time) core.UserPreferences {
	return core.UserPreferences{
		FavoriteMedications: []string{},
		PreferredTimes:      []string{},
		FrequencyTypes:      []string{},
		PreferredColors:     []string{},
		LastActivity:        now.UnixMilli(),
	}
}

// Load returns the user's profile, persisting fresh defaults when none exist
// yet. Without a signed-in user it returns defaults without persisting.
func (p *Prefs) Load(ctx context.Context) (core.UserPreferences, error) {
	user := p.auth.CurrentUser()
	if user == nil {
		return emptyPreferences(p.now()), nil
	}

	raw, ok, err := p.kv.Get(ctx, prefsKeyPrefix+user.ID)
	if err != nil {
		return emptyPreferences(p.now()), fmt.Errorf("failed to read preferences: %w", err)
	}
	if ok && raw != "" {
		var prefs core.UserPreferences
		if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
			return emptyPreferences(p.now()), fmt.Errorf("failed to unmarshal preferences: %w", err)
		}
		return prefs, nil
	}

	defaults := emptyPreferences(p.now())
	if err := p.save(ctx, user.ID, defaults); err != nil {
		return defaults, err
	}
	return defaults, nil
}

// Touch folds the entities referenced by a create/edit action into the
// profile. Empty arguments are skipped; values already present are not
// re-inserted.
func (p *Prefs) Touch(ctx context.Context, medication, timeOfDay, frequency, color string) error {
	user := p.auth.CurrentUser()
	if user == nil {
		return nil
	}

	prefs, err := p.Load(ctx)
	if err != nil {
		return err
	}

	prefs.FavoriteMedications = insertCapped(prefs.FavoriteMedications, medication, maxFavoriteMedications)
	prefs.PreferredTimes = insertCapped(prefs.PreferredTimes, timeOfDay, maxPreferredTimes)
	prefs.FrequencyTypes = insertCapped(prefs.FrequencyTypes, frequency, maxFrequencyTypes)
	prefs.PreferredColors = insertCapped(prefs.PreferredColors, color, maxPreferredColors)
	prefs.LastActivity = p.now().UnixMilli()

	return p.save(ctx, user.ID, prefs)
}

func (p *Prefs) save(ctx context.Context, userID string, prefs core.UserPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	return p.kv.Set(ctx, prefsKeyPrefix+userID, string(data))
}

func insertCapped(list []string, value string, capacity int) []string {
	if value == "" || slices.Contains(list, value) {
		return list
	}
	f := FIFOFrom(capacity, list)
	f.Insert(value)
	return f.Items()
}
