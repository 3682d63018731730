package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefs_LazyCreationPersistsDefaults(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	prefs := NewPrefs(kv, signedIn())

	loaded, err := prefs.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded.FavoriteMedications)
	require.NotZero(t, loaded.LastActivity)
	require.Contains(t, kv.data, "preferencias_usuario_user-1")
}

func TestPrefs_PreferredTimesEvictOldest(t *testing.T) {
	ctx := context.Background()
	prefs := NewPrefs(newFakeKV(), signedIn())

	for i := 1; i <= 6; i++ {
		require.NoError(t, prefs.Touch(ctx, "", fmt.Sprintf("0%d:00", i), "", ""))
	}

	loaded, err := prefs.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"02:00", "03:00", "04:00", "05:00", "06:00"}, loaded.PreferredTimes)
}

func TestPrefs_AllCapsRespected(t *testing.T) {
	ctx := context.Background()
	prefs := NewPrefs(newFakeKV(), signedIn())

	for i := 0; i < 20; i++ {
		require.NoError(t, prefs.Touch(ctx,
			fmt.Sprintf("med-%d", i),
			fmt.Sprintf("%02d:00", i),
			fmt.Sprintf("freq-%d", i),
			fmt.Sprintf("#%06d", i),
		))
	}

	loaded, err := prefs.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.FavoriteMedications, 10)
	require.Len(t, loaded.PreferredTimes, 5)
	require.Len(t, loaded.FrequencyTypes, 3)
	require.Len(t, loaded.PreferredColors, 5)
}

func TestPrefs_DuplicateNotReinserted(t *testing.T) {
	ctx := context.Background()
	prefs := NewPrefs(newFakeKV(), signedIn())

	require.NoError(t, prefs.Touch(ctx, "Dipirona", "", "diaria", ""))
	require.NoError(t, prefs.Touch(ctx, "Losartana", "", "diaria", ""))
	require.NoError(t, prefs.Touch(ctx, "Dipirona", "", "", ""))

	loaded, err := prefs.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Dipirona", "Losartana"}, loaded.FavoriteMedications)
	require.Equal(t, []string{"diaria"}, loaded.FrequencyTypes)
}

func TestPrefs_SignedOutSkipsPersistence(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	prefs := NewPrefs(kv, &fakeAuth{})

	require.NoError(t, prefs.Touch(ctx, "Dipirona", "08:00", "diaria", "#FFFFFF"))
	require.Empty(t, kv.data)
}
