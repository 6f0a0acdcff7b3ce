package draft_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/draft"
)

func TestLoadAbsent(t *testing.T) {
	s := draft.New(t.TempDir())
	var out api.NotificationSettings
	found, err := s.Load(draft.SettingsKey, &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s := draft.New(t.TempDir())
	in := api.NotificationSettings{
		TelegramEnabled: true,
		TelegramChatID:  "12345",
		EmailAddress:    "ops@example.com",
		Level3Enabled:   true,
	}
	require.NoError(t, s.Save(draft.SettingsKey, in))

	var out api.NotificationSettings
	found, err := s.Load(draft.SettingsKey, &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in, out)
}

func TestDraftFilesOwnerOnly(t *testing.T) {
	dir := t.TempDir()
	s := draft.New(dir)
	require.NoError(t, s.Save(draft.SettingsKey, api.NotificationSettings{TelegramBotToken: "secret"}))

	info, err := os.Stat(filepath.Join(dir, draft.SettingsKey+".yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSeedOnlyWhenAbsent(t *testing.T) {
	s := draft.New(t.TempDir())

	edited := api.NotificationSettings{EmailAddress: "in-progress@example.com"}
	require.NoError(t, s.Save(draft.SettingsKey, edited))

	// A refetch of the authoritative value must not discard the edit.
	wrote, err := s.Seed(draft.SettingsKey, api.NotificationSettings{EmailAddress: "server@example.com"})
	require.NoError(t, err)
	assert.False(t, wrote)

	var out api.NotificationSettings
	_, err = s.Load(draft.SettingsKey, &out)
	require.NoError(t, err)
	assert.Equal(t, "in-progress@example.com", out.EmailAddress)
}

func TestSeedWhenAbsent(t *testing.T) {
	s := draft.New(t.TempDir())
	wrote, err := s.Seed(draft.SettingsKey, api.NotificationSettings{EmailAddress: "server@example.com"})
	require.NoError(t, err)
	assert.True(t, wrote)
}

func TestDraftSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, draft.New(dir).Save(draft.SettingsKey, api.NotificationSettings{TelegramChatID: "42"}))

	// A second Store over the same directory models a process restart.
	var out api.NotificationSettings
	found, err := draft.New(dir).Load(draft.SettingsKey, &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "42", out.TelegramChatID)
}

func TestClear(t *testing.T) {
	s := draft.New(t.TempDir())
	require.NoError(t, s.Save(draft.SettingsKey, api.NotificationSettings{}))
	require.NoError(t, s.Clear(draft.SettingsKey))

	found, err := s.Load(draft.SettingsKey, &api.NotificationSettings{})
	require.NoError(t, err)
	assert.False(t, found)

	// Clearing an absent draft is fine.
	require.NoError(t, s.Clear(draft.SettingsKey))
}

func TestClearAll(t *testing.T) {
	s := draft.New(t.TempDir())
	require.NoError(t, s.Save("one", map[string]string{"a": "1"}))
	require.NoError(t, s.Save("two", map[string]string{"b": "2"}))

	require.NoError(t, s.ClearAll())

	for _, key := range []string{"one", "two"} {
		found, err := s.Load(key, &map[string]string{})
		require.NoError(t, err)
		assert.False(t, found)
	}

	// ClearAll on a never-created directory is fine too.
	require.NoError(t, draft.New(filepath.Join(t.TempDir(), "absent")).ClearAll())
}

func TestInvalidKeyRejected(t *testing.T) {
	s := draft.New(t.TempDir())
	require.Error(t, s.Save("../escape", api.NotificationSettings{}))
	_, err := s.Load("UPPER", &api.NotificationSettings{})
	require.Error(t, err)
}
