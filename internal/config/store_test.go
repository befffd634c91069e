package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/veco/internal/config/notify"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStore_DefaultsWithoutFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(
		WithUserFile(filepath.Join(dir, "missing.yaml")),
		WithWorkspaceFile(""),
	)
	require.NoError(t, err)

	h := s.Highlight()
	d := Defaults()
	assert.Equal(t, d.Enabled, h.Enabled)
	assert.Equal(t, d.MaxFilesForSearch, h.MaxFilesForSearch)
	assert.Equal(t, d.Include, h.Include)
	assert.True(t, d.DefaultStyle.Equal(h.DefaultStyle))
	require.Len(t, h.Keywords, 3)
	assert.Equal(t, "FIXME:", h.Keywords[2].KeywordText())
	assert.Equal(t, []string{filepath.Join(dir, "missing.yaml")}, s.Files())
}

func TestStore_WorkspaceOverridesUser(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "user", "settings.yaml")
	ws := filepath.Join(dir, "ws", ".veco", "settings.json")

	writeFile(t, user, `
veco:
  highlight:
    isCaseSensitive: false
    maxFilesForSearch: 10
    keywords:
      - "HACK:"
      - text: "TODO:"
        diagnosticSeverity: hint
`)
	writeFile(t, ws, `{"veco": {"highlight": {"maxFilesForSearch": 3, "keywordsPattern": "FIXME|HACK"}}}`)

	s, err := NewStore(WithUserFile(user), WithWorkspaceFile(ws))
	require.NoError(t, err)

	h := s.Highlight()
	assert.False(t, h.IsCaseSensitive)
	assert.Equal(t, 3, h.MaxFilesForSearch)
	assert.Equal(t, "FIXME|HACK", h.KeywordsPattern)
	require.Len(t, h.Keywords, 2)
	assert.Equal(t, Literal("HACK:"), h.Keywords[0])
	assert.Equal(t, "TODO:", h.Keywords[1].KeywordText())

	raw, err := s.Get(KeyMaxFilesForSearch)
	require.NoError(t, err)
	assert.EqualValues(t, 3, raw)
}

func TestStore_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "settings.yaml")
	writeFile(t, user, "veco: [unclosed")

	_, err := NewStore(WithUserFile(user))
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestStore_UpdateGlobalYAML(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "settings.yaml")
	writeFile(t, user, `# my settings
veco:
  highlight:
    # keep me
    toggleURI: true
`)

	n := notify.New()
	s, err := NewStore(WithUserFile(user), WithNotifier(n))
	require.NoError(t, err)
	require.True(t, s.Highlight().Enabled)

	var changes []notify.Change
	n.SubscribePath(Section, func(c notify.Change) { changes = append(changes, c) })

	require.NoError(t, s.Update(context.Background(), KeyEnabled, false, true))

	assert.False(t, s.Highlight().Enabled)
	assert.True(t, s.Highlight().ToggleURI)

	data, err := os.ReadFile(user)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# keep me")
	assert.Contains(t, string(data), "enabled: false")

	require.Len(t, changes, 1)
	assert.Equal(t, "veco.highlight.enabled", changes[0].Path)
	assert.Equal(t, true, changes[0].OldValue)
	assert.Equal(t, false, changes[0].NewValue)
}

func TestStore_UpdateWorkspaceTOMLAndJSON(t *testing.T) {
	for _, name := range []string{"settings.toml", "settings.json"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			ws := filepath.Join(dir, ".veco", name)

			s, err := NewStore(WithWorkspaceFile(ws))
			require.NoError(t, err)

			ctx := context.Background()
			require.NoError(t, s.Update(ctx, KeyKeywords, []Keyword{Literal("XXX")}, false))
			require.NoError(t, s.Update(ctx, KeyMaxFilesForSearch, 7, false))

			h := s.Highlight()
			assert.Equal(t, []Keyword{Literal("XXX")}, h.Keywords)
			assert.Equal(t, 7, h.MaxFilesForSearch)
		})
	}
}

func TestStore_UpdateErrors(t *testing.T) {
	s, err := NewStore()
	require.NoError(t, err)

	err = s.Update(context.Background(), "nope", 1, true)
	assert.True(t, errors.Is(err, ErrUnknownKey))

	err = s.Update(context.Background(), KeyEnabled, false, true)
	assert.True(t, errors.Is(err, ErrNoTarget))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Update(ctx, KeyEnabled, false, true), context.Canceled)

	_, err = s.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestStore_Reload(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "settings.yaml")
	writeFile(t, user, "veco:\n  highlight:\n    enabled: true\n")

	s, err := NewStore(WithUserFile(user))
	require.NoError(t, err)

	reloads := 0
	s.Notifier().Subscribe(func(c notify.Change) {
		if c.Type == notify.ChangeReload {
			reloads++
		}
	})

	writeFile(t, user, "veco:\n  highlight:\n    enabled: false\n")
	require.NoError(t, s.Reload(user))
	assert.False(t, s.Highlight().Enabled)
	assert.Equal(t, 1, reloads)

	writeFile(t, user, "veco: [")
	require.Error(t, s.Reload(user))
	assert.False(t, s.Highlight().Enabled, "failed reload keeps the previous snapshot")
	assert.Equal(t, 1, reloads)
}

func TestWriteSetting_UnsupportedFormat(t *testing.T) {
	err := WriteSetting(filepath.Join(t.TempDir(), "settings.ini"), []string{"a"}, 1)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadSetting(t *testing.T) {
	data := []byte(`{"veco":{"highlight":{"enabled":false}}}`)
	v, ok := ReadSetting(data, strings.Split(FullKey(KeyEnabled), "."))
	require.True(t, ok)
	assert.Equal(t, false, v)

	_, ok = ReadSetting(data, []string{"veco", "colorize"})
	assert.False(t, ok)
}
