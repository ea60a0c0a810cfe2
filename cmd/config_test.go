package cmd

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/nakachan-ing/jmt-cli/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func cursorTo(t *testing.T, m *Model, field string) {
	t.Helper()
	for m.fields[m.cursor] != field {
		require.Less(t, m.cursor, len(m.fields)-1, "field %s not listed", field)
		m.Update(key("down"))
	}
}

func TestConfigEditorEditsAndSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := newModel(model.DefaultConfig(), path)

	cursorTo(t, m, "editor")
	m.Update(key("enter"))
	require.True(t, m.editMode)
	assert.Equal(t, "vim", m.textInput.Value())

	m.textInput.SetValue("nano")
	m.Update(key("enter"))
	assert.False(t, m.editMode)
	assert.Equal(t, "nano", m.config.Editor)
	assert.Contains(t, m.View(), "editor: nano")

	cursorTo(t, m, saveAndExit)
	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.saved)

	saved, err := store.LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "nano", saved.Editor)
}

func TestConfigEditorRejectsInvalidValue(t *testing.T) {
	m := newModel(model.DefaultConfig(), filepath.Join(t.TempDir(), "config.yaml"))

	cursorTo(t, m, "backend")
	m.Update(key("enter"))
	m.textInput.SetValue("mongo")
	m.Update(key("enter"))

	assert.Error(t, m.err)
	assert.Equal(t, "json", m.config.Backend)
	assert.Contains(t, m.View(), "unknown backend")
}

func TestConfigEditorMasksToken(t *testing.T) {
	config := model.DefaultConfig()
	config.Jira.Token = "secret"
	m := newModel(config, "")

	assert.NotContains(t, m.View(), "secret")
}

func TestParseTaskID(t *testing.T) {
	id, err := parseTaskID("1760600000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1760600000000), id)

	_, err = parseTaskID("abc")
	assert.Error(t, err)
}
