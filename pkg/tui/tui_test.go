package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/svsbridge/pkg/converter"
	"github.com/james-see/svsbridge/pkg/converter/formats"
)

const testDoc = `format: svsbridge
version: 1
tracks:
  - kind: singing
    title: Lead
    notes:
      - {start: 0, length: 480, key: 60, lyric: la}
      - {start: 480, length: 480, key: 64, lyric: li}
`

func newTestModel() Model {
	return New(converter.New(formats.NewMIDI(formats.DefaultMIDIOptions()), formats.NewYAML()))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestMenuNavigation(t *testing.T) {
	m := newTestModel()
	m, _ = update(t, m, key("up"))
	assert.Equal(t, 0, m.menuIndex)

	for range menuItems {
		m, _ = update(t, m, key("down"))
	}
	assert.Equal(t, len(menuItems)-1, m.menuIndex)

	m, _ = update(t, m, key("k"))
	assert.Equal(t, len(menuItems)-2, m.menuIndex)
	assert.Contains(t, m.View(), "Project info")
}

func TestMenuSelectOpensPicker(t *testing.T) {
	m := newTestModel()
	m, cmd := update(t, m, key("down"))
	assert.Nil(t, cmd)
	m, cmd = update(t, m, key("enter"))
	assert.NotNil(t, cmd)
	assert.Equal(t, StateFilePicker, m.state)
	assert.Equal(t, converter.FormatYAML, m.conversion.FromFormat)
	assert.Equal(t, []string{".yaml", ".yml", ".svsb"}, m.filePicker.AllowedTypes)
	assert.Contains(t, m.View(), "SELECT YAML FILE")

	m, _ = update(t, m, key("esc"))
	assert.Equal(t, StateMenu, m.state)
}

func TestConversionResult(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "song.yaml")
	require.NoError(t, os.WriteFile(input, []byte(testDoc), 0644))

	m := newTestModel()
	m.selectedFile = input
	m.conversion = menuItems[1]
	m.state = StateConverting

	msg := m.performConversion()()
	done, ok := msg.(conversionDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, filepath.Join(dir, "song.mid"), done.outputFile)
	assert.FileExists(t, done.outputFile)

	m, _ = update(t, m, msg)
	assert.Equal(t, StateResult, m.state)
	assert.Contains(t, m.View(), "Conversion complete")
	assert.Contains(t, m.View(), "song.mid")

	m, _ = update(t, m, key("enter"))
	assert.Equal(t, StateMenu, m.state)
	assert.Empty(t, m.outputFile)
}

func TestProjectInfo(t *testing.T) {
	input := filepath.Join(t.TempDir(), "song.yaml")
	require.NoError(t, os.WriteFile(input, []byte(testDoc), 0644))

	m := newTestModel()
	m.selectedFile = input
	m.conversion = menuItems[2]

	m, _ = update(t, m, m.performConversion()())
	require.NoError(t, m.err)
	assert.Contains(t, m.report, `"Lead" SINGING 2 notes, keys 60-64`)
	assert.Contains(t, m.View(), "PROJECT")
}

func TestConversionError(t *testing.T) {
	m := newTestModel()
	m.selectedFile = filepath.Join(t.TempDir(), "missing.mid")
	m.conversion = menuItems[0]

	m, _ = update(t, m, m.performConversion()())
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "Failed")
}

func TestQuit(t *testing.T) {
	_, cmd := update(t, newTestModel(), key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
