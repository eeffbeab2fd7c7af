package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/session"
	"github.com/matzehuels/orgchart/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// newTestEditor numbers new nodes from 101 so they never collide with
// the seed ids.
func newTestEditor(t *testing.T) EditorModel {
	t.Helper()
	return newTestEditorFrom(t, 100)
}

func newTestEditorFrom(t *testing.T, next int) EditorModel {
	t.Helper()
	logger := log.New(io.Discard)
	sess, err := session.New(session.Config{
		Store:  storage.NewAdapter(storage.NewMemoryStore(), storage.WithLogger(logger)),
		Logger: logger,
		IDFunc: func(prefix string) string {
			next++
			return fmt.Sprintf("%s-%d", prefix, next)
		},
	})
	require.NoError(t, err)
	ctx := context.Background()
	return NewEditorModel(ctx, sess, sess.Start(ctx))
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m EditorModel, keys ...string) (EditorModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(EditorModel)
	}
	return m, cmd
}

func selectedID(m EditorModel) string {
	n, _ := m.sess.Selected()
	return n.ID
}

func node(t *testing.T, m EditorModel, id string) chart.Node {
	t.Helper()
	n, ok := m.sess.Engine().Node(id)
	require.True(t, ok, "node %s missing", id)
	return n
}

func TestEditorSelection(t *testing.T) {
	m := newTestEditor(t)
	require.Len(t, m.nodes, 8)
	assert.Equal(t, "dept-1", m.nodes[0].ID, "departments come first")

	m, _ = press(m, "down")
	assert.Equal(t, "dept-1", selectedID(m))
	m, _ = press(m, "down")
	assert.Equal(t, "dept-2", selectedID(m))
	m, _ = press(m, "up", "up")
	assert.Equal(t, m.nodes[len(m.nodes)-1].ID, selectedID(m), "selection wraps")

	m, _ = press(m, "esc")
	_, ok := m.sess.Selected()
	assert.False(t, ok)
}

func TestEditorDragAndResize(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(m, "down", "l", "l", "j", "k", "k")
	assert.Equal(t, chart.Position{X: 120, Y: 90}, node(t, m, "dept-1").Position)

	m, _ = press(m, "+")
	d, _ := node(t, m, "dept-1").Department()
	assert.Equal(t, 820.0, d.Width)
	assert.Equal(t, 620.0, d.Height)

	m, _ = press(m, "-", "-")
	d, _ = node(t, m, "dept-1").Department()
	assert.Equal(t, 780.0, d.Width)
}

func TestEditorAddAndDelete(t *testing.T) {
	m := newTestEditor(t)

	m, _ = press(m, "t", "i", "d", "p")
	assert.Equal(t, "person-104", selectedID(m))
	for _, id := range []string{"text-101", "image-102", "dept-103", "person-104"} {
		node(t, m, id)
	}
	assert.Len(t, m.nodes, 12)

	m, _ = press(m, "x")
	_, ok := m.sess.Engine().Node("person-104")
	assert.False(t, ok)
	assert.Len(t, m.nodes, 11)
}

func TestEditorAddSkipsTakenIDs(t *testing.T) {
	m := newTestEditorFrom(t, 0)

	// dept-1 through dept-3 belong to the seed.
	m, _ = press(m, "d")
	assert.Equal(t, "dept-4", selectedID(m))

	m, _ = press(m, "p")
	assert.Equal(t, "person-6", selectedID(m))
	assert.Len(t, m.nodes, 10)

	m, _ = press(m, "x")
	_, ok := m.sess.Engine().Node("person-6")
	assert.False(t, ok)
	_, ok = m.sess.Engine().Node("person-5")
	assert.True(t, ok, "seed person must survive")
}

func TestEditorConnect(t *testing.T) {
	m := newTestEditor(t)

	m, _ = press(m, "down", "c")
	assert.Equal(t, "dept-1", m.connectFrom)
	m, _ = press(m, "down", "c")
	assert.Empty(t, m.connectFrom)

	edges := m.sess.Snapshot().Edges
	require.Len(t, edges, 1)
	assert.Equal(t, "dept-1", edges[0].Source)
	assert.Equal(t, "dept-2", edges[0].Target)

	m, _ = press(m, "c", "esc")
	assert.Empty(t, m.connectFrom, "esc cancels a pending connection")
}

func TestEditorToggles(t *testing.T) {
	m := newTestEditor(t)

	m, _ = press(m, "v")
	assert.Contains(t, m.message, "2 uncontacted")
	hidden := 0
	for _, n := range m.sess.Snapshot().Nodes {
		if n.Hidden {
			hidden++
		}
	}
	assert.Equal(t, 2, hidden)

	// dept-1, dept-2, person-2, person-3
	m, _ = press(m, "down", "down", "down", "down")
	require.Equal(t, "person-3", selectedID(m))
	m, _ = press(m, " ")
	p, _ := node(t, m, "person-3").Person()
	assert.True(t, p.IsContacted)
}

func TestEditorEditFields(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(m, "t", "e")
	require.NotNil(t, m.edit)
	assert.Equal(t, "text-101", m.edit.id)

	m.input.SetValue("見出し")
	m, _ = press(m, "enter")
	require.NotNil(t, m.edit)
	assert.Equal(t, 1, m.edit.ix)
	assert.Equal(t, "14", m.input.Value())

	m.input.SetValue("20")
	m, _ = press(m, "enter")
	assert.Nil(t, m.edit)
	assert.False(t, m.messageErr, m.message)

	d := node(t, m, "text-101").Data.(chart.TextData)
	assert.Equal(t, "見出し", d.Text)
	assert.Equal(t, 20, d.FontSize)
}

func TestEditorEditRejected(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(m, "t", "e", "tab")
	m.input.SetValue("abc")
	m, _ = press(m, "enter")

	assert.Nil(t, m.edit)
	assert.True(t, m.messageErr)
	assert.Equal(t, chart.DefaultFontSize, node(t, m, "text-101").Data.(chart.TextData).FontSize)
}

func TestEditorEditCancel(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(m, "t", "e")
	m.input.SetValue("discarded")
	m, _ = press(m, "esc")

	assert.Nil(t, m.edit)
	assert.False(t, m.sess.Editing("text-101"))
	assert.NotEqual(t, "discarded", node(t, m, "text-101").Data.(chart.TextData).Text)
}

func TestEditorImageUpload(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(m, "i")
	id := selectedID(m)

	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))
	msg := readImage(id, path)()

	next, _ := m.Update(msg)
	m = next.(EditorModel)
	assert.False(t, m.messageErr, m.message)
	img := node(t, m, id).Data.(chart.ImageData)
	assert.True(t, strings.HasPrefix(img.Src, "data:image/png;base64,"))

	next, _ = m.Update(readImage(id, filepath.Join(t.TempDir(), "missing.png"))())
	m = next.(EditorModel)
	assert.True(t, m.messageErr)
}

func TestEditorSaveAndQuit(t *testing.T) {
	m := newTestEditor(t)
	require.True(t, m.sess.Dirty())

	m, cmd := press(m, "q")
	assert.Nil(t, cmd, "first q on a dirty chart only warns")
	assert.True(t, m.confirmQuit)

	m, _ = press(m, "s")
	assert.Equal(t, session.SavedMessage, m.message)
	assert.False(t, m.sess.Dirty())
	assert.Equal(t, session.OriginStored, m.origin)

	_, cmd = press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEditorView(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(m, "down")
	view := m.View()

	assert.Contains(t, view, "組織図")
	assert.Contains(t, view, session.DefaultKey)
	assert.Contains(t, view, "営業本部")
	assert.Contains(t, view, "(100,100)")

	m, _ = press(m, "e")
	assert.Contains(t, m.View(), "Edit dept-1")
}
