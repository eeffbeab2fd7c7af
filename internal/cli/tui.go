package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/engine"
	"github.com/matzehuels/orgchart/pkg/registry"
	"github.com/matzehuels/orgchart/pkg/render"
	"github.com/matzehuels/orgchart/pkg/session"
)

// Canvas steps of keyboard drags and resizes, in pixels.
const (
	dragStep   = 10.0
	resizeStep = 20.0
	minExtent  = 20.0
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	editLabelStyle    = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	messageStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	messageErrStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Key Map
// =============================================================================

type editorKeyMap struct {
	Up, Down                     key.Binding
	DragLeft, DragRight          key.Binding
	DragUp, DragDown             key.Binding
	Grow, Shrink                 key.Binding
	AddText, AddImage            key.Binding
	AddDepartment, AddPerson     key.Binding
	Delete, Connect              key.Binding
	ToggleHidden, ToggleContact  key.Binding
	Edit, NextField, Enter, Back key.Binding
	Save, Help, Quit             key.Binding
}

var editorKeys = editorKeyMap{
	Up:            key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "select previous")),
	Down:          key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "select next")),
	DragLeft:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "drag left")),
	DragDown:      key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "drag down")),
	DragUp:        key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "drag up")),
	DragRight:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "drag right")),
	Grow:          key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "grow")),
	Shrink:        key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "shrink")),
	AddText:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "add text")),
	AddImage:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "add image")),
	AddDepartment: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "add department")),
	AddPerson:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "add person")),
	Delete:        key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	Connect:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect")),
	ToggleHidden:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "show/hide uncontacted")),
	ToggleContact: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle contacted")),
	Edit:          key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit fields")),
	NextField:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Enter:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Save:          key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Edit, k.Save, k.Help, k.Quit}
}

func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.DragLeft, k.DragDown, k.DragUp, k.DragRight, k.Grow, k.Shrink},
		{k.AddText, k.AddImage, k.AddDepartment, k.AddPerson, k.Delete, k.Connect},
		{k.ToggleHidden, k.ToggleContact, k.Edit, k.Save, k.Quit},
	}
}

// =============================================================================
// Messages
// =============================================================================

// imageLoadedMsg carries the bytes of an image file read for a node.
type imageLoadedMsg struct {
	id   string
	path string
	data []byte
	err  error
}

func readImage(id, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return imageLoadedMsg{id: id, path: path, data: data, err: err}
	}
}

// =============================================================================
// EditorModel
// =============================================================================

// fieldEdit is an open edit of one node's fields.
type fieldEdit struct {
	id     string
	fields []registry.Field
	ix     int
}

// EditorModel is the bubbletea model of the chart editor. Every gesture
// is delivered to the session from Update, so edits are applied serially.
type EditorModel struct {
	ctx    context.Context
	sess   *session.Session
	origin session.Origin
	keys   editorKeyMap
	help   help.Model

	nodes  []chart.Node // tree order of the last snapshot
	cursor int

	connectFrom string
	edit        *fieldEdit
	input       textinput.Model

	message     string
	messageErr  bool
	confirmQuit bool
}

// NewEditorModel creates the editor over a started session.
func NewEditorModel(ctx context.Context, sess *session.Session, origin session.Origin) EditorModel {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 48

	m := EditorModel{
		ctx:    ctx,
		sess:   sess,
		origin: origin,
		keys:   editorKeys,
		help:   help.New(),
		input:  ti,
	}
	m.refresh()
	return m
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case imageLoadedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("read %s: %v", msg.path, msg.err))
		} else if err := m.sess.UploadImage(msg.id, msg.data); err != nil {
			m.setError(err.Error())
		} else {
			m.setMessage("image updated")
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.edit != nil {
			return m.updateEdit(msg)
		}
		return m.updateCanvas(msg)
	}
	return m, nil
}

func (m EditorModel) updateCanvas(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Quit) {
		m.confirmQuit = false
	}
	sel, hasSel := m.current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.sess.Dirty() && !m.confirmQuit && msg.String() != "ctrl+c" {
			m.confirmQuit = true
			m.setError("unsaved changes: press q again to quit, s to save")
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)

	case key.Matches(msg, m.keys.Back):
		m.connectFrom = ""
		m.sess.ClickPane()
		m.message = ""

	case key.Matches(msg, m.keys.DragLeft), key.Matches(msg, m.keys.DragRight),
		key.Matches(msg, m.keys.DragUp), key.Matches(msg, m.keys.DragDown):
		if hasSel {
			m.sess.Drag(sel.ID, sel.Position.Add(dragDelta(msg.String())))
		}

	case key.Matches(msg, m.keys.Grow), key.Matches(msg, m.keys.Shrink):
		if hasSel {
			step := resizeStep
			if key.Matches(msg, m.keys.Shrink) {
				step = -step
			}
			w, h := render.Size(sel)
			m.sess.Resize(sel.ID, max(w+step, minExtent), max(h+step, minExtent))
		}

	case key.Matches(msg, m.keys.AddText):
		m.added(m.sess.AddText())
	case key.Matches(msg, m.keys.AddImage):
		m.added(m.sess.AddImage())
	case key.Matches(msg, m.keys.AddDepartment):
		m.added(m.sess.AddDepartment())
	case key.Matches(msg, m.keys.AddPerson):
		m.added(m.sess.AddPerson())

	case key.Matches(msg, m.keys.Delete):
		if hasSel && m.sess.Delete(sel.ID) {
			m.setMessage("deleted " + sel.ID)
		}

	case key.Matches(msg, m.keys.Connect):
		m.connect(sel, hasSel)

	case key.Matches(msg, m.keys.ToggleHidden):
		n := m.sess.ToggleUncontactedVisibility()
		m.setMessage(fmt.Sprintf("toggled visibility of %d uncontacted", n))

	case key.Matches(msg, m.keys.ToggleContact):
		if hasSel {
			m.sess.ToggleContacted(sel.ID)
		}

	case key.Matches(msg, m.keys.Edit):
		if hasSel {
			return m.beginEdit(sel)
		}

	case key.Matches(msg, m.keys.Save):
		res := m.sess.Save(m.ctx)
		if res.OK {
			m.origin = session.OriginStored
			m.setMessage(res.Message)
		} else {
			m.setError(fmt.Sprintf("%s: %v", res.Message, res.Err))
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.refresh()
	return m, nil
}

func dragDelta(k string) chart.Position {
	switch k {
	case "h":
		return chart.Position{X: -dragStep}
	case "l":
		return chart.Position{X: dragStep}
	case "k":
		return chart.Position{Y: -dragStep}
	}
	return chart.Position{Y: dragStep}
}

func (m *EditorModel) connect(sel chart.Node, hasSel bool) {
	if !hasSel {
		return
	}
	if m.connectFrom == "" {
		m.connectFrom = sel.ID
		m.setMessage("connect from " + sel.ID + ": select the target and press c")
		return
	}
	from := m.connectFrom
	m.connectFrom = ""
	if e, ok := m.sess.Connect(engine.Connection{Source: from, Target: sel.ID}); ok {
		m.setMessage(fmt.Sprintf("connected %s -> %s", e.Source, e.Target))
	} else {
		m.setError("could not connect " + from + " -> " + sel.ID)
	}
}

func (m *EditorModel) added(n chart.Node, ok bool) {
	if !ok {
		m.setError("could not add node")
		return
	}
	m.sess.ClickNode(n.ID)
	m.setMessage("added " + n.ID)
}

// =============================================================================
// Field Editing
// =============================================================================

func (m EditorModel) beginEdit(n chart.Node) (tea.Model, tea.Cmd) {
	c, ok := m.sess.Registry().Lookup(n.Type())
	if !ok || len(c.Fields) == 0 || !m.sess.BeginEdit(n.ID) {
		return m, nil
	}
	m.edit = &fieldEdit{id: n.ID, fields: c.Fields}
	m.message = ""
	return m, m.focusField()
}

func (m *EditorModel) focusField() tea.Cmd {
	f := m.edit.fields[m.edit.ix]
	value := ""
	if n, ok := m.sess.Engine().Node(m.edit.id); ok && f.Kind != registry.KindImage {
		if v, ok := n.Data.Field(f.Name); ok && v != nil {
			value = fmt.Sprint(v)
		}
	}
	m.input.Placeholder = ""
	if f.Kind == registry.KindImage {
		m.input.Placeholder = "path to an image file"
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m EditorModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.sess.CancelEdit(m.edit.id)
		m.closeEdit("edit cancelled")
		return m, nil

	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.NextField):
		cmd := m.draftField()
		if m.edit.ix+1 < len(m.edit.fields) {
			m.edit.ix++
			return m, tea.Batch(cmd, m.focusField())
		}
		id := m.edit.id
		if err := m.sess.CommitEdits(id); err != nil {
			m.closeEdit("")
			m.setError(err.Error())
		} else {
			m.closeEdit("saved edits to " + id)
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// draftField records the input of the focused field. Image fields take a
// file path whose content is read asynchronously.
func (m *EditorModel) draftField() tea.Cmd {
	f := m.edit.fields[m.edit.ix]
	value := strings.TrimSpace(m.input.Value())
	if f.Kind == registry.KindImage {
		if value == "" {
			return nil
		}
		return readImage(m.edit.id, value)
	}
	if err := m.sess.Draft(m.edit.id, f.Name, m.input.Value()); err != nil {
		m.setError(err.Error())
	}
	return nil
}

func (m *EditorModel) closeEdit(message string) {
	id := m.edit.id
	m.edit = nil
	m.input.Blur()
	m.refresh()
	m.sess.ClickNode(id)
	if message != "" {
		m.setMessage(message)
	}
}

// =============================================================================
// State Helpers
// =============================================================================

// refresh rebuilds the node list from the session and keeps the cursor on
// the selected node.
func (m *EditorModel) refresh() {
	m.nodes = treeOrder(m.sess.Snapshot())
	if sel, ok := m.sess.Selected(); ok {
		for i, n := range m.nodes {
			if n.ID == sel.ID {
				m.cursor = i
				return
			}
		}
	}
	m.cursor = min(m.cursor, max(len(m.nodes)-1, 0))
}

func (m *EditorModel) move(delta int) {
	if len(m.nodes) == 0 {
		return
	}
	if _, ok := m.sess.Selected(); ok {
		m.cursor = (m.cursor + delta + len(m.nodes)) % len(m.nodes)
	}
	m.sess.ClickNode(m.nodes[m.cursor].ID)
}

// current returns the selected node.
func (m EditorModel) current() (chart.Node, bool) {
	return m.sess.Selected()
}

func (m *EditorModel) setMessage(s string) {
	m.message, m.messageErr = s, false
}

func (m *EditorModel) setError(s string) {
	m.message, m.messageErr = s, true
}

// =============================================================================
// View
// =============================================================================

func (m EditorModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render("組織図") + " " + StyleDim.Render(m.sess.Key())
	if m.sess.Dirty() {
		title += " " + StyleWarning.Render("●")
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(statsLine(m.sess.Snapshot(), m.origin))
	b.WriteString("\n\n")

	snap := m.sess.Snapshot()
	sel, hasSel := m.current()
	reg := m.sess.Registry()
	for i, n := range m.nodes {
		cursor := "  "
		if hasSel && n.ID == sel.ID {
			cursor = "> "
		}
		marker := " "
		if n.ID == m.connectFrom {
			marker = StyleHighlight.Render("◆")
		}
		indent := strings.Repeat("  ", depth(snap, n))
		line := fmt.Sprintf("%s%s %s%s", cursor, marker, indent, nodeStyle(n).Render(reg.Render(n)))
		if hasSel && n.ID == sel.ID {
			line = listSelectedStyle.Render(cursor) + line[len(cursor):]
		}
		b.WriteString(line)
		if hasSel && i == m.cursor {
			abs := snap.AbsolutePosition(n.ID)
			b.WriteString(listDimStyle.Render(fmt.Sprintf("  (%.0f,%.0f)", abs.X, abs.Y)))
		}
		b.WriteString("\n")
	}
	if len(m.nodes) == 0 {
		b.WriteString(listDimStyle.Render("  empty chart: press t, i, d or p to add a node"))
		b.WriteString("\n")
	}

	if m.edit != nil {
		b.WriteString("\n")
		b.WriteString(StyleTitle.Render("Edit " + m.edit.id))
		b.WriteString("\n")
		for i, f := range m.edit.fields {
			label := editLabelStyle.Render(f.Label)
			if i == m.edit.ix {
				b.WriteString(label + " " + m.input.View())
			} else {
				b.WriteString(label + " " + listDimStyle.Render(fieldPreview(m.sess, m.edit.id, f)))
			}
			b.WriteString("\n")
		}
	}

	if m.message != "" {
		b.WriteString("\n")
		if m.messageErr {
			b.WriteString(messageErrStyle.Render(m.message))
		} else {
			b.WriteString(messageStyle.Render(m.message))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// fieldPreview shows the drafted or current value of a field.
func fieldPreview(sess *session.Session, id string, f registry.Field) string {
	if v, ok := sess.Drafts(id)[f.Name]; ok {
		return fmt.Sprint(v)
	}
	n, ok := sess.Engine().Node(id)
	if !ok {
		return ""
	}
	v, _ := n.Data.Field(f.Name)
	if f.Kind == registry.KindImage {
		if s, _ := v.(string); s != "" {
			return "(image set)"
		}
		return "(none)"
	}
	return fmt.Sprint(v)
}
