package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/engine"
	"github.com/matzehuels/orgchart/pkg/registry"
	"github.com/matzehuels/orgchart/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fixture struct {
	sess   *Session
	mem    *storage.MemoryStore
	logs   *bytes.Buffer
	nextID int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{mem: storage.NewMemoryStore(), logs: &bytes.Buffer{}}
	logger := log.NewWithOptions(f.logs, log.Options{Level: log.DebugLevel})
	sess, err := New(Config{
		Store:  storage.NewAdapter(f.mem, storage.WithLogger(logger)),
		Logger: logger,
		IDFunc: func(prefix string) string {
			f.nextID++
			return fmt.Sprintf("%s-%d", prefix, f.nextID)
		},
	})
	require.NoError(t, err)
	f.sess = sess
	return f
}

func (f *fixture) start(t *testing.T, s chart.Snapshot) {
	t.Helper()
	f.sess.Engine().Replace(s)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err, "missing store")

	_, err = New(Config{Store: storage.NewAdapter(storage.NewMemoryStore()), Key: "../etc"})
	assert.Error(t, err, "unsafe key")

	s, err := New(Config{Store: storage.NewAdapter(storage.NewMemoryStore())})
	require.NoError(t, err)
	assert.Equal(t, DefaultKey, s.Key())
	assert.NotNil(t, s.Registry())
}

func TestStartFallsBackToSeed(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, OriginSeed, f.sess.Start(context.Background()))

	s := f.sess.Snapshot()
	counts := s.CountByType()
	assert.Equal(t, 3, counts[chart.TypeDepartment])
	assert.Equal(t, 5, counts[chart.TypePerson])
	for _, n := range s.Nodes {
		if n.Type() == chart.TypePerson {
			assert.NotEmpty(t, n.ParentID, "%s has no parent", n.ID)
		}
	}
	assert.Empty(t, f.mem.Keys(), "seed must not be written to storage")
	assert.True(t, f.sess.Dirty())
}

func TestStartIgnoresCorruptSnapshot(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mem.Set(context.Background(), DefaultKey, []byte("{not json")))

	assert.Equal(t, OriginSeed, f.sess.Start(context.Background()))
	assert.Equal(t, 8, f.sess.Engine().Len())
	assert.Contains(t, f.logs.String(), "corrupt")
}

func TestSaveThenStart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.sess.Start(ctx)
	f.sess.AddText()

	res := f.sess.Save(ctx)
	require.True(t, res.OK, "save failed: %v", res.Err)
	assert.Equal(t, SavedMessage, res.Message)
	assert.False(t, f.sess.Dirty())
	assert.Equal(t, res, f.sess.LastStatus())

	saved := f.sess.Snapshot()
	f.sess.Delete("dept-1")
	assert.True(t, f.sess.Dirty())

	assert.Equal(t, OriginStored, f.sess.Start(ctx))
	assert.True(t, f.sess.Snapshot().Equal(saved), "start should restore the saved snapshot")
	assert.False(t, f.sess.Dirty())
}

func TestSaveFailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.sess.Start(ctx)
	require.NoError(t, f.mem.Close())

	res := f.sess.Save(ctx)
	assert.False(t, res.OK)
	assert.Equal(t, SaveFailedMessage, res.Message)
	assert.ErrorIs(t, res.Err, storage.ErrClosed)
	assert.False(t, res.Status.OK())
	assert.Equal(t, res, f.sess.LastStatus())
	assert.True(t, f.sess.Dirty())

	// Editing continues after a failed save.
	_, ok := f.sess.AddPerson()
	assert.True(t, ok)
}

func TestSelection(t *testing.T) {
	f := newFixture(t)
	f.sess.Start(context.Background())
	before := f.sess.Snapshot()

	assert.True(t, f.sess.ClickNode("person-1"))
	n, ok := f.sess.Selected()
	require.True(t, ok)
	assert.Equal(t, "person-1", n.ID)
	assert.False(t, f.sess.ClickNode("ghost"))

	f.sess.ClickPane()
	_, ok = f.sess.Selected()
	assert.False(t, ok)
	assert.True(t, f.sess.Snapshot().Equal(before), "selection must not touch the snapshot")
}

func TestAddNodes(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		add   func() (chart.Node, bool)
		id    string
		typ   chart.NodeType
		pos   chart.Position
		check func(t *testing.T, n chart.Node)
	}{
		{f.sess.AddText, "text-1", chart.TypeText, chart.Position{X: 100, Y: 100}, func(t *testing.T, n chart.Node) {
			assert.Equal(t, chart.TextData{Text: registry.PlaceholderText, FontSize: 14}, n.Data)
		}},
		{f.sess.AddImage, "image-2", chart.TypeImage, chart.Position{X: 100, Y: 200}, func(t *testing.T, n chart.Node) {
			assert.Equal(t, chart.ImageData{Alt: "画像"}, n.Data)
		}},
		{f.sess.AddDepartment, "dept-3", chart.TypeDepartment, chart.Position{X: 100, Y: 300}, func(t *testing.T, n chart.Node) {
			assert.Equal(t, 300.0, n.Style["width"])
			assert.Equal(t, 200.0, n.Style["height"])
		}},
		{f.sess.AddPerson, "person-4", chart.TypePerson, chart.Position{X: 150, Y: 150}, func(t *testing.T, n chart.Node) {
			p, _ := n.Person()
			assert.False(t, p.IsContacted)
			assert.Equal(t, chart.OpacityUncontacted, p.Opacity())
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			n, ok := tt.add()
			require.True(t, ok)
			assert.Equal(t, tt.id, n.ID)
			assert.Equal(t, tt.typ, n.Type())
			assert.Equal(t, tt.pos, n.Position)
			tt.check(t, n)
		})
	}
	assert.Equal(t, 4, f.sess.Engine().Len())
}

func TestAddUsesUniqueIDs(t *testing.T) {
	s, err := New(Config{Store: storage.NewAdapter(storage.NewMemoryStore())})
	require.NoError(t, err)

	seen := map[string]bool{}
	for range 50 {
		n, ok := s.AddPerson()
		require.True(t, ok)
		require.False(t, seen[n.ID], "id %s reused", n.ID)
		assert.True(t, strings.HasPrefix(n.ID, "person-"))
		seen[n.ID] = true
	}
}

func TestToggleUncontactedVisibility(t *testing.T) {
	f := newFixture(t)
	f.sess.Start(context.Background())
	before := f.sess.Snapshot()

	assert.Equal(t, 2, f.sess.ToggleUncontactedVisibility())
	for _, n := range f.sess.Snapshot().Nodes {
		p, isPerson := n.Person()
		assert.Equal(t, isPerson && !p.IsContacted, n.Hidden, n.ID)
	}

	f.sess.ToggleUncontactedVisibility()
	assert.True(t, f.sess.Snapshot().Equal(before))
}

func TestCanvasGestures(t *testing.T) {
	f := newFixture(t)
	f.start(t, chart.Snapshot{Nodes: []chart.Node{
		{ID: "d", Data: chart.DepartmentData{Name: "営業", Width: 300, Height: 200}},
		{ID: "a", Data: chart.TextData{Text: "a"}},
		{ID: "b", Data: chart.TextData{Text: "b"}},
	}})

	assert.True(t, f.sess.Drag("a", chart.Position{X: 5, Y: 6}))
	assert.False(t, f.sess.Drag("ghost", chart.Position{}))
	n, _ := f.sess.Engine().Node("a")
	assert.Equal(t, chart.Position{X: 5, Y: 6}, n.Position)

	assert.True(t, f.sess.Resize("d", 400, 250))
	n, _ = f.sess.Engine().Node("d")
	d, _ := n.Department()
	assert.Equal(t, 400.0, d.Width)
	assert.Equal(t, 250.0, d.Height)

	loop, ok := f.sess.Connect(engine.Connection{Source: "a", Target: "a"})
	require.True(t, ok, "self-loop connect rejected")
	assert.Equal(t, "a", loop.Source)
	assert.Equal(t, "a", loop.Target)

	ab, ok := f.sess.Connect(engine.Connection{Source: "a", Target: "b"})
	require.True(t, ok)
	assert.True(t, f.sess.DisconnectEdge(ab.ID))
	assert.False(t, f.sess.DisconnectEdge(ab.ID))

	f.sess.ClickNode("a")
	require.True(t, f.sess.BeginEdit("a"))
	assert.True(t, f.sess.Delete("a"))
	assert.False(t, f.sess.Delete("a"))
	_, selected := f.sess.Selected()
	assert.False(t, selected)
	assert.False(t, f.sess.Editing("a"))
	assert.Equal(t, 0, f.sess.Engine().EdgeCount(), "self-loop should go with its node")
}

func TestEditLifecycle(t *testing.T) {
	f := newFixture(t)
	f.start(t, chart.Snapshot{Nodes: []chart.Node{
		{ID: "t", Data: chart.TextData{Text: "old", FontSize: 14}},
		{ID: "p", Data: chart.PersonData{Name: "鈴木花子"}},
	}})

	assert.ErrorIs(t, f.sess.Draft("t", chart.FieldText, "new"), ErrNotEditing)
	require.True(t, f.sess.BeginEdit("t"))
	require.NoError(t, f.sess.Draft("t", chart.FieldText, "new"))
	require.NoError(t, f.sess.Draft("t", chart.FieldFontSize, "200"))
	assert.ErrorIs(t, f.sess.Draft("t", chart.FieldEmail, "x"), ErrUnknownField)
	assert.ErrorIs(t, f.sess.Draft("ghost", chart.FieldText, "x"), ErrNoNode)
	assert.Len(t, f.sess.Drafts("t"), 2)

	// Drafts are not visible until committed.
	n, _ := f.sess.Engine().Node("t")
	assert.Equal(t, "old", n.Data.(chart.TextData).Text)

	require.NoError(t, f.sess.CommitEdits("t"))
	n, _ = f.sess.Engine().Node("t")
	assert.Equal(t, chart.TextData{Text: "new", FontSize: chart.MaxFontSize}, n.Data)
	assert.False(t, f.sess.Editing("t"))

	f.sess.BeginEdit("p")
	require.NoError(t, f.sess.Draft("p", chart.FieldName, "佐藤"))
	f.sess.CancelEdit("p")
	n, _ = f.sess.Engine().Node("p")
	p, _ := n.Person()
	assert.Equal(t, "鈴木花子", p.Name)
}

func TestCommitEditsKeepsRejectedFields(t *testing.T) {
	f := newFixture(t)
	f.start(t, chart.Snapshot{Nodes: []chart.Node{{ID: "t", Data: chart.TextData{Text: "old", FontSize: 20}}}})

	f.sess.BeginEdit("t")
	f.sess.Draft("t", chart.FieldFontSize, "huge")
	f.sess.Draft("t", chart.FieldText, "new")

	err := f.sess.CommitEdits("t")
	assert.ErrorIs(t, err, registry.ErrInvalidValue)

	n, _ := f.sess.Engine().Node("t")
	assert.Equal(t, chart.TextData{Text: "new", FontSize: 20}, n.Data)
	assert.Contains(t, f.logs.String(), "edit rejected")
}

func TestToggleContacted(t *testing.T) {
	f := newFixture(t)
	f.start(t, chart.Snapshot{Nodes: []chart.Node{
		{ID: "p", Data: chart.PersonData{Name: "田中"}},
		{ID: "t", Data: chart.TextData{}},
	}})

	assert.True(t, f.sess.ToggleContacted("p"))
	n, _ := f.sess.Engine().Node("p")
	p, _ := n.Person()
	assert.True(t, p.IsContacted)
	assert.Equal(t, chart.OpacityContacted, p.Opacity())

	assert.False(t, f.sess.ToggleContacted("t"))
	assert.False(t, f.sess.ToggleContacted("ghost"))
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	f.start(t, chart.Snapshot{Nodes: []chart.Node{
		{ID: "img", Data: chart.ImageData{Alt: "logo"}},
		{ID: "t", Data: chart.TextData{}},
	}})

	require.NoError(t, f.sess.UploadImage("img", pngHeader))
	n, _ := f.sess.Engine().Node("img")
	d := n.Data.(chart.ImageData)
	assert.True(t, strings.HasPrefix(d.Src, "data:image/png;base64,"))
	assert.Equal(t, "logo", d.Alt)

	err := f.sess.UploadImage("img", []byte("plain text"))
	assert.ErrorIs(t, err, registry.ErrInvalidValue)
	n, _ = f.sess.Engine().Node("img")
	assert.Equal(t, d, n.Data, "rejected upload must keep the previous image")

	assert.Error(t, f.sess.UploadImage("t", pngHeader))
	assert.True(t, errors.Is(f.sess.UploadImage("ghost", pngHeader), ErrNoNode))
}
