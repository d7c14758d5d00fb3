package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modforge/core/document"
	"github.com/modforge/core/jsonval"
	"github.com/modforge/core/testutil"
)

func TestOpenEditSaveFlow(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteEntityFile(t, dir, "fighter.json", `{"name": "fighter", "hull": 400}`)

	ed := New()
	id, err := ed.Open(path)
	require.NoError(t, err)

	_, err = ed.Set(id, testutil.MustParsePath(t, "hull"), jsonval.Number(650))
	require.NoError(t, err)
	require.True(t, ed.IsDirty(id))

	require.NoError(t, ed.Save(id))
	assert.False(t, ed.IsDirty(id))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"hull\": 650")
	// Key order from the original file is preserved
	assert.Less(t, strings.Index(string(data), "name"), strings.Index(string(data), "hull"))
}

func TestSetCapturesOldValueForUndo(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteEntityFile(t, dir, "fighter.json", `{"name": "a"}`)

	ed := New()
	id, err := ed.Open(path)
	require.NoError(t, err)

	_, err = ed.Set(id, testutil.MustParsePath(t, "name"), jsonval.String("b"))
	require.NoError(t, err)

	v, err := ed.ValueAt(id, testutil.MustParsePath(t, "name"))
	require.NoError(t, err)
	assert.Equal(t, jsonval.String("b"), v)

	did, err := ed.Undo()
	require.NoError(t, err)
	require.True(t, did)

	v, err = ed.ValueAt(id, testutil.MustParsePath(t, "name"))
	require.NoError(t, err)
	assert.Equal(t, jsonval.String("a"), v)

	did, err = ed.Redo()
	require.NoError(t, err)
	require.True(t, did)

	v, err = ed.ValueAt(id, testutil.MustParsePath(t, "name"))
	require.NoError(t, err)
	assert.Equal(t, jsonval.String("b"), v)
}

func TestSetIntoMissingStructure(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteEntityFile(t, dir, "fighter.json", `{}`)

	ed := New()
	id, err := ed.Open(path)
	require.NoError(t, err)

	_, err = ed.Set(id, testutil.MustParsePath(t, "weapons[0].damage"), jsonval.Number(12))
	require.NoError(t, err)

	v, err := ed.ValueAt(id, testutil.MustParsePath(t, "weapons[0].damage"))
	require.NoError(t, err)
	assert.Equal(t, jsonval.Number(12), v)

	// Undo restores Null at the created location
	_, err = ed.Undo()
	require.NoError(t, err)
	v, err = ed.ValueAt(id, testutil.MustParsePath(t, "weapons[0].damage"))
	require.NoError(t, err)
	assert.Equal(t, jsonval.Null{}, v)
}

func TestOpenMissingFile(t *testing.T) {
	ed := New()
	_, err := ed.Open(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestCloseDiscardsState(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteEntityFile(t, dir, "fighter.json", `{"v": 1}`)

	ed := New()
	id, err := ed.Open(path)
	require.NoError(t, err)

	_, err = ed.Set(id, testutil.MustParsePath(t, "v"), jsonval.Number(2))
	require.NoError(t, err)

	ed.Close(id)

	assert.Empty(t, ed.Documents())
	assert.False(t, ed.IsDirty(id))
	assert.False(t, ed.CanUndo())

	_, err = ed.Snapshot(id)
	assert.Error(t, err)
}

func TestReloadNotifiesWholeDocument(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteEntityFile(t, dir, "fighter.json", `{"v": 1}`)

	ed := New()
	id, err := ed.Open(path)
	require.NoError(t, err)

	var gotFull bool
	ed.Subscribe(id, document.ObserverFunc(func(ev document.Event) error {
		gotFull = ev.Full
		return nil
	}))

	// Simulate an external on-disk edit
	testutil.WriteEntityFile(t, dir, "fighter.json", `{"v": 42}`)
	require.NoError(t, ed.Reload(id))

	assert.True(t, gotFull)
	v, err := ed.ValueAt(id, testutil.MustParsePath(t, "v"))
	require.NoError(t, err)
	assert.Equal(t, jsonval.Number(42), v)
}

func TestSaveAllContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	pathA := testutil.WriteEntityFile(t, dir, "a.json", `{"v": 1}`)
	pathB := testutil.WriteEntityFile(t, dir, "b.json", `{"v": 1}`)

	ed := New()
	idA, err := ed.Open(pathA)
	require.NoError(t, err)
	idB, err := ed.Open(pathB)
	require.NoError(t, err)

	_, err = ed.Set(idA, testutil.MustParsePath(t, "v"), jsonval.Number(2))
	require.NoError(t, err)
	_, err = ed.Set(idB, testutil.MustParsePath(t, "v"), jsonval.Number(2))
	require.NoError(t, err)

	require.NoError(t, ed.SaveAll())
	assert.False(t, ed.IsDirty(idA))
	assert.False(t, ed.IsDirty(idB))
}
