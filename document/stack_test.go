package document

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modforge/core/errors"
	"github.com/modforge/core/jsonval"
)

func newFixture(t *testing.T) (*Store, *Notifier, *Stack) {
	t.Helper()
	store := NewStore()
	notifier := NewNotifier()
	return store, notifier, NewStack(store, notifier)
}

func snapshotField(t *testing.T, store *Store, id ID, field string) jsonval.Value {
	t.Helper()
	snap, err := store.Get(id)
	require.NoError(t, err)
	v, _ := snap.(*jsonval.Object).Get(field)
	return v
}

type memSaver struct {
	saved map[ID]jsonval.Value
	fail  error
}

func newMemSaver() *memSaver {
	return &memSaver{saved: make(map[ID]jsonval.Value)}
}

func (m *memSaver) Save(id ID, data jsonval.Value) error {
	if m.fail != nil {
		return m.fail
	}
	m.saved[id] = data
	return nil
}

func TestPushAppliesEditAndTracksHistory(t *testing.T) {
	store, _, stack := newFixture(t)
	store.Register("doc", jsonval.NewObject().Set("name", jsonval.String("a")))

	pushed, err := stack.Push(NewCommand("doc", Path{Field("name")}, jsonval.String("a"), jsonval.String("b")))
	require.NoError(t, err)
	require.True(t, pushed)

	assert.Equal(t, jsonval.String("b"), snapshotField(t, store, "doc", "name"))
	assert.True(t, stack.IsDirty("doc"))
	assert.Equal(t, 1, stack.UndoDepth())
	assert.Zero(t, stack.RedoDepth())
}

func TestUndoRedoScenario(t *testing.T) {
	store, _, stack := newFixture(t)
	store.Register("doc", jsonval.NewObject().Set("name", jsonval.String("a")))

	_, err := stack.Push(NewCommand("doc", Path{Field("name")}, jsonval.String("a"), jsonval.String("b")))
	require.NoError(t, err)

	// Undo restores the old value but the document stays dirty
	did, err := stack.Undo()
	require.NoError(t, err)
	require.True(t, did)
	assert.Equal(t, jsonval.String("a"), snapshotField(t, store, "doc", "name"))
	assert.True(t, stack.IsDirty("doc"))
	assert.Zero(t, stack.UndoDepth())
	assert.Equal(t, 1, stack.RedoDepth())

	// Redo re-applies the new value
	did, err = stack.Redo()
	require.NoError(t, err)
	require.True(t, did)
	assert.Equal(t, jsonval.String("b"), snapshotField(t, store, "doc", "name"))
	assert.Equal(t, 1, stack.UndoDepth())
	assert.Zero(t, stack.RedoDepth())
}

func TestUndoRedoRoundTripIdentity(t *testing.T) {
	store, _, stack := newFixture(t)
	initial := jsonval.NewObject().
		Set("name", jsonval.String("fighter")).
		Set("hull", jsonval.Number(400)).
		Set("weapons", jsonval.Array{jsonval.String("laser")})
	store.Register("doc", initial)
	before, err := store.Get("doc")
	require.NoError(t, err)

	// Every edit targets a pre-existing path; undoing a structure-creating
	// edit is covered separately below.
	edits := []struct {
		path Path
		old  jsonval.Value
		new  jsonval.Value
	}{
		{Path{Field("name")}, jsonval.String("fighter"), jsonval.String("bomber")},
		{Path{Field("hull")}, jsonval.Number(400), jsonval.Number(650)},
		{Path{Field("weapons"), Index(0)}, jsonval.String("laser"), jsonval.String("beam")},
	}
	for _, e := range edits {
		_, err := stack.Push(NewCommand("doc", e.path, e.old, e.new))
		require.NoError(t, err)
	}
	after, err := store.Get("doc")
	require.NoError(t, err)

	for stack.CanUndo() {
		_, err := stack.Undo()
		require.NoError(t, err)
	}
	restored, err := store.Get("doc")
	require.NoError(t, err)
	assert.True(t, jsonval.Equal(before, restored), "undoing everything restores the pre-push snapshot")

	for stack.CanRedo() {
		_, err := stack.Redo()
		require.NoError(t, err)
	}
	replayed, err := store.Get("doc")
	require.NoError(t, err)
	assert.True(t, jsonval.Equal(after, replayed), "redoing everything restores the post-push snapshot")
}

func TestUndoOfCreatingEditWritesNullBack(t *testing.T) {
	store, _, stack := newFixture(t)
	store.Register("doc", jsonval.NewObject().Set("name", jsonval.String("fighter")))

	// weapons does not exist yet; push creates weapons: ["beam"]
	_, err := stack.Push(NewCommand("doc", Path{Field("weapons"), Index(0)}, jsonval.Null{}, jsonval.String("beam")))
	require.NoError(t, err)
	assert.True(t, jsonval.Equal(jsonval.Array{jsonval.String("beam")}, snapshotField(t, store, "doc", "weapons")))

	// Undo writes the captured old value back at the path. The created
	// containers stay; the slot holds null, it is not deleted.
	did, err := stack.Undo()
	require.NoError(t, err)
	require.True(t, did)
	assert.True(t, jsonval.Equal(jsonval.Array{jsonval.Null{}}, snapshotField(t, store, "doc", "weapons")))

	did, err = stack.Redo()
	require.NoError(t, err)
	require.True(t, did)
	assert.True(t, jsonval.Equal(jsonval.Array{jsonval.String("beam")}, snapshotField(t, store, "doc", "weapons")))
}

func TestPushClearsRedoHistory(t *testing.T) {
	store, _, stack := newFixture(t)
	store.Register("doc", jsonval.NewObject().Set("v", jsonval.Number(1)))

	_, err := stack.Push(NewCommand("doc", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2)))
	require.NoError(t, err)
	_, err = stack.Undo()
	require.NoError(t, err)
	require.True(t, stack.CanRedo())

	_, err = stack.Push(NewCommand("doc", Path{Field("v")}, jsonval.Number(1), jsonval.Number(3)))
	require.NoError(t, err)

	assert.False(t, stack.CanRedo())
	did, err := stack.Redo()
	require.NoError(t, err)
	assert.False(t, did, "redo after a fresh push is a no-op")
	assert.Equal(t, jsonval.Number(3), snapshotField(t, store, "doc", "v"))
}

func TestPushUnknownDocument(t *testing.T) {
	_, _, stack := newFixture(t)
	pushed, err := stack.Push(NewCommand("ghost", Path{Field("v")}, jsonval.Null{}, jsonval.Number(1)))
	assert.False(t, pushed)
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownDocument))
}

func TestReentrantPushRejected(t *testing.T) {
	store, _, stack := newFixture(t)
	store.Register("doc", jsonval.NewObject().Set("v", jsonval.Number(1)))

	var nestedPushed bool
	cmd := NewCommand("doc", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2))
	cmd.Apply = func() error {
		nested := NewCommand("doc", Path{Field("v")}, jsonval.Number(2), jsonval.Number(99))
		ok, err := stack.Push(nested)
		nestedPushed = ok
		return err
	}

	pushed, err := stack.Push(cmd)
	require.NoError(t, err)
	require.True(t, pushed)

	assert.False(t, nestedPushed, "re-entrant push must be rejected")
	assert.Equal(t, 1, stack.UndoDepth())
	assert.Equal(t, jsonval.Number(2), snapshotField(t, store, "doc", "v"))
}

func TestReentrantPushFromObserverRejected(t *testing.T) {
	store, notifier, stack := newFixture(t)
	store.Register("doc", jsonval.NewObject().Set("v", jsonval.Number(1)))

	var nestedPushed bool
	notifier.Subscribe("doc", ObserverFunc(func(ev Event) error {
		ok, err := stack.Push(NewCommand("doc", Path{Field("v")}, ev.Value, jsonval.Number(99)))
		nestedPushed = ok
		return err
	}))

	_, err := stack.Push(NewCommand("doc", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2)))
	require.NoError(t, err)

	assert.False(t, nestedPushed)
	assert.Equal(t, 1, stack.UndoDepth())
}

func TestEffectFailureDoesNotBlockMutation(t *testing.T) {
	store, _, stack := newFixture(t)
	store.Register("doc", jsonval.NewObject().Set("v", jsonval.Number(1)))

	cmd := NewCommand("doc", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2)).
		WithEffects(
			func() error { return fmt.Errorf("widget torn down") },
			func() error { panic("revert exploded") },
		)

	pushed, err := stack.Push(cmd)
	require.NoError(t, err)
	require.True(t, pushed)
	assert.Equal(t, jsonval.Number(2), snapshotField(t, store, "doc", "v"))

	// The panicking revert effect is contained too
	did, err := stack.Undo()
	require.NoError(t, err)
	require.True(t, did)
	assert.Equal(t, jsonval.Number(1), snapshotField(t, store, "doc", "v"))
}

func TestObserverFailureDoesNotAffectSnapshot(t *testing.T) {
	store, notifier, stack := newFixture(t)
	store.Register("doc", jsonval.NewObject().Set("v", jsonval.Number(1)))

	var secondSawValue jsonval.Value
	notifier.Subscribe("doc", ObserverFunc(func(ev Event) error {
		return fmt.Errorf("broken observer")
	}))
	notifier.Subscribe("doc", ObserverFunc(func(ev Event) error {
		secondSawValue = ev.Value
		return nil
	}))

	_, err := stack.Push(NewCommand("doc", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2)))
	require.NoError(t, err)

	assert.Equal(t, jsonval.Number(2), secondSawValue)
	assert.Equal(t, jsonval.Number(2), snapshotField(t, store, "doc", "v"))
}

func TestObserverReceivesPushEvents(t *testing.T) {
	store, notifier, stack := newFixture(t)
	store.Register("doc", jsonval.NewObject().Set("v", jsonval.Number(1)))

	var events []Event
	notifier.Subscribe("doc", ObserverFunc(func(ev Event) error {
		events = append(events, ev)
		return nil
	}))

	cmd := NewCommand("doc", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2)).WithOrigin("editor-pane")
	_, err := stack.Push(cmd)
	require.NoError(t, err)
	_, err = stack.Undo()
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, jsonval.Number(2), events[0].Value)
	assert.Equal(t, "editor-pane", events[0].Origin)
	assert.Equal(t, jsonval.Number(1), events[1].Value, "undo notifies with the old value")
	assert.True(t, events[0].Path.Equal(Path{Field("v")}))
}

func TestPersistClearsDirtyOnlyOnSuccess(t *testing.T) {
	store, _, stack := newFixture(t)
	store.Register("doc", jsonval.NewObject().Set("v", jsonval.Number(1)))

	_, err := stack.Push(NewCommand("doc", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2)))
	require.NoError(t, err)
	require.True(t, stack.IsDirty("doc"))

	saver := newMemSaver()
	saver.fail = fmt.Errorf("disk full")
	err = stack.Persist("doc", saver)
	require.Error(t, err)
	assert.True(t, stack.IsDirty("doc"), "failed persist leaves the dirty flag set")

	saver.fail = nil
	require.NoError(t, stack.Persist("doc", saver))
	assert.False(t, stack.IsDirty("doc"))
	v, _ := saver.saved["doc"].(*jsonval.Object).Get("v")
	assert.Equal(t, jsonval.Number(2), v)
}

func TestUndoAfterPersistMarksDirtyAgain(t *testing.T) {
	store, _, stack := newFixture(t)
	store.Register("doc", jsonval.NewObject().Set("v", jsonval.Number(1)))

	_, err := stack.Push(NewCommand("doc", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2)))
	require.NoError(t, err)
	require.NoError(t, stack.Persist("doc", newMemSaver()))
	require.False(t, stack.IsDirty("doc"))

	// Undo lands on a state identical to before the edit, but dirty is
	// still set: only a successful persist clears it
	_, err = stack.Undo()
	require.NoError(t, err)
	assert.True(t, stack.IsDirty("doc"))
}

func TestUndoRedoEmptyHistories(t *testing.T) {
	_, _, stack := newFixture(t)

	did, err := stack.Undo()
	require.NoError(t, err)
	assert.False(t, did)

	did, err = stack.Redo()
	require.NoError(t, err)
	assert.False(t, did)

	assert.False(t, stack.CanUndo())
	assert.False(t, stack.CanRedo())
}

func TestForgetDropsDocumentHistory(t *testing.T) {
	store, _, stack := newFixture(t)
	store.Register("a", jsonval.NewObject().Set("v", jsonval.Number(1)))
	store.Register("b", jsonval.NewObject().Set("v", jsonval.Number(1)))

	_, err := stack.Push(NewCommand("a", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2)))
	require.NoError(t, err)
	_, err = stack.Push(NewCommand("b", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2)))
	require.NoError(t, err)

	stack.Forget("a")

	assert.False(t, stack.IsDirty("a"))
	assert.True(t, stack.IsDirty("b"))
	assert.Equal(t, 1, stack.UndoDepth())

	// The remaining undo entry belongs to b
	_, err = stack.Undo()
	require.NoError(t, err)
	assert.Equal(t, jsonval.Number(1), snapshotField(t, store, "b", "v"))
}

func TestDirtyDocumentsSorted(t *testing.T) {
	store, _, stack := newFixture(t)
	store.Register("b", jsonval.NewObject().Set("v", jsonval.Number(1)))
	store.Register("a", jsonval.NewObject().Set("v", jsonval.Number(1)))

	_, err := stack.Push(NewCommand("b", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2)))
	require.NoError(t, err)
	_, err = stack.Push(NewCommand("a", Path{Field("v")}, jsonval.Number(1), jsonval.Number(2)))
	require.NoError(t, err)

	assert.Equal(t, []ID{"a", "b"}, stack.DirtyDocuments())
}
