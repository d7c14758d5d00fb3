package document

import (
	"sort"

	"github.com/modforge/core/errors"
	"github.com/modforge/core/jsonval"
	"github.com/modforge/core/logging"
	"github.com/sirupsen/logrus"
)

// Saver persists one document's snapshot; the storage collaborator
// implements it.
type Saver interface {
	Save(id ID, data jsonval.Value) error
}

// Stack orchestrates edits against the store and the notifier. It owns the
// undo and redo histories, the per-document dirty set, and the busy flag
// that rejects re-entrant calls from inside effect hooks or observers.
//
// The stack is single-threaded by contract: the host calls into it from one
// goroutine at a time, and the busy flag is a re-entrancy guard for that
// call stack, not a lock.
type Stack struct {
	store    *Store
	notifier *Notifier

	undo  []*Command
	redo  []*Command
	busy  bool
	dirty map[ID]struct{}

	logger *logrus.Entry
}

// NewStack creates a command stack operating on the given store and
// notifier.
func NewStack(store *Store, notifier *Notifier) *Stack {
	return &Stack{
		store:    store,
		notifier: notifier,
		dirty:    make(map[ID]struct{}),
		logger:   logging.NewLogger("command-stack"),
	}
}

// Push executes a new command: runs its apply effect, folds the new value
// into the document snapshot, marks the document dirty, notifies observers,
// records the command for undo, and clears the redo history.
//
// Returns false with no error when the stack is busy; a re-entrant push
// from inside an effect or observer is rejected, never queued. Returns an
// error when the document is unknown or the path conflicts with the
// existing data, in which case nothing was recorded.
func (s *Stack) Push(cmd *Command) (bool, error) {
	if s.busy {
		s.logger.WithField("document", cmd.Doc).Debug("Rejecting re-entrant push")
		return false, nil
	}

	snapshot, err := s.store.Get(cmd.Doc)
	if err != nil {
		return false, err
	}

	s.busy = true
	defer func() { s.busy = false }()

	s.runEffect("apply", cmd.Apply)

	newSnapshot, err := Write(snapshot, cmd.Path, cmd.NewValue)
	if err != nil {
		return false, err
	}
	if err := s.store.Replace(cmd.Doc, newSnapshot); err != nil {
		return false, err
	}

	s.dirty[cmd.Doc] = struct{}{}
	s.notifier.Notify(Event{Doc: cmd.Doc, Path: cmd.Path, Value: cmd.NewValue, Origin: cmd.Origin})

	s.undo = append(s.undo, cmd)
	s.redo = nil
	return true, nil
}

// Undo reverses the most recent command and moves it to the redo history.
// Returns false when there is nothing to undo or the stack is busy.
func (s *Stack) Undo() (bool, error) {
	if s.busy || len(s.undo) == 0 {
		return false, nil
	}
	cmd := s.undo[len(s.undo)-1]

	s.busy = true
	defer func() { s.busy = false }()

	s.runEffect("revert", cmd.Revert)

	if err := s.rewrite(cmd, cmd.OldValue); err != nil {
		return false, err
	}

	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, cmd)
	return true, nil
}

// Redo re-executes the most recently undone command and moves it back to
// the undo history. Returns false when there is nothing to redo or the
// stack is busy.
func (s *Stack) Redo() (bool, error) {
	if s.busy || len(s.redo) == 0 {
		return false, nil
	}
	cmd := s.redo[len(s.redo)-1]

	s.busy = true
	defer func() { s.busy = false }()

	s.runEffect("apply", cmd.Apply)

	if err := s.rewrite(cmd, cmd.NewValue); err != nil {
		return false, err
	}

	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, cmd)
	return true, nil
}

// rewrite folds value back into the command's document, marks it dirty and
// notifies observers. Shared by Undo and Redo.
func (s *Stack) rewrite(cmd *Command, value jsonval.Value) error {
	snapshot, err := s.store.Get(cmd.Doc)
	if err != nil {
		return err
	}
	newSnapshot, err := Write(snapshot, cmd.Path, value)
	if err != nil {
		return err
	}
	if err := s.store.Replace(cmd.Doc, newSnapshot); err != nil {
		return err
	}
	s.dirty[cmd.Doc] = struct{}{}
	s.notifier.Notify(Event{Doc: cmd.Doc, Path: cmd.Path, Value: value, Origin: cmd.Origin})
	return nil
}

// CanUndo reports whether the undo history is non-empty.
func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether the redo history is non-empty.
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// UndoDepth returns the number of commands available to undo.
func (s *Stack) UndoDepth() int { return len(s.undo) }

// RedoDepth returns the number of commands available to redo.
func (s *Stack) RedoDepth() int { return len(s.redo) }

// IsDirty reports whether the document has unpersisted mutations. The flag
// is set by push, undo and redo alike, even when an undo lands back on the
// last persisted state, and cleared only by a successful Persist.
func (s *Stack) IsDirty(id ID) bool {
	_, ok := s.dirty[id]
	return ok
}

// DirtyDocuments returns the dirty document identities in sorted order.
func (s *Stack) DirtyDocuments() []ID {
	ids := make([]ID, 0, len(s.dirty))
	for id := range s.dirty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Persist writes the document's current snapshot through the saver and
// clears its dirty flag. A failed save leaves the flag set and surfaces
// the error.
func (s *Stack) Persist(id ID, saver Saver) error {
	snapshot, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if err := saver.Save(id, snapshot); err != nil {
		return err
	}
	delete(s.dirty, id)
	return nil
}

// Forget drops the document's dirty flag and removes its commands from both
// histories. Called when a document is closed.
func (s *Stack) Forget(id ID) {
	delete(s.dirty, id)
	s.undo = dropCommands(s.undo, id)
	s.redo = dropCommands(s.redo, id)
}

func dropCommands(cmds []*Command, id ID) []*Command {
	kept := cmds[:0]
	for _, cmd := range cmds {
		if cmd.Doc != id {
			kept = append(kept, cmd)
		}
	}
	return kept
}

func (s *Stack) runEffect(stage string, effect Effect) {
	if effect == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("stage", stage).Errorf("Command effect panicked: %v", r)
		}
	}()
	if err := effect(); err != nil {
		s.logger.WithError(errors.EffectFailed(stage, err)).
			Warn("Command effect failed, data model update proceeds")
	}
}
