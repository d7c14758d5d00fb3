// Package editor ties the document store, command stack, change notifier
// and file storage into the facade a host UI drives: open, edit, undo,
// redo, save, close.
package editor

import (
	"github.com/modforge/core/config"
	"github.com/modforge/core/document"
	"github.com/modforge/core/errors"
	"github.com/modforge/core/jsonval"
	"github.com/modforge/core/logging"
	"github.com/modforge/core/storage"
	"github.com/sirupsen/logrus"
)

// Editor is a session over one or more open documents.
type Editor struct {
	store    *document.Store
	stack    *document.Stack
	notifier *document.Notifier
	files    *storage.FileStore
	logger   *logrus.Entry
}

// New creates an editor session with default settings.
func New() *Editor {
	return NewWithConfig(&config.Config{})
}

// NewWithConfig creates an editor session honoring the given tool
// configuration.
func NewWithConfig(cfg *config.Config) *Editor {
	store := document.NewStore()
	notifier := document.NewNotifier()
	return &Editor{
		store:    store,
		stack:    document.NewStack(store, notifier),
		notifier: notifier,
		files:    storage.NewFileStore().WithBackup(cfg.Editor.BackupOnSave),
		logger:   logging.NewLogger("editor"),
	}
}

// Open loads the file at path and registers it as an open document.
// Opening an already-open document reloads it from disk.
func (e *Editor) Open(path string) (document.ID, error) {
	id := document.ID(path)
	data, err := e.files.Load(id)
	if err != nil {
		return "", err
	}
	e.store.Register(id, data)
	e.logger.WithField("document", id).Info("Opened document")
	return id, nil
}

// Close drops the document: its snapshot, its dirty flag, its history
// entries and its observer registrations. Unsaved changes are discarded.
func (e *Editor) Close(id document.ID) {
	e.store.Unregister(id)
	e.stack.Forget(id)
	e.notifier.DropDocument(id)
	e.logger.WithField("document", id).Info("Closed document")
}

// Snapshot returns an independent copy of the document's current state.
func (e *Editor) Snapshot(id document.ID) (jsonval.Value, error) {
	return e.store.Get(id)
}

// ValueAt returns the value at path inside the document.
func (e *Editor) ValueAt(id document.ID, path document.Path) (jsonval.Value, error) {
	snapshot, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	value, ok := document.ValueAt(snapshot, path)
	if !ok {
		return nil, errors.InvalidInput("no value at path '" + path.String() + "'").
			WithDetail("document", string(id)).
			WithDetail("path", path.String())
	}
	return value, nil
}

// Set records and applies one edit: the value at path transitions to
// newValue. The old value is captured from the current snapshot; a missing
// location is captured as Null, so undoing the edit restores null at the
// path rather than removing it.
func (e *Editor) Set(id document.ID, path document.Path, newValue jsonval.Value) (*document.Command, error) {
	snapshot, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	oldValue, ok := document.ValueAt(snapshot, path)
	if !ok {
		oldValue = jsonval.Null{}
	}

	cmd := document.NewCommand(id, path, oldValue, newValue)
	pushed, err := e.stack.Push(cmd)
	if err != nil {
		return nil, err
	}
	if !pushed {
		return nil, errors.InvalidInput("edit rejected: another edit is in flight")
	}
	return cmd, nil
}

// Push forwards a caller-built command, giving the host control over
// effects and origin tags.
func (e *Editor) Push(cmd *document.Command) (bool, error) {
	return e.stack.Push(cmd)
}

// Undo reverses the most recent edit.
func (e *Editor) Undo() (bool, error) { return e.stack.Undo() }

// Redo re-applies the most recently undone edit.
func (e *Editor) Redo() (bool, error) { return e.stack.Redo() }

// CanUndo reports whether an undo is available.
func (e *Editor) CanUndo() bool { return e.stack.CanUndo() }

// CanRedo reports whether a redo is available.
func (e *Editor) CanRedo() bool { return e.stack.CanRedo() }

// IsDirty reports whether the document has unpersisted edits.
func (e *Editor) IsDirty(id document.ID) bool { return e.stack.IsDirty(id) }

// Save persists the document to disk, clearing its dirty flag on success.
func (e *Editor) Save(id document.ID) error {
	return e.stack.Persist(id, e.files)
}

// SaveAll persists every dirty document, continuing past individual
// failures and returning the first error encountered.
func (e *Editor) SaveAll() error {
	var firstErr error
	for _, id := range e.stack.DirtyDocuments() {
		if err := e.Save(id); err != nil {
			e.logger.WithField("document", id).WithError(err).Error("Failed to save document")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Reload re-reads the document from disk and swaps in the fresh snapshot,
// notifying observers of a whole-document change. The dirty flag is left
// alone: the on-disk content is now the authoritative base.
func (e *Editor) Reload(id document.ID) error {
	data, err := e.files.Load(id)
	if err != nil {
		return err
	}
	if err := e.store.Replace(id, data); err != nil {
		return err
	}
	e.notifier.Notify(document.Event{Doc: id, Full: true})
	e.logger.WithField("document", id).Info("Reloaded document from disk")
	return nil
}

// Subscribe registers an observer for the document's change events.
func (e *Editor) Subscribe(id document.ID, obs document.Observer) document.Subscription {
	return e.notifier.Subscribe(id, obs)
}

// Unsubscribe removes a subscription.
func (e *Editor) Unsubscribe(sub document.Subscription) {
	e.notifier.Unsubscribe(sub)
}

// Documents returns the open document identities in sorted order.
func (e *Editor) Documents() []document.ID { return e.store.IDs() }
