package document

import (
	"github.com/google/uuid"
	"github.com/modforge/core/jsonval"
)

// Effect is an optional side-effect hook attached to a command by the
// caller, typically to keep a view in sync. Effects may fail; a failure is
// logged and never blocks the data-model mutation.
type Effect func() error

// Command records one value transition at one path in one document. It is
// the unit of undo/redo and is immutable after construction, apart from its
// effect hooks being invoked.
type Command struct {
	Doc      ID
	Path     Path
	OldValue jsonval.Value
	NewValue jsonval.Value

	// Apply runs when the command executes forward (push, redo); Revert
	// runs on undo. Either may be nil.
	Apply  Effect
	Revert Effect

	// Origin is an opaque caller token carried through change events so
	// observers can tell self-caused changes from external ones.
	Origin string
}

// NewCommand builds a command for the transition old -> new at path. The
// caller captures the old value before the edit; the command never reads it
// back from the store. Origin defaults to a fresh unique token.
func NewCommand(doc ID, path Path, oldValue, newValue jsonval.Value) *Command {
	return &Command{
		Doc:      doc,
		Path:     path,
		OldValue: oldValue,
		NewValue: newValue,
		Origin:   uuid.NewString(),
	}
}

// WithEffects attaches the apply/revert hooks and returns the command.
func (c *Command) WithEffects(apply, revert Effect) *Command {
	c.Apply = apply
	c.Revert = revert
	return c
}

// WithOrigin overrides the generated origin token and returns the command.
func (c *Command) WithOrigin(tag string) *Command {
	c.Origin = tag
	return c
}
