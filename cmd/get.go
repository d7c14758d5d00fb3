package cmd

import (
	"fmt"

	"github.com/modforge/core/cli"
	"github.com/modforge/core/document"
	"github.com/modforge/core/editor"
	"github.com/modforge/core/jsonval"
	"github.com/modforge/core/logging"
	"github.com/modforge/core/state"
	"github.com/modforge/core/util/pathutil"
	"github.com/spf13/cobra"
)

// resolveDocumentArg expands ~ and environment variables in a file
// argument and records the result in the recent-document list. State
// write failures are logged rather than surfaced; they must not block
// the actual command.
func resolveDocumentArg(arg string) (string, error) {
	path, err := pathutil.Expand(arg)
	if err != nil {
		return "", err
	}
	if err := state.RecordRecentDocument(path); err != nil {
		logging.NewLogger("cli").WithError(err).Debug("Failed to record recent document")
	}
	return path, nil
}

func NewGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <file> [path]",
		Short: "Print the value at a path inside an entity file",
		Long: `Reads an entity file and prints the value at the given path, e.g.

  modforge get units/fighter.json weapons[0].damage

With no path the whole document is printed in canonical form.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			path := document.Path{}
			if len(args) == 2 {
				var err error
				path, err = document.ParsePath(args[1])
				if err != nil {
					return handler.Handle(err)
				}
			}

			file, err := resolveDocumentArg(args[0])
			if err != nil {
				return handler.Handle(err)
			}

			ed := editor.New()
			id, err := ed.Open(file)
			if err != nil {
				return handler.Handle(err)
			}

			value, err := ed.ValueAt(id, path)
			if err != nil {
				return handler.Handle(err)
			}

			data, err := jsonval.Encode(value)
			if err != nil {
				return handler.Handle(err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
	return cmd
}
