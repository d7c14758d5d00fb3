package cmd

import (
	"fmt"

	"github.com/modforge/core/cli"
	"github.com/modforge/core/document"
	"github.com/modforge/core/editor"
	"github.com/modforge/core/jsonval"
	"github.com/spf13/cobra"
)

func NewSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <file> <path> <value>",
		Short: "Write a value at a path inside an entity file",
		Long: `Applies one edit to an entity file and saves it, e.g.

  modforge set units/fighter.json weapons[0].damage 12.5
  modforge set units/fighter.json name '"bomber"'
  modforge set units/fighter.json loadout '{"slots": 2}'

The value is parsed as JSON; anything that is not valid JSON is taken as a
plain string. Missing intermediate objects and array elements are created.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			path, err := document.ParsePath(args[1])
			if err != nil {
				return handler.Handle(err)
			}

			value, err := jsonval.Decode([]byte(args[2]))
			if err != nil {
				value = jsonval.String(args[2])
			}

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return handler.Handle(err)
			}

			file, err := resolveDocumentArg(args[0])
			if err != nil {
				return handler.Handle(err)
			}

			ed := editor.NewWithConfig(cfg)
			id, err := ed.Open(file)
			if err != nil {
				return handler.Handle(err)
			}

			if _, err := ed.Set(id, path, value); err != nil {
				return handler.Handle(err)
			}
			if err := ed.Save(id); err != nil {
				return handler.Handle(err)
			}

			fmt.Printf("Updated %s at %s\n", args[0], path.String())
			return nil
		},
	}
	return cmd
}
