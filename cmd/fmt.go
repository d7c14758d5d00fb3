package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/modforge/core/cli"
	"github.com/modforge/core/document"
	"github.com/modforge/core/jsonval"
	"github.com/modforge/core/storage"
	"github.com/spf13/cobra"
)

func NewFmtCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt <file>...",
		Short: "Rewrite entity files in canonical form",
		Long: `Rewrites entity files with stable indentation while preserving key
order, so that files hand-edited in other tools diff cleanly afterwards.

With --check no file is modified; the command fails if any file is not
already canonical.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)
			files := storage.NewFileStore()

			var needFormatting []string
			for _, path := range args {
				id := document.ID(path)
				value, err := files.Load(id)
				if err != nil {
					return handler.Handle(err)
				}

				original, err := os.ReadFile(path)
				if err != nil {
					return handler.Handle(err)
				}
				canonical, err := jsonval.Encode(value)
				if err != nil {
					return handler.Handle(err)
				}
				if bytes.Equal(original, canonical) {
					continue
				}

				if check {
					needFormatting = append(needFormatting, path)
					continue
				}
				if err := files.Save(id, value); err != nil {
					return handler.Handle(err)
				}
				fmt.Printf("Formatted %s\n", path)
			}

			if len(needFormatting) > 0 {
				for _, path := range needFormatting {
					fmt.Printf("Not canonical: %s\n", path)
				}
				return fmt.Errorf("%d file(s) need formatting", len(needFormatting))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report files that are not canonical without rewriting them")
	return cmd
}
