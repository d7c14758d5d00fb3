package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/modforge/core/cli"
	"github.com/modforge/core/state"
	"github.com/spf13/cobra"
)

func NewRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently edited entity files",
		Long: `Lists the entity files most recently touched by get and set in this
project, most recent first. The list lives in .modforge/state.yml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			recents, err := state.RecentDocuments()
			if err != nil {
				return handler.Handle(err)
			}

			if opts.JSONOutput {
				data, err := json.MarshalIndent(recents, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(recents) == 0 {
				fmt.Println("No recent documents")
				return nil
			}
			for _, path := range recents {
				fmt.Println(path)
			}
			return nil
		},
	}
	return cmd
}
