package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modforge/core/cli"
	"github.com/modforge/core/document"
	"github.com/modforge/core/editor"
	"github.com/modforge/core/util/pathutil"
	"github.com/modforge/core/watch"
	"github.com/spf13/cobra"
)

func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>...",
		Short: "Follow external changes to entity files",
		Long: `Opens the given entity files and reloads them whenever they change on
disk, printing each change. Useful while hand-editing files in another
editor to confirm they still parse.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return handler.Handle(err)
			}

			// Documents are keyed by the normalized path so that watcher
			// events resolve to the open document regardless of how the
			// path was spelled on the command line.
			files := make([]string, 0, len(args))
			for _, arg := range args {
				file, err := resolveDocumentArg(arg)
				if err != nil {
					return handler.Handle(err)
				}
				file, err = pathutil.NormalizeForLookup(file)
				if err != nil {
					return handler.Handle(err)
				}
				files = append(files, file)
			}

			ed := editor.NewWithConfig(cfg)
			for _, path := range files {
				id, err := ed.Open(path)
				if err != nil {
					return handler.Handle(err)
				}
				ed.Subscribe(id, document.ObserverFunc(func(ev document.Event) error {
					if ev.Full {
						fmt.Printf("Reloaded %s\n", ev.Doc)
					}
					return nil
				}))
			}

			debounce := time.Duration(cfg.Editor.WatchDebounceMs) * time.Millisecond
			watcher, err := watch.New(debounce, func(path string) {
				if err := ed.Reload(document.ID(path)); err != nil {
					handler.Handle(err)
				}
			})
			if err != nil {
				return err
			}
			defer watcher.Close()

			for _, path := range files {
				if err := watcher.Add(path); err != nil {
					return err
				}
			}

			fmt.Printf("Watching %d file(s), press Ctrl-C to stop\n", len(args))
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
	return cmd
}
