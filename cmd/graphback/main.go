// Command graphback exports the contents of a remote graph database into
// local newline-delimited JSON files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "graphback",
		Short:        "Back up a remote graph database to local files",
		SilenceUsage: true,
	}

	root.AddCommand(newBackupCommand())
	root.AddCommand(newHistoryCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
