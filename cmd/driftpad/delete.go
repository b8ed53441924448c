package main

import (
	"fmt"
	"os"

	"github.com/driftpad/driftpad/internal/ui"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	GroupID: "notes",
	Short:   "Delete a note",
	Long: `Delete a note. The note disappears from listings immediately but is
kept as a tombstone until the remote confirms the deletion, so deletes
made offline still propagate.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		st := mustOpenStore(cfg)
		defer st.Close()

		if err := st.MarkTombstoned(cmd.Context(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting note: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s %s\n", ui.RenderAccent("Deleted"), args[0])
		syncOnce(cfg, st)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
