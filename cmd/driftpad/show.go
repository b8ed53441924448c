package main

import (
	"fmt"
	"os"

	"github.com/driftpad/driftpad/internal/note"
	"github.com/driftpad/driftpad/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	GroupID: "notes",
	Short:   "Show a note",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		st := mustOpenStore(cfg)
		defer st.Close()

		n, err := st.Get(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printNote(n)
	},
}

func printNote(n *note.Note) {
	fmt.Println(ui.RenderAccent(n.Title))
	fmt.Println(ui.RenderDim(fmt.Sprintf("%s  updated %s", n.ID, n.UpdatedAt.Local().Format("2006-01-02 15:04"))))
	if n.SyncState == note.SyncDirty {
		fmt.Println(ui.RenderDim("(pending upload)"))
	}
	if n.Content != "" {
		fmt.Println()
		fmt.Println(n.Content)
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
