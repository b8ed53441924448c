package main

import (
	"fmt"
	"os"

	"github.com/driftpad/driftpad/internal/store"
	"github.com/driftpad/driftpad/internal/ui"
	"github.com/spf13/cobra"
)

var (
	editTitle   string
	editContent string
)

var editCmd = &cobra.Command{
	Use:     "edit <id>",
	GroupID: "notes",
	Short:   "Edit a note's title or content",
	Long: `Edit a note in the local store. Unset fields keep their current
value. The note is marked for upload on the next reconciliation pass.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("content") {
			fmt.Fprintln(os.Stderr, "Error: nothing to change (pass --title or --content)")
			os.Exit(1)
		}

		var p store.Partial
		if cmd.Flags().Changed("title") {
			p.Title = &editTitle
		}
		if cmd.Flags().Changed("content") {
			p.Content = &editContent
		}

		cfg := mustLoadConfig()
		st := mustOpenStore(cfg)
		defer st.Close()

		if err := st.Update(cmd.Context(), args[0], p); err != nil {
			fmt.Fprintf(os.Stderr, "Error updating note: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s %s\n", ui.RenderAccent("Updated"), args[0])
		syncOnce(cfg, st)
	},
}

func init() {
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "new title")
	editCmd.Flags().StringVarP(&editContent, "content", "c", "", "new content")
	rootCmd.AddCommand(editCmd)
}
