package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/driftpad/driftpad/internal/note"
	"github.com/driftpad/driftpad/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	newTitle   string
	newContent string
)

var newCmd = &cobra.Command{
	Use:     "new [title]",
	GroupID: "notes",
	Short:   "Create a note",
	Long: `Create a note in the local store. The note gets a fresh id and is
marked for upload on the next reconciliation pass, so creation works
offline.

With no arguments on an interactive terminal, prompts for title and
content.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title := newTitle
		if len(args) > 0 {
			title = args[0]
		}
		content := newContent

		if title == "" && term.IsTerminal(int(os.Stdin.Fd())) {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Title").
						Value(&title),
					huh.NewText().
						Title("Content").
						Value(&content),
				),
			)
			if err := form.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		n := note.New(title, content)
		if err := n.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cfg := mustLoadConfig()
		st := mustOpenStore(cfg)
		defer st.Close()

		if err := st.Create(cmd.Context(), n); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating note: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s %s\n", ui.RenderAccent("Created"), n.ID)
		syncOnce(cfg, st)
	},
}

func init() {
	newCmd.Flags().StringVarP(&newTitle, "title", "t", "", "note title")
	newCmd.Flags().StringVarP(&newContent, "content", "c", "", "note content")
	rootCmd.AddCommand(newCmd)
}
