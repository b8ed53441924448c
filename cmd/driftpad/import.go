package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/driftpad/driftpad/internal/note"
	"github.com/driftpad/driftpad/internal/store"
	"github.com/driftpad/driftpad/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "notes",
	Short:   "Import notes from a YAML or TOML export",
	Long: `Import notes from a file written by 'driftpad export'. Notes that
already exist locally are updated; new ones are created. Imported notes
are marked for upload on the next reconciliation pass.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var doc exportDoc
		switch filepath.Ext(args[0]) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &doc)
		case ".toml":
			err = toml.Unmarshal(data, &doc)
		default:
			err = fmt.Errorf("unknown file extension %q (want .yaml, .yml, or .toml)", filepath.Ext(args[0]))
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", args[0], err)
			os.Exit(1)
		}

		cfg := mustLoadConfig()
		st := mustOpenStore(cfg)
		defer st.Close()

		created, updated := 0, 0
		for _, n := range doc.Notes {
			_, err := st.Get(cmd.Context(), n.ID)
			switch {
			case err == nil:
				p := store.Partial{Title: &n.Title, Content: &n.Content}
				if err := st.Update(cmd.Context(), n.ID, p); err != nil {
					fmt.Fprintf(os.Stderr, "Error updating %s: %v\n", n.ID, err)
					os.Exit(1)
				}
				updated++
			case errors.Is(err, store.ErrNotFound):
				n.SyncState = note.SyncDirty
				n.Lifecycle = note.LifecycleActive
				if err := n.Validate(); err != nil {
					fmt.Fprintf(os.Stderr, "Error: invalid note %s: %v\n", n.ID, err)
					os.Exit(1)
				}
				if err := st.Create(cmd.Context(), n); err != nil {
					fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", n.ID, err)
					os.Exit(1)
				}
				created++
			default:
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		fmt.Printf("%s %d created, %d updated\n", ui.RenderAccent("Imported"), created, updated)
		syncOnce(cfg, st)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
