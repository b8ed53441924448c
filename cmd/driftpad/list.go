package main

import (
	"fmt"
	"os"
	"time"

	"github.com/driftpad/driftpad/internal/note"
	"github.com/driftpad/driftpad/internal/ui"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"
)

var listSince string

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "notes",
	Short:   "List active notes",
	Long: `List active notes, newest first. Tombstoned notes are hidden even
while their deletion is still awaiting upload.

--since accepts natural language, e.g. "yesterday" or "3 days ago".`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var cutoff time.Time
		if listSince != "" {
			t, err := parseSince(listSince)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			cutoff = t
		}

		cfg := mustLoadConfig()
		st := mustOpenStore(cfg)
		defer st.Close()

		notes, err := st.ListActive(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing notes: %v\n", err)
			os.Exit(1)
		}

		shown := 0
		for _, n := range notes {
			if !cutoff.IsZero() && n.UpdatedAt.Before(cutoff) {
				continue
			}
			shown++
			marker := " "
			if n.SyncState == note.SyncDirty {
				marker = "*"
			}
			fmt.Printf("%s %s  %s  %s\n",
				marker,
				ui.RenderDim(ui.ShortID(n.ID)),
				ui.RenderAccent(n.Title),
				ui.RenderDim(n.UpdatedAt.Local().Format("2006-01-02 15:04")))
		}

		if shown == 0 {
			fmt.Println(ui.RenderDim("no notes"))
		}
	},
}

// parseSince resolves a natural-language time expression relative to now.
func parseSince(expr string) (time.Time, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(expr, time.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", expr, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not understand time expression %q", expr)
	}
	return r.Time, nil
}

func init() {
	listCmd.Flags().StringVar(&listSince, "since", "", "only notes updated since this time (natural language ok)")
	rootCmd.AddCommand(listCmd)
}
