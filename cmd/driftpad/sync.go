package main

import (
	"fmt"
	"os"

	"github.com/driftpad/driftpad/internal/reconciler"
	"github.com/driftpad/driftpad/internal/ui"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Run one reconciliation pass",
	Long: `Run a single reconciliation pass: push unsynced local changes and
tombstones to the remote, then pull remote changes down. Local edits
that have not been pushed are never overwritten by the pull.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		st := mustOpenStore(cfg)
		defer st.Close()

		rc, err := dialRemote(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer rc.Close()

		rec := reconciler.New(st, rc, nil)
		sum, err := rec.Run(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderError("Sync failed:"), err)
			os.Exit(1)
		}

		fmt.Println(ui.RenderStatus("idle"))
		fmt.Printf("pushed %d, purged %d, pulled %d", sum.Pushed, sum.Purged, sum.Pulled)
		if sum.Failed > 0 {
			fmt.Printf(", %s", ui.RenderError(fmt.Sprintf("%d failed (still pending)", sum.Failed)))
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
