package main

import (
	"context"
	"fmt"
	"time"

	"github.com/driftpad/driftpad/internal/note"
	"github.com/driftpad/driftpad/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "sync",
	Short:   "Show sync status",
	Long: `Show the sync indicator and any work still awaiting upload:
unsynced edits and deletes that have not been confirmed by the remote.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		st := mustOpenStore(cfg)
		defer st.Close()

		dirty, err := st.ListDirty(cmd.Context())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return
		}

		reachable := false
		if cfg.RemoteURL != "" {
			if rc, err := dialRemote(cfg); err == nil {
				ctx, cancel := context.WithTimeout(cmd.Context(), cfg.PingTimeout)
				reachable = rc.Ping(ctx) == nil
				cancel()
				rc.Close()
			}
		}

		switch {
		case !reachable:
			fmt.Println(ui.RenderStatus("offline"))
		case len(dirty) > 0:
			fmt.Println(ui.RenderStatus("syncing"))
		default:
			fmt.Println(ui.RenderStatus("idle"))
		}

		if len(dirty) == 0 {
			fmt.Println(ui.RenderDim("nothing pending"))
			return
		}

		fmt.Printf("%d pending:\n", len(dirty))
		for _, n := range dirty {
			kind := "edit"
			if n.Lifecycle == note.LifecycleTombstoned {
				kind = "delete"
			}
			fmt.Printf("  %s %s  %s\n",
				ui.RenderDim(ui.ShortID(n.ID)),
				kind,
				ui.RenderDim(n.UpdatedAt.Local().Format(time.RFC822)))
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
