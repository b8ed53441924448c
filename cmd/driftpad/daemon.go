package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/driftpad/driftpad/internal/coalescer"
	"github.com/driftpad/driftpad/internal/dashboard"
	"github.com/driftpad/driftpad/internal/logging"
	"github.com/driftpad/driftpad/internal/note"
	"github.com/driftpad/driftpad/internal/reconciler"
	"github.com/driftpad/driftpad/internal/scheduler"
	"github.com/driftpad/driftpad/internal/watcher"
	"github.com/spf13/cobra"
)

var daemonNoDashboard bool

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	GroupID: "sync",
	Short:   "Run the background sync daemon",
	Long: `Run the long-lived sync loop: periodic reconciliation passes against
the remote, a drafts directory watched for edits, and an optional
WebSocket dashboard.

Each active note is materialized as <data_dir>/drafts/<id>.md. Saving a
draft updates the note after a short debounce; deleting a draft deletes
the note. Edits made while the remote is unreachable are uploaded when
connectivity returns.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		logw := logging.Writer(logging.Options{
			File:       cfg.LogFile,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
		})
		logger := logging.New(logw, "[daemon] ")

		st := mustOpenStore(cfg)
		defer st.Close()

		rc, err := dialRemote(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer rc.Close()

		var dash *dashboard.Server
		if !daemonNoDashboard && cfg.DashboardPort > 0 {
			dash = dashboard.NewServer(&dashboard.Config{
				Port:   cfg.DashboardPort,
				Logger: logging.New(logw, "[dash] "),
			})
			if err := dash.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "Error starting dashboard: %v\n", err)
				os.Exit(1)
			}
			defer dash.Stop()
			logger.Printf("Dashboard listening on %s", dash.Addr())
		}

		rec := reconciler.New(st, rc, logging.New(logw, "[reconcile] "))

		schedCfg := &scheduler.Config{
			Interval:    cfg.SyncInterval,
			PingTimeout: cfg.PingTimeout,
			Logger:      logging.New(logw, "[sched] "),
		}
		if dash != nil {
			schedCfg.OnState = func(st scheduler.State) { dash.BroadcastStatus(string(st)) }
			schedCfg.OnPass = dash.BroadcastPass
		}
		sched, err := scheduler.New(rec, rc, schedCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		co := coalescer.New(st, sched, cfg.DebounceDelay, logging.New(logw, "[coalesce] "))
		defer co.Close()

		if err := seedDrafts(cmd.Context(), cfg.DraftsDir(), st); err != nil {
			fmt.Fprintf(os.Stderr, "Error preparing drafts: %v\n", err)
			os.Exit(1)
		}

		w, err := watcher.New(cfg.DraftsDir(), st, co, sched, logging.New(logw, "[watch] "))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		sched.Start()
		if err := w.Start(); err != nil {
			sched.Stop()
			fmt.Fprintf(os.Stderr, "Error starting watcher: %v\n", err)
			os.Exit(1)
		}

		logger.Printf("Daemon running (drafts: %s, interval: %s)", cfg.DraftsDir(), cfg.SyncInterval)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		logger.Println("Shutting down")
		_ = w.Stop()
		co.Flush()
		sched.Stop()
	},
}

type storeLister interface {
	ListActive(ctx context.Context) ([]*note.Note, error)
}

// seedDrafts writes one draft file per active note so the drafts
// directory reflects the current local state before watching begins.
func seedDrafts(ctx context.Context, draftsDir string, st storeLister) error {
	notes, err := st.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, n := range notes {
		if err := watcher.WriteDraft(draftsDir, n.ID, n.Title, n.Content); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	daemonCmd.Flags().BoolVar(&daemonNoDashboard, "no-dashboard", false, "disable the WebSocket dashboard")
	rootCmd.AddCommand(daemonCmd)
}
