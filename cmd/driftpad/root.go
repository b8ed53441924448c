package main

import (
	"context"
	"fmt"
	"os"

	"github.com/driftpad/driftpad/internal/config"
	"github.com/driftpad/driftpad/internal/reconciler"
	"github.com/driftpad/driftpad/internal/remote"
	"github.com/driftpad/driftpad/internal/store"
	"github.com/driftpad/driftpad/internal/ui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "driftpad",
	Short: "Offline-first notes that converge with a shared remote",
	Long: `driftpad keeps short notes usable while offline and reconciles them
with a shared remote store once connectivity returns.

Edits land in a durable local database immediately and are pushed to the
remote on the next reconciliation pass. Deletes are tombstoned locally
until the remote confirms them. Conflicts resolve last-write-wins, never
discarding unsynced local work.`,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "notes", Title: "Note Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
	)
}

// mustLoadConfig loads configuration or exits.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// mustOpenStore opens the local note database or exits.
func mustOpenStore(cfg *config.Config) *store.SQLite {
	st, err := store.Open(cfg.StorePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening local store: %v\n", err)
		os.Exit(1)
	}
	return st
}

// dialRemote connects to the configured remote authority.
func dialRemote(cfg *config.Config) (*remote.LibSQL, error) {
	if cfg.RemoteURL == "" {
		return nil, fmt.Errorf("no remote configured (set remote_url in %s/config.yaml or DRIFTPAD_REMOTE_URL)", cfg.DataDir)
	}
	return remote.Dial(cfg.RemoteURL)
}

// syncOnce runs a single reconciliation pass against the configured
// remote. Used by the mutating commands so an edit is offered to the
// remote right away when one is configured; failures degrade to the
// offline indicator rather than failing the command.
func syncOnce(cfg *config.Config, st *store.SQLite) {
	if cfg.RemoteURL == "" {
		return
	}

	rc, err := dialRemote(cfg)
	if err != nil {
		fmt.Println(ui.RenderStatus("offline"))
		return
	}
	defer rc.Close()

	rec := reconciler.New(st, rc, nil)
	if _, err := rec.Run(context.Background()); err != nil {
		fmt.Println(ui.RenderStatus("offline"))
		return
	}
	fmt.Println(ui.RenderStatus("idle"))
}
