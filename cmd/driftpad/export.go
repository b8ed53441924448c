package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/driftpad/driftpad/internal/note"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// exportDoc is the on-disk shape for export and import.
type exportDoc struct {
	ExportedAt time.Time    `yaml:"exported_at" toml:"exported_at"`
	Notes      []*note.Note `yaml:"notes" toml:"notes"`
}

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "notes",
	Short:   "Export active notes to YAML or TOML",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		st := mustOpenStore(cfg)
		defer st.Close()

		notes, err := st.ListActive(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing notes: %v\n", err)
			os.Exit(1)
		}

		doc := exportDoc{ExportedAt: time.Now().UTC(), Notes: notes}

		var out io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		switch exportFormat {
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			err = enc.Encode(doc)
			if err == nil {
				err = enc.Close()
			}
		case "toml":
			err = toml.NewEncoder(out).Encode(doc)
		default:
			err = fmt.Errorf("unknown format %q (want yaml or toml)", exportFormat)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "output format (yaml or toml)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
