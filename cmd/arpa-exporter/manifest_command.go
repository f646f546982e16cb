package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gostjobs/internal/archive"
	"gostjobs/internal/manifest"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect upload manifests",
	}
	manifestCmd.AddCommand(newManifestShowCommand(ctx))
	return manifestCmd
}

func newManifestShowCommand(ctx *commandContext) *cobra.Command {
	var schemaFlag string

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Parse a local manifest and list its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			version := cfg.Manifest.Schema
			if strings.TrimSpace(schemaFlag) != "" {
				version = schemaFlag
			}
			schema, err := manifest.LookupSchema(version)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open manifest: %w", err)
			}
			reader, err := manifest.NewReader(f, schema)
			if err != nil {
				_ = f.Close()
				return fmt.Errorf("read manifest header: %w", err)
			}
			defer reader.Close()

			var rows [][]string
			var rowErr error
			for {
				entry, err := reader.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					rowErr = err
					break
				}
				name, _ := archive.NormalizeName(entry.DestinationPath)
				rows = append(rows, []string{strconv.Itoa(entry.Line), entry.Identifier, name})
			}

			out := cmd.OutOrStdout()
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"Line", "Upload ID", "Entry"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
			}
			fmt.Fprintf(out, "%d entries (schema %s)\n", len(rows), schema.Version)
			if rowErr != nil {
				return fmt.Errorf("manifest invalid: %w", rowErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaFlag, "schema", "", "Manifest schema version (defaults to manifest.schema)")
	return cmd
}
