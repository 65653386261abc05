/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/metadata-dump/internal/termfmt"
	"github.com/toothbrush/metadata-dump/metadata"
	"github.com/toothbrush/metadata-dump/salesforce"
	"golang.org/x/exp/slices"
)

var listTypesUsage = strings.TrimSpace(`
Show which metadata types, and so which listMetadata queries, a set of globs reaches.  Doesn't talk
to the org.  With no globs, the whole type table is shown.
`)

var listTypesCmd = &cobra.Command{
	Use:   "types [globs...]",
	Short: "Print metadata types the globs reach",
	Long:  listTypesUsage,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := metadata.ValidateGlobs(args); err != nil {
			return fmt.Errorf("list: %w", err)
		}
		tbl, err := loadTable()
		if err != nil {
			return err
		}

		printTypes(os.Stdout, tbl.Resolve(metadata.DefaultGlobs(args)))
		return nil
	},
}

func printTypes(w io.Writer, types []metadata.Type) {
	fmt.Fprintf(w, "types:\n")
	for _, t := range types {
		kind := "*." + t.Suffix
		switch {
		case t.Suffix == "" && t.InFolder:
			kind = "<folder>/*"
		case t.Suffix == "":
			kind = "<bundle>/"
		case t.InFolder:
			kind = "<folder>/*." + t.Suffix
		}
		fmt.Fprintf(w, "  - %-28s %s/%s\n", termfmt.Bold().V(t.Name), t.Folder, termfmt.Fg(termfmt.Yellow).V(kind))
	}
	queries := fmt.Sprintf("%d listMetadata queries", len(metadata.Group(types, salesforce.MaxListMetadataQueries)))
	if slices.ContainsFunc(types, func(t metadata.Type) bool { return t.FolderType != "" }) {
		queries += ", plus one per folder"
	}
	fmt.Fprintf(w, "%d types, %s\n", len(types), queries)
}

func init() {
	listCmd.AddCommand(listTypesCmd)
}
