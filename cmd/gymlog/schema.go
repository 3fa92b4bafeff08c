// ABOUTME: CLI command for inspecting the live database schema.
// ABOUTME: Prints tables, foreign keys, indexes, and the declared relations.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/spf13/cobra"
)

var schemaCounts bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the database schema",
	Long: `Show the schema of the open store as the database reports it.

For each table this lists columns (type, nullability, default), foreign keys
with their ON DELETE rule, and indexes. The relations the loaders traverse
are listed at the end.

EXAMPLES:

  gymlog schema
  gymlog schema --counts                     # include row counts
  gymlog --backend postgres schema`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tables, err := repo.DescribeSchema(ctx)
		if err != nil {
			return fmt.Errorf("failed to describe schema: %w", err)
		}

		var counts map[string]int
		if schemaCounts {
			counts, err = repo.CountRows(ctx)
			if err != nil {
				return fmt.Errorf("failed to count rows: %w", err)
			}
		}

		bold := color.New(color.Bold)
		faint := color.New(color.Faint)
		fmt.Printf("Backend: %s\n", repo.Dialect())
		if repo.Path() != "" {
			fmt.Printf("Path: %s\n", repo.Path())
		}

		for _, t := range tables {
			header := t.Name
			if counts != nil {
				header = fmt.Sprintf("%s (%d rows)", t.Name, counts[t.Name])
			}
			fmt.Printf("\n%s\n", bold.Sprint(header))

			for _, c := range t.Columns {
				var attrs []string
				if c.PrimaryKey {
					attrs = append(attrs, "primary key")
				}
				if !c.Nullable {
					attrs = append(attrs, "not null")
				}
				if c.Default != nil {
					attrs = append(attrs, "default "+truncate(*c.Default, 32))
				}
				fmt.Printf("  %s %s %s\n", padRight(c.Name, 20), padRight(c.Type, 16), faint.Sprint(strings.Join(attrs, ", ")))
			}

			for _, fk := range t.ForeignKeys {
				fmt.Printf("  %s %s -> %s.%s on delete %s\n",
					faint.Sprint("fk"), fk.Column, fk.RefTable, fk.RefColumn, strings.ToLower(fk.OnDelete))
			}
			for _, idx := range t.Indexes {
				kind := "index"
				if idx.Unique {
					kind = "unique"
				}
				fmt.Printf("  %s %s (%s)\n", faint.Sprint(kind), idx.Name, strings.Join(idx.Columns, ", "))
			}
		}

		fmt.Printf("\n%s\n", bold.Sprint("relations"))
		for _, r := range storage.Relations {
			fmt.Printf("  %s %s %s via %s.%s\n",
				padRight(r.Table+"."+r.Name, 32),
				padRight(string(r.Cardinality), 5),
				padRight(r.Target, 18),
				r.ForeignKeyTable(), r.Column)
		}
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaCounts, "counts", false, "include row counts")
	rootCmd.AddCommand(schemaCmd)
}
