// cmd/cleanse/shell.go
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/feedbackops/cleanse/pkg/registry"
)

func newShellCmd() *cobra.Command {
	var registryDB string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive SQL shell against the registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if registryDB != "" {
				cfg.RegistryPath = registryDB
			}

			reg, err := registry.Open(cfg.RegistryPath, logger)
			if err != nil {
				return err
			}
			defer reg.Close()

			if err := reg.Initialize(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Connected to %s\n", cfg.RegistryPath)
			fmt.Fprintln(os.Stdout, "Enter SQL, or .tables, .schema, .exit")
			return runShell(reg.DB(), os.Stdin)
		},
	}

	cmd.Flags().StringVar(&registryDB, "registry-db", "", "registry database path")
	return cmd
}

// runShell reads statements line by line until .exit or EOF.
func runShell(db *sqlx.DB, in *os.File) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(os.Stdout, "cleanse> ")
		if !scanner.Scan() {
			fmt.Fprintln(os.Stdout)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == ".exit" || line == ".quit":
			return nil
		case line == ".tables":
			executeQuery(db, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
		case line == ".schema":
			executeQuery(db, "SELECT sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY name")
		default:
			executeQuery(db, line)
		}
	}
}

// executeQuery runs one statement and prints the result set, or the error,
// without ending the session.
func executeQuery(db *sqlx.DB, query string) {
	rows, err := db.Queryx(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))

	count := 0
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}

		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = renderCell(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
		count++
	}
	w.Flush()

	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stdout, "(%d rows)\n", count)
}

func renderCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
