package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/database"
	"github.com/ridoystarlord/packpipe/importer"
	"github.com/ridoystarlord/packpipe/staging"
)

var (
	dryRunImport  bool
	importVerbose bool
)

var importCmd = &cobra.Command{
	Use:   "import <pack.zip|xml>",
	Short: "Import a 2Pack archive into the target store",
	Long: `Read a 2Pack archive (or a bare PackOut document) and insert or update
its records in the target dictionary. The whole import runs in one
transaction and rolls back if any record fails.

Examples:
  packpipe import HR_Management.zip
  packpipe import PackOut.xml --dry-run
  packpipe import HR_Management.zip --verbose
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		target, err := database.GetTarget()
		if err != nil {
			fmt.Println("❌ Target connection failed:", err)
			os.Exit(1)
		}

		opID, err := store.BeginOperation("import", args[0], "postgres")
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		im := importer.New(target, store, opID)
		im.DryRun = dryRunImport

		res, err := im.ImportPackage(args[0])
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Import failed:", err)
			os.Exit(1)
		}

		touched := map[string]bool{}
		for name := range res.Inserted {
			touched[name] = true
		}
		for name := range res.Updated {
			touched[name] = true
		}
		store.CompleteOperation(opID, res.Status, staging.Counters{Tables: len(touched), Errors: res.Errors})

		printImportSummary(res)
		if res.Status == staging.StatusPartial {
			os.Exit(1)
		}
	},
}

func printImportSummary(res *importer.Result) {
	inserted, updated := 0, 0
	for _, n := range res.Inserted {
		inserted += n
	}
	for _, n := range res.Updated {
		updated += n
	}
	fmt.Printf("📊 Import summary: %d applied (%d inserted, %d updated)\n", res.Applied(), inserted, updated)

	if importVerbose {
		names := map[string]bool{}
		for name := range res.Inserted {
			names[name] = true
		}
		for name := range res.Updated {
			names[name] = true
		}
		sorted := make([]string, 0, len(names))
		for name := range names {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)
		for _, name := range sorted {
			fmt.Printf("   - %s: %d inserted, %d updated\n", name, res.Inserted[name], res.Updated[name])
		}
	}

	if len(res.Skipped) > 0 {
		seen := map[string]bool{}
		var kinds []string
		for _, k := range res.Skipped {
			if !seen[k] {
				seen[k] = true
				kinds = append(kinds, k)
			}
		}
		sort.Strings(kinds)
		fmt.Printf("⚠️  Skipped %d unrecognized element(s): %s\n", len(res.Skipped), strings.Join(kinds, ", "))
	}

	if len(res.Missing) > 0 {
		names := make([]string, 0, len(res.Missing))
		for name := range res.Missing {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("⚠️  Missing tables: %s\n", strings.Join(names, ", "))
	}

	if res.Errors > 0 {
		fmt.Printf("❌ %d record error(s)\n", res.Errors)
	}
}

func init() {
	importCmd.Flags().BoolVar(&dryRunImport, "dry-run", false, "Roll back all changes after the run instead of committing")
	importCmd.Flags().BoolVarP(&importVerbose, "verbose", "v", false, "Print per-table insert and update counts")
}
