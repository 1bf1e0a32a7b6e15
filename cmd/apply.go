package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/database"
	"github.com/ridoystarlord/packpipe/importer"
	"github.com/ridoystarlord/packpipe/pack"
	"github.com/ridoystarlord/packpipe/staging"
)

var dryRunApply bool

var applyCmd = &cobra.Command{
	Use:   "apply <bundle>",
	Short: "Apply a staged bundle's metadata to the target store",
	Long: `Compile a staged bundle and write the resulting metadata records
directly into the target dictionary. Records are inserted or updated
by UUID, all inside one transaction.

Examples:
  packpipe apply "HR Management"
  packpipe apply "HR Management" --dry-run
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		opID, err := store.BeginOperation("apply", args[0], "postgres")
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		graph, header, tables, err := compileBundle(store, args[0])
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Compile failed:", err)
			os.Exit(1)
		}
		for _, w := range graph.Warnings {
			fmt.Println("⚠️ ", w)
		}
		if header.Status == staging.StatusApplied {
			fmt.Println("⚠️  Bundle already applied, existing records will be updated")
		}

		target, err := database.GetTarget()
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Target connection failed:", err)
			os.Exit(1)
		}

		im := importer.New(target, store, opID)
		im.DryRun = dryRunApply

		fmt.Printf("🔧 Applying bundle: %s (%d records)\n", args[0], graph.RecordCount())

		// record UUIDs derived from the header, so re-applying the
		// same staged bundle updates rows instead of duplicating them
		writer := pack.NewWriter("")
		writer.Namespace = header.UUID

		res, err := im.ImportDocument(writer.Manifest(graph))
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Apply failed:", err)
			os.Exit(1)
		}
		store.CompleteOperation(opID, res.Status, staging.Counters{
			Tables:  len(graph.Tables),
			Columns: graph.ColumnCount(),
			Windows: len(graph.Windows),
			Errors:  res.Errors,
		})

		switch res.Status {
		case staging.StatusDryRun:
			fmt.Printf("📋 Dry run complete: %d record(s) would be written\n", res.Applied())
		case staging.StatusPartial:
			fmt.Printf("❌ Apply failed, %d record error(s)\n", res.Errors)
			os.Exit(1)
		default:
			for _, td := range tables {
				for _, gt := range graph.Tables {
					if gt.TableName == td.Name {
						if err := store.SetTableApplied(td.UUID, gt.ID); err != nil {
							fmt.Println("⚠️  Recording table id failed:", err)
						}
						break
					}
				}
			}
			if err := store.SetHeaderStatus(header.UUID, staging.StatusApplied); err != nil {
				fmt.Println("⚠️  Updating bundle status failed:", err)
			}
			fmt.Printf("✅ Applied bundle: %s\n", args[0])
			fmt.Printf("📊 %d record(s) written to the target dictionary\n", res.Applied())
		}
	},
}

func init() {
	applyCmd.Flags().BoolVar(&dryRunApply, "dry-run", false, "Roll back all changes after the run instead of committing")
}
