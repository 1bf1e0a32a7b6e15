package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/database"
	"github.com/ridoystarlord/packpipe/staging"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback <bundle>",
	Short: "Deactivate an applied bundle's tables in the target store",
	Long: `Mark every table an applied bundle created as inactive in the target
dictionary. Records stay in place so the bundle can be re-applied later.

Examples:
  packpipe rollback "HR Management"
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		header, err := store.HeaderByName(args[0])
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		if header.Status != staging.StatusApplied {
			fmt.Printf("❌ Bundle '%s' is not applied (status %s)\n", args[0], header.Status)
			os.Exit(1)
		}

		tables, err := store.TablesForHeader(header.UUID)
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		target, err := database.GetTarget()
		if err != nil {
			fmt.Println("❌ Target connection failed:", err)
			os.Exit(1)
		}

		opID, err := store.BeginOperation("rollback", args[0], "postgres")
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		deactivated := 0
		for _, td := range tables {
			if td.ADTableID <= 0 {
				continue
			}
			_, err := target.Exec(
				"UPDATE ad_table SET isactive = 'N', updated = NOW(), updatedby = 0 WHERE ad_table_id = $1",
				td.ADTableID,
			)
			if err != nil {
				store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Tables: deactivated, Errors: 1})
				fmt.Println("❌ Rollback failed:", err)
				os.Exit(1)
			}
			store.LogDetail(opID, "Table", td.Name, "DEACTIVATE", "")
			deactivated++
		}

		if err := store.SetHeaderStatus(header.UUID, staging.StatusRolledBack); err != nil {
			fmt.Println("⚠️  Updating bundle status failed:", err)
		}
		store.CompleteOperation(opID, staging.StatusSuccess, staging.Counters{Tables: deactivated})

		fmt.Printf("✅ Rolled back bundle: %s\n", args[0])
		fmt.Printf("📊 %d table(s) deactivated\n", deactivated)
	},
}
