package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/database"
	"github.com/ridoystarlord/packpipe/patcher"
	"github.com/ridoystarlord/packpipe/staging"
)

var syncOut string

var syncCmd = &cobra.Command{
	Use:   "sync <manifest>",
	Short: "Refresh a PackOut document's texts from the target store",
	Long: `Walk an exported PackOut document and replace the display texts of
every customization-owned element with the current values from the
target dictionary. Elements owned by the base dictionary are skipped.

Examples:
  packpipe sync HR_Management/dict/PackOut.xml
  packpipe sync PackOut.xml --out PackOut.synced.xml
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

		opID, err := store.BeginOperation("sync", args[0], "postgres")
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		res, err := patcher.SyncFromStore(args[0], target, syncOut)
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Sync failed:", err)
			os.Exit(1)
		}
		store.CompleteOperation(opID, staging.StatusSuccess, staging.Counters{Columns: res.Updated})

		fmt.Printf("✅ %d element(s) refreshed from the target store\n", res.Updated)
		if res.Skipped > 0 {
			fmt.Printf("   - %d protected element(s) skipped\n", res.Skipped)
		}
		if res.NotFound > 0 {
			fmt.Printf("   - %d element(s) not found in the target store\n", res.NotFound)
		}
	},
}

func init() {
	syncCmd.Flags().StringVarP(&syncOut, "out", "o", "", "Write the synced document to this file instead of in place")
}
