package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/database"
	"github.com/ridoystarlord/packpipe/staging"
	"github.com/ridoystarlord/packpipe/tracker"
)

var cleanDataCmd = &cobra.Command{
	Use:   "clean-data <pack>",
	Short: "Delete the rows a data pack wrote to the target store",
	Long: `Remove every tracked row a data pack has written, in reverse apply
order so child rows go before their parents. The pack itself stays
staged and can be applied again.

Examples:
  packpipe clean-data reference-data
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

		opID, err := store.BeginOperation("clean-data", args[0], "postgres")
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		tr := tracker.New(store, target, opID)
		res, err := tr.CleanPack(args[0])
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Clean failed:", err)
			os.Exit(1)
		}
		store.CompleteOperation(opID, staging.StatusSuccess, staging.Counters{Tables: res.Deleted})

		fmt.Printf("✅ Cleaned pack: %s\n", res.PackName)
		fmt.Printf("📊 %d record(s) deleted\n", res.Deleted)
	},
}
