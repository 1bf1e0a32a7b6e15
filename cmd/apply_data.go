package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/database"
	"github.com/ridoystarlord/packpipe/staging"
	"github.com/ridoystarlord/packpipe/tracker"
)

var applyDataCmd = &cobra.Command{
	Use:   "apply-data <pack>",
	Short: "Write a staged data pack's rows to the target store",
	Long: `Insert or update every row of a staged data pack in the target
database. Each written row is tracked so it can be removed again with
'packpipe clean-data'.

Examples:
  packpipe apply-data reference-data
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

		opID, err := store.BeginOperation("apply-data", args[0], "postgres")
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		tr := tracker.New(store, target, opID)
		res, err := tr.ApplyPack(args[0])
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Apply failed:", err)
			os.Exit(1)
		}
		store.CompleteOperation(opID, staging.StatusSuccess, staging.Counters{Tables: len(res.Tables)})

		fmt.Printf("✅ Applied pack: %s\n", res.PackName)
		fmt.Printf("📊 %d record(s) written\n", res.Applied)
		names := make([]string, 0, len(res.Tables))
		for name := range res.Tables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("   - %s: %d\n", name, res.Tables[name])
		}
	},
}
