package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/patcher"
	"github.com/ridoystarlord/packpipe/staging"
)

var patchOut string

var patchCmd = &cobra.Command{
	Use:   "patch <manifest> <rules.sql|dir>",
	Short: "Apply SQL update rules to a PackOut document",
	Long: `Rewrite display texts inside an exported PackOut document using UPDATE
statements as rules. Rules target elements by ColumnName or by their
numeric identifier. Elements owned by the base dictionary are never
touched.

Examples:
  packpipe patch HR_Management/dict/PackOut.xml fixes.sql
  packpipe patch PackOut.xml patches/ --out PackOut.patched.xml
`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		rules, err := patcher.ParseRules(args[1])
		if err != nil {
			fmt.Println("❌ Parsing rules failed:", err)
			os.Exit(1)
		}
		fmt.Printf("🔧 Applying %d rule(s) to %s\n", len(rules), args[0])

		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}
		opID, err := store.BeginOperation("patch", args[0], "")
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		res, err := patcher.ApplyRules(args[0], rules, patchOut)
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Patch failed:", err)
			os.Exit(1)
		}
		store.CompleteOperation(opID, staging.StatusSuccess, staging.Counters{Columns: res.Updated})

		fmt.Printf("✅ %d field(s) updated\n", res.Updated)
		kinds := make([]string, 0, len(res.PerKind))
		for kind := range res.PerKind {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Printf("   - %s: %d element(s)\n", kind, res.PerKind[kind])
		}
	},
}

func init() {
	patchCmd.Flags().StringVarP(&patchOut, "out", "o", "", "Write the patched document to this file instead of in place")
}
