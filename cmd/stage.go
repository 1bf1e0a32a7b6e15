package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/loader"
	"github.com/ridoystarlord/packpipe/staging"
	"github.com/ridoystarlord/packpipe/validator"
)

var stageCmd = &cobra.Command{
	Use:   "stage <bundle.yaml>",
	Short: "Stage a model bundle into the local staging store",
	Long: `Load a bundle file, check its structure, and record it in the
local staging store. Staging never touches the target database; run
'packpipe packout' or 'packpipe apply' afterwards.

Examples:
  packpipe stage bundle.yaml
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bundle, err := loader.LoadBundleFromYAML(args[0])
		if err != nil {
			fmt.Println("❌ Loading bundle failed:", err)
			os.Exit(1)
		}

		result := validator.ValidateBundleWithoutDB(bundle)
		if !result.Valid {
			fmt.Printf("❌ Bundle has %d structural error(s), run 'packpipe validate %s' for details\n",
				len(result.Errors), args[0])
			os.Exit(1)
		}

		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		opID, err := store.BeginOperation("stage", args[0], "")
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		headerUU, err := store.StageBundle(opID, *bundle)
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Staging failed:", err)
			os.Exit(1)
		}
		store.CompleteOperation(opID, staging.StatusSuccess, staging.Counters{Tables: len(bundle.Tables)})

		fmt.Printf("✅ Staged bundle: %s (version %s)\n", bundle.Name, bundle.Version)
		fmt.Printf("📦 %d table(s) recorded under %s\n", len(bundle.Tables), headerUU)
		fmt.Printf("🚀 Run 'packpipe packout \"%s\"' to build the package\n", bundle.Name)
	},
}
