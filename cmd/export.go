package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/pack"
	"github.com/ridoystarlord/packpipe/staging"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <pack>",
	Short: "Write a staged data pack as a portable archive",
	Long: `Render a staged data pack as a 2Pack archive that other installations
can import. The archive carries every staged row in apply order.

Examples:
  packpipe export reference-data
  packpipe export reference-data --out dist/
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		pk, err := store.PackByName(args[0])
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		records, err := store.RecordsForPack(pk.UUID)
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}
		if len(records) == 0 {
			fmt.Printf("❌ Pack '%s' has no records to export\n", pk.Name)
			os.Exit(1)
		}

		out := make([]pack.DataRecord, 0, len(records))
		for _, r := range records {
			out = append(out, pack.DataRecord{TableName: r.TableName, Values: r.Values})
		}

		opID, err := store.BeginOperation("export", args[0], "")
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		w := pack.NewWriter(exportOut)
		path, err := w.WriteDataPack(pk.Name, pk.Version, out)
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Export failed:", err)
			os.Exit(1)
		}
		store.CompleteOperation(opID, staging.StatusSuccess, staging.Counters{Tables: len(out)})

		fmt.Printf("✅ Package written: %s\n", path)
		fmt.Printf("📊 %d record(s) exported\n", len(out))
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "Directory to write the archive into")
}
