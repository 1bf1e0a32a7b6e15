package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var appliedCmd = &cobra.Command{
	Use:   "applied <pack>",
	Short: "Show the rows a data pack wrote to the target store",
	Long: `List every tracked row a data pack has written, newest first. The
tracking log is what 'packpipe clean-data' walks when removing a pack.

Examples:
  packpipe applied reference-data
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

		records, err := store.AppliedForPack(pk.UUID)
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}
		if len(records) == 0 {
			fmt.Printf("📋 No applied records for pack: %s\n", pk.Name)
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Seq", "Table", "Record ID", "UUID", "Status", "Applied At"})
		for _, r := range records {
			t.AppendRow(table.Row{r.SeqNo, r.TableName, r.RecordID, r.RecordUUID, r.Status, r.AppliedAt})
		}
		t.Render()

		counts, err := store.AppliedCounts(pk.UUID)
		if err == nil {
			for _, tc := range counts {
				fmt.Printf("   - %s: %d\n", tc.TableName, tc.Count)
			}
		}
	},
}
