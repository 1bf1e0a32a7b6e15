package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var packsCmd = &cobra.Command{
	Use:   "packs [name]",
	Short: "List staged data packs",
	Long: `Without arguments, list every staged data pack. With a pack name, show
the per-table record counts for that pack.

Examples:
  packpipe packs
  packpipe packs reference-data
`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		if len(args) == 0 {
			packs, err := store.Packs()
			if err != nil {
				fmt.Println("❌ Staging store error:", err)
				os.Exit(1)
			}
			if len(packs) == 0 {
				fmt.Println("📋 No staged packs found")
				return
			}
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Pack", "Version", "Records", "Status", "Source", "Staged At"})
			for _, p := range packs {
				t.AppendRow(table.Row{p.Name, p.Version, p.RecordCount, p.Status, p.SourceFile, p.CreatedAt})
			}
			t.Render()
			return
		}

		pk, err := store.PackByName(args[0])
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		counts, err := store.PackTableCounts(pk.UUID)
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		fmt.Printf("📦 %s (version %s, status %s)\n", pk.Name, pk.Version, pk.Status)
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Table", "Records"})
		for _, tc := range counts {
			t.AppendRow(table.Row{tc.TableName, tc.Count})
		}
		t.Render()
	},
}
