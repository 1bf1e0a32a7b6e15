package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [bundle]",
	Short: "Show staged bundles and their tables",
	Long: `List every staged bundle, or show one bundle's table definitions.

Examples:
  packpipe show                     # List all staged bundles
  packpipe show "HR Management"     # Show one bundle's tables
`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		if len(args) == 0 {
			headers, err := store.Headers()
			if err != nil {
				fmt.Println("❌ Listing bundles failed:", err)
				os.Exit(1)
			}
			if len(headers) == 0 {
				fmt.Println("📋 No staged bundles found")
				return
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Bundle", "Version", "Tables", "Status", "Staged At"})
			for _, h := range headers {
				t.AppendRow(table.Row{h.Name, h.Version, h.TableCount, h.Status, h.CreatedAt})
			}
			t.Render()
			return
		}

		header, err := store.HeaderByName(args[0])
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		tables, err := store.TablesForHeader(header.UUID)
		if err != nil {
			fmt.Println("❌ Loading tables failed:", err)
			os.Exit(1)
		}

		fmt.Printf("📦 %s (version %s, status %s)\n", header.Name, header.Version, header.Status)
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Table", "Master", "Columns", "Status", "AD_Table_ID"})
		for _, td := range tables {
			adTableID := ""
			if td.ADTableID > 0 {
				adTableID = strconv.Itoa(td.ADTableID)
			}
			t.AppendRow(table.Row{td.SeqNo, td.Name, td.Master, len(td.Columns()), td.Status, adTableID})
		}
		t.Render()
	},
}
